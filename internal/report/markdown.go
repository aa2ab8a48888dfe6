package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/docscore/docscore/internal/score"
)

// MarkdownExporter renders the report as a standalone markdown
// document: summary, category table, top issues, per-category detail,
// and the full issue list behind a collapsible section.
type MarkdownExporter struct {
	w io.Writer
}

// NewMarkdownExporter creates a markdown exporter.
func NewMarkdownExporter(w io.Writer) *MarkdownExporter {
	return &MarkdownExporter{w: w}
}

// Export writes the document.
func (e *MarkdownExporter) Export(r *score.ScoreReport) error {
	var sb strings.Builder

	title := r.Meta.Title
	if title == "" {
		title = r.Meta.URL
	}
	fmt.Fprintf(&sb, "# AI-Friendliness Report: %s\n\n", title)
	fmt.Fprintf(&sb, "**Score: %.1f/10** (%s)\n\n", r.CompositeScore, r.Status)
	fmt.Fprintf(&sb, "%s\n\n", r.Summary)
	fmt.Fprintf(&sb, "- URL: %s\n", r.Meta.URL)
	fmt.Fprintf(&sb, "- Scored: %s\n", r.Meta.ScoredAt.Format("2006-01-02 15:04 UTC"))
	fmt.Fprintf(&sb, "- Words: %d\n", r.Meta.WordCount)
	if r.Meta.ClaudeError != "" {
		fmt.Fprintf(&sb, "- Note: semantic analysis unavailable (%s); estimated categories are excluded from the score\n", r.Meta.ClaudeError)
	}
	sb.WriteString("\n")

	sb.WriteString("## Categories\n\n")
	sb.WriteString("| Category | Score | Weight | Issues |\n")
	sb.WriteString("|----------|-------|--------|--------|\n")
	for _, key := range score.CategoryOrder {
		cat, ok := r.Categories[key]
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "| %s | %s | %.0f%% | %d |\n",
			cat.Name, formatScore(cat), cat.Weight*100, len(cat.Issues))
	}
	sb.WriteString("\n")

	if len(r.TopIssues) > 0 {
		sb.WriteString("## Top Issues\n\n")
		for _, issue := range r.TopIssues {
			fmt.Fprintf(&sb, "- **[%s]** %s", issue.Severity, issue.Message)
			if issue.Fix != "" {
				fmt.Fprintf(&sb, " _(fix: %s)_", issue.Fix)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Detail\n\n")
	for _, key := range score.CategoryOrder {
		cat, ok := r.Categories[key]
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "### %s — %s\n\n", cat.Name, formatScore(cat))
		if cat.Message != "" {
			fmt.Fprintf(&sb, "%s\n\n", cat.Message)
		}
		if len(cat.Criteria) == 0 {
			continue
		}
		sb.WriteString("| Criterion | Score | Details |\n")
		sb.WriteString("|-----------|-------|---------|\n")
		for _, id := range sortedCriterionIDs(cat.Criteria) {
			cr := cat.Criteria[id]
			fmt.Fprintf(&sb, "| %s | %.1f | %s |\n", id, cr.Score, escapePipes(cr.Details))
		}
		sb.WriteString("\n")
	}

	if len(r.AllIssues) > 0 {
		critical, warning, info := countBySeverity(r.AllIssues)
		fmt.Fprintf(&sb, "<details>\n<summary>All issues (%d critical, %d warnings, %d info)</summary>\n\n",
			critical, warning, info)
		for _, issue := range r.AllIssues {
			fmt.Fprintf(&sb, "- **[%s]** %s: %s", issue.Severity, issue.Category, issue.Message)
			if issue.Location != "" {
				fmt.Fprintf(&sb, " (%s)", issue.Location)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n</details>\n")
	}

	_, err := io.WriteString(e.w, sb.String())
	return err
}

func formatScore(cat score.CategoryResult) string {
	if cat.Estimated || cat.Score == nil {
		return "estimated"
	}
	return fmt.Sprintf("%.1f", *cat.Score)
}

func sortedCriterionIDs(criteria map[string]score.CriterionResult) []string {
	ids := make([]string, 0, len(criteria))
	for id := range criteria {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
