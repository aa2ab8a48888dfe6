package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/docscore/docscore/internal/score"
	"github.com/docscore/docscore/internal/ui"
)

// TerminalExporter renders the report for humans: score badge,
// category breakdown, and the top issues with fixes.
type TerminalExporter struct {
	w      io.Writer
	styles *ui.Styles
}

// NewTerminalExporter creates a terminal exporter with styling derived
// from TTY detection on the writer.
func NewTerminalExporter(w io.Writer) *TerminalExporter {
	u := ui.New(w, w, "terminal")
	return &TerminalExporter{w: w, styles: u.Styles}
}

// NewTerminalExporterWithStyles creates a terminal exporter with
// explicit styles, for callers that already did mode detection.
func NewTerminalExporterWithStyles(w io.Writer, styles *ui.Styles) *TerminalExporter {
	return &TerminalExporter{w: w, styles: styles}
}

// Export writes the human-readable report.
func (e *TerminalExporter) Export(r *score.ScoreReport) error {
	s := e.styles

	title := r.Meta.Title
	if title == "" {
		title = r.Meta.URL
	}
	fmt.Fprintln(e.w)
	fmt.Fprintf(e.w, "%s\n", s.Header.Render(title))
	fmt.Fprintf(e.w, "%s\n", s.Muted.Render(r.Meta.URL))
	fmt.Fprintln(e.w)
	fmt.Fprintf(e.w, "AI-friendliness: %s\n", s.ScoreBadge(r.CompositeScore, r.Status))
	if r.Meta.ClaudeError != "" {
		fmt.Fprintf(e.w, "%s\n", s.Warning.Render(
			"semantic analysis unavailable; estimated categories excluded from the score"))
	}
	fmt.Fprintln(e.w)

	for _, key := range score.CategoryOrder {
		cat, ok := r.Categories[key]
		if !ok {
			continue
		}
		e.printCategory(cat)
	}

	if len(r.TopIssues) > 0 {
		fmt.Fprintln(e.w)
		fmt.Fprintf(e.w, "%s\n", s.Header.Render("Top issues"))
		for _, issue := range r.TopIssues {
			e.printIssue(issue)
		}
	}

	e.printSummary(r)
	return nil
}

func (e *TerminalExporter) printCategory(cat score.CategoryResult) {
	s := e.styles

	label := fmt.Sprintf("%-26s", cat.Name)
	switch {
	case cat.Estimated || cat.Score == nil:
		fmt.Fprintf(e.w, "  %s %s %s\n", label,
			s.Muted.Render("  est"), s.Muted.Render(bar(0, 20)))
	default:
		v := *cat.Score
		style := s.ForStatus(score.StatusFor(v))
		fmt.Fprintf(e.w, "  %s %s %s\n", label,
			style.Render(fmt.Sprintf("%4.1f", v)), s.Muted.Render(bar(v, 20)))
	}
}

// bar renders a fixed-width score bar: filled blocks out of width.
func bar(v float64, width int) string {
	filled := int(v / 10 * float64(width))
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func (e *TerminalExporter) printIssue(issue score.Issue) {
	s := e.styles
	style, icon := s.ForSeverity(issue.Severity)

	fmt.Fprintf(e.w, "  %s ", style.Render(icon))
	fmt.Fprintf(e.w, "%s", issue.Message)
	if issue.Category != "" {
		fmt.Fprintf(e.w, " %s", s.Muted.Render("["+issue.Category+"]"))
	}
	fmt.Fprintln(e.w)
	if issue.Fix != "" {
		fmt.Fprintf(e.w, "    %s\n", s.Muted.Render("fix: "+issue.Fix))
	}
	if issue.Excerpt != "" && len(issue.Excerpt) < 200 {
		fmt.Fprintf(e.w, "    %s\n", s.Muted.Render("> "+issue.Excerpt))
	}
}

func (e *TerminalExporter) printSummary(r *score.ScoreReport) {
	s := e.styles
	critical, warning, info := countBySeverity(r.AllIssues)

	fmt.Fprintln(e.w)
	fmt.Fprintf(e.w, "%s\n", s.Separator.Render("─────────────────────────────────────"))

	if len(r.AllIssues) == 0 {
		fmt.Fprintf(e.w, "%s No issues found\n", s.Success.Render(s.IconSuccess))
		return
	}

	var parts []string
	if critical > 0 {
		parts = append(parts, s.Critical.Render(fmt.Sprintf("%d critical", critical)))
	}
	if warning > 0 {
		parts = append(parts, s.Warning.Render(fmt.Sprintf("%d warnings", warning)))
	}
	if info > 0 {
		parts = append(parts, s.Info.Render(fmt.Sprintf("%d info", info)))
	}
	fmt.Fprintf(e.w, "Found %d issues: %s\n", len(r.AllIssues), strings.Join(parts, ", "))
}
