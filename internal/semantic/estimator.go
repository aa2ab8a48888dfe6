package semantic

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/docscore/docscore/internal/content"
	"github.com/docscore/docscore/internal/score"
)

var (
	destructiveVerbs = regexp.MustCompile(`\b(delete|remove|drop|erase|purge|destroy|wipe|reset|overwrite|uninstall)\b`)
	undoPhrases      = regexp.MustCompile(`\b(cannot be undone|can't be undone|permanent|irreversible|undo|restore|recover|roll ?back)\b`)
	warningPhrases   = regexp.MustCompile(`\b(warning|caution|careful|important|note that|before you delete)\b`)
	outcomePhrases   = regexp.MustCompile(`\b(you should see|the result|this creates|this produces|after this|once complete)\b`)
	recoveryPhrases  = regexp.MustCompile(`\b(if .{0,40}fails|troubleshoot|error message|try again|contact support)\b`)
	roleKeywords     = regexp.MustCompile(`\b(admin|administrator|owner|member|role|permission)\b`)
	planKeywords     = regexp.MustCompile(`\b(plan|subscription|tier|upgrade|enterprise|free plan|pro plan)\b`)
	prereqPhrases    = regexp.MustCompile(`\b(prerequisite|before you begin|before you start|requirements|you will need)\b`)
	danglingPhrases  = regexp.MustCompile(`\b(see above|as mentioned|mentioned earlier|previous section|the section below|as described)\b`)
)

// HeuristicEstimator approximates the semantic criteria with keyword
// and structure heuristics. Every record carries estimated: true so the
// engine can exclude these categories from the composite.
type HeuristicEstimator struct{}

// NewHeuristicEstimator creates the fallback evaluator.
func NewHeuristicEstimator() *HeuristicEstimator {
	return &HeuristicEstimator{}
}

// Evaluate never fails; it is total over any validated snapshot.
func (e *HeuristicEstimator) Evaluate(_ context.Context, c *content.NormalizedContent) (*Result, error) {
	text := strings.ToLower(c.Text.FullText)

	result := &Result{
		Criteria:  make(map[string]score.CriterionResult),
		Estimated: true,
		Summary:   "Semantic criteria estimated from keyword and structure heuristics.",
	}

	destructive := destructiveVerbs.MatchString(text)
	hasUndo := undoPhrases.MatchString(text)
	hasWarnings := warningPhrases.MatchString(text) || len(c.Structure.Callouts) > 0

	add := func(id string, s float64, detail string, issues ...score.Issue) {
		result.Criteria[id] = score.CriterionResult{
			CriterionID: id,
			Score:       score.Clamp(s),
			Details:     detail + " (estimated)",
			Issues:      issues,
			Estimated:   true,
		}
	}

	// Outcomes & reversibility
	outcome := 7.0
	if outcomePhrases.MatchString(text) {
		outcome++
	}
	if destructive && !hasUndo {
		outcome -= 2
		add(CritOutcomeClarity, outcome, "destructive verbs without outcome or reversibility statements",
			score.Issue{
				Severity: severityForScore(outcome),
				Message:  "Destructive operations are described without stating their outcome",
				Fix:      "State what is removed and whether it can be recovered",
			})
	} else {
		add(CritOutcomeClarity, outcome, "outcome phrasing heuristic")
	}

	switch {
	case destructive && hasUndo:
		add(CritReversibility, 8, "reversibility is addressed for destructive actions")
	case destructive:
		add(CritReversibility, 4, "destructive actions with no reversibility guidance",
			score.Issue{
				Severity: severityForScore(4),
				Message:  "No reversibility guidance for destructive actions",
				Fix:      "Say whether the action can be undone and how",
			})
	default:
		add(CritReversibility, 7, "no destructive actions detected")
	}

	switch {
	case destructive && hasWarnings:
		add(CritDestructiveWarning, 9, "warnings accompany destructive actions")
	case destructive:
		add(CritDestructiveWarning, 4, "destructive actions without warnings",
			score.Issue{
				Severity: severityForScore(4),
				Message:  "Destructive operations carry no warning callouts",
				Fix:      "Add a warning callout before destructive steps",
			})
	default:
		add(CritDestructiveWarning, 8, "no destructive actions detected")
	}

	if recoveryPhrases.MatchString(text) {
		add(CritErrorRecovery, 8, "error recovery guidance present")
	} else {
		add(CritErrorRecovery, 6, "no error recovery guidance found")
	}

	// Permissions & plans
	if roleKeywords.MatchString(text) {
		add(CritPermissionClarity, 8, "permission and role keywords present")
		add(CritRoleClarity, 8, "role keywords present")
	} else {
		add(CritPermissionClarity, 6, "no permission keywords found")
		add(CritRoleClarity, 6, "no role keywords found")
	}
	if planKeywords.MatchString(text) {
		add(CritPlanClarity, 8, "plan gating keywords present")
	} else {
		add(CritPlanClarity, 6, "no plan keywords found")
	}

	// Self-contained context
	dangling := len(danglingPhrases.FindAllString(text, -1))
	if dangling > 2 {
		add(CritDanglingReferences, 5, fmt.Sprintf("%d positional references found", dangling),
			score.Issue{
				Severity: severityForScore(5),
				Message:  fmt.Sprintf("%d references like \"see above\" depend on page position", dangling),
				Fix:      "Link to the referenced section by name instead",
			})
	} else {
		add(CritDanglingReferences, 8, "few positional references")
	}

	selfContained := 8.0
	var scIssues []score.Issue
	if len(c.Structure.Headings) == 0 {
		selfContained--
		scIssues = append(scIssues, score.Issue{Severity: score.Info, Message: "No headings to anchor context"})
	}
	if c.Text.WordCount < 200 {
		selfContained--
		scIssues = append(scIssues, score.Issue{Severity: score.Info, Message: "Page is short; context may live elsewhere"})
	}
	external := 0
	internal := 0
	for _, l := range c.Structure.Links {
		if l.Internal {
			internal++
		} else {
			external++
		}
	}
	if external > 5 && external > internal {
		selfContained--
		scIssues = append(scIssues, score.Issue{Severity: score.Info, Message: "Context leans on many external links"})
	}
	add(CritSelfContained, selfContained, "structure-based self-containment heuristic", scIssues...)

	if prereqPhrases.MatchString(text) {
		add(CritPrerequisites, 9, "prerequisites are called out")
	} else {
		add(CritPrerequisites, 6, "no prerequisite section found")
	}

	// Cross-cutting structure criteria
	orderedLists := 0
	maxItems := 0
	for _, l := range c.Structure.Lists {
		if l.Ordered {
			orderedLists++
			if len(l.Items) > maxItems {
				maxItems = len(l.Items)
			}
		}
	}
	switch {
	case orderedLists > 0 && maxItems <= 10:
		add(CritStepAtomicity, 8, "ordered steps are reasonably sized")
	case orderedLists > 0:
		add(CritStepAtomicity, 6, fmt.Sprintf("longest procedure has %d steps", maxItems))
	default:
		add(CritStepAtomicity, 6, "no ordered procedures found")
	}

	h2Count := 0
	for _, h := range c.Structure.Headings {
		if h.Tag == "h2" {
			h2Count++
		}
	}
	if h2Count >= 2 {
		add(CritWorkflowSeparation, 8, "multiple sections separate workflows")
	} else {
		add(CritWorkflowSeparation, 5, "single-section page may interleave workflows")
	}

	// Term conflation: light pair check mirroring the rule-based AV-02.
	conflated := strings.Contains(text, "deactivate") && strings.Contains(text, "disable")
	if conflated {
		add(CritTermConflation, 6, "near-synonyms used together",
			score.Issue{
				Severity: severityForScore(6),
				Message:  "Both \"deactivate\" and \"disable\" appear; meanings may blur",
				Fix:      "Define both terms or use only one",
			})
	} else {
		add(CritTermConflation, 8, "no conflated term pairs detected")
	}

	return result, nil
}
