// Package semantic provides the model-scored criteria: a remote
// evaluator backed by the Anthropic API and a heuristic estimator used
// when no credential is available or the remote call fails. Both
// implement the same capability and produce the same record shape.
package semantic

import (
	"context"
	"encoding/json"

	"github.com/docscore/docscore/internal/content"
	"github.com/docscore/docscore/internal/score"
)

// Criterion IDs scored semantically. CS-05/CS-06 cross-cut into the
// content-structure category and AV-02 into terminology; the rest fill
// the three semantic-only categories.
const (
	CritStepAtomicity      = "CS-05"
	CritWorkflowSeparation = "CS-06"
	CritOutcomeClarity     = "OR-01"
	CritReversibility      = "OR-02"
	CritDestructiveWarning = "OR-03"
	CritErrorRecovery      = "OR-04"
	CritTermConflation     = "AV-02"
	CritPermissionClarity  = "PP-01"
	CritPlanClarity        = "PP-02"
	CritRoleClarity        = "PP-03"
	CritDanglingReferences = "SC-01"
	CritSelfContained      = "SC-02"
	CritPrerequisites      = "SC-03"
)

// Criterion describes one semantically-scored check, including the
// definition embedded into the model prompt.
type Criterion struct {
	ID         string
	Name       string
	Definition string
	Category   string
}

// Criteria is the fixed set of 13 semantic criteria.
var Criteria = []Criterion{
	{CritStepAtomicity, "Step atomicity", "Each instruction step performs one action with one observable result.", score.CategoryContentStructure},
	{CritWorkflowSeparation, "Workflow separation", "Distinct workflows (create vs update vs delete) are in separate sections, not interleaved.", score.CategoryContentStructure},
	{CritOutcomeClarity, "Outcome clarity", "Every operation states what the user ends up with after performing it.", score.CategoryOutcomes},
	{CritReversibility, "Reversibility", "The page says whether actions can be undone and how.", score.CategoryOutcomes},
	{CritDestructiveWarning, "Destructive-action warnings", "Destructive operations carry explicit warnings before the steps.", score.CategoryOutcomes},
	{CritErrorRecovery, "Error recovery", "Failure modes are described with concrete recovery guidance.", score.CategoryOutcomes},
	{CritTermConflation, "Term conflation", "Near-synonyms with different meanings are not used interchangeably.", score.CategoryTerminology},
	{CritPermissionClarity, "Permission clarity", "Required permissions are stated per operation.", score.CategoryPermissions},
	{CritPlanClarity, "Plan clarity", "Plan or subscription gating of features is explicit.", score.CategoryPermissions},
	{CritRoleClarity, "Role clarity", "The acting role (admin, member, owner) is unambiguous for each instruction.", score.CategoryPermissions},
	{CritDanglingReferences, "Dangling references", "No references to content that is not on or linked from this page.", score.CategorySelfContainedContext},
	{CritSelfContained, "Self-contained context", "The page can be understood without reading other pages first.", score.CategorySelfContainedContext},
	{CritPrerequisites, "Prerequisite clarity", "Prerequisites are listed before the instructions that need them.", score.CategorySelfContainedContext},
}

// CategoryOf maps a semantic criterion ID to its target category key.
func CategoryOf(id string) string {
	for _, c := range Criteria {
		if c.ID == id {
			return c.Category
		}
	}
	return ""
}

// Result is the output of a semantic evaluation: criterion records in
// the same shape the rule evaluators produce, plus the raw payload for
// caching when the remote path produced it.
type Result struct {
	Criteria  map[string]score.CriterionResult `json:"criteria"`
	Summary   string                           `json:"summary,omitempty"`
	TopIssues []string                         `json:"topIssues,omitempty"`
	Estimated bool                             `json:"estimated"`
	Raw       json.RawMessage                  `json:"raw,omitempty"`
}

// Evaluator is the semantic capability. Exactly one implementation is
// selected per run: RemoteEvaluator when a credential is present,
// HeuristicEstimator otherwise. The estimator never returns an error.
type Evaluator interface {
	Evaluate(ctx context.Context, c *content.NormalizedContent) (*Result, error)
}

// severityForScore derives issue severity from a criterion score:
// below 4 critical, below 7 warning, otherwise info.
func severityForScore(s float64) score.Severity {
	switch {
	case s < 4:
		return score.Critical
	case s < 7:
		return score.Warning
	default:
		return score.Info
	}
}
