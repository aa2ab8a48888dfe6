// Package score defines the data model shared by evaluators, the
// aggregation engine, and report exporters: severities, issues,
// per-criterion and per-category results, and the final report.
package score

import (
	"sort"
	"time"
)

// Severity represents the severity level of an issue
type Severity int

const (
	Critical Severity = iota
	Warning
	Info
)

func (s Severity) String() string {
	switch s {
	case Critical:
		return "critical"
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// ParseSeverity maps a severity string to its Severity value.
// Unknown strings map to Info.
func ParseSeverity(s string) Severity {
	switch s {
	case "critical":
		return Critical
	case "warning":
		return Warning
	case "info":
		return Info
	default:
		return Info
	}
}

// MarshalJSON encodes the severity as its string form.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON decodes a severity from its string form.
func (s *Severity) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' {
		str = str[1 : len(str)-1]
	}
	*s = ParseSeverity(str)
	return nil
}

// Issue represents a single finding attached to a criterion or category.
type Issue struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Fix      string   `json:"fix,omitempty"`
	Location string   `json:"location,omitempty"`
	Excerpt  string   `json:"excerpt,omitempty"`

	// Category name/key are attached by the engine when issues are
	// flattened into the report-level list.
	Category    string `json:"category,omitempty"`
	CategoryKey string `json:"categoryKey,omitempty"`
}

// CriterionResult is the output of one named sub-check.
// Score is always clamped to [0,10] by the producing evaluator.
type CriterionResult struct {
	CriterionID string  `json:"criterionId"`
	Score       float64 `json:"score"`
	Issues      []Issue `json:"issues"`
	Details     string  `json:"details"`
	Estimated   bool    `json:"estimated,omitempty"`
}

// CategoryResult aggregates the criteria of one scoring dimension.
// Score is nil only when the category is estimated or no criteria ran.
type CategoryResult struct {
	ID        string                     `json:"id"`
	Name      string                     `json:"name"`
	Score     *float64                   `json:"score"`
	Weight    float64                    `json:"weight"`
	Criteria  map[string]CriterionResult `json:"criteria"`
	Issues    []Issue                    `json:"issues"`
	Estimated bool                       `json:"estimated,omitempty"`
	Message   string                     `json:"message,omitempty"`
}

// Status is the traffic-light bucketing of the composite score.
type Status string

const (
	StatusGreen  Status = "green"
	StatusYellow Status = "yellow"
	StatusRed    Status = "red"
)

// StatusFor maps a composite score to its traffic-light status.
// Thresholds: >=7 green, >=4 yellow, else red.
func StatusFor(composite float64) Status {
	switch {
	case composite >= 7:
		return StatusGreen
	case composite >= 4:
		return StatusYellow
	default:
		return StatusRed
	}
}

// Meta describes the scored page and the run that produced the report.
type Meta struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	RunID       string    `json:"runId"`
	ScoredAt    time.Time `json:"scoredAt"`
	WordCount   int       `json:"wordCount"`
	ContentHash string    `json:"contentHash"`
	Language    string    `json:"language,omitempty"`

	// ClaudeError carries the semantic capability failure message when
	// the run fell back to the estimator. Non-fatal.
	ClaudeError string `json:"claudeError,omitempty"`
}

// ScoreReport is the final result of one scoring run. It is built once
// by the engine and treated as immutable by consumers.
type ScoreReport struct {
	Meta           Meta                      `json:"meta"`
	Categories     map[string]CategoryResult `json:"categories"`
	CompositeScore float64                   `json:"compositeScore"`
	Status         Status                    `json:"status"`
	AllIssues      []Issue                   `json:"allIssues"`
	TopIssues      []Issue                   `json:"topIssues"`
	Summary        string                    `json:"summary"`
}

// Category keys. These are fixed; config can override criterion weights
// but never the category set.
const (
	CategoryContentStructure     = "content-structure"
	CategoryOutcomes             = "outcomes-reversibility"
	CategoryTerminology          = "terminology"
	CategoryPermissions          = "permissions-plans"
	CategoryTextOverVisuals      = "text-over-visuals"
	CategorySelfContainedContext = "self-contained-context"
)

// CategoryNames maps category keys to display names.
var CategoryNames = map[string]string{
	CategoryContentStructure:     "Content Structure",
	CategoryOutcomes:             "Outcomes & Reversibility",
	CategoryTerminology:          "Terminology",
	CategoryPermissions:          "Permissions & Plans",
	CategoryTextOverVisuals:      "Text Over Visuals",
	CategorySelfContainedContext: "Self-Contained Context",
}

// CategoryWeights is the fixed weight table for the composite score.
// The weights sum to 1.0; the engine renormalizes over the categories
// that actually contribute.
var CategoryWeights = map[string]float64{
	CategoryContentStructure:     0.30,
	CategoryOutcomes:             0.25,
	CategoryTerminology:          0.15,
	CategoryPermissions:          0.15,
	CategoryTextOverVisuals:      0.10,
	CategorySelfContainedContext: 0.05,
}

// CategoryOrder is the display order used by exporters.
var CategoryOrder = []string{
	CategoryContentStructure,
	CategoryOutcomes,
	CategoryTerminology,
	CategoryPermissions,
	CategoryTextOverVisuals,
	CategorySelfContainedContext,
}

// Clamp bounds a score to [0,10].
func Clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	if v < 0 {
		return -float64(int(-v*10+0.5)) / 10
	}
	return float64(int(v*10+0.5)) / 10
}

// SortIssues stable-sorts issues by severity: critical first, then
// warning, then info. Relative order within a severity is preserved.
func SortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Severity < issues[j].Severity
	})
}

// Float pointer helper for nullable category scores.
func Float(v float64) *float64 { return &v }
