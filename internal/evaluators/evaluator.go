// Package evaluators implements the deterministic rule evaluators:
// content structure, terminology, and text-over-visuals. Evaluators are
// pure and synchronous; they never fail for well-formed metrics and
// degrade to neutral scores on empty-data edge cases.
package evaluators

import (
	"sort"

	"github.com/docscore/docscore/internal/config"
	"github.com/docscore/docscore/internal/content"
	"github.com/docscore/docscore/internal/metrics"
	"github.com/docscore/docscore/internal/score"
)

// Evaluator is the capability shared by all rule evaluators so the
// engine can run them uniformly and merge by category key.
type Evaluator interface {
	// Category returns the category key this evaluator owns.
	Category() string

	// Evaluate scores the category from metrics (and, for terminology,
	// raw text). The config snapshot supplies thresholds and weight
	// overrides; it is read-only.
	Evaluate(m *metrics.Metrics, c *content.NormalizedContent, cfg *config.Config) score.CategoryResult
}

// All returns the default evaluator set, one per rule-scored category.
func All() []Evaluator {
	return []Evaluator{
		&ContentStructureEvaluator{},
		&TerminologyEvaluator{},
		&TextOverVisualsEvaluator{},
	}
}

// categoryResult assembles a CategoryResult from criteria, computing the
// category score as the configured weighted average of the criteria
// actually present, renormalized over their weights. Criteria are
// visited in ID order so issue order within one severity is stable.
func categoryResult(key string, criteria map[string]score.CriterionResult, fallbackWeights map[string]float64, cfg *config.Config) score.CategoryResult {
	var weighted, weightSum float64
	var issues []score.Issue

	for _, id := range sortedCriterionIDs(criteria) {
		cr := criteria[id]
		w := cfg.CriterionWeight(id, fallbackWeights[id])
		weighted += cr.Score * w
		weightSum += w
		issues = append(issues, cr.Issues...)
	}

	res := score.CategoryResult{
		ID:       key,
		Name:     score.CategoryNames[key],
		Weight:   score.CategoryWeights[key],
		Criteria: criteria,
		Issues:   issues,
	}
	if weightSum > 0 {
		res.Score = score.Float(score.Round1(weighted / weightSum))
	}
	score.SortIssues(res.Issues)
	return res
}

// FallbackWeights exposes the built-in criterion weights for one
// rule-scored category so the engine can recompute a category score
// after merging in cross-cutting criteria.
func FallbackWeights(categoryKey string) map[string]float64 {
	switch categoryKey {
	case score.CategoryContentStructure:
		return structureFallbackWeights
	case score.CategoryTerminology:
		return terminologyFallbackWeights
	case score.CategoryTextOverVisuals:
		return visualsFallbackWeights
	default:
		return nil
	}
}

func sortedCriterionIDs(criteria map[string]score.CriterionResult) []string {
	ids := make([]string, 0, len(criteria))
	for id := range criteria {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func excerpt(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
