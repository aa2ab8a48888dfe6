// Package engine implements the aggregation scorer: it fans out the
// rule evaluators, runs the semantic evaluator (or its estimator
// fallback), merges category results under the fixed weight table, and
// assembles the final report. Only input validation can fail a run;
// every other failure degrades into report-embedded warnings.
package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docscore/docscore/internal/cache"
	"github.com/docscore/docscore/internal/config"
	"github.com/docscore/docscore/internal/content"
	"github.com/docscore/docscore/internal/evaluators"
	"github.com/docscore/docscore/internal/metrics"
	"github.com/docscore/docscore/internal/score"
	"github.com/docscore/docscore/internal/semantic"
)

// ProgressEvent reports pipeline progress for UI consumption. Advisory
// only; correctness never depends on it.
type ProgressEvent struct {
	Step    string
	Message string
	Percent int
}

// Options configures an Engine.
type Options struct {
	// Config is the immutable snapshot for this engine. Hot reload is
	// achieved by constructing a new engine with a new snapshot.
	Config *config.Config

	// Semantic overrides evaluator selection; when nil, the engine
	// picks RemoteEvaluator if an API key is configured and the
	// estimator otherwise.
	Semantic semantic.Evaluator

	// Cache memoizes semantic results and whole reports. Optional.
	Cache *cache.Cache

	// Progress receives lifecycle events. Optional.
	Progress func(ProgressEvent)
}

// Engine scores one page per Score call. Safe for sequential reuse.
type Engine struct {
	cfg       *config.Config
	rules     []evaluators.Evaluator
	sem       semantic.Evaluator
	estimator semantic.Evaluator
	remote    bool
	cache     *cache.Cache
	progress  func(ProgressEvent)
}

// New builds an engine, selecting the semantic strategy once: the
// remote evaluator when a credential is present, the heuristic
// estimator otherwise.
func New(opts Options) *Engine {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	e := &Engine{
		cfg:       cfg,
		rules:     evaluators.All(),
		estimator: semantic.NewHeuristicEstimator(),
		cache:     opts.Cache,
		progress:  opts.Progress,
	}

	switch {
	case opts.Semantic != nil:
		e.sem = opts.Semantic
		e.remote = true
	default:
		if remote := semantic.NewRemoteEvaluator(cfg.Semantic); remote != nil {
			e.sem = remote
			e.remote = true
		} else {
			e.sem = e.estimator
		}
	}
	return e
}

func (e *Engine) emit(step, message string, percent int) {
	if e.progress != nil {
		e.progress(ProgressEvent{Step: step, Message: message, Percent: percent})
	}
}

func (e *Engine) mode() string {
	if e.remote {
		return "full"
	}
	return "estimated"
}

// Score runs the full pipeline over one snapshot and returns the
// report. The only error path is input validation.
func (e *Engine) Score(ctx context.Context, c *content.NormalizedContent) (*score.ScoreReport, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	e.emit("init", "Starting analysis", 0)
	contentHash := c.Hash()

	if e.cache != nil {
		if cached := e.cache.GetReport(contentHash, e.mode()); cached != nil {
			e.emit("done", "Reusing cached report", 100)
			return cached, nil
		}
	}

	e.emit("metrics", "Computing content metrics", 10)
	m := metrics.Compute(c)

	e.emit("rules", "Running rule evaluators", 25)
	categories := e.runRules(m, c)

	e.emit("semantic", "Running semantic analysis", 55)
	semResult, claudeErr := e.runSemantic(ctx, c, contentHash)
	e.mergeSemantic(categories, semResult)

	e.emit("rollup", "Rolling up sections", 70)
	e.sectionRollup(categories, c)

	e.emit("composite", "Computing composite score", 80)
	composite := e.composite(categories)

	e.emit("issues", "Collecting issues", 90)
	allIssues := collectIssues(categories)
	top := allIssues
	if len(top) > 5 {
		top = top[:5]
	}

	report := &score.ScoreReport{
		Meta: score.Meta{
			URL:         c.Meta.URL,
			Title:       c.Meta.Title,
			RunID:       uuid.NewString(),
			ScoredAt:    time.Now().UTC(),
			WordCount:   c.Text.WordCount,
			ContentHash: contentHash,
			Language:    c.Meta.Language,
			ClaudeError: claudeErr,
		},
		Categories:     categories,
		CompositeScore: composite,
		Status:         score.StatusFor(composite),
		AllIssues:      allIssues,
		TopIssues:      top,
	}
	report.Summary = buildSummary(report)

	if e.cache != nil {
		e.cache.SetReport(contentHash, e.mode(), report)
	}
	e.emit("done", "Analysis complete", 100)
	return report, nil
}

// runRules executes the rule evaluators concurrently. They are pure
// and independent; merging is by category key, so completion order
// cannot affect the result.
func (e *Engine) runRules(m *metrics.Metrics, c *content.NormalizedContent) map[string]score.CategoryResult {
	results := make(map[string]score.CategoryResult, len(e.rules)+3)

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, ev := range e.rules {
		wg.Add(1)
		go func(ev evaluators.Evaluator) {
			defer wg.Done()
			res := ev.Evaluate(m, c, e.cfg)
			mu.Lock()
			results[ev.Category()] = res
			mu.Unlock()
		}(ev)
	}
	wg.Wait()
	return results
}

// runSemantic resolves the semantic result: cache, then remote, then
// estimator fallback. The returned string is the recorded capability
// error, empty on success or pure-estimator runs.
func (e *Engine) runSemantic(ctx context.Context, c *content.NormalizedContent, contentHash string) (*semantic.Result, string) {
	if e.remote && e.cache != nil {
		if cached := e.cache.GetSemantic(contentHash); cached != nil {
			return cached, ""
		}
	}

	result, err := e.sem.Evaluate(ctx, c)
	if err == nil && result != nil {
		if e.remote && !result.Estimated && e.cache != nil {
			e.cache.SetSemantic(contentHash, result)
		}
		return result, ""
	}

	claudeErr := ""
	if err != nil {
		claudeErr = err.Error()
	}
	fallback, _ := e.estimator.Evaluate(ctx, c)
	return fallback, claudeErr
}

// semanticCategoryCriteria maps each semantic-only category to its
// criterion IDs; their category score is the unweighted mean.
var semanticCategoryCriteria = map[string][]string{
	score.CategoryOutcomes: {
		semantic.CritOutcomeClarity,
		semantic.CritReversibility,
		semantic.CritDestructiveWarning,
		semantic.CritErrorRecovery,
	},
	score.CategoryPermissions: {
		semantic.CritPermissionClarity,
		semantic.CritPlanClarity,
		semantic.CritRoleClarity,
	},
	score.CategorySelfContainedContext: {
		semantic.CritDanglingReferences,
		semantic.CritSelfContained,
		semantic.CritPrerequisites,
	},
}

// mergeSemantic folds the semantic result into the category map: three
// semantic-only categories, two cross-cutting criteria into content
// structure, and the term-conflation average into terminology.
// Estimated results populate their categories with a nil score and the
// estimated marker; estimated cross-cutting criteria are not merged
// into rule-scored categories.
func (e *Engine) mergeSemantic(categories map[string]score.CategoryResult, result *semantic.Result) {
	for key, ids := range semanticCategoryCriteria {
		cat := score.CategoryResult{
			ID:       key,
			Name:     score.CategoryNames[key],
			Weight:   score.CategoryWeights[key],
			Criteria: make(map[string]score.CriterionResult),
		}

		var sum float64
		var n int
		for _, id := range ids {
			cr, ok := result.Criteria[id]
			if !ok {
				continue
			}
			cat.Criteria[id] = cr
			cat.Issues = append(cat.Issues, cr.Issues...)
			sum += cr.Score
			n++
		}
		score.SortIssues(cat.Issues)

		switch {
		case result.Estimated:
			cat.Estimated = true
			cat.Message = "Estimated from heuristics; excluded from the composite score."
		case n > 0:
			cat.Score = score.Float(score.Round1(sum / float64(n)))
		}
		categories[key] = cat
	}

	if result.Estimated {
		return
	}

	// Cross-cut: step atomicity and workflow separation join content
	// structure; its score becomes the plain mean of all criteria.
	if cs, ok := categories[score.CategoryContentStructure]; ok {
		merged := false
		for _, id := range []string{semantic.CritStepAtomicity, semantic.CritWorkflowSeparation} {
			if cr, found := result.Criteria[id]; found {
				cs.Criteria[id] = cr
				cs.Issues = append(cs.Issues, cr.Issues...)
				merged = true
			}
		}
		if merged {
			var sum float64
			for _, id := range sortedCriterionIDs(cs.Criteria) {
				sum += cs.Criteria[id].Score
			}
			cs.Score = score.Float(score.Round1(sum / float64(len(cs.Criteria))))
			score.SortIssues(cs.Issues)
			categories[score.CategoryContentStructure] = cs
		}
	}

	// Cross-cut: term conflation averages with the rule-based result
	// under the same criterion ID.
	if term, ok := categories[score.CategoryTerminology]; ok {
		if semCR, found := result.Criteria[semantic.CritTermConflation]; found {
			if ruleCR, exists := term.Criteria[semCR.CriterionID]; exists {
				ruleCR.Score = score.Round1((ruleCR.Score + semCR.Score) / 2)
				ruleCR.Issues = append(ruleCR.Issues, semCR.Issues...)
				if semCR.Details != "" {
					ruleCR.Details = ruleCR.Details + "; semantic: " + semCR.Details
				}
				term.Criteria[semCR.CriterionID] = ruleCR
			} else {
				term.Criteria[semCR.CriterionID] = semCR
			}
			term.Issues = append(term.Issues, semCR.Issues...)
			score.SortIssues(term.Issues)
			term.Score = recomputeWeighted(term, e.cfg)
			categories[score.CategoryTerminology] = term
		}
	}
}

// recomputeWeighted recalculates a rule-scored category after a merge,
// using the same configured-weight scheme the evaluator applied.
// Criteria are visited in ID order so the float sum is reproducible.
func recomputeWeighted(cat score.CategoryResult, cfg *config.Config) *float64 {
	fallbacks := evaluators.FallbackWeights(cat.ID)
	var weighted, weightSum float64
	for _, id := range sortedCriterionIDs(cat.Criteria) {
		w := cfg.CriterionWeight(id, fallbacks[id])
		if w == 0 {
			w = 1
		}
		weighted += cat.Criteria[id].Score * w
		weightSum += w
	}
	if weightSum == 0 {
		return nil
	}
	return score.Float(score.Round1(weighted / weightSum))
}

func sortedCriterionIDs(criteria map[string]score.CriterionResult) []string {
	ids := make([]string, 0, len(criteria))
	for id := range criteria {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// sectionRollup blends per-section brevity and list-usage scores into
// the content-structure category when the input exposes sections.
func (e *Engine) sectionRollup(categories map[string]score.CategoryResult, c *content.NormalizedContent) {
	secs := c.Structure.Sections
	if len(secs) == 0 {
		return
	}
	cs, ok := categories[score.CategoryContentStructure]
	if !ok || cs.Score == nil {
		return
	}

	var sum float64
	var n int
	for _, sec := range secs {
		if len(sec.Paragraphs) == 0 && len(sec.Lists) == 0 {
			continue
		}
		sum += evaluators.SectionScore(sec, e.cfg)
		n++
	}
	if n == 0 {
		return
	}

	rollup := sum / float64(n)
	cs.Score = score.Float(score.Round1((*cs.Score + rollup) / 2))
	categories[score.CategoryContentStructure] = cs
}

// composite computes the weighted mean over categories with a non-nil,
// non-estimated score, renormalizing by the weights actually included.
func (e *Engine) composite(categories map[string]score.CategoryResult) float64 {
	var weighted, weightSum float64
	for _, cat := range categories {
		if cat.Score == nil || cat.Estimated {
			continue
		}
		weighted += *cat.Score * cat.Weight
		weightSum += cat.Weight
	}
	if weightSum == 0 {
		return 0
	}
	return score.Round1(weighted / weightSum)
}

// collectIssues flattens category issues, attaches category identity,
// and stable-sorts by severity.
func collectIssues(categories map[string]score.CategoryResult) []score.Issue {
	// Deterministic category order before the stable severity sort.
	var all []score.Issue
	for _, key := range score.CategoryOrder {
		cat, ok := categories[key]
		if !ok {
			continue
		}
		for _, issue := range cat.Issues {
			issue.Category = cat.Name
			issue.CategoryKey = cat.ID
			all = append(all, issue)
		}
	}
	score.SortIssues(all)
	if all == nil {
		all = []score.Issue{}
	}
	return all
}

// buildSummary renders the templated one-paragraph summary, naming the
// weakest category when it scores below 6 and the strongest at 7+.
func buildSummary(r *score.ScoreReport) string {
	s := fmt.Sprintf("This page scores %.1f/10 for AI-friendliness (%s).", r.CompositeScore, r.Status)

	type scored struct {
		name  string
		value float64
	}
	var ranked []scored
	for _, key := range score.CategoryOrder {
		cat, ok := r.Categories[key]
		if !ok || cat.Score == nil {
			continue
		}
		ranked = append(ranked, scored{cat.Name, *cat.Score})
	}
	if len(ranked) == 0 {
		return s
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].value < ranked[j].value })

	if lowest := ranked[0]; lowest.value < 6 {
		s += fmt.Sprintf(" The weakest area is %s (%.1f/10).", lowest.name, lowest.value)
	}
	if highest := ranked[len(ranked)-1]; highest.value >= 7 {
		s += fmt.Sprintf(" The strongest area is %s (%.1f/10).", highest.name, highest.value)
	}
	if len(r.AllIssues) > 0 {
		s += fmt.Sprintf(" %d issues found.", len(r.AllIssues))
	}
	return s
}
