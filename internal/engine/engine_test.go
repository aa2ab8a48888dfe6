package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/docscore/docscore/internal/cache"
	"github.com/docscore/docscore/internal/config"
	"github.com/docscore/docscore/internal/content"
	"github.com/docscore/docscore/internal/score"
	"github.com/docscore/docscore/internal/semantic"
)

func testPage(url string) *content.NormalizedContent {
	text := "Click Settings to open the admin panel. You should see the members list. " +
		"Delete a member to revoke their access. This cannot be undone. " +
		strings.TrimSpace(strings.Repeat("More context about the workspace. ", 40))
	return &content.NormalizedContent{
		Meta: content.Meta{URL: url, Title: "Managing members", Language: "en"},
		Structure: content.Structure{
			Headings: []content.Heading{
				{Tag: "h1", Text: "Managing members"},
				{Tag: "h2", Text: "Removing a member"},
			},
			Paragraphs: []string{
				"Click Settings to open the admin panel.",
				"Delete a member to revoke their access. This cannot be undone.",
			},
			Lists: []content.List{{Ordered: true, Items: []string{"Open settings", "Select the member"}}},
		},
		Text: content.Text{FullText: text, WordCount: len(strings.Fields(text))},
	}
}

// stubSemantic returns a fixed full result.
type stubSemantic struct {
	result *semantic.Result
	err    error
	calls  int
}

func (s *stubSemantic) Evaluate(_ context.Context, _ *content.NormalizedContent) (*semantic.Result, error) {
	s.calls++
	return s.result, s.err
}

func fullSemanticResult() *semantic.Result {
	r := &semantic.Result{Criteria: make(map[string]score.CriterionResult)}
	for _, c := range semantic.Criteria {
		r.Criteria[c.ID] = score.CriterionResult{CriterionID: c.ID, Score: 8, Details: "stubbed"}
	}
	return r
}

func TestComposite_RenormalizesOverContributingCategories(t *testing.T) {
	e := New(Options{Config: config.Default()})
	categories := map[string]score.CategoryResult{
		"a": {ID: "a", Score: score.Float(8), Weight: 0.5},
		"b": {ID: "b", Score: score.Float(6), Weight: 0.5},
		"c": {ID: "c", Weight: 0.3, Estimated: true},
	}
	if got := e.composite(categories); got != 7.0 {
		t.Errorf("composite = %v, want 7.0 over the two scored categories", got)
	}
}

func TestComposite_AllEstimatedIsZero(t *testing.T) {
	e := New(Options{Config: config.Default()})
	categories := map[string]score.CategoryResult{
		"a": {ID: "a", Weight: 0.5, Estimated: true},
		"b": {ID: "b", Weight: 0.5},
	}
	if got := e.composite(categories); got != 0 {
		t.Errorf("composite = %v, want 0 when nothing qualifies", got)
	}
}

func TestScore_Determinism(t *testing.T) {
	stub := &stubSemantic{result: fullSemanticResult()}
	e := New(Options{Config: config.Default(), Semantic: stub})

	r1, err := e.Score(context.Background(), testPage("https://docs.example.com/members"))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	r2, err := e.Score(context.Background(), testPage("https://docs.example.com/members"))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	if r1.CompositeScore != r2.CompositeScore {
		t.Errorf("composite differs across runs: %v vs %v", r1.CompositeScore, r2.CompositeScore)
	}
	for key, c1 := range r1.Categories {
		c2, ok := r2.Categories[key]
		if !ok {
			t.Errorf("category %s missing in second run", key)
			continue
		}
		switch {
		case c1.Score == nil && c2.Score == nil:
		case c1.Score == nil || c2.Score == nil || *c1.Score != *c2.Score:
			t.Errorf("category %s score differs: %v vs %v", key, c1.Score, c2.Score)
		}
	}
	if len(r1.AllIssues) != len(r2.AllIssues) {
		t.Errorf("issue counts differ: %d vs %d", len(r1.AllIssues), len(r2.AllIssues))
	}
}

func TestScore_AllSixCategoriesPresent(t *testing.T) {
	stub := &stubSemantic{result: fullSemanticResult()}
	e := New(Options{Config: config.Default(), Semantic: stub})

	r, err := e.Score(context.Background(), testPage("https://docs.example.com/members"))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	for _, key := range score.CategoryOrder {
		if _, ok := r.Categories[key]; !ok {
			t.Errorf("category %s missing from report", key)
		}
	}
	if r.Status != score.StatusFor(r.CompositeScore) {
		t.Errorf("Status = %v, inconsistent with composite %v", r.Status, r.CompositeScore)
	}
}

func TestScore_EstimatorFallbackOnRemoteFailure(t *testing.T) {
	stub := &stubSemantic{err: errors.New("api: overloaded")}
	e := New(Options{Config: config.Default(), Semantic: stub})

	r, err := e.Score(context.Background(), testPage("https://docs.example.com/members"))
	if err != nil {
		t.Fatalf("Score should not fail when the semantic pass fails: %v", err)
	}

	if r.Meta.ClaudeError == "" {
		t.Error("Meta.ClaudeError should record the semantic failure")
	}
	if !strings.Contains(r.Meta.ClaudeError, "overloaded") {
		t.Errorf("ClaudeError = %q, want the underlying message", r.Meta.ClaudeError)
	}

	for _, key := range []string{score.CategoryOutcomes, score.CategoryPermissions, score.CategorySelfContainedContext} {
		cat := r.Categories[key]
		if !cat.Estimated {
			t.Errorf("category %s should be estimated after fallback", key)
		}
		if cat.Score != nil {
			t.Errorf("category %s score = %v, want nil when estimated", key, *cat.Score)
		}
	}

	// Rule categories keep real scores and carry the composite alone.
	cs := r.Categories[score.CategoryContentStructure]
	if cs.Score == nil {
		t.Fatal("content-structure should keep its rule-based score")
	}
	if r.CompositeScore == 0 {
		t.Error("composite should renormalize over rule categories, not drop to 0")
	}
}

func TestScore_EstimatedCriteriaNotMergedIntoRuleCategories(t *testing.T) {
	stub := &stubSemantic{err: errors.New("down")}
	e := New(Options{Config: config.Default(), Semantic: stub})

	r, err := e.Score(context.Background(), testPage("https://docs.example.com/members"))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	cs := r.Categories[score.CategoryContentStructure]
	for _, id := range []string{semantic.CritStepAtomicity, semantic.CritWorkflowSeparation} {
		if _, ok := cs.Criteria[id]; ok {
			t.Errorf("estimated criterion %s must not merge into content structure", id)
		}
	}
}

func TestScore_SemanticMergeIntoContentStructure(t *testing.T) {
	stub := &stubSemantic{result: fullSemanticResult()}
	e := New(Options{Config: config.Default(), Semantic: stub})

	r, err := e.Score(context.Background(), testPage("https://docs.example.com/members"))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	cs := r.Categories[score.CategoryContentStructure]
	for _, id := range []string{semantic.CritStepAtomicity, semantic.CritWorkflowSeparation} {
		if _, ok := cs.Criteria[id]; !ok {
			t.Errorf("criterion %s should merge into content structure", id)
		}
	}
}

func TestScore_TermConflationAveragedIntoTerminology(t *testing.T) {
	sem := fullSemanticResult()
	sem.Criteria[semantic.CritTermConflation] = score.CriterionResult{
		CriterionID: semantic.CritTermConflation, Score: 4, Details: "conflated",
	}
	stub := &stubSemantic{result: sem}
	e := New(Options{Config: config.Default(), Semantic: stub})

	r, err := e.Score(context.Background(), testPage("https://docs.example.com/members"))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	term := r.Categories[score.CategoryTerminology]
	cr, ok := term.Criteria[semantic.CritTermConflation]
	if !ok {
		t.Fatal("terminology should keep the AV-02 criterion")
	}
	// Rule-based AV-02 on the test page is 10 (no confusable pairs);
	// averaged with the semantic 4 gives 7.
	if cr.Score != 7 {
		t.Errorf("merged AV-02 score = %v, want 7 (mean of 10 and 4)", cr.Score)
	}
}

func TestScore_IssuesSortedBySeverity(t *testing.T) {
	stub := &stubSemantic{err: errors.New("down")}
	e := New(Options{Config: config.Default(), Semantic: stub})

	page := testPage("https://docs.example.com/members")
	// Force a critical issue with a giant paragraph.
	page.Structure.Paragraphs = append(page.Structure.Paragraphs,
		strings.TrimSpace(strings.Repeat("verylong ", 250)))

	r, err := e.Score(context.Background(), page)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	for i := 1; i < len(r.AllIssues); i++ {
		if r.AllIssues[i].Severity < r.AllIssues[i-1].Severity {
			t.Fatalf("AllIssues not sorted by severity at %d: %v before %v",
				i, r.AllIssues[i-1].Severity, r.AllIssues[i].Severity)
		}
	}
	if len(r.TopIssues) > 5 {
		t.Errorf("TopIssues = %d, want at most 5", len(r.TopIssues))
	}
	for _, issue := range r.AllIssues {
		if issue.Category == "" || issue.CategoryKey == "" {
			t.Errorf("flattened issue missing category attribution: %+v", issue)
		}
	}
}

func TestScore_InvalidInput(t *testing.T) {
	e := New(Options{Config: config.Default(), Semantic: &stubSemantic{result: fullSemanticResult()}})

	_, err := e.Score(context.Background(), &content.NormalizedContent{})
	if !errors.Is(err, content.ErrInvalidContent) {
		t.Errorf("err = %v, want ErrInvalidContent for a missing URL", err)
	}
}

func TestScore_ReportCacheReuse(t *testing.T) {
	stub := &stubSemantic{result: fullSemanticResult()}
	c := cache.New(cache.NewMemoryStore(), 0, 100)
	e := New(Options{Config: config.Default(), Semantic: stub, Cache: c})

	r1, err := e.Score(context.Background(), testPage("https://docs.example.com/members"))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	r2, err := e.Score(context.Background(), testPage("https://docs.example.com/members"))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	if stub.calls != 1 {
		t.Errorf("semantic evaluator called %d times, want 1 (report cached)", stub.calls)
	}
	if r1.Meta.RunID != r2.Meta.RunID {
		t.Error("cached report should be returned verbatim, including run id")
	}
}

func TestBuildSummary_NamesWeakAndStrongAreas(t *testing.T) {
	r := &score.ScoreReport{
		CompositeScore: 6.4,
		Status:         score.StatusYellow,
		Categories: map[string]score.CategoryResult{
			score.CategoryContentStructure: {ID: score.CategoryContentStructure, Name: "Content Structure", Score: score.Float(3.5)},
			score.CategoryTerminology:      {ID: score.CategoryTerminology, Name: "Terminology", Score: score.Float(9.0)},
		},
	}
	s := buildSummary(r)

	if !strings.Contains(s, "6.4/10") {
		t.Errorf("summary should include the composite, got %q", s)
	}
	if !strings.Contains(s, "Content Structure (3.5/10)") {
		t.Errorf("summary should name the weakest area, got %q", s)
	}
	if !strings.Contains(s, "Terminology (9.0/10)") {
		t.Errorf("summary should name the strongest area, got %q", s)
	}
}
