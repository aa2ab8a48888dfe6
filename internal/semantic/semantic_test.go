package semantic

import (
	"context"
	"strings"
	"testing"

	"github.com/docscore/docscore/internal/content"
	"github.com/docscore/docscore/internal/score"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bare json",
			input: `{"scores": {}}`,
			want:  `{"scores": {}}`,
		},
		{
			name:  "json fence",
			input: "Here you go:\n```json\n{\"a\": 1}\n```\nDone.",
			want:  `{"a": 1}`,
		},
		{
			name:  "plain fence",
			input: "```\n{\"a\": 1}\n```",
			want:  `{"a": 1}`,
		},
		{
			name:  "embedded object",
			input: `The result is {"a": 1} as requested.`,
			want:  `{"a": 1}`,
		},
		{
			name:  "leading whitespace",
			input: "   \n{\"a\": 1}",
			want:  `{"a": 1}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.input); got != tt.want {
				t.Errorf("ExtractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTransform(t *testing.T) {
	raw := []byte(`{
		"scores": {
			"OR-01": {"score": 3.25, "explanation": "outcomes unstated", "issues": ["no outcome for delete"], "fixes": ["state what deletion removes"]},
			"PP-01": {"score": 9, "explanation": "roles are explicit"}
		},
		"summary": "Mixed quality.",
		"topIssues": ["no outcome for delete"]
	}`)

	result, err := Transform(raw)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	or, ok := result.Criteria[CritOutcomeClarity]
	if !ok {
		t.Fatal("OR-01 missing from transformed result")
	}
	if or.Score != 3.3 {
		t.Errorf("OR-01 score = %v, want 3.3 (rounded)", or.Score)
	}
	if len(or.Issues) != 1 {
		t.Fatalf("OR-01 issues = %d, want 1", len(or.Issues))
	}
	if or.Issues[0].Severity != score.Critical {
		t.Errorf("severity = %v, want critical for score below 4", or.Issues[0].Severity)
	}
	if or.Issues[0].Fix != "state what deletion removes" {
		t.Errorf("fix = %q, want the paired fix", or.Issues[0].Fix)
	}

	if result.Summary != "Mixed quality." {
		t.Errorf("Summary = %q", result.Summary)
	}
	if result.Estimated {
		t.Error("remote result must not be marked estimated")
	}
	if len(result.Raw) == 0 {
		t.Error("Raw payload should be preserved for caching")
	}
}

func TestTransform_MalformedJSON(t *testing.T) {
	if _, err := Transform([]byte("not json")); err == nil {
		t.Error("Transform should fail on malformed JSON")
	}
	if _, err := Transform([]byte(`{"summary": "x"}`)); err == nil {
		t.Error("Transform should fail when no scores are present")
	}
}

func TestTransform_ClampsScores(t *testing.T) {
	raw := []byte(`{"scores": {"OR-01": {"score": 15}, "OR-02": {"score": -3}}}`)
	result, err := Transform(raw)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if result.Criteria[CritOutcomeClarity].Score != 10 {
		t.Errorf("score = %v, want clamped to 10", result.Criteria[CritOutcomeClarity].Score)
	}
	if result.Criteria[CritReversibility].Score != 0 {
		t.Errorf("score = %v, want clamped to 0", result.Criteria[CritReversibility].Score)
	}
}

func estimatorPage(text string, s content.Structure) *content.NormalizedContent {
	return &content.NormalizedContent{
		Meta:      content.Meta{URL: "https://docs.example.com/p"},
		Structure: s,
		Text:      content.Text{FullText: text, WordCount: len(strings.Fields(text))},
	}
}

func TestHeuristicEstimator_AllCriteriaEstimated(t *testing.T) {
	e := NewHeuristicEstimator()
	result, err := e.Evaluate(context.Background(), estimatorPage("Some ordinary text about settings.", content.Structure{}))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if !result.Estimated {
		t.Error("estimator result must be marked estimated")
	}
	for _, crit := range Criteria {
		cr, ok := result.Criteria[crit.ID]
		if !ok {
			t.Errorf("criterion %s missing from estimate", crit.ID)
			continue
		}
		if !cr.Estimated {
			t.Errorf("criterion %s not marked estimated", crit.ID)
		}
		if !strings.Contains(cr.Details, "(estimated)") {
			t.Errorf("criterion %s details = %q, want estimated marker", crit.ID, cr.Details)
		}
		if cr.Score < 0 || cr.Score > 10 {
			t.Errorf("criterion %s score = %v, out of range", crit.ID, cr.Score)
		}
	}
}

func TestHeuristicEstimator_DestructiveWithoutUndo(t *testing.T) {
	e := NewHeuristicEstimator()
	result, err := e.Evaluate(context.Background(),
		estimatorPage("Delete the workspace to free up the name.", content.Structure{}))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if got := result.Criteria[CritReversibility].Score; got != 4 {
		t.Errorf("reversibility = %v, want 4 for destructive text without undo guidance", got)
	}
	if got := result.Criteria[CritDestructiveWarning].Score; got != 4 {
		t.Errorf("destructive warning = %v, want 4 without warnings", got)
	}
}

func TestHeuristicEstimator_DestructiveWithUndoAndWarning(t *testing.T) {
	e := NewHeuristicEstimator()
	text := "Warning: delete the workspace only if you are sure. This cannot be undone " +
		"unless you restore from a backup."
	result, err := e.Evaluate(context.Background(), estimatorPage(text, content.Structure{}))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if got := result.Criteria[CritReversibility].Score; got != 8 {
		t.Errorf("reversibility = %v, want 8 when undo guidance is present", got)
	}
	if got := result.Criteria[CritDestructiveWarning].Score; got != 9 {
		t.Errorf("destructive warning = %v, want 9 when warnings are present", got)
	}
}

func TestCategoryOf(t *testing.T) {
	if got := CategoryOf(CritStepAtomicity); got != score.CategoryContentStructure {
		t.Errorf("CategoryOf(CS-05) = %q, want content-structure", got)
	}
	if got := CategoryOf("nope"); got != "" {
		t.Errorf("CategoryOf(unknown) = %q, want empty", got)
	}
}
