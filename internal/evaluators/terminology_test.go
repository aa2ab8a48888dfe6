package evaluators

import (
	"strings"
	"testing"

	"github.com/docscore/docscore/internal/config"
	"github.com/docscore/docscore/internal/content"
	"github.com/docscore/docscore/internal/metrics"
	"github.com/docscore/docscore/internal/score"
)

func TestScoreConfusablePairs_DeactivateDisable(t *testing.T) {
	text := strings.ToLower(
		"Deactivate the account first. If you deactivate it again, nothing happens. " +
			"You can also deactivate from the admin page. To disable the integration, " +
			"disable it under settings.")

	res := scoreConfusablePairs(text)

	if res.Score != 8 {
		t.Errorf("Score = %v, want 8 (one flagged pair)", res.Score)
	}
	if len(res.Issues) != 1 {
		t.Fatalf("issues = %d, want 1", len(res.Issues))
	}
	msg := res.Issues[0].Message
	if !strings.Contains(msg, `"deactivate" (3x)`) || !strings.Contains(msg, `"disable" (2x)`) {
		t.Errorf("issue should reference both terms with counts, got %q", msg)
	}
}

func TestScoreConfusablePairs_FloorAtZero(t *testing.T) {
	// All five pairs present: 10 - 2*5 clamps at 0.
	text := "deactivate disable uninstall remove archive delete update upgrade sign out log off"
	res := scoreConfusablePairs(text)
	if res.Score != 0 {
		t.Errorf("Score = %v, want 0 floor", res.Score)
	}
}

func TestScoreConfusablePairs_SingleTermOK(t *testing.T) {
	res := scoreConfusablePairs("disable the feature, then disable the other one")
	if res.Score != 10 {
		t.Errorf("Score = %v, want 10 when only one side of a pair appears", res.Score)
	}
	if len(res.Issues) != 0 {
		t.Errorf("issues = %d, want 0", len(res.Issues))
	}
}

func TestScoreTermConsistency_MixedVariants(t *testing.T) {
	// "delete" dominant, "remove" used more than twice as a minority.
	text := "delete the file. delete the folder. delete the project. " +
		"remove the user. remove the token. remove the key."

	res := scoreTermConsistency(text)

	if res.Score >= 10 {
		t.Errorf("Score = %v, want below 10 for mixed delete/remove usage", res.Score)
	}
	found := false
	for _, issue := range res.Issues {
		if strings.Contains(issue.Message, "Mixed terminology") {
			found = true
			if !strings.Contains(issue.Fix, `"delete"`) && !strings.Contains(issue.Fix, `"remove"`) {
				t.Errorf("fix should suggest the dominant variant, got %q", issue.Fix)
			}
		}
	}
	if !found {
		t.Errorf("expected a mixed-terminology issue, got %+v", res.Issues)
	}
}

func TestScoreTermConsistency_ConsistentUsage(t *testing.T) {
	text := "delete the file. delete the folder. click the button. click save."
	res := scoreTermConsistency(text)
	if res.Score != 10 {
		t.Errorf("Score = %v, want 10 when each group uses one variant", res.Score)
	}
}

func TestScoreTermConsistency_EmptyText(t *testing.T) {
	res := scoreTermConsistency("")
	if res.Score != 10 {
		t.Errorf("Score = %v, want neutral 10 for empty text", res.Score)
	}
}

func TestCountOccurrences_WordBoundaries(t *testing.T) {
	tests := []struct {
		text string
		term string
		want int
	}{
		{"remove removed remover remove", "remove", 2},
		{"log in to continue, then log in again", "log in", 2},
		{"the appendix", "app", 0},
	}
	for _, tt := range tests {
		if got := countOccurrences(tt.text, tt.term); got != tt.want {
			t.Errorf("countOccurrences(%q, %q) = %d, want %d", tt.text, tt.term, got, tt.want)
		}
	}
}

func TestPluralOnly(t *testing.T) {
	if !pluralOnly(map[string]bool{"token": true, "tokens": true}) {
		t.Error("token/tokens should be plural-only variation")
	}
	if pluralOnly(map[string]bool{"configure": true, "configuring": true}) {
		t.Error("configure/configuring is not plural-only variation")
	}
}

func TestTerminologyEvaluator_NonEnglishNeutral(t *testing.T) {
	cfg := config.Default()
	c := &content.NormalizedContent{
		Meta: content.Meta{URL: "https://docs.example.com/de", Language: "de"},
		Text: content.Text{FullText: "löschen entfernen löschen entfernen", WordCount: 4},
	}
	m := metrics.Compute(c)

	e := &TerminologyEvaluator{}
	res := e.Evaluate(m, c, cfg)

	if res.Score == nil || *res.Score != 10 {
		t.Errorf("Score = %v, want neutral 10 for non-English content", res.Score)
	}
	if len(res.Issues) != 0 {
		t.Errorf("issues = %d, want 0", len(res.Issues))
	}
}

func TestTerminologyEvaluator_WeightedCategoryScore(t *testing.T) {
	cfg := config.Default()
	c := &content.NormalizedContent{
		Meta: content.Meta{URL: "https://docs.example.com/p", Language: "en"},
		Text: content.Text{
			FullText:  "deactivate the account. disable the feature. deactivate it again. disable it too.",
			WordCount: 12,
		},
	}
	m := metrics.Compute(c)

	e := &TerminologyEvaluator{}
	res := e.Evaluate(m, c, cfg)

	if res.ID != score.CategoryTerminology {
		t.Errorf("ID = %q, want %q", res.ID, score.CategoryTerminology)
	}
	// TC-01 is 10 (no synonym-group mixing), AV-02 is 8 (one pair):
	// 0.6*10 + 0.4*8 = 9.2.
	if res.Score == nil || *res.Score != 9.2 {
		t.Errorf("Score = %v, want 9.2", res.Score)
	}
}
