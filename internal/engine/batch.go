package engine

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/docscore/docscore/internal/content"
	"github.com/docscore/docscore/internal/score"
)

// DuplicatePair flags two pages whose token sets overlap enough to
// suggest duplicated content.
type DuplicatePair struct {
	URLA       string  `json:"urlA"`
	URLB       string  `json:"urlB"`
	Similarity float64 `json:"similarity"`
}

// BatchResult holds the per-page reports plus cross-page findings.
// Pages that fail validation are recorded in Errors and skipped; one
// bad page never aborts the batch.
type BatchResult struct {
	Reports    []*score.ScoreReport `json:"reports"`
	Duplicates []DuplicatePair      `json:"duplicates,omitempty"`
	Errors     map[string]string    `json:"errors,omitempty"`
}

// duplicateThreshold is the Jaccard similarity above which two pages
// are flagged as near-duplicates.
const duplicateThreshold = 0.8

// ScoreBatch scores pages sequentially and runs pairwise duplicate
// detection over the full set.
func (e *Engine) ScoreBatch(ctx context.Context, pages []*content.NormalizedContent) (*BatchResult, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("batch: no pages to score")
	}

	result := &BatchResult{}
	tokens := make(map[string]map[string]struct{}, len(pages))

	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report, err := e.Score(ctx, page)
		if err != nil {
			url := page.Meta.URL
			if url == "" {
				url = fmt.Sprintf("page %d", i+1)
			}
			if result.Errors == nil {
				result.Errors = make(map[string]string)
			}
			result.Errors[url] = err.Error()
			continue
		}
		result.Reports = append(result.Reports, report)
		tokens[page.Meta.URL] = tokenSet(page.Text.FullText)
	}

	result.Duplicates = findDuplicates(result.Reports, tokens)
	return result, nil
}

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		if len(tok) > 2 {
			set[tok] = struct{}{}
		}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	inter := 0
	for tok := range small {
		if _, ok := large[tok]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// findDuplicates runs the pairwise comparison in report order so the
// output is deterministic for a given input order.
func findDuplicates(reports []*score.ScoreReport, tokens map[string]map[string]struct{}) []DuplicatePair {
	var pairs []DuplicatePair
	for i := 0; i < len(reports); i++ {
		for j := i + 1; j < len(reports); j++ {
			urlA := reports[i].Meta.URL
			urlB := reports[j].Meta.URL
			sim := jaccard(tokens[urlA], tokens[urlB])
			if sim >= duplicateThreshold {
				pairs = append(pairs, DuplicatePair{URLA: urlA, URLB: urlB, Similarity: roundSim(sim)})
			}
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].Similarity > pairs[j].Similarity })
	return pairs
}

func roundSim(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
