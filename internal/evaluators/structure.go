package evaluators

import (
	"fmt"
	"math"
	"strings"

	"github.com/docscore/docscore/internal/config"
	"github.com/docscore/docscore/internal/content"
	"github.com/docscore/docscore/internal/metrics"
	"github.com/docscore/docscore/internal/score"
)

// Criterion IDs owned by the content-structure category. CS-05 and
// CS-06 come from the semantic evaluator and are merged by the engine.
const (
	CritParagraphBrevity = "CS-01"
	CritListUsage        = "CS-02"
	CritHeadingHierarchy = "CS-03"
	CritLinkIntegrity    = "CS-04"
)

var structureFallbackWeights = map[string]float64{
	CritParagraphBrevity: 0.3,
	CritListUsage:        0.2,
	CritHeadingHierarchy: 0.3,
	CritLinkIntegrity:    0.2,
}

// ContentStructureEvaluator scores paragraph brevity, list usage,
// heading hierarchy, and link integrity.
type ContentStructureEvaluator struct{}

func (e *ContentStructureEvaluator) Category() string {
	return score.CategoryContentStructure
}

func (e *ContentStructureEvaluator) Evaluate(m *metrics.Metrics, c *content.NormalizedContent, cfg *config.Config) score.CategoryResult {
	criteria := map[string]score.CriterionResult{
		CritParagraphBrevity: scoreParagraphBrevity(m.ParagraphWordCounts, m.SentenceWordCounts, paragraphExcerpts(c), cfg.Thresholds),
		CritListUsage:        scoreListUsage(m.ParagraphCount, m.ListCount, m.ProceduralCount, m.OrderedListCount, cfg.Thresholds),
		CritHeadingHierarchy: scoreHeadingHierarchy(m, cfg.Thresholds),
		CritLinkIntegrity:    scoreLinkIntegrity(m, c),
	}
	return categoryResult(score.CategoryContentStructure, criteria, structureFallbackWeights, cfg)
}

func paragraphExcerpts(c *content.NormalizedContent) []string {
	if c == nil {
		return nil
	}
	return c.Structure.Paragraphs
}

// scoreParagraphBrevity: 10 x fraction of paragraphs within the word
// threshold, rounded to an integer. Each long paragraph is flagged,
// critical above the critical threshold. A secondary -1 applies when
// too many sentences run long.
func scoreParagraphBrevity(paraWords, sentenceWords []int, paragraphs []string, t config.Thresholds) score.CriterionResult {
	res := score.CriterionResult{CriterionID: CritParagraphBrevity}

	if len(paraWords) == 0 {
		res.Score = 10
		res.Details = "no paragraphs to evaluate"
		return res
	}

	within := 0
	longCount := 0
	for i, wc := range paraWords {
		if wc <= t.ParagraphWords {
			within++
			continue
		}
		longCount++
		sev := score.Warning
		if wc > t.CriticalParagraphWords {
			sev = score.Critical
		}
		issue := score.Issue{
			Severity: sev,
			Message:  fmt.Sprintf("Paragraph %d is %d words long (threshold %d)", i+1, wc, t.ParagraphWords),
			Fix:      "Split the paragraph into shorter ones or convert it to a list",
			Location: fmt.Sprintf("paragraph %d", i+1),
		}
		if i < len(paragraphs) {
			issue.Excerpt = excerpt(paragraphs[i], 120)
		}
		res.Issues = append(res.Issues, issue)
	}

	s := math.Round(10 * float64(within) / float64(len(paraWords)))

	if len(sentenceWords) > 0 {
		longSentences := 0
		for _, wc := range sentenceWords {
			if wc > t.LongSentenceWords {
				longSentences++
			}
		}
		if float64(longSentences)/float64(len(sentenceWords)) > t.LongSentenceRatio {
			s--
			res.Issues = append(res.Issues, score.Issue{
				Severity: score.Info,
				Message:  fmt.Sprintf("%d of %d sentences exceed %d words", longSentences, len(sentenceWords), t.LongSentenceWords),
				Fix:      "Shorten long sentences; aim for one idea per sentence",
			})
		}
	}

	res.Score = score.Clamp(s)
	res.Details = fmt.Sprintf("%d of %d paragraphs within %d words, %d long", within, len(paraWords), t.ParagraphWords, longCount)
	return res
}

// scoreListUsage compares the list-to-paragraph ratio against the ideal
// and interpolates linearly on both sides, clipped to [0,10]. Below the
// ideal the score rises from 0 at ratio 0; above it falls, reaching 5
// at twice the ideal.
func scoreListUsage(paragraphCount, listCount, proceduralCount, orderedListCount int, t config.Thresholds) score.CriterionResult {
	res := score.CriterionResult{CriterionID: CritListUsage}

	if paragraphCount == 0 {
		res.Score = 10
		res.Details = "no paragraphs to evaluate"
		return res
	}

	ratio := float64(listCount) / float64(paragraphCount)
	var s float64
	if ratio <= t.IdealListRatio {
		s = 10 * ratio / t.IdealListRatio
	} else {
		s = 10 - 5*(ratio-t.IdealListRatio)/t.IdealListRatio
	}

	if proceduralCount >= 3 && orderedListCount == 0 {
		s--
		res.Issues = append(res.Issues, score.Issue{
			Severity: score.Warning,
			Message:  fmt.Sprintf("%d step-like paragraphs found but no numbered lists", proceduralCount),
			Fix:      "Convert step sequences into ordered lists",
		})
	}

	if listCount == 0 && ratio < t.IdealListRatio/2 {
		res.Issues = append(res.Issues, score.Issue{
			Severity: score.Info,
			Message:  "Content uses no lists; scannable structure helps retrieval",
			Fix:      "Break enumerations and steps out of prose into lists",
		})
	}

	res.Score = score.Round1(score.Clamp(s))
	res.Details = fmt.Sprintf("list-to-paragraph ratio %.2f (ideal %.2f)", ratio, t.IdealListRatio)
	return res
}

// scoreHeadingHierarchy starts at 10 and deducts for missing or
// repeated H1s, a non-H1 first heading, H3+ without a preceding H2, and
// two points per forward level skip (skip deduction capped at 5).
func scoreHeadingHierarchy(m *metrics.Metrics, t config.Thresholds) score.CriterionResult {
	res := score.CriterionResult{CriterionID: CritHeadingHierarchy}

	if m.HeadingCount == 0 {
		if m.WordCount >= t.NonTrivialWords {
			res.Score = 3
			res.Details = "no headings on a non-trivial page"
			res.Issues = append(res.Issues, score.Issue{
				Severity: score.Critical,
				Message:  "Page has no headings; AI retrieval cannot anchor to sections",
				Fix:      "Add a single H1 and H2 sections for each topic",
			})
			return res
		}
		res.Score = 10
		res.Details = "no headings, page too small to require them"
		return res
	}

	s := 10.0
	if m.H1Count == 0 {
		s -= 2
		res.Issues = append(res.Issues, score.Issue{
			Severity: score.Warning,
			Message:  "No H1 heading found",
			Fix:      "Add a single H1 stating the page topic",
		})
	}
	if m.H1Count > 1 {
		s--
		res.Issues = append(res.Issues, score.Issue{
			Severity: score.Warning,
			Message:  fmt.Sprintf("Page has %d H1 headings; exactly one is expected", m.H1Count),
			Fix:      "Demote secondary H1s to H2",
		})
	}
	if m.FirstHeadingLevel > 1 {
		s--
		res.Issues = append(res.Issues, score.Issue{
			Severity: score.Warning,
			Message:  fmt.Sprintf("First heading is h%d, not h1", m.FirstHeadingLevel),
			Fix:      "Start the page with its H1",
		})
	}
	if m.MissingH2BeforeH3 {
		s--
		res.Issues = append(res.Issues, score.Issue{
			Severity: score.Warning,
			Message:  "H3 or deeper appears before any H2",
			Fix:      "Introduce H2 sections before using deeper levels",
		})
	}

	skipDeduction := 2.0 * float64(len(m.HierarchyValid.Skips))
	if skipDeduction > 5 {
		skipDeduction = 5
	}
	s -= skipDeduction
	for _, skip := range m.HierarchyValid.Skips {
		res.Issues = append(res.Issues, score.Issue{
			Severity: score.Warning,
			Message:  fmt.Sprintf("Heading level skips from h%d to h%d", skip.From, skip.To),
			Fix:      fmt.Sprintf("Use h%d for this section or restructure its parent", skip.From+1),
			Location: fmt.Sprintf("heading %d", skip.Index+1),
		})
	}

	res.Score = score.Clamp(s)
	res.Details = fmt.Sprintf("%d headings, %d level skips", m.HeadingCount, len(m.HierarchyValid.Skips))
	return res
}

// scoreLinkIntegrity passes the precomputed broken ratio through:
// 10 x (1 - brokenRatio), rounded.
func scoreLinkIntegrity(m *metrics.Metrics, c *content.NormalizedContent) score.CriterionResult {
	res := score.CriterionResult{CriterionID: CritLinkIntegrity}

	if m.LinkCount == 0 {
		res.Score = 10
		res.Details = "no links to evaluate"
		return res
	}

	res.Score = score.Clamp(math.Round(10 * (1 - m.BrokenLinkRatio)))
	res.Details = fmt.Sprintf("%d of %d links broken", m.BrokenLinkCount, m.LinkCount)

	if c != nil {
		for _, l := range c.Structure.Links {
			if !l.Broken {
				continue
			}
			text := l.Text
			if strings.TrimSpace(text) == "" {
				text = l.Href
			}
			res.Issues = append(res.Issues, score.Issue{
				Severity: score.Warning,
				Message:  fmt.Sprintf("Link %q points to missing anchor %s", text, l.Href),
				Fix:      "Fix the anchor target or remove the link",
				Location: l.Href,
			})
		}
	}
	return res
}

// SectionScore applies the brevity and list-usage algorithms to one
// section's content and averages them, for the optional section rollup.
func SectionScore(sec content.Section, cfg *config.Config) float64 {
	var paraWords []int
	procedural := 0
	ordered := 0
	for _, p := range sec.Paragraphs {
		paraWords = append(paraWords, len(strings.Fields(p)))
	}
	for _, l := range sec.Lists {
		if l.Ordered {
			ordered++
		}
	}

	brevity := scoreParagraphBrevity(paraWords, nil, sec.Paragraphs, cfg.Thresholds)
	listUsage := scoreListUsage(len(sec.Paragraphs), len(sec.Lists), procedural, ordered, cfg.Thresholds)
	return score.Round1((brevity.Score + listUsage.Score) / 2)
}
