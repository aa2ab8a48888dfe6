package evaluators

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/docscore/docscore/internal/config"
	"github.com/docscore/docscore/internal/content"
	"github.com/docscore/docscore/internal/metrics"
	"github.com/docscore/docscore/internal/score"
)

const (
	CritTermConsistency = "TC-01"
	CritConfusableTerms = "AV-02"
)

var terminologyFallbackWeights = map[string]float64{
	CritTermConsistency: 0.6,
	CritConfusableTerms: 0.4,
}

// synonymGroups is the fixed confusable-term table. A page should pick
// one variant per group and stick with it.
var synonymGroups = [][]string{
	{"delete", "remove", "erase", "discard"},
	{"click", "select", "choose", "tap"},
	{"folder", "directory"},
	{"app", "application"},
	{"login", "log in", "sign in"},
	{"setup", "set up", "configure"},
	{"close", "exit", "quit"},
	{"start", "launch"},
}

// confusablePairs are high-risk near-synonyms that mean different
// things; using both on one page invites conflation.
var confusablePairs = [][2]string{
	{"deactivate", "disable"},
	{"uninstall", "remove"},
	{"archive", "delete"},
	{"update", "upgrade"},
	{"sign out", "log off"},
}

// TerminologyEvaluator checks variant consistency against the synonym
// table, surfaces likely synonym clusters beyond it, and flags
// confusable term pairs. English-only; other languages score neutral.
type TerminologyEvaluator struct{}

func (e *TerminologyEvaluator) Category() string {
	return score.CategoryTerminology
}

func (e *TerminologyEvaluator) Evaluate(m *metrics.Metrics, c *content.NormalizedContent, cfg *config.Config) score.CategoryResult {
	text := ""
	lang := ""
	if c != nil {
		text = strings.ToLower(c.Text.FullText)
		lang = c.Meta.Language
	}

	if lang != "" && lang != "en" {
		neutral := map[string]score.CriterionResult{
			CritTermConsistency: {CriterionID: CritTermConsistency, Score: 10, Details: "terminology checks apply to English content only"},
			CritConfusableTerms: {CriterionID: CritConfusableTerms, Score: 10, Details: "terminology checks apply to English content only"},
		}
		return categoryResult(score.CategoryTerminology, neutral, terminologyFallbackWeights, cfg)
	}

	criteria := map[string]score.CriterionResult{
		CritTermConsistency: scoreTermConsistency(text),
		CritConfusableTerms: scoreConfusablePairs(text),
	}
	return categoryResult(score.CategoryTerminology, criteria, terminologyFallbackWeights, cfg)
}

// countOccurrences counts word-boundary matches of a (possibly
// multi-word) term in lowercased text.
func countOccurrences(text, term string) int {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(term) + `\b`)
	return len(re.FindAllStringIndex(text, -1))
}

func scoreTermConsistency(text string) score.CriterionResult {
	res := score.CriterionResult{CriterionID: CritTermConsistency}

	if strings.TrimSpace(text) == "" {
		res.Score = 10
		res.Details = "no text to evaluate"
		return res
	}

	groupsPresent := 0
	inconsistent := 0
	for _, group := range synonymGroups {
		counts := make(map[string]int)
		total := 0
		max := 0
		dominant := ""
		for _, term := range group {
			n := countOccurrences(text, term)
			if n > 0 {
				counts[term] = n
				total += n
				if n > max {
					max = n
					dominant = term
				}
			}
		}
		if total == 0 {
			continue
		}
		groupsPresent++
		if len(counts) <= 1 {
			continue
		}

		frequent := 0
		for _, n := range counts {
			if n > 1 {
				frequent++
			}
		}
		minority := total - max
		if frequent > 1 || minority > 2 {
			inconsistent++
			res.Issues = append(res.Issues, score.Issue{
				Severity: score.Warning,
				Message:  fmt.Sprintf("Mixed terminology: %s", formatVariantCounts(counts)),
				Fix:      fmt.Sprintf("Standardize on %q throughout the page", dominant),
			})
		}
	}

	rate := 1.0
	if groupsPresent > 0 {
		rate = 1 - float64(inconsistent)/float64(groupsPresent)
	}
	res.Score = score.Round1(rate * 10)
	res.Details = fmt.Sprintf("%d of %d term groups used inconsistently", inconsistent, groupsPresent)

	res.Issues = append(res.Issues, clusterVariants(text)...)
	return res
}

func formatVariantCounts(counts map[string]int) string {
	terms := make([]string, 0, len(counts))
	for t := range counts {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		parts = append(parts, fmt.Sprintf("%q (%dx)", t, counts[t]))
	}
	return strings.Join(parts, ", ")
}

// clusterVariants is the generic pass: normalize tokens by stripping
// common suffixes and surface clusters with multiple surface forms,
// excluding plural-only variation. Informational only.
func clusterVariants(text string) []score.Issue {
	clusters := make(map[string]map[string]bool)
	for _, tok := range strings.Fields(text) {
		tok = strings.Trim(tok, ".,;:!?()[]\"'`")
		if len(tok) < 4 || !isAlpha(tok) {
			continue
		}
		clusters[normalizeToken(tok)] = addTo(clusters[normalizeToken(tok)], tok)
	}

	var keys []string
	for k, variants := range clusters {
		if len(variants) < 2 || pluralOnly(variants) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var issues []score.Issue
	for i, k := range keys {
		if i >= 3 {
			break
		}
		var variants []string
		for v := range clusters[k] {
			variants = append(variants, v)
		}
		sort.Strings(variants)
		issues = append(issues, score.Issue{
			Severity: score.Info,
			Message:  fmt.Sprintf("Possible synonym variants: %s", strings.Join(variants, ", ")),
			Fix:      "Pick one form if these refer to the same concept",
		})
	}
	return issues
}

func addTo(set map[string]bool, v string) map[string]bool {
	if set == nil {
		set = make(map[string]bool)
	}
	set[v] = true
	return set
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

func normalizeToken(tok string) string {
	t := strings.ToLower(tok)
	switch {
	case len(t) > 5 && strings.HasSuffix(t, "ing"):
		return t[:len(t)-3]
	case len(t) > 4 && strings.HasSuffix(t, "ed"):
		return t[:len(t)-2]
	case len(t) > 4 && strings.HasSuffix(t, "es"):
		return t[:len(t)-2]
	case len(t) > 3 && strings.HasSuffix(t, "s"):
		return t[:len(t)-1]
	}
	return t
}

// pluralOnly reports whether a variant set is just a word plus its
// simple plural; that is normal prose, not a terminology problem.
func pluralOnly(variants map[string]bool) bool {
	if len(variants) != 2 {
		return false
	}
	var vs []string
	for v := range variants {
		vs = append(vs, strings.ToLower(v))
	}
	sort.Slice(vs, func(i, j int) bool { return len(vs[i]) < len(vs[j]) })
	return vs[1] == vs[0]+"s" || vs[1] == vs[0]+"es"
}

// scoreConfusablePairs flags pages using both terms of a high-risk
// pair: score = max(0, 10 - 2 x flagged pairs).
func scoreConfusablePairs(text string) score.CriterionResult {
	res := score.CriterionResult{CriterionID: CritConfusableTerms}

	if strings.TrimSpace(text) == "" {
		res.Score = 10
		res.Details = "no text to evaluate"
		return res
	}

	flagged := 0
	for _, pair := range confusablePairs {
		a := countOccurrences(text, pair[0])
		b := countOccurrences(text, pair[1])
		if a > 0 && b > 0 {
			flagged++
			res.Issues = append(res.Issues, score.Issue{
				Severity: score.Warning,
				Message:  fmt.Sprintf("Both %q (%dx) and %q (%dx) appear; these are easily conflated", pair[0], a, pair[1], b),
				Fix:      fmt.Sprintf("Define the difference explicitly or use only one of %q/%q", pair[0], pair[1]),
			})
		}
	}

	res.Score = math.Max(0, 10-2*float64(flagged))
	res.Details = fmt.Sprintf("%d confusable term pairs present", flagged)
	return res
}
