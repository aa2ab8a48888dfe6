// Package config holds the scoring configuration surface: evaluator
// thresholds, per-criterion weight overrides, semantic capability
// settings, and cache policy. Algorithms are never configurable, only
// their numeric knobs.
package config

import "time"

// Thresholds are the numeric knobs consumed by the rule evaluators.
type Thresholds struct {
	// ParagraphWords is the brevity threshold; paragraphs above it are
	// flagged, above CriticalParagraphWords they are critical.
	ParagraphWords         int `koanf:"paragraph_words"`
	CriticalParagraphWords int `koanf:"critical_paragraph_words"`

	// LongSentenceWords marks a sentence as long; LongSentenceRatio is
	// the fraction of long sentences that triggers the brevity penalty.
	LongSentenceWords int     `koanf:"long_sentence_words"`
	LongSentenceRatio float64 `koanf:"long_sentence_ratio"`

	// IdealListRatio is the list-to-paragraph ratio that scores 10.
	IdealListRatio float64 `koanf:"ideal_list_ratio"`

	// NonTrivialWords is the page size above which zero headings is a
	// critical finding rather than a neutral one.
	NonTrivialWords int `koanf:"non_trivial_words"`

	// ImageHeavyCount caps the image-density score when procedural
	// lists coexist with more than this many images.
	ImageHeavyCount int `koanf:"image_heavy_count"`

	// VisualRatioCeiling is the ideal ceiling for the visual-block to
	// content-block ratio.
	VisualRatioCeiling float64 `koanf:"visual_ratio_ceiling"`
}

// Semantic configures the remote semantic capability. An empty APIKey
// selects the heuristic estimator for the whole run.
type Semantic struct {
	APIKey    string `koanf:"api_key"`
	Model     string `koanf:"model"`
	MaxTokens int    `koanf:"max_tokens"`
}

// Cache configures the content-hash cache.
type Cache struct {
	TTL        time.Duration `koanf:"ttl"`
	MaxEntries int           `koanf:"max_entries"`
	Path       string        `koanf:"path"`
}

// Config is an immutable snapshot threaded into every evaluator call.
// Hot reload re-invokes the engine with a fresh snapshot; nothing here
// is mutated in place.
type Config struct {
	Thresholds Thresholds         `koanf:"thresholds"`
	Weights    map[string]float64 `koanf:"weights"`
	Semantic   Semantic           `koanf:"semantic"`
	Cache      Cache              `koanf:"cache"`
}

// Default returns the hardcoded defaults used when no config file or
// environment overrides are present.
func Default() *Config {
	return &Config{
		Thresholds: Thresholds{
			ParagraphWords:         150,
			CriticalParagraphWords: 200,
			LongSentenceWords:      25,
			LongSentenceRatio:      0.2,
			IdealListRatio:         0.3,
			NonTrivialWords:        200,
			ImageHeavyCount:        5,
			VisualRatioCeiling:     0.33,
		},
		Weights: map[string]float64{},
		Semantic: Semantic{
			Model:     "claude-3-5-haiku-20241022",
			MaxTokens: 4000,
		},
		Cache: Cache{
			TTL:        7 * 24 * time.Hour,
			MaxEntries: 100,
		},
	}
}

// CriterionWeight returns the configured weight for a criterion, or the
// evaluator's hardcoded fallback when the key is absent.
func (c *Config) CriterionWeight(criterionID string, fallback float64) float64 {
	if c == nil || c.Weights == nil {
		return fallback
	}
	if w, ok := c.Weights[criterionID]; ok && w >= 0 {
		return w
	}
	return fallback
}
