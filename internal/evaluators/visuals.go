package evaluators

import (
	"fmt"
	"math"

	"github.com/docscore/docscore/internal/config"
	"github.com/docscore/docscore/internal/content"
	"github.com/docscore/docscore/internal/metrics"
	"github.com/docscore/docscore/internal/score"
)

const (
	CritImageDensity = "TV-01"
	CritVisualRatio  = "TV-02"
	CritAltText      = "TV-03"
)

var visualsFallbackWeights = map[string]float64{
	CritImageDensity: 0.4,
	CritVisualRatio:  0.3,
	CritAltText:      0.3,
}

// TextOverVisualsEvaluator scores how much of the page's meaning lives
// in text rather than screenshots: image density, visual-to-content
// block ratio, and alt-text coverage.
type TextOverVisualsEvaluator struct{}

func (e *TextOverVisualsEvaluator) Category() string {
	return score.CategoryTextOverVisuals
}

func (e *TextOverVisualsEvaluator) Evaluate(m *metrics.Metrics, c *content.NormalizedContent, cfg *config.Config) score.CategoryResult {
	criteria := map[string]score.CriterionResult{
		CritImageDensity: scoreImageDensity(m, cfg.Thresholds),
		CritVisualRatio:  scoreVisualRatio(m, cfg.Thresholds),
		CritAltText:      scoreAltText(m, c),
	}
	return categoryResult(score.CategoryTextOverVisuals, criteria, visualsFallbackWeights, cfg)
}

// scoreImageDensity maps images-per-100-words to four tiers; higher
// density scores lower. Procedural content leaning on many images is
// additionally capped.
func scoreImageDensity(m *metrics.Metrics, t config.Thresholds) score.CriterionResult {
	res := score.CriterionResult{CriterionID: CritImageDensity}
	d := m.ImageDensity

	switch {
	case d > 2:
		res.Score = 4
		res.Issues = append(res.Issues, score.Issue{
			Severity: score.Critical,
			Message:  fmt.Sprintf("Very image-heavy: %.1f images per 100 words", d),
			Fix:      "Replace screenshots with text descriptions of the steps they show",
		})
	case d > 1:
		res.Score = 6
		res.Issues = append(res.Issues, score.Issue{
			Severity: score.Warning,
			Message:  fmt.Sprintf("Image-heavy: %.1f images per 100 words", d),
			Fix:      "Ensure every image's content is also stated in text",
		})
	case d > 0.5:
		res.Score = 8
		res.Issues = append(res.Issues, score.Issue{
			Severity: score.Info,
			Message:  fmt.Sprintf("Moderate image density: %.1f images per 100 words", d),
		})
	default:
		res.Score = 10
	}

	if m.OrderedListCount > 0 && m.ImageCount > t.ImageHeavyCount && res.Score > 7 {
		res.Score = 7
		res.Issues = append(res.Issues, score.Issue{
			Severity: score.Warning,
			Message:  fmt.Sprintf("Procedural content relies on %d images", m.ImageCount),
			Fix:      "Make each step complete without its screenshot",
		})
	}

	res.Details = fmt.Sprintf("%.2f images per 100 words", d)
	return res
}

// scoreVisualRatio scores the visual-block share of all blocks against
// the ideal ceiling in three linear bands: at or under the ceiling is a
// 10; up to twice the ceiling falls to 5; beyond that falls to 0 at a
// fully visual page.
func scoreVisualRatio(m *metrics.Metrics, t config.Thresholds) score.CriterionResult {
	res := score.CriterionResult{CriterionID: CritVisualRatio}

	if m.VisualBlockCount+m.ContentBlockCount == 0 {
		res.Score = 10
		res.Details = "no blocks to evaluate"
		return res
	}

	r := m.VisualBlockRatio
	ceiling := t.VisualRatioCeiling
	var s float64
	switch {
	case r <= ceiling:
		s = 10
	case r <= 2*ceiling:
		s = 10 - 5*(r-ceiling)/ceiling
	default:
		s = 5 * (1 - r) / (1 - 2*ceiling)
	}
	res.Score = score.Round1(score.Clamp(s))
	res.Details = fmt.Sprintf("visual blocks are %.0f%% of content blocks (ceiling %.0f%%)", r*100, ceiling*100)

	if r > ceiling {
		res.Issues = append(res.Issues, score.Issue{
			Severity: score.Warning,
			Message:  fmt.Sprintf("Visual blocks make up %.0f%% of the page", r*100),
			Fix:      "Shift explanatory weight from images and tables into prose and lists",
		})
	}
	return res
}

// scoreAltText scores coverage directly: 10 x coverage. Missing alt
// text is reported per image up to five images, aggregated beyond.
func scoreAltText(m *metrics.Metrics, c *content.NormalizedContent) score.CriterionResult {
	res := score.CriterionResult{CriterionID: CritAltText}
	res.Score = score.Clamp(math.Round(10 * m.AltTextCoverage))

	missing := m.ImageCount - m.ImagesWithAlt
	res.Details = fmt.Sprintf("%d of %d images have alt text", m.ImagesWithAlt, m.ImageCount)
	if m.ImageCount == 0 {
		res.Details = "no images to evaluate"
		return res
	}
	if missing == 0 {
		return res
	}

	if missing <= 5 && c != nil {
		for i, img := range c.Structure.Images {
			if img.Alt != "" {
				continue
			}
			res.Issues = append(res.Issues, score.Issue{
				Severity: score.Warning,
				Message:  fmt.Sprintf("Image %d has no alt text", i+1),
				Fix:      "Describe what the image shows so text-only consumers keep the information",
				Location: img.Src,
			})
		}
	} else {
		res.Issues = append(res.Issues, score.Issue{
			Severity: score.Warning,
			Message:  fmt.Sprintf("%d images are missing alt text", missing),
			Fix:      "Add alt text describing each image's content",
		})
	}
	return res
}
