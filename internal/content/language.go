package content

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// DetectLanguage returns the lowercase ISO 639-1 code of the text's
// language, or empty when detection is inconclusive. Terminology
// checks only apply to English pages, so the code travels in meta.
func DetectLanguage(text string) string {
	if len(strings.Fields(text)) < 5 {
		return ""
	}

	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(
				lingua.English,
				lingua.Spanish,
				lingua.French,
				lingua.German,
				lingua.Portuguese,
				lingua.Italian,
				lingua.Dutch,
				lingua.Japanese,
			).
			Build()
	})

	lang, ok := detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}
