// Package metrics derives quantitative page metrics from a normalized
// content snapshot. Everything here is a pure function of its input:
// same snapshot, same metrics, no hidden state and no I/O. Thresholds
// live in config and are applied by the evaluators, not here.
package metrics

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/docscore/docscore/internal/content"
)

// HeadingSkip records a forward jump of more than one level in document
// order, e.g. h2 -> h4. Level decreases are always valid.
type HeadingSkip struct {
	From  int `json:"from"`
	To    int `json:"to"`
	Index int `json:"index"`
}

// HierarchyValidity is the result of scanning heading levels in order.
type HierarchyValidity struct {
	Valid bool          `json:"valid"`
	Skips []HeadingSkip `json:"skips,omitempty"`
}

// Metrics is the read-only aggregate consumed by the rule evaluators.
type Metrics struct {
	WordCount int

	// Paragraphs
	ParagraphCount      int
	ParagraphWordCounts []int
	SentenceWordCounts  []int
	ProceduralCount     int

	// Headings
	HeadingCount      int
	HeadingLevels     []int
	H1Count           int
	FirstHeadingLevel int
	MissingH2BeforeH3 bool
	HierarchyValid    HierarchyValidity

	// Lists
	ListCount            int
	OrderedListCount     int
	ListItemCount        int
	ListToParagraphRatio float64

	// Images
	ImageCount      int
	ImagesWithAlt   int
	AltTextCoverage float64
	ImageDensity    float64 // images per 100 words

	// Blocks
	ContentBlockCount int
	VisualBlockCount  int
	VisualBlockRatio  float64
	CodeBlockCount    int
	TableCount        int
	CalloutCount      int

	// Links
	LinkCount         int
	InternalLinkCount int
	ExternalLinkCount int
	BrokenLinkCount   int
	BrokenLinkRatio   float64
}

// Compute derives Metrics from a snapshot. Zero-count edge cases fall
// back to neutral values: no paragraphs means a zero list ratio, no
// images means full alt coverage, no links means nothing broken.
func Compute(c *content.NormalizedContent) *Metrics {
	m := &Metrics{
		WordCount:       c.Text.WordCount,
		AltTextCoverage: 1.0,
	}

	for _, p := range c.Structure.Paragraphs {
		m.ParagraphCount++
		m.ParagraphWordCounts = append(m.ParagraphWordCounts, len(strings.Fields(p)))
		if startsWithActionVerb(p) {
			m.ProceduralCount++
		}
	}
	for _, s := range splitSentences(c.Text.FullText) {
		m.SentenceWordCounts = append(m.SentenceWordCounts, len(strings.Fields(s)))
	}

	m.HeadingCount = len(c.Structure.Headings)
	seenH2 := false
	prevLevel := 0
	for i, h := range c.Structure.Headings {
		level := parseHeadingLevel(h.Tag)
		m.HeadingLevels = append(m.HeadingLevels, level)
		if level == 1 {
			m.H1Count++
		}
		if level == 2 {
			seenH2 = true
		}
		if level >= 3 && !seenH2 {
			m.MissingH2BeforeH3 = true
		}
		if i == 0 {
			m.FirstHeadingLevel = level
		}
		if prevLevel > 0 && level > prevLevel+1 {
			m.HierarchyValid.Skips = append(m.HierarchyValid.Skips, HeadingSkip{
				From:  prevLevel,
				To:    level,
				Index: i,
			})
		}
		prevLevel = level
	}
	m.HierarchyValid.Valid = len(m.HierarchyValid.Skips) == 0

	m.ListCount = len(c.Structure.Lists)
	for _, l := range c.Structure.Lists {
		if l.Ordered {
			m.OrderedListCount++
		}
		m.ListItemCount += len(l.Items)
	}
	if m.ParagraphCount > 0 {
		m.ListToParagraphRatio = float64(m.ListCount) / float64(m.ParagraphCount)
	}

	m.ImageCount = len(c.Structure.Images)
	for _, img := range c.Structure.Images {
		if strings.TrimSpace(img.Alt) != "" {
			m.ImagesWithAlt++
		}
	}
	if m.ImageCount > 0 {
		m.AltTextCoverage = float64(m.ImagesWithAlt) / float64(m.ImageCount)
	}
	if m.WordCount > 0 {
		m.ImageDensity = float64(m.ImageCount) / float64(m.WordCount) * 100
	}

	m.CodeBlockCount = len(c.Structure.CodeBlocks)
	m.TableCount = len(c.Structure.Tables)
	m.CalloutCount = len(c.Structure.Callouts)
	m.VisualBlockCount = m.ImageCount + m.TableCount
	m.ContentBlockCount = m.ParagraphCount + m.ListCount + m.CodeBlockCount + m.CalloutCount
	if total := m.VisualBlockCount + m.ContentBlockCount; total > 0 {
		m.VisualBlockRatio = float64(m.VisualBlockCount) / float64(total)
	}

	m.LinkCount = len(c.Structure.Links)
	for _, l := range c.Structure.Links {
		if l.Internal {
			m.InternalLinkCount++
		} else {
			m.ExternalLinkCount++
		}
		if l.Broken {
			m.BrokenLinkCount++
		}
	}
	if m.LinkCount > 0 {
		m.BrokenLinkRatio = float64(m.BrokenLinkCount) / float64(m.LinkCount)
	}

	return m
}

// parseHeadingLevel parses "h3" (or "H3" or "3") into 3. Unparseable
// tags count as level 6 so they can never mask a skipped level.
func parseHeadingLevel(tag string) int {
	t := strings.ToLower(strings.TrimSpace(tag))
	t = strings.TrimPrefix(t, "h")
	n, err := strconv.Atoi(t)
	if err != nil || n < 1 || n > 6 {
		return 6
	}
	return n
}

var sentenceEnd = regexp.MustCompile(`[.!?]+(\s+|$)`)

func splitSentences(text string) []string {
	var out []string
	for _, s := range sentenceEnd.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

var actionVerbs = map[string]bool{
	"click": true, "open": true, "run": true, "select": true, "enter": true,
	"type": true, "press": true, "install": true, "navigate": true,
	"choose": true, "copy": true, "paste": true, "save": true,
	"download": true, "create": true, "configure": true, "set": true,
	"go": true, "add": true, "remove": true, "delete": true, "update": true,
}

// startsWithActionVerb reports whether a paragraph reads like a
// procedure step (used to spot step sequences written as prose).
func startsWithActionVerb(p string) bool {
	fields := strings.Fields(strings.ToLower(p))
	if len(fields) == 0 {
		return false
	}
	first := strings.Trim(fields[0], ".,:;1234567890)")
	return actionVerbs[first]
}
