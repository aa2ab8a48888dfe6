// Package content defines the normalized page snapshot consumed by the
// scoring pipeline, plus extractors that produce it from markdown and
// HTML sources. A NormalizedContent value is built once per run and
// never mutated afterward.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Meta identifies the page a snapshot was taken from.
type Meta struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	ExtractedAt time.Time `json:"extractedAt"`
	Language    string    `json:"language,omitempty"`
}

// Heading is a single heading with its raw tag level ("h1".."h6").
type Heading struct {
	Tag  string `json:"tag"`
	Text string `json:"text"`
}

// List is a bullet or ordered list.
type List struct {
	Ordered bool     `json:"ordered"`
	Items   []string `json:"items"`
}

// Image is an embedded image with its alt text (empty when missing).
type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Table records a table's shape; cell content is not needed for scoring.
type Table struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// CodeBlock is a fenced or indented code block.
type CodeBlock struct {
	Language string `json:"language,omitempty"`
	Code     string `json:"code"`
}

// Link is a hyperlink. Broken is precomputed by the extractor
// (anchor-target existence); the scorer passes it through as-is.
type Link struct {
	Href     string `json:"href"`
	Text     string `json:"text"`
	Internal bool   `json:"internal"`
	Broken   bool   `json:"broken"`
}

// Section is an optional per-heading breakdown used by the section
// rollup. Only paragraphs and lists matter there.
type Section struct {
	Title      string   `json:"title"`
	Level      int      `json:"level"`
	Paragraphs []string `json:"paragraphs"`
	Lists      []List   `json:"lists"`
}

// Structure holds the structural blocks of the page in document order.
type Structure struct {
	Headings   []Heading   `json:"headings"`
	Paragraphs []string    `json:"paragraphs"`
	Lists      []List      `json:"lists"`
	Images     []Image     `json:"images"`
	Tables     []Table     `json:"tables"`
	CodeBlocks []CodeBlock `json:"codeBlocks"`
	Links      []Link      `json:"links"`
	Callouts   []string    `json:"callouts"`
	Sections   []Section   `json:"sections,omitempty"`
}

// Text holds the flattened text of the page.
type Text struct {
	FullText  string `json:"fullText"`
	WordCount int    `json:"wordCount"`
}

// NormalizedContent is the immutable input snapshot of one page.
type NormalizedContent struct {
	Meta      Meta      `json:"meta"`
	Structure Structure `json:"structure"`
	Text      Text      `json:"text"`
}

// ErrInvalidContent wraps all input-validation failures. These are the
// only errors that abort a scoring run.
var ErrInvalidContent = errors.New("invalid content")

// Validate checks the input contract: meta.url must be present and the
// word count non-negative. Read-only; producers fill in any derived
// fields before the snapshot reaches the scorer.
func (c *NormalizedContent) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil document", ErrInvalidContent)
	}
	if c.Meta.URL == "" {
		return fmt.Errorf("%w: meta.url missing", ErrInvalidContent)
	}
	if c.Text.WordCount < 0 {
		return fmt.Errorf("%w: text.wordCount negative", ErrInvalidContent)
	}
	return nil
}

// ParseJSON decodes a NormalizedContent document, rejecting payloads
// that don't match the schema (wrong fullText type, missing structure).
func ParseJSON(data []byte) (*NormalizedContent, error) {
	var probe struct {
		Meta      *json.RawMessage `json:"meta"`
		Structure *json.RawMessage `json:"structure"`
		Text      *struct {
			FullText json.RawMessage `json:"fullText"`
		} `json:"text"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	if probe.Structure == nil {
		return nil, fmt.Errorf("%w: structure missing", ErrInvalidContent)
	}
	if probe.Text != nil && len(probe.Text.FullText) > 0 && probe.Text.FullText[0] != '"' {
		return nil, fmt.Errorf("%w: text.fullText is not a string", ErrInvalidContent)
	}

	var c NormalizedContent
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	if c.Text.WordCount == 0 && c.Text.FullText != "" {
		c.Text.WordCount = len(strings.Fields(c.Text.FullText))
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Hash returns the versioned content hash used as the cache key for the
// page: xxhash64 over the normalized full text, stable across runs.
func (c *NormalizedContent) Hash() string {
	return HashText(c.Text.FullText)
}

// HashText hashes arbitrary analysis text with the same versioned digest.
func HashText(text string) string {
	return fmt.Sprintf("v1:%016x", xxhash.Sum64String(text))
}
