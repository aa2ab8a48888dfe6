package metrics

import (
	"strings"
	"testing"

	"github.com/docscore/docscore/internal/content"
)

func snapshot(s content.Structure, text string) *content.NormalizedContent {
	return &content.NormalizedContent{
		Meta:      content.Meta{URL: "https://docs.example.com/page"},
		Structure: s,
		Text:      content.Text{FullText: text, WordCount: len(strings.Fields(text))},
	}
}

func TestCompute_NoImagesFullAltCoverage(t *testing.T) {
	m := Compute(snapshot(content.Structure{}, "Just a few words here."))

	if m.AltTextCoverage != 1.0 {
		t.Errorf("AltTextCoverage = %v, want 1.0 for a page with no images", m.AltTextCoverage)
	}
	if m.ImageCount != 0 {
		t.Errorf("ImageCount = %d, want 0", m.ImageCount)
	}
}

func TestCompute_HeadingSkips(t *testing.T) {
	s := content.Structure{
		Headings: []content.Heading{
			{Tag: "h1", Text: "Title"},
			{Tag: "h2", Text: "Section"},
			{Tag: "h4", Text: "Deep"},
		},
	}
	m := Compute(snapshot(s, "text"))

	if m.HierarchyValid.Valid {
		t.Error("HierarchyValid.Valid = true, want false for h2 -> h4")
	}
	if len(m.HierarchyValid.Skips) != 1 {
		t.Fatalf("len(Skips) = %d, want 1", len(m.HierarchyValid.Skips))
	}
	skip := m.HierarchyValid.Skips[0]
	if skip.From != 2 || skip.To != 4 || skip.Index != 2 {
		t.Errorf("Skip = %+v, want {From:2 To:4 Index:2}", skip)
	}
}

func TestCompute_LevelDecreaseIsValid(t *testing.T) {
	s := content.Structure{
		Headings: []content.Heading{
			{Tag: "h1"}, {Tag: "h2"}, {Tag: "h3"}, {Tag: "h2"},
		},
	}
	m := Compute(snapshot(s, "text"))

	if !m.HierarchyValid.Valid {
		t.Errorf("HierarchyValid.Valid = false, want true; skips: %+v", m.HierarchyValid.Skips)
	}
}

func TestCompute_MissingH2BeforeH3(t *testing.T) {
	s := content.Structure{
		Headings: []content.Heading{{Tag: "h1"}, {Tag: "h3"}},
	}
	m := Compute(snapshot(s, "text"))

	if !m.MissingH2BeforeH3 {
		t.Error("MissingH2BeforeH3 = false, want true for h1 -> h3")
	}
}

func TestCompute_ListRatioAndProcedural(t *testing.T) {
	s := content.Structure{
		Paragraphs: []string{
			"Click the settings icon in the corner.",
			"Open the admin panel next.",
			"Select your workspace from the dropdown.",
			"This paragraph is plain prose about the feature.",
		},
		Lists: []content.List{
			{Ordered: true, Items: []string{"one", "two"}},
			{Ordered: false, Items: []string{"a"}},
		},
	}
	m := Compute(snapshot(s, "text"))

	if m.ProceduralCount != 3 {
		t.Errorf("ProceduralCount = %d, want 3", m.ProceduralCount)
	}
	if m.OrderedListCount != 1 {
		t.Errorf("OrderedListCount = %d, want 1", m.OrderedListCount)
	}
	if got, want := m.ListToParagraphRatio, 0.5; got != want {
		t.Errorf("ListToParagraphRatio = %v, want %v", got, want)
	}
}

func TestCompute_AltCoverageAndDensity(t *testing.T) {
	words := strings.Repeat("word ", 100)
	s := content.Structure{
		Images: []content.Image{
			{Src: "a.png", Alt: "the settings screen"},
			{Src: "b.png", Alt: ""},
			{Src: "c.png", Alt: "  "},
			{Src: "d.png", Alt: "result dialog"},
		},
	}
	m := Compute(snapshot(s, words))

	if got, want := m.AltTextCoverage, 0.5; got != want {
		t.Errorf("AltTextCoverage = %v, want %v", got, want)
	}
	if got, want := m.ImageDensity, 4.0; got != want {
		t.Errorf("ImageDensity = %v, want %v per 100 words", got, want)
	}
}

func TestCompute_VisualBlockRatio(t *testing.T) {
	s := content.Structure{
		Paragraphs: []string{"one", "two", "three"},
		Images:     []content.Image{{Src: "a.png"}},
		Tables:     []content.Table{{Rows: 2, Cols: 2}},
		CodeBlocks: []content.CodeBlock{{Code: "x"}},
	}
	m := Compute(snapshot(s, "text"))

	// 2 visual blocks (image + table) out of 6 total.
	if m.VisualBlockCount != 2 {
		t.Errorf("VisualBlockCount = %d, want 2", m.VisualBlockCount)
	}
	if m.ContentBlockCount != 4 {
		t.Errorf("ContentBlockCount = %d, want 4", m.ContentBlockCount)
	}
	want := 2.0 / 6.0
	if diff := m.VisualBlockRatio - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("VisualBlockRatio = %v, want %v", m.VisualBlockRatio, want)
	}
}

func TestCompute_BrokenLinks(t *testing.T) {
	s := content.Structure{
		Links: []content.Link{
			{Href: "#setup", Internal: true, Broken: true},
			{Href: "https://example.com", Internal: false},
			{Href: "/other", Internal: true},
			{Href: "#missing", Internal: true, Broken: true},
		},
	}
	m := Compute(snapshot(s, "text"))

	if m.BrokenLinkCount != 2 {
		t.Errorf("BrokenLinkCount = %d, want 2", m.BrokenLinkCount)
	}
	if got, want := m.BrokenLinkRatio, 0.5; got != want {
		t.Errorf("BrokenLinkRatio = %v, want %v", got, want)
	}
	if m.InternalLinkCount != 3 || m.ExternalLinkCount != 1 {
		t.Errorf("internal/external = %d/%d, want 3/1", m.InternalLinkCount, m.ExternalLinkCount)
	}
}

func TestParseHeadingLevel(t *testing.T) {
	tests := []struct {
		tag  string
		want int
	}{
		{"h1", 1},
		{"H3", 3},
		{"4", 4},
		{"h6", 6},
		{"div", 6},
		{"h9", 6},
		{"", 6},
	}
	for _, tt := range tests {
		if got := parseHeadingLevel(tt.tag); got != tt.want {
			t.Errorf("parseHeadingLevel(%q) = %d, want %d", tt.tag, got, tt.want)
		}
	}
}

func TestStartsWithActionVerb(t *testing.T) {
	tests := []struct {
		para string
		want bool
	}{
		{"Click the button to continue.", true},
		{"1. Open the settings page.", false}, // leading token is "1."
		{"open the settings page.", true},
		{"The settings page opens automatically.", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := startsWithActionVerb(tt.para); got != tt.want {
			t.Errorf("startsWithActionVerb(%q) = %v, want %v", tt.para, got, tt.want)
		}
	}
}
