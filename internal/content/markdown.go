package content

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// ExtractMarkdown builds a NormalizedContent snapshot from a markdown
// document. YAML frontmatter is honored for the title; GFM tables are
// recognized. Anchor links are resolved against heading slugs so that
// link brokenness is available to the scorer.
func ExtractMarkdown(pageURL string, src []byte) (*NormalizedContent, error) {
	frontmatter, body := parseFrontmatter(src)

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(body))

	var st Structure
	var textParts []string
	var currentSection *Section

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			h := Heading{
				Tag:  fmt.Sprintf("h%d", node.Level),
				Text: nodeText(node, body),
			}
			st.Headings = append(st.Headings, h)
			textParts = append(textParts, h.Text)

			st.Sections = append(st.Sections, Section{Title: h.Text, Level: node.Level})
			currentSection = &st.Sections[len(st.Sections)-1]

		case *ast.Paragraph:
			if hasAncestor(node, ast.KindListItem, ast.KindBlockquote) {
				return ast.WalkContinue, nil
			}
			p := nodeText(node, body)
			if strings.TrimSpace(p) == "" {
				return ast.WalkContinue, nil
			}
			st.Paragraphs = append(st.Paragraphs, p)
			textParts = append(textParts, p)
			if currentSection != nil {
				currentSection.Paragraphs = append(currentSection.Paragraphs, p)
			}

		case *ast.List:
			l := List{Ordered: node.IsOrdered()}
			for li := node.FirstChild(); li != nil; li = li.NextSibling() {
				item := ""
				if fc := li.FirstChild(); fc != nil {
					item = strings.TrimSpace(nodeText(fc, body))
				}
				if item != "" {
					l.Items = append(l.Items, item)
					textParts = append(textParts, item)
				}
			}
			st.Lists = append(st.Lists, l)
			if currentSection != nil {
				currentSection.Lists = append(currentSection.Lists, l)
			}

		case *ast.Image:
			st.Images = append(st.Images, Image{
				Src: string(node.Destination),
				Alt: strings.TrimSpace(nodeText(node, body)),
			})

		case *ast.Link:
			href := string(node.Destination)
			st.Links = append(st.Links, Link{
				Href:     href,
				Text:     nodeText(node, body),
				Internal: isInternalHref(href),
			})

		case *ast.FencedCodeBlock:
			st.CodeBlocks = append(st.CodeBlocks, CodeBlock{
				Language: string(node.Language(body)),
				Code:     linesText(node, body),
			})

		case *ast.CodeBlock:
			st.CodeBlocks = append(st.CodeBlocks, CodeBlock{Code: linesText(node, body)})

		case *ast.Blockquote:
			c := strings.TrimSpace(nodeText(node, body))
			if c != "" {
				st.Callouts = append(st.Callouts, c)
				textParts = append(textParts, c)
			}
			return ast.WalkSkipChildren, nil

		case *east.Table:
			t := Table{}
			for row := node.FirstChild(); row != nil; row = row.NextSibling() {
				t.Rows++
				if t.Cols == 0 {
					for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
						t.Cols++
					}
				}
			}
			st.Tables = append(st.Tables, t)
			return ast.WalkSkipChildren, nil
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking markdown ast: %w", err)
	}

	resolveAnchors(&st)

	title := ""
	if t, ok := frontmatter["title"].(string); ok {
		title = t
	}
	if title == "" {
		for _, h := range st.Headings {
			if h.Tag == "h1" {
				title = h.Text
				break
			}
		}
	}

	fullText := strings.Join(textParts, "\n")
	return &NormalizedContent{
		Meta: Meta{
			URL:         pageURL,
			Title:       title,
			ExtractedAt: time.Now().UTC(),
			Language:    DetectLanguage(fullText),
		},
		Structure: st,
		Text: Text{
			FullText:  fullText,
			WordCount: len(strings.Fields(fullText)),
		},
	}, nil
}

// parseFrontmatter splits leading YAML frontmatter from the body.
func parseFrontmatter(src []byte) (map[string]interface{}, []byte) {
	if !bytes.HasPrefix(src, []byte("---\n")) {
		return nil, src
	}
	rest := src[4:]
	end := bytes.Index(rest, []byte("\n---"))
	if end == -1 {
		return nil, src
	}

	var fm map[string]interface{}
	if err := yaml.Unmarshal(rest[:end], &fm); err != nil {
		return nil, src
	}

	body := rest[end+4:]
	if nl := bytes.IndexByte(body, '\n'); nl != -1 {
		body = body[nl+1:]
	}
	return fm, body
}

// nodeText collects the raw text of a node and its descendants.
func nodeText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

// linesText extracts the raw source lines of a block node.
func linesText(n ast.Node, source []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}
	return sb.String()
}

func hasAncestor(n ast.Node, kinds ...ast.NodeKind) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		for _, k := range kinds {
			if p.Kind() == k {
				return true
			}
		}
	}
	return false
}

func isInternalHref(href string) bool {
	if strings.HasPrefix(href, "#") {
		return true
	}
	return !strings.Contains(href, "://") && !strings.HasPrefix(href, "mailto:")
}

var slugStrip = regexp.MustCompile(`[^a-z0-9 -]`)

// Slugify converts a heading title to its anchor form, the way common
// markdown renderers do.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugStrip.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, " ", "-")
	return s
}

// resolveAnchors marks fragment links whose target heading does not
// exist. This is the link-integrity collaborator: brokenness is decided
// here, the scorer only consumes the ratio.
func resolveAnchors(st *Structure) {
	slugs := make(map[string]bool, len(st.Headings))
	for _, h := range st.Headings {
		slugs[Slugify(h.Text)] = true
	}
	for i, l := range st.Links {
		if strings.HasPrefix(l.Href, "#") {
			st.Links[i].Broken = !slugs[strings.TrimPrefix(l.Href, "#")]
		}
	}
}
