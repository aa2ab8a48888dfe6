package content

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

const fetchTimeout = 30 * time.Second

// FetchURL downloads a page and extracts it into a NormalizedContent
// snapshot. Extraction runs the readability pass first so navigation
// chrome doesn't pollute the scored content.
func FetchURL(ctx context.Context, pageURL string) (*NormalizedContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", "docscore/1.0 (+https://github.com/docscore/docscore)")

	client := &http.Client{Timeout: fetchTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return ExtractHTML(pageURL, body)
}

// ExtractHTML builds a NormalizedContent snapshot from raw HTML.
func ExtractHTML(pageURL string, htmlSrc []byte) (*NormalizedContent, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parsing url: %w", err)
	}

	title := ""
	fullText := ""
	contentHTML := htmlSrc

	article, err := readability.FromReader(bytes.NewReader(htmlSrc), u)
	if err == nil && strings.TrimSpace(article.Content) != "" {
		title = article.Title
		fullText = article.TextContent
		contentHTML = []byte(article.Content)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(contentHTML))
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	st := extractStructure(doc)

	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if fullText == "" {
		fullText = strings.Join(strings.Fields(doc.Text()), " ")
	}

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

func extractStructure(doc *goquery.Document) Structure {
	var st Structure
	var currentSection *Section

	doc.Find("h1, h2, h3, h4, h5, h6, p, ul, ol, img, table, pre, blockquote").Each(func(_ int, s *goquery.Selection) {
		name := goquery.NodeName(s)
		switch name {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			h := Heading{Tag: name, Text: strings.TrimSpace(s.Text())}
			st.Headings = append(st.Headings, h)
			st.Sections = append(st.Sections, Section{Title: h.Text, Level: int(name[1] - '0')})
			currentSection = &st.Sections[len(st.Sections)-1]

		case "p":
			if s.ParentsFiltered("blockquote, li").Length() > 0 {
				return
			}
			p := strings.TrimSpace(s.Text())
			if p == "" {
				return
			}
			st.Paragraphs = append(st.Paragraphs, p)
			if currentSection != nil {
				currentSection.Paragraphs = append(currentSection.Paragraphs, p)
			}

		case "ul", "ol":
			if s.ParentsFiltered("li, blockquote").Length() > 0 {
				return
			}
			l := List{Ordered: name == "ol"}
			s.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
				clone := li.Clone()
				clone.Find("ul, ol").Remove()
				if item := strings.TrimSpace(clone.Text()); item != "" {
					l.Items = append(l.Items, item)
				}
			})
			st.Lists = append(st.Lists, l)
			if currentSection != nil {
				currentSection.Lists = append(currentSection.Lists, l)
			}

		case "img":
			st.Images = append(st.Images, Image{
				Src: s.AttrOr("src", ""),
				Alt: strings.TrimSpace(s.AttrOr("alt", "")),
			})

		case "table":
			t := Table{Rows: s.Find("tr").Length()}
			t.Cols = s.Find("tr").First().Children().Length()
			st.Tables = append(st.Tables, t)

		case "pre":
			code := s.Find("code").First()
			lang := ""
			if cls, ok := code.Attr("class"); ok {
				for _, c := range strings.Fields(cls) {
					if strings.HasPrefix(c, "language-") {
						lang = strings.TrimPrefix(c, "language-")
					}
				}
			}
			st.CodeBlocks = append(st.CodeBlocks, CodeBlock{Language: lang, Code: s.Text()})

		case "blockquote":
			if c := strings.TrimSpace(s.Text()); c != "" {
				st.Callouts = append(st.Callouts, c)
			}
		}
	})

	// Anchor targets: element ids plus heading slugs.
	targets := make(map[string]bool)
	doc.Find("[id]").Each(func(_ int, s *goquery.Selection) {
		targets[s.AttrOr("id", "")] = true
	})
	for _, h := range st.Headings {
		targets[Slugify(h.Text)] = true
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := s.AttrOr("href", "")
		l := Link{
			Href:     href,
			Text:     strings.TrimSpace(s.Text()),
			Internal: isInternalHref(href),
		}
		if strings.HasPrefix(href, "#") {
			l.Broken = !targets[strings.TrimPrefix(href, "#")]
		}
		st.Links = append(st.Links, l)
	})

	return st
}
