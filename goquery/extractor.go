package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sitechat"
)

var _ sitechat.Extractor = (*TextExtractor)(nil)

// contentSelectors are tried in order to locate the main content area.
var contentSelectors = []string{
	"main",
	"article",
	"[role=\"main\"]",
	".content",
	".doc-content",
	"body",
}

// chromeSelectors match page furniture removed before extraction.
const chromeSelectors = "script, style, noscript, template, nav, header, footer, aside, [role=\"navigation\"]"

// TextExtractor extracts the main content area of a page using common
// content landmarks. It is the lightweight alternative to the trafilatura
// and readability extractors.
type TextExtractor struct{}

// NewTextExtractor creates a new TextExtractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// Extract returns the title and the HTML of the first matching content area
// with scripts and navigation stripped.
func (e *TextExtractor) Extract(html string) (*sitechat.ExtractResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, sitechat.Errorf(sitechat.EINVALID, "failed to parse HTML: %v", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	doc.Find(chromeSelectors).Remove()

	for _, selector := range contentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 || strings.TrimSpace(sel.Text()) == "" {
			continue
		}
		content, err := sel.Html()
		if err != nil {
			return nil, sitechat.Errorf(sitechat.EINTERNAL, "failed to render content: %v", err)
		}
		return &sitechat.ExtractResult{
			Title:       title,
			ContentHTML: strings.TrimSpace(content),
		}, nil
	}

	return nil, sitechat.Errorf(sitechat.ENOTFOUND, "no content found")
}
