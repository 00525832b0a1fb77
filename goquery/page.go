// Package goquery implements the static page fetcher and HTML helpers on top
// of github.com/PuerkitoBio/goquery.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sitechat"
)

// ParsePage parses raw HTML served at pageURL into a Page.
//
// Text is the text content of the whole document, Title is the text of the
// <title> element and Links holds the raw href attribute of every anchor that
// has one, in document order. Links are not resolved or filtered here.
func ParsePage(html, pageURL string) (*sitechat.Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, sitechat.Errorf(sitechat.EINVALID, "failed to parse HTML: %v", err)
	}

	page := &sitechat.Page{
		URL:   pageURL,
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
		Text:  doc.Text(),
		HTML:  html,
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		page.Links = append(page.Links, href)
	})

	return page, nil
}
