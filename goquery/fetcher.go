package goquery

import (
	"context"

	"github.com/fwojciec/sitechat"
)

var _ sitechat.PageFetcher = (*StaticFetcher)(nil)

// StaticFetcher fetches raw markup without executing scripts and parses it
// with goquery.
type StaticFetcher struct {
	fetcher sitechat.Fetcher
}

// NewStaticFetcher creates a StaticFetcher reading markup from fetcher.
func NewStaticFetcher(fetcher sitechat.Fetcher) *StaticFetcher {
	return &StaticFetcher{fetcher: fetcher}
}

// FetchPage retrieves and parses the page at url.
func (f *StaticFetcher) FetchPage(ctx context.Context, url string) (*sitechat.Page, error) {
	html, err := f.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return ParsePage(html, url)
}

// Close closes the underlying fetcher.
func (f *StaticFetcher) Close() error {
	return f.fetcher.Close()
}
