package sitechat

import "context"

// Fetcher retrieves raw HTML from URLs.
type Fetcher interface {
	// Fetch returns the HTML body served at url.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources held by the fetcher.
	Close() error
}

// PageFetcher retrieves a page's text content, title and outbound links.
// Implementations differ in how the page is obtained: a static parse of the
// served markup, or a full browser render with scripts executed.
type PageFetcher interface {
	// FetchPage retrieves the page at url.
	FetchPage(ctx context.Context, url string) (*Page, error)

	// Close releases resources held by the fetcher.
	// Must be called when the PageFetcher is no longer needed.
	Close() error
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
