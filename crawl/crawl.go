// Package crawl provides the recursive same-site crawler that turns a
// website into documents. Pages are visited depth-first, one at a time,
// following every in-scope link in the order it appears on the page.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/fwojciec/sitechat"
)

// Crawler walks a website starting from a seed URL and emits one document
// per uniquely visited page.
type Crawler struct {
	// Fetcher retrieves pages. Required.
	Fetcher sitechat.PageFetcher

	// Extractor and Converter, when both are set, replace the fetched page
	// text with the markdown of the page's main content.
	Extractor sitechat.Extractor
	Converter sitechat.Converter

	// Sitemaps, when set, supplies additional in-scope URLs that are crawled
	// after the link walk from the seed completes.
	Sitemaps sitechat.SitemapService

	// Filter, when set, further restricts which in-scope links are followed.
	Filter *sitechat.URLFilter

	RateLimiter sitechat.DomainLimiter

	// RetryDelays are the waits between fetch attempts of one page.
	// Nil means a failed fetch is not retried.
	RetryDelays []time.Duration

	// MaxPages caps the number of pages fetched. Zero means no limit.
	MaxPages int

	Logger   *slog.Logger
	Progress ProgressFunc
}

// ProgressEvent reports progress during a crawl.
type ProgressEvent struct {
	Type    ProgressType
	Visited int
	URL     string
	Title   string
	Error   error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressCompleted ProgressType = iota
	ProgressFailed
)

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// Crawl crawls the site at seedURL and returns its documents: the seed's
// document first, followed by the documents reached from each of its links
// in the order the links appear on the page.
//
// Failures on pages other than the seed are logged and contribute no
// documents. A failure to fetch the seed itself is returned as an error.
// If ctx is canceled the documents collected so far are returned along
// with the context error.
func (c *Crawler) Crawl(ctx context.Context, seedURL string) ([]*sitechat.Document, error) {
	return c.CrawlWithState(ctx, seedURL, NewState())
}

// CrawlWithState is like Crawl but records visits and cached content in a
// caller-owned state.
func (c *Crawler) CrawlWithState(ctx context.Context, seedURL string, state *State) ([]*sitechat.Document, error) {
	if c.Fetcher == nil {
		return nil, sitechat.Errorf(sitechat.EINVALID, "crawler requires a page fetcher")
	}
	if state == nil {
		state = NewState()
	}

	seed, err := canonicalURL(seedURL)
	if err != nil {
		return nil, sitechat.Errorf(sitechat.EINVALID, "invalid seed URL %q: %v", seedURL, err)
	}
	scope := &Scope{key: SiteKey(seed.Hostname())}

	w := &walker{
		crawler: c,
		scope:   scope,
		state:   state,
		logger:  c.logger(),
	}

	docs, err := w.visit(ctx, seed.String(), true)
	if err != nil {
		return docs, err
	}

	if c.Sitemaps != nil {
		more, err := w.visitSitemap(ctx, seed)
		docs = append(docs, more...)
		if err != nil {
			return docs, err
		}
	}

	return docs, nil
}

func (c *Crawler) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// walker carries the per-invocation state of one crawl through the recursion.
type walker struct {
	crawler *Crawler
	scope   *Scope
	state   *State
	logger  *slog.Logger
	fetched int
}

// visit crawls pageURL and, recursively, every in-scope link on it.
// Only the seed's fetch failure and context cancellation are returned as errors.
func (w *walker) visit(ctx context.Context, pageURL string, seed bool) ([]*sitechat.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if w.state.Visited(pageURL) {
		return nil, nil
	}
	if limit := w.crawler.MaxPages; limit > 0 && w.fetched >= limit {
		return nil, nil
	}
	w.state.Visit(pageURL)
	w.fetched++

	entry, err := w.load(ctx, pageURL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if seed {
			return nil, fmt.Errorf("fetching seed %s: %w", pageURL, err)
		}
		w.logger.Error("error visiting URL", "url", pageURL, "err", err)
		w.report(ProgressEvent{Type: ProgressFailed, URL: pageURL, Error: err})
		return nil, nil
	}

	w.logger.Info("open", "url", pageURL, "title", entry.Title)
	w.report(ProgressEvent{Type: ProgressCompleted, URL: pageURL, Title: entry.Title})

	docs := []*sitechat.Document{{
		PageContent: entry.Text,
		Metadata: sitechat.DocumentMetadata{
			URL:   pageURL,
			Title: entry.Title,
		},
	}}

	base, err := url.Parse(pageURL)
	if err != nil {
		return docs, nil
	}

	for _, href := range entry.Links {
		next, ok := w.follow(base, href)
		if !ok {
			continue
		}
		children, err := w.visit(ctx, next, false)
		docs = append(docs, children...)
		if err != nil {
			return docs, err
		}
	}

	return docs, nil
}

// follow applies the scope and the optional URL filter to a link.
func (w *walker) follow(base *url.URL, href string) (string, bool) {
	next, ok, err := w.scope.Resolve(base, href)
	if err != nil {
		w.logger.Warn("error resolving URL", "url", href, "page", base.String(), "err", err)
		return "", false
	}
	if !ok {
		return "", false
	}
	if w.crawler.Filter != nil && !w.crawler.Filter.Match(next) {
		return "", false
	}
	return next, true
}

// visitSitemap crawls in-scope sitemap URLs not reached by the link walk.
func (w *walker) visitSitemap(ctx context.Context, seed *url.URL) ([]*sitechat.Document, error) {
	urls, err := w.crawler.Sitemaps.DiscoverURLs(ctx, seed.String(), w.crawler.Filter)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		w.logger.Warn("sitemap discovery failed", "url", seed.String(), "err", err)
		return nil, nil
	}

	var docs []*sitechat.Document
	for _, u := range urls {
		next, ok := w.follow(seed, u)
		if !ok {
			continue
		}
		more, err := w.visit(ctx, next, false)
		docs = append(docs, more...)
		if err != nil {
			return docs, err
		}
	}
	return docs, nil
}

// load returns the cached entry for pageURL or fetches and caches it.
func (w *walker) load(ctx context.Context, pageURL string) (*Entry, error) {
	if entry, ok := w.state.Cached(pageURL); ok {
		return entry, nil
	}

	if w.crawler.RateLimiter != nil {
		u, err := url.Parse(pageURL)
		if err != nil {
			return nil, err
		}
		if err := w.crawler.RateLimiter.Wait(ctx, u.Host); err != nil {
			return nil, err
		}
	}

	logf := func(format string, args ...any) {
		w.logger.Warn(fmt.Sprintf(format, args...))
	}
	page, err := FetchWithRetryDelays(ctx, pageURL, w.crawler.Fetcher.FetchPage, logf, w.crawler.RetryDelays)
	if err != nil {
		return nil, err
	}

	entry := &Entry{
		Title: page.Title,
		Text:  w.text(pageURL, page),
		Links: page.Links,
	}
	w.state.Store(pageURL, entry)
	return entry, nil
}

// text returns the document content for a page: the markdown of its main
// content when extraction is configured and succeeds, else the page text.
func (w *walker) text(pageURL string, page *sitechat.Page) string {
	c := w.crawler
	if c.Extractor == nil || c.Converter == nil || page.HTML == "" {
		return page.Text
	}

	extracted, err := c.Extractor.Extract(page.HTML)
	if err != nil {
		w.logger.Warn("content extraction failed", "url", pageURL, "err", err)
		return page.Text
	}
	markdown, err := c.Converter.Convert(extracted.ContentHTML)
	if err != nil {
		w.logger.Warn("markdown conversion failed", "url", pageURL, "err", err)
		return page.Text
	}
	return markdown
}

func (w *walker) report(event ProgressEvent) {
	if w.crawler.Progress == nil {
		return
	}
	event.Visited = w.state.VisitedCount()
	w.crawler.Progress(event)
}

// OpenFunc opens the page fetcher used for a single crawl.
type OpenFunc func() (sitechat.PageFetcher, error)

// Option configures the Crawler used by ExtractTextFromWebsiteURL.
type Option func(*Crawler)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) { c.Logger = logger }
}

// WithExtraction replaces page text with the markdown of the main content.
func WithExtraction(extractor sitechat.Extractor, converter sitechat.Converter) Option {
	return func(c *Crawler) {
		c.Extractor = extractor
		c.Converter = converter
	}
}

// WithSitemaps crawls in-scope sitemap URLs after the link walk.
func WithSitemaps(sitemaps sitechat.SitemapService) Option {
	return func(c *Crawler) { c.Sitemaps = sitemaps }
}

// WithFilter restricts followed links to those matching filter.
func WithFilter(filter *sitechat.URLFilter) Option {
	return func(c *Crawler) { c.Filter = filter }
}

// WithRateLimiter rate limits fetches per host.
func WithRateLimiter(limiter sitechat.DomainLimiter) Option {
	return func(c *Crawler) { c.RateLimiter = limiter }
}

// WithRetryDelays retries failed fetches after the given delays.
func WithRetryDelays(delays []time.Duration) Option {
	return func(c *Crawler) { c.RetryDelays = delays }
}

// WithMaxPages caps the number of pages fetched.
func WithMaxPages(n int) Option {
	return func(c *Crawler) { c.MaxPages = n }
}

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(c *Crawler) { c.Progress = fn }
}

// ExtractTextFromWebsiteURL crawls the site at seedURL with a page fetcher
// obtained from open. The fetcher is closed before returning on every path,
// including failures, so a browser-backed fetcher never outlives the crawl.
func ExtractTextFromWebsiteURL(ctx context.Context, seedURL string, open OpenFunc, opts ...Option) (docs []*sitechat.Document, err error) {
	fetcher, err := open()
	if err != nil {
		return nil, fmt.Errorf("opening page fetcher: %w", err)
	}
	defer func() {
		if cerr := fetcher.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing page fetcher: %w", cerr)
		}
	}()

	c := &Crawler{Fetcher: fetcher}
	for _, opt := range opts {
		opt(c)
	}
	return c.Crawl(ctx, seedURL)
}
