package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitechat"
)

var (
	_ sitechat.Fetcher     = (*LoggingFetcher)(nil)
	_ sitechat.PageFetcher = (*LoggingPageFetcher)(nil)
)

// LoggingFetcher wraps a Fetcher with debug logging of raw fetches.
type LoggingFetcher struct {
	next   sitechat.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next sitechat.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch logs the URL being fetched and delegates to the wrapped fetcher.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (html string, err error) {
	defer func(begin time.Time) {
		f.logger.Debug("fetch",
			"url", url,
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}

// LoggingPageFetcher wraps a PageFetcher with logging.
type LoggingPageFetcher struct {
	next    sitechat.PageFetcher
	logger  *slog.Logger
	backend string
}

// NewLoggingPageFetcher creates a new LoggingPageFetcher. backend names the
// wrapped fetcher in log records.
func NewLoggingPageFetcher(next sitechat.PageFetcher, backend string, logger *slog.Logger) *LoggingPageFetcher {
	return &LoggingPageFetcher{next: next, logger: logger, backend: backend}
}

// FetchPage logs the page fetch and delegates to the wrapped fetcher.
func (f *LoggingPageFetcher) FetchPage(ctx context.Context, url string) (page *sitechat.Page, err error) {
	defer func(begin time.Time) {
		var chars, links int
		if page != nil {
			chars, links = len(page.Text), len(page.Links)
		}
		f.logger.Log(ctx, level(err), "fetch page",
			"backend", f.backend,
			"url", url,
			"chars", chars,
			"links", links,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.FetchPage(ctx, url)
}

// Close logs and delegates to the wrapped fetcher.
func (f *LoggingPageFetcher) Close() (err error) {
	defer func() {
		f.logger.Debug("close page fetcher", "backend", f.backend, "err", err)
	}()
	return f.next.Close()
}
