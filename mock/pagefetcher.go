package mock

import (
	"context"

	"github.com/fwojciec/sitechat"
)

// Compile-time interface verification.
var (
	_ sitechat.PageFetcher   = (*PageFetcher)(nil)
	_ sitechat.DomainLimiter = (*DomainLimiter)(nil)
)

// PageFetcher is a mock implementation of sitechat.PageFetcher.
type PageFetcher struct {
	FetchPageFn func(ctx context.Context, url string) (*sitechat.Page, error)
	CloseFn     func() error
}

func (f *PageFetcher) FetchPage(ctx context.Context, url string) (*sitechat.Page, error) {
	return f.FetchPageFn(ctx, url)
}

func (f *PageFetcher) Close() error {
	return f.CloseFn()
}

// DomainLimiter is a mock implementation of sitechat.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
