package crawl

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/fwojciec/sitechat"
)

// ContentDiffers compares a statically fetched page with the same page
// rendered in a browser. It returns true if the rendered content is more
// than 50% longer, suggesting JavaScript rendering adds meaningful content.
//
// When extractor is non-nil the main content of each page's HTML is
// compared, and an extraction error counts as a difference. Otherwise the
// whitespace-normalized page text is compared.
func ContentDiffers(static, rendered *sitechat.Page, extractor sitechat.Extractor) bool {
	staticLen, err := contentLen(static, extractor)
	if err != nil {
		return true
	}
	renderedLen, err := contentLen(rendered, extractor)
	if err != nil {
		return true
	}

	if staticLen == 0 && renderedLen > 0 {
		return true
	}

	threshold := float64(staticLen) * 1.5
	return float64(renderedLen) > threshold
}

func contentLen(page *sitechat.Page, extractor sitechat.Extractor) (int, error) {
	if extractor == nil {
		return len(strings.Join(strings.Fields(page.Text), " ")), nil
	}
	result, err := extractor.Extract(page.HTML)
	if err != nil {
		return 0, err
	}
	return len(result.ContentHTML), nil
}

// SelectFetcher probes seedURL with both fetchers and returns the one whose
// output should be used for the crawl. The rendered fetcher is chosen when
// the static fetch fails or when rendering adds substantial content.
// The fetcher that is not chosen is closed. The chosen fetcher serves its
// probe page the first time the seed is fetched, so the seed is not
// downloaded again by the crawl.
func SelectFetcher(ctx context.Context, seedURL string, static, rendered sitechat.PageFetcher, extractor sitechat.Extractor) (sitechat.PageFetcher, error) {
	staticPage, staticErr := static.FetchPage(ctx, seedURL)
	renderedPage, renderedErr := rendered.FetchPage(ctx, seedURL)

	if err := ctx.Err(); err != nil {
		_ = static.Close()
		_ = rendered.Close()
		return nil, err
	}

	useRendered := false
	switch {
	case staticErr != nil && renderedErr != nil:
		_ = static.Close()
		_ = rendered.Close()
		return nil, sitechat.Errorf(sitechat.EUNAVAILABLE, "probing %s: %v", seedURL, staticErr)
	case staticErr != nil:
		useRendered = true
	case renderedErr != nil:
		useRendered = false
	default:
		useRendered = ContentDiffers(staticPage, renderedPage, extractor)
	}

	if useRendered {
		if err := static.Close(); err != nil {
			_ = rendered.Close()
			return nil, err
		}
		return newProbedFetcher(rendered, seedURL, renderedPage), nil
	}
	if err := rendered.Close(); err != nil {
		_ = static.Close()
		return nil, err
	}
	return newProbedFetcher(static, seedURL, staticPage), nil
}

// AutoFetcher selects between static and a rendered fetcher obtained from
// openRendered. When no rendered fetcher can be opened, for example because
// no browser is installed, the static fetcher is used without probing.
func AutoFetcher(ctx context.Context, seedURL string, static sitechat.PageFetcher, openRendered OpenFunc, extractor sitechat.Extractor, logger *slog.Logger) (sitechat.PageFetcher, error) {
	rendered, err := openRendered()
	if err != nil {
		if logger != nil {
			logger.Warn("rendered backend unavailable, using static", "err", err)
		}
		return static, nil
	}
	return SelectFetcher(ctx, seedURL, static, rendered, extractor)
}

// probedFetcher serves a page fetched while probing once before delegating
// to the wrapped fetcher.
type probedFetcher struct {
	sitechat.PageFetcher

	mu   sync.Mutex
	url  string
	page *sitechat.Page
}

func newProbedFetcher(f sitechat.PageFetcher, seedURL string, page *sitechat.Page) *probedFetcher {
	key, err := Canonicalize(seedURL)
	if err != nil {
		key = seedURL
	}
	return &probedFetcher{PageFetcher: f, url: key, page: page}
}

func (f *probedFetcher) FetchPage(ctx context.Context, url string) (*sitechat.Page, error) {
	f.mu.Lock()
	if f.page != nil {
		if key, err := Canonicalize(url); err == nil && key == f.url {
			page := f.page
			f.page = nil
			f.mu.Unlock()
			return page, nil
		}
	}
	f.mu.Unlock()
	return f.PageFetcher.FetchPage(ctx, url)
}
