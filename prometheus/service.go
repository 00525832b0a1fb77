package prometheus

import (
	"context"
	"time"

	"github.com/fwojciec/sitechat"
)

var (
	_ sitechat.PageFetcher = (*PageFetcher)(nil)
	_ sitechat.Indexer     = (*Indexer)(nil)
	_ sitechat.Asker       = (*Asker)(nil)
)

// PageFetcher counts and times the fetches of the wrapped fetcher.
type PageFetcher struct {
	next    sitechat.PageFetcher
	backend string
	metrics *Metrics
}

// NewPageFetcher wraps next. backend labels its metrics.
func NewPageFetcher(next sitechat.PageFetcher, backend string, m *Metrics) *PageFetcher {
	return &PageFetcher{next: next, backend: backend, metrics: m}
}

func (f *PageFetcher) FetchPage(ctx context.Context, url string) (*sitechat.Page, error) {
	start := time.Now()
	page, err := f.next.FetchPage(ctx, url)
	f.metrics.PageFetchDuration.WithLabelValues(f.backend).Observe(time.Since(start).Seconds())
	f.metrics.PageFetches.WithLabelValues(f.backend, code(err)).Inc()
	return page, err
}

func (f *PageFetcher) Close() error {
	return f.next.Close()
}

// Indexer counts the chunks stored and skipped by the wrapped indexer.
type Indexer struct {
	next    sitechat.Indexer
	metrics *Metrics
}

// NewIndexer wraps next.
func NewIndexer(next sitechat.Indexer, m *Metrics) *Indexer {
	return &Indexer{next: next, metrics: m}
}

func (ix *Indexer) Index(ctx context.Context, docs []*sitechat.Document) (*sitechat.IndexResult, error) {
	result, err := ix.next.Index(ctx, docs)
	if err != nil {
		return result, err
	}
	ix.metrics.IndexedChunks.WithLabelValues("stored").Add(float64(result.Chunks))
	ix.metrics.IndexedChunks.WithLabelValues("skipped").Add(float64(result.Skipped))
	return result, nil
}

// Asker counts the questions answered by the wrapped asker.
type Asker struct {
	next    sitechat.Asker
	metrics *Metrics
}

// NewAsker wraps next.
func NewAsker(next sitechat.Asker, m *Metrics) *Asker {
	return &Asker{next: next, metrics: m}
}

func (a *Asker) Ask(ctx context.Context, question string, history []sitechat.ChatMessage) (*sitechat.Answer, error) {
	answer, err := a.next.Ask(ctx, question, history)
	a.metrics.Questions.WithLabelValues(code(err)).Inc()
	return answer, err
}
