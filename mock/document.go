package mock

import (
	"context"

	"github.com/fwojciec/sitechat"
)

var (
	_ sitechat.DocumentStore = (*DocumentStore)(nil)
	_ sitechat.Indexer       = (*Indexer)(nil)
	_ sitechat.Ingester      = (*Ingester)(nil)
)

// DocumentStore is a mock implementation of sitechat.DocumentStore.
type DocumentStore struct {
	SaveFn   func(ctx context.Context, doc *sitechat.Document) error
	CommitFn func() error
	AbortFn  func() error
}

func (s *DocumentStore) Save(ctx context.Context, doc *sitechat.Document) error {
	return s.SaveFn(ctx, doc)
}

func (s *DocumentStore) Commit() error {
	return s.CommitFn()
}

func (s *DocumentStore) Abort() error {
	return s.AbortFn()
}

// Indexer is a mock implementation of sitechat.Indexer.
type Indexer struct {
	IndexFn func(ctx context.Context, docs []*sitechat.Document) (*sitechat.IndexResult, error)
}

func (i *Indexer) Index(ctx context.Context, docs []*sitechat.Document) (*sitechat.IndexResult, error) {
	return i.IndexFn(ctx, docs)
}

// Ingester is a mock implementation of sitechat.Ingester.
type Ingester struct {
	IngestFn func(ctx context.Context, url string) (*sitechat.IndexResult, error)
}

func (i *Ingester) Ingest(ctx context.Context, url string) (*sitechat.IndexResult, error) {
	return i.IngestFn(ctx, url)
}
