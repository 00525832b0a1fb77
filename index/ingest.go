package index

import (
	"context"

	"github.com/fwojciec/sitechat"
)

// Ensure Ingester implements sitechat.Ingester.
var _ sitechat.Ingester = (*Ingester)(nil)

// CrawlFunc crawls the website at url into documents.
type CrawlFunc func(ctx context.Context, url string) ([]*sitechat.Document, error)

// Ingester crawls a website and indexes the result.
type Ingester struct {
	crawl   CrawlFunc
	indexer sitechat.Indexer
}

// NewIngester creates an Ingester.
func NewIngester(crawl CrawlFunc, indexer sitechat.Indexer) *Ingester {
	return &Ingester{crawl: crawl, indexer: indexer}
}

// Ingest crawls url and indexes every document. A crawl that ends in an
// error indexes nothing.
func (i *Ingester) Ingest(ctx context.Context, url string) (*sitechat.IndexResult, error) {
	if url == "" {
		return nil, sitechat.Errorf(sitechat.EINVALID, "url required")
	}

	docs, err := i.crawl(ctx, url)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, sitechat.Errorf(sitechat.ENOTFOUND, "no documents found at %s", url)
	}

	return i.indexer.Index(ctx, docs)
}
