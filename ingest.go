package sitechat

import "context"

// IndexResult summarizes one indexing run.
type IndexResult struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
	Skipped   int `json:"skipped"`
	Tokens    int `json:"tokens"`
}

// Indexer splits, embeds and stores documents for retrieval.
type Indexer interface {
	Index(ctx context.Context, docs []*Document) (*IndexResult, error)
}

// Ingester crawls a website and indexes the documents it produces.
type Ingester interface {
	Ingest(ctx context.Context, url string) (*IndexResult, error)
}
