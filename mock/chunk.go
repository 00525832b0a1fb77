package mock

import (
	"context"

	"github.com/fwojciec/sitechat"
)

var (
	_ sitechat.ChunkService = (*ChunkService)(nil)
	_ sitechat.Retriever    = (*Retriever)(nil)
)

// ChunkService is a mock implementation of sitechat.ChunkService.
type ChunkService struct {
	CreateChunksFn         func(ctx context.Context, chunks []*sitechat.Chunk) error
	FindChunksFn           func(ctx context.Context, filter sitechat.ChunkFilter) ([]*sitechat.Chunk, error)
	DeleteChunksBySourceFn func(ctx context.Context, sourceURL string) error
	ListSourcesFn          func(ctx context.Context) ([]*sitechat.Source, error)
	SearchFn               func(ctx context.Context, embedding []float32, opts sitechat.SearchOptions) ([]sitechat.SearchResult, error)
}

func (s *ChunkService) CreateChunks(ctx context.Context, chunks []*sitechat.Chunk) error {
	return s.CreateChunksFn(ctx, chunks)
}

func (s *ChunkService) FindChunks(ctx context.Context, filter sitechat.ChunkFilter) ([]*sitechat.Chunk, error) {
	return s.FindChunksFn(ctx, filter)
}

func (s *ChunkService) DeleteChunksBySource(ctx context.Context, sourceURL string) error {
	return s.DeleteChunksBySourceFn(ctx, sourceURL)
}

func (s *ChunkService) ListSources(ctx context.Context) ([]*sitechat.Source, error) {
	return s.ListSourcesFn(ctx)
}

func (s *ChunkService) Search(ctx context.Context, embedding []float32, opts sitechat.SearchOptions) ([]sitechat.SearchResult, error) {
	return s.SearchFn(ctx, embedding, opts)
}

// Retriever is a mock implementation of sitechat.Retriever.
type Retriever struct {
	RetrieveFn func(ctx context.Context, query string, limit int) ([]sitechat.SearchResult, error)
}

func (r *Retriever) Retrieve(ctx context.Context, query string, limit int) ([]sitechat.SearchResult, error) {
	return r.RetrieveFn(ctx, query, limit)
}
