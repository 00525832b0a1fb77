package index

import (
	"context"
	"fmt"

	"github.com/fwojciec/sitechat"
)

// Ensure Retriever implements sitechat.Retriever.
var _ sitechat.Retriever = (*Retriever)(nil)

// Retriever embeds a query and searches the stored chunks with it.
type Retriever struct {
	Chunks   sitechat.ChunkService
	Embedder sitechat.Embedder

	// MinScore drops results less similar than this.
	MinScore float32
}

// NewRetriever creates a Retriever.
func NewRetriever(chunks sitechat.ChunkService, embedder sitechat.Embedder) *Retriever {
	return &Retriever{Chunks: chunks, Embedder: embedder}
}

// Retrieve returns up to limit chunks closest to query, best first.
func (r *Retriever) Retrieve(ctx context.Context, query string, limit int) ([]sitechat.SearchResult, error) {
	if query == "" {
		return nil, sitechat.Errorf(sitechat.EINVALID, "query required")
	}

	vectors, err := r.Embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, sitechat.Errorf(sitechat.EINTERNAL, "embedder returned %d vectors for 1 query", len(vectors))
	}

	return r.Chunks.Search(ctx, vectors[0], sitechat.SearchOptions{
		Limit:    limit,
		MinScore: r.MinScore,
	})
}
