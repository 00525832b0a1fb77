package sitechat

import (
	"context"
	"time"
)

// Chunk represents a section of a document optimized for embedding and retrieval.
type Chunk struct {
	ID          string    `json:"id"`
	SourceURL   string    `json:"sourceUrl"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	ContentHash string    `json:"contentHash"`
	Position    int       `json:"position"` // Position within the source document
	Embedding   []float32 `json:"embedding,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Validate returns an error if the chunk contains invalid fields.
func (c *Chunk) Validate() error {
	if c.SourceURL == "" {
		return Errorf(EINVALID, "chunk source URL required")
	}
	if c.Content == "" {
		return Errorf(EINVALID, "chunk content required")
	}
	if len(c.Embedding) == 0 {
		return Errorf(EINVALID, "chunk embedding required")
	}
	return nil
}

// Document returns the chunk as a Document for use as a cited source.
func (c *Chunk) Document() *Document {
	return &Document{
		PageContent: c.Content,
		Metadata: DocumentMetadata{
			URL:   c.SourceURL,
			Title: c.Title,
		},
	}
}

// Source summarizes the indexed chunks of one page.
type Source struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Chunks int    `json:"chunks"`
}

// ChunkService represents a service for managing chunks.
type ChunkService interface {
	// CreateChunks creates multiple chunks in a single transaction.
	CreateChunks(ctx context.Context, chunks []*Chunk) error

	// FindChunks retrieves chunks matching the filter.
	FindChunks(ctx context.Context, filter ChunkFilter) ([]*Chunk, error)

	// DeleteChunksBySource removes all chunks extracted from a page.
	DeleteChunksBySource(ctx context.Context, sourceURL string) error

	// ListSources lists the indexed pages ordered by URL.
	ListSources(ctx context.Context) ([]*Source, error)

	// Search returns the chunks closest to the embedding, best first.
	Search(ctx context.Context, embedding []float32, opts SearchOptions) ([]SearchResult, error)
}

// ChunkFilter represents a filter for FindChunks.
type ChunkFilter struct {
	SourceURL   *string `json:"sourceUrl"`
	ContentHash *string `json:"contentHash"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// SearchOptions configures search behavior.
type SearchOptions struct {
	// Maximum number of results to return
	Limit int `json:"limit,omitempty"`

	// Minimum similarity score (-1 to 1)
	MinScore float32 `json:"minScore,omitempty"`
}

// SearchResult represents a search match.
type SearchResult struct {
	Chunk *Chunk  `json:"chunk"`
	Score float32 `json:"score"`
}

// Retriever finds the passages most relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, limit int) ([]SearchResult, error)
}
