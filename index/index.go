// Package index turns crawled documents into embedded chunks and retrieves
// the chunks most relevant to a question.
package index

import (
	"context"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/sitechat"
	"github.com/fwojciec/sitechat/bloom"
	"golang.org/x/sync/errgroup"
)

// Ensure Indexer implements sitechat.Indexer.
var _ sitechat.Indexer = (*Indexer)(nil)

// Default indexing parameters.
const (
	DefaultBatchSize   = 50
	DefaultConcurrency = 4

	// warmPageSize is the page size used to load known hashes from the store.
	warmPageSize = 500
)

// ContentHash returns the hex-encoded xxhash of content.
func ContentHash(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}

// Indexer splits documents into chunks, embeds the chunks not already
// stored, and saves them.
type Indexer struct {
	Chunks   sitechat.ChunkService
	Embedder sitechat.Embedder

	// Tokens, when set, counts the tokens of newly indexed chunks.
	Tokens sitechat.TokenCounter

	ChunkSize    int
	ChunkOverlap int

	// BatchSize is the number of chunks per embedding request.
	BatchSize int

	// Concurrency limits the embedding requests in flight.
	Concurrency int

	mu     sync.Mutex
	known  *bloom.Filter
	warmed bool
}

// NewIndexer creates an Indexer with default chunking and batching.
func NewIndexer(chunks sitechat.ChunkService, embedder sitechat.Embedder) *Indexer {
	return &Indexer{
		Chunks:       chunks,
		Embedder:     embedder,
		ChunkSize:    sitechat.DefaultChunkSize,
		ChunkOverlap: sitechat.DefaultChunkOverlap,
		BatchSize:    DefaultBatchSize,
		Concurrency:  DefaultConcurrency,
	}
}

// Index splits and stores docs. Chunks whose content is already stored for
// the same page are skipped. Nothing is stored if any embedding request fails.
func (ix *Indexer) Index(ctx context.Context, docs []*sitechat.Document) (*sitechat.IndexResult, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if err := ix.warm(ctx); err != nil {
		return nil, err
	}

	result := &sitechat.IndexResult{}
	pending := make(map[string]bool)
	var chunks []*sitechat.Chunk

	for _, doc := range docs {
		if err := doc.Validate(); err != nil {
			return nil, err
		}
		result.Documents++

		for i, content := range sitechat.SplitText(doc.PageContent, ix.ChunkSize, ix.ChunkOverlap) {
			hash := ContentHash(content)
			key := chunkKey(doc.Metadata.URL, hash)
			if pending[key] {
				result.Skipped++
				continue
			}
			stored, err := ix.stored(ctx, doc.Metadata.URL, hash)
			if err != nil {
				return nil, err
			}
			if stored {
				result.Skipped++
				continue
			}
			pending[key] = true
			chunks = append(chunks, &sitechat.Chunk{
				SourceURL:   doc.Metadata.URL,
				Title:       doc.Metadata.Title,
				Content:     content,
				ContentHash: hash,
				Position:    i,
			})
		}
	}

	if len(chunks) == 0 {
		return result, nil
	}

	if err := ix.embed(ctx, chunks); err != nil {
		return nil, err
	}
	if err := ix.Chunks.CreateChunks(ctx, chunks); err != nil {
		return nil, err
	}
	for _, c := range chunks {
		ix.known.Add(chunkKey(c.SourceURL, c.ContentHash))
	}
	result.Chunks = len(chunks)

	if ix.Tokens != nil {
		for _, c := range chunks {
			n, err := ix.Tokens.CountTokens(ctx, c.Content)
			if err != nil {
				return nil, fmt.Errorf("counting tokens: %w", err)
			}
			result.Tokens += n
		}
	}

	return result, nil
}

// warm loads the hashes of all stored chunks into the filter once, so a
// negative filter answer means the hash is not stored.
func (ix *Indexer) warm(ctx context.Context) error {
	if ix.warmed {
		return nil
	}
	ix.known = bloom.NewFilter(bloom.DefaultCapacity, bloom.DefaultFalsePositiveRate)

	for offset := 0; ; offset += warmPageSize {
		page, err := ix.Chunks.FindChunks(ctx, sitechat.ChunkFilter{Offset: offset, Limit: warmPageSize})
		if err != nil {
			return fmt.Errorf("loading stored chunks: %w", err)
		}
		for _, c := range page {
			ix.known.Add(chunkKey(c.SourceURL, c.ContentHash))
		}
		if len(page) < warmPageSize {
			break
		}
	}

	ix.warmed = true
	return nil
}

// chunkKey identifies a chunk by page and content. Text repeated across
// pages, such as navigation, is kept once per page so every page stays
// citable.
func chunkKey(sourceURL, hash string) string {
	return sourceURL + "\x00" + hash
}

// stored reports whether the page at sourceURL has a chunk with hash in the
// store. The store is only consulted when the filter reports a possible match.
func (ix *Indexer) stored(ctx context.Context, sourceURL, hash string) (bool, error) {
	if !ix.known.MayContain(chunkKey(sourceURL, hash)) {
		return false, nil
	}
	found, err := ix.Chunks.FindChunks(ctx, sitechat.ChunkFilter{SourceURL: &sourceURL, ContentHash: &hash, Limit: 1})
	if err != nil {
		return false, fmt.Errorf("looking up chunk: %w", err)
	}
	return len(found) > 0, nil
}

// embed fills in the embedding of every chunk, one request per batch.
func (ix *Indexer) embed(ctx context.Context, chunks []*sitechat.Chunk) error {
	size := ix.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	concurrency := ix.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for start := 0; start < len(chunks); start += size {
		batch := chunks[start:min(start+size, len(chunks))]
		g.Go(func() error {
			texts := make([]string, len(batch))
			for i, c := range batch {
				texts[i] = c.Content
			}
			vectors, err := ix.Embedder.Embed(gctx, texts)
			if err != nil {
				return fmt.Errorf("embedding chunks: %w", err)
			}
			if len(vectors) != len(batch) {
				return sitechat.Errorf(sitechat.EINTERNAL, "embedder returned %d vectors for %d texts", len(vectors), len(batch))
			}
			for i, c := range batch {
				c.Embedding = vectors[i]
			}
			return nil
		})
	}

	return g.Wait()
}
