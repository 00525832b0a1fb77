package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/fwojciec/sitechat"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ sitechat.ChunkService = (*ChunkService)(nil)

// ChunkService implements sitechat.ChunkService using SQLite.
// Embeddings are stored as little-endian float32 blobs and searched by
// cosine similarity in process.
type ChunkService struct {
	db *DB
}

// NewChunkService creates a new ChunkService.
func NewChunkService(db *DB) *ChunkService {
	return &ChunkService{db: db}
}

// CreateChunks creates multiple chunks in a single transaction.
// Chunks whose content hash is already stored for the same source URL are
// skipped.
func (s *ChunkService) CreateChunks(ctx context.Context, chunks []*sitechat.Chunk) error {
	for _, c := range chunks {
		if err := c.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, source_url, title, content, content_hash, position, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_url, content_hash) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, c := range chunks {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		c.CreatedAt = now
		if _, err := stmt.ExecContext(ctx, c.ID, c.SourceURL, c.Title, c.Content, c.ContentHash,
			c.Position, encodeEmbedding(c.Embedding), c.CreatedAt.Format(time.RFC3339)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FindChunks retrieves chunks matching the filter ordered by source URL and position.
func (s *ChunkService) FindChunks(ctx context.Context, filter sitechat.ChunkFilter) ([]*sitechat.Chunk, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`
		SELECT id, source_url, title, content, content_hash, position, embedding, created_at
		FROM chunks
		WHERE 1 = 1`)

	if filter.SourceURL != nil {
		query.WriteString(" AND source_url = ?")
		args = append(args, *filter.SourceURL)
	}
	if filter.ContentHash != nil {
		query.WriteString(" AND content_hash = ?")
		args = append(args, *filter.ContentHash)
	}

	query.WriteString(" ORDER BY source_url, position")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*sitechat.Chunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// DeleteChunksBySource removes all chunks extracted from a page.
// Returns ENOTFOUND if the page has no chunks.
func (s *ChunkService) DeleteChunksBySource(ctx context.Context, sourceURL string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE source_url = ?`, sourceURL)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sitechat.Errorf(sitechat.ENOTFOUND, "no chunks for %s", sourceURL)
	}
	return nil
}

// ListSources lists the indexed pages ordered by URL.
func (s *ChunkService) ListSources(ctx context.Context) ([]*sitechat.Source, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source_url, MAX(title), COUNT(*)
		FROM chunks
		GROUP BY source_url
		ORDER BY source_url
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []*sitechat.Source
	for rows.Next() {
		var src sitechat.Source
		if err := rows.Scan(&src.URL, &src.Title, &src.Chunks); err != nil {
			return nil, err
		}
		sources = append(sources, &src)
	}
	return sources, rows.Err()
}

// Search returns the chunks most similar to embedding, best first.
// Chunks scoring below opts.MinScore are dropped.
func (s *ChunkService) Search(ctx context.Context, embedding []float32, opts sitechat.SearchOptions) ([]sitechat.SearchResult, error) {
	if len(embedding) == 0 {
		return nil, sitechat.Errorf(sitechat.EINVALID, "search embedding required")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_url, title, content, content_hash, position, embedding, created_at
		FROM chunks
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []sitechat.SearchResult
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		score := cosine(embedding, c.Embedding)
		if score < opts.MinScore {
			continue
		}
		results = append(results, sitechat.SearchResult{Chunk: c, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

func scanChunk(rows *sql.Rows) (*sitechat.Chunk, error) {
	var c sitechat.Chunk
	var blob []byte
	var createdAt string

	if err := rows.Scan(&c.ID, &c.SourceURL, &c.Title, &c.Content, &c.ContentHash,
		&c.Position, &blob, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if c.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if c.Embedding, err = decodeEmbedding(blob); err != nil {
		return nil, err
	}
	return &c, nil
}

func encodeEmbedding(v []float32) []byte {
	b := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(f))
	}
	return b
}

func decodeEmbedding(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, sitechat.Errorf(sitechat.EINTERNAL, "corrupt embedding of %d bytes", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, nil
}

// cosine returns the cosine similarity of a and b, or 0 when the vectors
// differ in length or either is zero.
func cosine(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
