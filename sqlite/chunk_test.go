package sqlite_test

import (
	"context"
	"testing"

	"github.com/fwojciec/sitechat"
	"github.com/fwojciec/sitechat/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunk(url, content, hash string, position int, embedding ...float32) *sitechat.Chunk {
	return &sitechat.Chunk{
		SourceURL:   url,
		Title:       "Title of " + url,
		Content:     content,
		ContentHash: hash,
		Position:    position,
		Embedding:   embedding,
	}
}

func TestChunkService_CreateChunks(t *testing.T) {
	t.Parallel()

	t.Run("stores chunks with embeddings", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewChunkService(MustOpenDB(t))
		ctx := context.Background()
		c := chunk("https://a.com/", "hello", "h1", 0, 0.5, -0.25, 1)

		require.NoError(t, svc.CreateChunks(ctx, []*sitechat.Chunk{c}))
		assert.NotEmpty(t, c.ID)
		assert.False(t, c.CreatedAt.IsZero())

		got, err := svc.FindChunks(ctx, sitechat.ChunkFilter{})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, c.ID, got[0].ID)
		assert.Equal(t, "hello", got[0].Content)
		assert.Equal(t, []float32{0.5, -0.25, 1}, got[0].Embedding)
	})

	t.Run("skips chunks with a stored content hash for the same source", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewChunkService(MustOpenDB(t))
		ctx := context.Background()

		require.NoError(t, svc.CreateChunks(ctx, []*sitechat.Chunk{chunk("https://a.com/", "same", "h", 0, 1)}))
		require.NoError(t, svc.CreateChunks(ctx, []*sitechat.Chunk{chunk("https://a.com/", "same", "h", 1, 1)}))

		got, err := svc.FindChunks(ctx, sitechat.ChunkFilter{})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("keeps repeated content for each source", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewChunkService(MustOpenDB(t))
		ctx := context.Background()

		require.NoError(t, svc.CreateChunks(ctx, []*sitechat.Chunk{chunk("https://a.com/", "footer", "h", 0, 1)}))
		require.NoError(t, svc.CreateChunks(ctx, []*sitechat.Chunk{chunk("https://a.com/b", "footer", "h", 0, 1)}))

		got, err := svc.FindChunks(ctx, sitechat.ChunkFilter{})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "https://a.com/", got[0].SourceURL)
		assert.Equal(t, "https://a.com/b", got[1].SourceURL)
	})

	t.Run("rejects invalid chunks without writing any", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewChunkService(MustOpenDB(t))
		ctx := context.Background()

		err := svc.CreateChunks(ctx, []*sitechat.Chunk{
			chunk("https://a.com/", "ok", "h1", 0, 1),
			chunk("https://a.com/", "no embedding", "h2", 1),
		})

		assert.Equal(t, sitechat.EINVALID, sitechat.ErrorCode(err))
		got, err := svc.FindChunks(ctx, sitechat.ChunkFilter{})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestChunkService_FindChunks(t *testing.T) {
	t.Parallel()

	svc := sqlite.NewChunkService(MustOpenDB(t))
	ctx := context.Background()
	require.NoError(t, svc.CreateChunks(ctx, []*sitechat.Chunk{
		chunk("https://a.com/b", "b1", "hb1", 1, 1),
		chunk("https://a.com/b", "b0", "hb0", 0, 1),
		chunk("https://a.com/a", "a0", "ha0", 0, 1),
	}))

	t.Run("orders by source and position", func(t *testing.T) {
		t.Parallel()

		got, err := svc.FindChunks(ctx, sitechat.ChunkFilter{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []string{"a0", "b0", "b1"}, []string{got[0].Content, got[1].Content, got[2].Content})
	})

	t.Run("filters by source URL", func(t *testing.T) {
		t.Parallel()

		url := "https://a.com/b"
		got, err := svc.FindChunks(ctx, sitechat.ChunkFilter{SourceURL: &url})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("filters by content hash", func(t *testing.T) {
		t.Parallel()

		hash := "ha0"
		got, err := svc.FindChunks(ctx, sitechat.ChunkFilter{ContentHash: &hash})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "a0", got[0].Content)
	})

	t.Run("paginates", func(t *testing.T) {
		t.Parallel()

		got, err := svc.FindChunks(ctx, sitechat.ChunkFilter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "b0", got[0].Content)
	})
}

func TestChunkService_DeleteChunksBySource(t *testing.T) {
	t.Parallel()

	svc := sqlite.NewChunkService(MustOpenDB(t))
	ctx := context.Background()
	require.NoError(t, svc.CreateChunks(ctx, []*sitechat.Chunk{
		chunk("https://a.com/", "a", "ha", 0, 1),
		chunk("https://a.com/keep", "k", "hk", 0, 1),
	}))

	require.NoError(t, svc.DeleteChunksBySource(ctx, "https://a.com/"))

	got, err := svc.FindChunks(ctx, sitechat.ChunkFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://a.com/keep", got[0].SourceURL)

	err = svc.DeleteChunksBySource(ctx, "https://a.com/")
	assert.Equal(t, sitechat.ENOTFOUND, sitechat.ErrorCode(err))
}

func TestChunkService_ListSources(t *testing.T) {
	t.Parallel()

	svc := sqlite.NewChunkService(MustOpenDB(t))
	ctx := context.Background()
	require.NoError(t, svc.CreateChunks(ctx, []*sitechat.Chunk{
		chunk("https://a.com/z", "z0", "hz0", 0, 1),
		chunk("https://a.com/b", "b0", "hb0", 0, 1),
		chunk("https://a.com/b", "b1", "hb1", 1, 1),
	}))

	sources, err := svc.ListSources(ctx)

	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, &sitechat.Source{URL: "https://a.com/b", Title: "Title of https://a.com/b", Chunks: 2}, sources[0])
	assert.Equal(t, "https://a.com/z", sources[1].URL)
}

func TestChunkService_Search(t *testing.T) {
	t.Parallel()

	svc := sqlite.NewChunkService(MustOpenDB(t))
	ctx := context.Background()
	require.NoError(t, svc.CreateChunks(ctx, []*sitechat.Chunk{
		chunk("https://a.com/x", "x axis", "hx", 0, 1, 0),
		chunk("https://a.com/y", "y axis", "hy", 0, 0, 1),
		chunk("https://a.com/d", "diagonal", "hd", 0, 1, 1),
	}))

	t.Run("returns best matches first", func(t *testing.T) {
		t.Parallel()

		results, err := svc.Search(ctx, []float32{1, 0.1}, sitechat.SearchOptions{Limit: 2})

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "x axis", results[0].Chunk.Content)
		assert.Equal(t, "diagonal", results[1].Chunk.Content)
		assert.Greater(t, results[0].Score, results[1].Score)
	})

	t.Run("drops results below min score", func(t *testing.T) {
		t.Parallel()

		results, err := svc.Search(ctx, []float32{1, 0}, sitechat.SearchOptions{MinScore: 0.5})

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	})

	t.Run("returns EINVALID for empty embedding", func(t *testing.T) {
		t.Parallel()

		_, err := svc.Search(ctx, nil, sitechat.SearchOptions{})

		assert.Equal(t, sitechat.EINVALID, sitechat.ErrorCode(err))
	})
}
