package sitechat_test

import (
	"testing"

	"github.com/fwojciec/sitechat"
	"github.com/stretchr/testify/assert"
)

func TestFormatContext(t *testing.T) {
	t.Parallel()

	t.Run("formats single passage with title", func(t *testing.T) {
		t.Parallel()

		results := []sitechat.SearchResult{
			{Chunk: &sitechat.Chunk{Title: "Getting Started", Content: "Welcome to the site."}},
		}

		result := sitechat.FormatContext(results)

		assert.Equal(t, "## Source: Getting Started\nWelcome to the site.", result)
	})

	t.Run("uses source URL when title is empty", func(t *testing.T) {
		t.Parallel()

		results := []sitechat.SearchResult{
			{Chunk: &sitechat.Chunk{SourceURL: "https://example.com/about", Content: "Some content."}},
		}

		result := sitechat.FormatContext(results)

		assert.Equal(t, "## Source: https://example.com/about\nSome content.", result)
	})

	t.Run("separates passages with a blank line", func(t *testing.T) {
		t.Parallel()

		results := []sitechat.SearchResult{
			{Chunk: &sitechat.Chunk{Title: "One", Content: "First."}},
			{Chunk: &sitechat.Chunk{Title: "Two", Content: "Second."}},
		}

		result := sitechat.FormatContext(results)

		assert.Equal(t, "## Source: One\nFirst.\n\n## Source: Two\nSecond.", result)
	})

	t.Run("returns empty string for nil slice", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, sitechat.FormatContext(nil))
	})
}

func TestChunk_Document(t *testing.T) {
	t.Parallel()

	chunk := &sitechat.Chunk{SourceURL: "https://example.com/a", Title: "A", Content: "text"}

	doc := chunk.Document()

	assert.Equal(t, "text", doc.PageContent)
	assert.Equal(t, "https://example.com/a", doc.Metadata.URL)
	assert.Equal(t, "A", doc.Metadata.Title)
}

func TestChunk_Validate(t *testing.T) {
	t.Parallel()

	t.Run("requires source URL", func(t *testing.T) {
		t.Parallel()

		err := (&sitechat.Chunk{Content: "x", Embedding: []float32{1}}).Validate()

		assert.Equal(t, sitechat.EINVALID, sitechat.ErrorCode(err))
	})

	t.Run("requires embedding", func(t *testing.T) {
		t.Parallel()

		err := (&sitechat.Chunk{SourceURL: "https://example.com/", Content: "x"}).Validate()

		assert.Equal(t, sitechat.EINVALID, sitechat.ErrorCode(err))
	})

	t.Run("accepts complete chunk", func(t *testing.T) {
		t.Parallel()

		err := (&sitechat.Chunk{SourceURL: "https://example.com/", Content: "x", Embedding: []float32{1}}).Validate()

		assert.NoError(t, err)
	})
}
