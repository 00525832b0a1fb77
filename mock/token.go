package mock

import (
	"context"

	"github.com/fwojciec/sitechat"
)

var (
	_ sitechat.TokenCounter = (*TokenCounter)(nil)
	_ sitechat.Embedder     = (*Embedder)(nil)
)

// TokenCounter is a mock implementation of sitechat.TokenCounter.
type TokenCounter struct {
	CountTokensFn func(ctx context.Context, text string) (int, error)
}

func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	return tc.CountTokensFn(ctx, text)
}

// Embedder is a mock implementation of sitechat.Embedder.
type Embedder struct {
	EmbedFn func(ctx context.Context, texts []string) ([][]float32, error)
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return e.EmbedFn(ctx, texts)
}
