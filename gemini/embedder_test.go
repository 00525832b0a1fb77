package gemini_test

import (
	"context"
	"testing"

	"github.com/fwojciec/sitechat"
	"github.com/fwojciec/sitechat/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedder_Embed_EmptyInputMakesNoRequest(t *testing.T) {
	t.Parallel()

	var e sitechat.Embedder = gemini.NewEmbedder(nil, "") // nil client is never used

	vectors, err := e.Embed(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, vectors)
}
