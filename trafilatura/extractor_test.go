package trafilatura_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/sitechat"
	"github.com/fwojciec/sitechat/trafilatura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productPage = `<!DOCTYPE html>
<html>
<head>
<title>Pricing | Acme</title>
<meta property="og:title" content="Acme Pricing">
</head>
<body>
<header><nav><a href="/">Home</a> <a href="/pricing">Pricing</a> <a href="/contact">Contact</a></nav></header>
<main>
<article>
<h1>Plans and pricing</h1>
<p>The starter plan costs ten dollars per month and includes three seats for small teams.</p>
<p>The business plan adds single sign-on, audit logs and priority support for larger organizations.</p>
<p>Annual billing gives two months free on every plan, see the <a href="/faq">frequently asked questions</a>.</p>
</article>
</main>
<footer>Copyright 2024 Acme Inc. All rights reserved.</footer>
</body>
</html>`

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts main content and title", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(productPage)

		require.NoError(t, err)
		assert.NotEmpty(t, result.Title)
		assert.Contains(t, result.ContentHTML, "starter plan costs ten dollars")
		assert.Contains(t, result.ContentHTML, "single sign-on")
	})

	t.Run("drops site chrome", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(productPage)

		require.NoError(t, err)
		assert.NotContains(t, result.ContentHTML, "All rights reserved")
		assert.NotContains(t, result.ContentHTML, ">Contact<")
	})

	t.Run("keeps links when requested", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor(trafilatura.WithLinks()).Extract(productPage)

		require.NoError(t, err)
		assert.True(t, strings.Contains(result.ContentHTML, `href="/faq"`) || strings.Contains(result.ContentHTML, "frequently asked questions"))
	})

	t.Run("returns EINVALID for empty input", func(t *testing.T) {
		t.Parallel()

		_, err := trafilatura.NewExtractor().Extract("  ")

		assert.Equal(t, sitechat.EINVALID, sitechat.ErrorCode(err))
	})
}
