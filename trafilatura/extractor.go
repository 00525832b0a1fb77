// Package trafilatura extracts the main content of a page with go-trafilatura.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/sitechat"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements sitechat.Extractor at compile time.
var _ sitechat.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
type Extractor struct {
	opts trafilatura.Options
}

// Option configures an Extractor.
type Option func(*trafilatura.Options)

// WithLinks keeps hyperlinks in the extracted content.
func WithLinks() Option {
	return func(o *trafilatura.Options) { o.IncludeLinks = true }
}

// WithComments keeps user comment sections in the extracted content.
func WithComments() Option {
	return func(o *trafilatura.Options) { o.ExcludeComments = false }
}

// NewExtractor creates an Extractor. Comment sections are dropped and the
// readability fallback is enabled unless overridden.
func NewExtractor(opts ...Option) *Extractor {
	o := trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Extractor{opts: o}
}

// Extract returns the main content of rawHTML.
// Returns ENOTFOUND if the page has no recognizable main content.
func (e *Extractor) Extract(rawHTML string) (*sitechat.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, sitechat.Errorf(sitechat.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), e.opts)
	if err != nil {
		return nil, err
	}
	if result.ContentNode == nil {
		return nil, sitechat.Errorf(sitechat.ENOTFOUND, "no main content found")
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, result.ContentNode); err != nil {
		return nil, err
	}

	return &sitechat.ExtractResult{
		Title:       strings.TrimSpace(result.Metadata.Title),
		ContentHTML: buf.String(),
	}, nil
}
