// Package fs writes crawled documents to disk as markdown files.
package fs

import (
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/fwojciec/sitechat"
	"gopkg.in/yaml.v3"
)

// URLToPath converts a page URL to a relative file path rooted at the host.
// Example: https://example.com/docs/api?v=2 → example.com/docs/api_v=2.md
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", sitechat.Errorf(sitechat.EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	if u.Host == "" {
		return "", sitechat.Errorf(sitechat.EINVALID, "URL has no host: %q", rawURL)
	}
	for _, segment := range strings.Split(u.Path, "/") {
		if segment == ".." {
			return "", sitechat.Errorf(sitechat.EINVALID, "path traversal in URL %q", rawURL)
		}
	}

	p := strings.TrimPrefix(u.Path, "/")
	if p == "" || strings.HasSuffix(p, "/") {
		p += "index"
	}
	p = strings.TrimSuffix(p, ".html")
	if u.RawQuery != "" {
		p += "_" + sanitize(u.RawQuery)
	}

	return path.Join(sanitize(strings.ToLower(u.Host)), p+".md"), nil
}

// sanitize replaces characters that are unsafe in file names.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_' || r == '=':
			return r
		}
		return '_'
	}, s)
}

// frontmatter is the YAML header of a saved document.
type frontmatter struct {
	Source  string `yaml:"source"`
	Title   string `yaml:"title"`
	Crawled string `yaml:"crawled"`
}

// FormatDocument formats a document as markdown with YAML frontmatter.
func FormatDocument(doc *sitechat.Document, crawled time.Time) (string, error) {
	header, err := yaml.Marshal(frontmatter{
		Source:  doc.Metadata.URL,
		Title:   doc.Metadata.Title,
		Crawled: crawled.Format(time.DateOnly),
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(header)
	b.WriteString("---\n\n")
	b.WriteString(doc.PageContent)
	return b.String(), nil
}
