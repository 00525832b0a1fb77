package crawl

import (
	"fmt"
	"net/url"
	"strings"
)

// Scope decides which links discovered during a crawl are followed.
// A link is in scope when it belongs to the same site as the seed URL, where
// "same site" means sharing the last two labels of the hostname.
type Scope struct {
	key string
}

// NewScope creates a Scope for a crawl starting at seedURL.
func NewScope(seedURL string) (*Scope, error) {
	u, err := canonicalURL(seedURL)
	if err != nil {
		return nil, err
	}
	return &Scope{key: SiteKey(u.Hostname())}, nil
}

// Key returns the site key of the seed URL.
func (s *Scope) Key() string {
	return s.key
}

// Resolve decides whether href, found on the page at base, should be followed.
// It returns the canonical URL of an accepted link.
//
// The bool result is false for links that are out of scope: empty links,
// links carrying a fragment, links to another site, and links whose raw form
// starts with neither "/" nor "http" (mailto:, javascript:, bare relative
// paths). A non-nil error means the link could not be resolved.
func (s *Scope) Resolve(base *url.URL, href string) (string, bool, error) {
	if href == "" || strings.Contains(href, "#") {
		return "", false, nil
	}
	if !strings.HasPrefix(href, "/") && !strings.HasPrefix(href, "http") {
		return "", false, nil
	}

	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false, err
	}
	resolved, err := canonicalize(base.ResolveReference(ref))
	if err != nil {
		return "", false, err
	}

	// Hosts without a two-label suffix (localhost, bare names) are accepted.
	if key := SiteKey(resolved.Hostname()); key != "" && key != s.key {
		return "", false, nil
	}
	return resolved.String(), true, nil
}

// SiteKey returns the last two dot-separated labels of host
// (www.example.com → example.com). Returns an empty string when host
// has no such suffix.
func SiteKey(host string) string {
	labels := strings.Split(strings.ToLower(host), ".")
	if len(labels) < 2 {
		return ""
	}
	last, prev := labels[len(labels)-1], labels[len(labels)-2]
	if last == "" || prev == "" {
		return ""
	}
	return prev + "." + last
}

// Canonicalize returns the absolute form of rawURL used as the identity of
// a page during a crawl: lowercase scheme and host, no default port, "/" for
// an empty path, and no fragment.
func Canonicalize(rawURL string) (string, error) {
	u, err := canonicalURL(rawURL)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func canonicalURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, err
	}
	return canonicalize(u)
}

func canonicalize(u *url.URL) (*url.URL, error) {
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("URL %q is not absolute", u.String())
	}
	c := *u
	c.Scheme = strings.ToLower(c.Scheme)
	c.Host = strings.ToLower(c.Host)
	if port := c.Port(); (c.Scheme == "http" && port == "80") || (c.Scheme == "https" && port == "443") {
		c.Host = strings.TrimSuffix(c.Host, ":"+port)
	}
	c.Fragment = ""
	c.RawFragment = ""
	if c.Path == "" {
		c.Path = "/"
		c.RawPath = ""
	}
	return &c, nil
}
