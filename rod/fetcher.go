// Package rod implements the rendered page fetcher on top of a headless
// Chrome driven by github.com/go-rod/rod.
package rod

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/sitechat"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure PageFetcher implements sitechat.PageFetcher at compile time.
var _ sitechat.PageFetcher = (*PageFetcher)(nil)

// DefaultFetchTimeout bounds a single navigation including the network idle wait.
const DefaultFetchTimeout = 10 * time.Second

// DefaultIdleWindow is how long the network must stay quiet before a page
// counts as loaded.
const DefaultIdleWindow = 500 * time.Millisecond

// readPageJS collects everything a Page needs in a single round trip.
// Links use getAttribute so hrefs are returned exactly as authored.
const readPageJS = `() => JSON.stringify({
	title: document.title,
	text: document.body ? document.body.textContent : "",
	html: document.documentElement ? document.documentElement.outerHTML : "",
	links: Array.from(document.querySelectorAll("a[href]")).map(a => a.getAttribute("href")),
})`

// Option configures a PageFetcher.
type Option func(*PageFetcher)

// WithFetchTimeout sets the per-fetch ceiling.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *PageFetcher) {
		f.timeout = d
	}
}

// WithIdleWindow sets how long the network must be idle before reading the page.
func WithIdleWindow(d time.Duration) Option {
	return func(f *PageFetcher) {
		f.idle = d
	}
}

// PageFetcher renders pages in a headless browser.
//
// One browser tab is opened on the first fetch and reused for every later
// fetch, so a PageFetcher serves one crawl at a time. Close releases the tab,
// the browser and the launcher process.
type PageFetcher struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	timeout  time.Duration
	idle     time.Duration

	mu     sync.Mutex
	page   *rod.Page
	closed atomic.Bool
}

// NewPageFetcher launches a headless Chrome browser.
// Close must be called when the PageFetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewPageFetcher(opts ...Option) (*PageFetcher, error) {
	f := &PageFetcher{
		timeout: DefaultFetchTimeout,
		idle:    DefaultIdleWindow,
	}
	for _, opt := range opts {
		opt(f)
	}

	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Leakless(true).
		Headless(true)

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}

	f.browser = browser
	f.launcher = l
	return f, nil
}

type renderedPage struct {
	Title string   `json:"title"`
	Text  string   `json:"text"`
	HTML  string   `json:"html"`
	Links []string `json:"links"`
}

// FetchPage navigates the shared tab to url, waits for the network to go
// idle and reads the rendered document.
func (f *PageFetcher) FetchPage(ctx context.Context, url string) (*sitechat.Page, error) {
	if f.closed.Load() {
		return nil, sitechat.Errorf(sitechat.EINVALID, "page fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tab, err := f.tab()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	p := tab.Context(ctx)

	wait := p.WaitRequestIdle(f.idle, nil, nil, nil)
	if err := p.Navigate(url); err != nil {
		return nil, navigationError(ctx, url, err)
	}
	wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := p.Eval(readPageJS)
	if err != nil {
		return nil, navigationError(ctx, url, err)
	}

	var out renderedPage
	if err := json.Unmarshal([]byte(res.Value.Str()), &out); err != nil {
		return nil, sitechat.Errorf(sitechat.EINTERNAL, "decoding rendered page %s: %v", url, err)
	}

	return &sitechat.Page{
		URL:   url,
		Title: out.Title,
		Text:  out.Text,
		HTML:  out.HTML,
		Links: out.Links,
	}, nil
}

// tab returns the shared browser tab, opening it on first use.
// Must be called with mu held.
func (f *PageFetcher) tab() (*rod.Page, error) {
	if f.page != nil {
		return f.page, nil
	}
	page, err := f.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("opening browser page: %w", err)
	}
	f.page = page
	return page, nil
}

func navigationError(ctx context.Context, url string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("rendering %s: %w", url, err)
}

// Close releases the tab and browser and kills the launcher process.
// Close is safe to call multiple times.
func (f *PageFetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var err error
	if f.page != nil {
		_ = f.page.Close()
		f.page = nil
	}
	if f.browser != nil {
		err = f.browser.Close()
		f.browser = nil
	}
	if f.launcher != nil {
		f.launcher.Kill()
		f.launcher = nil
	}
	return err
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (f *PageFetcher) LauncherPID() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.launcher == nil {
		return 0
	}
	return f.launcher.PID()
}
