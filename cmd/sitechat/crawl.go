package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fwojciec/sitechat"
	"github.com/fwojciec/sitechat/crawl"
	"github.com/fwojciec/sitechat/fs"
	"github.com/fwojciec/sitechat/htmltomarkdown"
	"github.com/fwojciec/sitechat/index"
	"github.com/fwojciec/sitechat/readability"
	"github.com/fwojciec/sitechat/trafilatura"
)

// outputDir validates the --out directory. The directory is replaced on
// commit, so it must not be the working directory or one of its parents.
func outputDir(out string) (baseDir, name string, err error) {
	abs, err := filepath.Abs(out)
	if err != nil {
		return "", "", sitechat.Errorf(sitechat.EINVALID, "invalid output directory %q: %v", out, err)
	}
	baseDir, name, err = fs.SplitOutputDir(abs)
	if err != nil {
		return "", "", err
	}
	if wd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(abs, wd); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", "", sitechat.Errorf(sitechat.EINVALID, "output directory %q contains the working directory", out)
		}
	}
	return baseDir, name, nil
}

// progressWidth is the URL width of progress lines.
const progressWidth = 60

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	progress := func(event crawl.ProgressEvent) {
		fmt.Fprintln(deps.Stderr, crawl.FormatProgress(event, progressWidth))
	}

	var store *fs.FileStore
	if c.Out != "" {
		baseDir, name, err := outputDir(c.Out)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", sitechat.ErrorMessage(err))
			return err
		}
		store = fs.NewFileStore(baseDir, name)
	}

	crawlFn, err := c.Flags.crawlFunc(deps, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitechat.ErrorMessage(err))
		return err
	}

	docs, err := crawlFn(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error crawling: %v\n", err)
		return err
	}

	if store == nil {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	}

	for _, doc := range docs {
		if err := store.Save(deps.Ctx, doc); err != nil {
			_ = store.Abort()
			fmt.Fprintf(deps.Stderr, "error saving %s: %s\n", doc.Metadata.URL, sitechat.ErrorMessage(err))
			return err
		}
	}
	if err := store.Commit(); err != nil {
		fmt.Fprintf(deps.Stderr, "error committing: %v\n", err)
		return err
	}

	var size int
	for _, doc := range docs {
		size += len(doc.PageContent)
	}
	fmt.Fprintf(deps.Stdout, "Saved %d pages (%s) to %s\n", len(docs), crawl.FormatBytes(size), c.Out)
	return nil
}

// crawlFunc validates the flags and returns a function crawling a website
// with them.
func (f *CrawlFlags) crawlFunc(deps *Dependencies, progress crawl.ProgressFunc) (index.CrawlFunc, error) {
	filter, err := f.urlFilter()
	if err != nil {
		return nil, err
	}

	opts := []crawl.Option{
		crawl.WithLogger(deps.Logger),
		crawl.WithFilter(filter),
		crawl.WithMaxPages(f.MaxPages),
		crawl.WithRetryDelays(crawl.BackoffDelays(f.Retries, crawl.DefaultRetryBase)),
		crawl.WithProgress(progress),
	}
	if f.RPS > 0 {
		opts = append(opts, crawl.WithRateLimiter(crawl.NewDomainLimiter(f.RPS)))
	}
	if f.Sitemap && deps.Sitemaps != nil {
		opts = append(opts, crawl.WithSitemaps(deps.Sitemaps))
	}
	switch f.Extract {
	case ExtractTrafilatura:
		opts = append(opts, crawl.WithExtraction(trafilatura.NewExtractor(), htmltomarkdown.NewConverter()))
	case ExtractReadability:
		opts = append(opts, crawl.WithExtraction(readability.NewExtractor(), htmltomarkdown.NewConverter()))
	}

	return func(ctx context.Context, url string) ([]*sitechat.Document, error) {
		open := func() (sitechat.PageFetcher, error) {
			return deps.OpenFetcher(ctx, url, f)
		}
		return crawl.ExtractTextFromWebsiteURL(ctx, url, open, opts...)
	}, nil
}

// urlFilter compiles the filter flags. Returns nil if none are set.
func (f *CrawlFlags) urlFilter() (*sitechat.URLFilter, error) {
	if len(f.Filter) == 0 && len(f.Exclude) == 0 {
		return nil, nil
	}
	filter := &sitechat.URLFilter{}
	for _, pattern := range f.Filter {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, sitechat.Errorf(sitechat.EINVALID, "invalid filter pattern %q: %v", pattern, err)
		}
		filter.Include = append(filter.Include, re)
	}
	for _, pattern := range f.Exclude {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, sitechat.Errorf(sitechat.EINVALID, "invalid exclude pattern %q: %v", pattern, err)
		}
		filter.Exclude = append(filter.Exclude, re)
	}
	return filter, nil
}
