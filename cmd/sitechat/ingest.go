package main

import (
	"fmt"

	"github.com/fwojciec/sitechat"
	"github.com/fwojciec/sitechat/crawl"
	"github.com/fwojciec/sitechat/index"
)

// Run executes the ingest command.
func (c *IngestCmd) Run(deps *Dependencies) error {
	progress := func(event crawl.ProgressEvent) {
		fmt.Fprintln(deps.Stderr, crawl.FormatProgress(event, progressWidth))
	}

	crawlFn, err := c.Flags.crawlFunc(deps, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitechat.ErrorMessage(err))
		return err
	}

	result, err := index.NewIngester(crawlFn, deps.Indexer).Ingest(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitechat.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Indexed %d pages: %d new chunks, %d unchanged (%s)\n",
		result.Documents, result.Chunks, result.Skipped, crawl.FormatTokens(result.Tokens))
	return nil
}
