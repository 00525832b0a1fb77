package main

import (
	"fmt"

	"github.com/fwojciec/sitechat"
)

// Run executes the sources command.
func (c *SourcesCmd) Run(deps *Dependencies) error {
	if len(c.Delete) > 0 {
		return c.delete(deps)
	}

	sources, err := deps.Chunks.ListSources(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitechat.ErrorMessage(err))
		return err
	}

	if len(sources) == 0 {
		fmt.Fprintln(deps.Stdout, "No pages indexed. Use 'sitechat ingest' to index a website.")
		return nil
	}

	for _, s := range sources {
		fmt.Fprintf(deps.Stdout, "%s  %s  (%d chunks)\n", s.URL, s.Title, s.Chunks)
	}
	return nil
}

func (c *SourcesCmd) delete(deps *Dependencies) error {
	for _, u := range c.Delete {
		if err := deps.Chunks.DeleteChunksBySource(deps.Ctx, u); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", sitechat.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "Removed %s\n", u)
	}
	return nil
}
