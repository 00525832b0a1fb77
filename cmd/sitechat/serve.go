package main

import (
	"fmt"

	sitechathttp "github.com/fwojciec/sitechat/http"
	"github.com/fwojciec/sitechat/index"
)

// Run executes the serve command. It blocks until the context is canceled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	s := sitechathttp.NewServer()
	s.Addr = c.Addr
	s.Asker = deps.Asker
	if deps.Logger != nil {
		s.Logger = deps.Logger
	}
	if deps.Metrics != nil {
		s.Metrics = deps.Metrics.Handler()
		s.Middleware = deps.Metrics.Middleware
	}

	if c.Ingest {
		crawlFn, err := c.Flags.crawlFunc(deps, nil)
		if err != nil {
			return err
		}
		s.Ingester = index.NewIngester(crawlFn, deps.Indexer)
	}

	if err := s.Open(); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", c.Addr, err)
	}
	fmt.Fprintf(deps.Stdout, "Listening on %s\n", s.URL())

	<-deps.Ctx.Done()

	return s.Close()
}
