package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/sitechat"
	"github.com/fwojciec/sitechat/prometheus"
)

// FetcherOpener starts the page fetcher for a crawl of seed.
type FetcherOpener func(ctx context.Context, seed string, flags *CrawlFlags) (sitechat.PageFetcher, error)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	OpenFetcher FetcherOpener
	Sitemaps    sitechat.SitemapService
	Chunks      sitechat.ChunkService
	Indexer     sitechat.Indexer
	Asker       sitechat.Asker
	Metrics     *prometheus.Metrics
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB             string `name:"db" env:"SITECHAT_DB" help:"SQLite database path (default ~/.sitechat/sitechat.db)"`
	APIKey         string `name:"api-key" env:"GEMINI_API_KEY" help:"Gemini API key"`
	Model          string `env:"SITECHAT_MODEL" default:"gemini-2.5-flash" help:"Model used to answer questions"`
	EmbeddingModel string `env:"SITECHAT_EMBEDDING_MODEL" default:"text-embedding-004" help:"Model used to embed text"`
	Language       string `env:"SITECHAT_LANGUAGE" help:"Language answers are given in (default: the question's)"`
	LogLevel       string `env:"SITECHAT_LOG_LEVEL" default:"warn" enum:"debug,info,warn,error" help:"Log level"`

	Crawl   CrawlCmd   `cmd:"" help:"Crawl a website and print or save its documents"`
	Ingest  IngestCmd  `cmd:"" help:"Crawl a website and index it for questions"`
	Ask     AskCmd     `cmd:"" help:"Ask a question about the indexed content"`
	Sources SourcesCmd `cmd:"" help:"List indexed pages"`
	Serve   ServeCmd   `cmd:"" help:"Serve the chat API"`
}

// Fetch backends.
const (
	BackendStatic   = "static"
	BackendRendered = "rendered"
	BackendAuto     = "auto"
)

// Content extraction modes.
const (
	ExtractText        = "text"
	ExtractTrafilatura = "trafilatura"
	ExtractReadability = "readability"
)

// CrawlFlags configures how a website is crawled.
type CrawlFlags struct {
	Backend  string        `short:"b" default:"auto" enum:"static,rendered,auto" help:"Page fetcher: static HTML, rendered browser, or auto-detect"`
	Extract  string        `short:"x" default:"text" enum:"text,trafilatura,readability" help:"Document content: full page text or markdown of the main content"`
	Sitemap  bool          `help:"Also crawl in-scope URLs listed in the site's sitemaps"`
	MaxPages int           `short:"n" default:"0" help:"Maximum pages to fetch (0 for no limit)"`
	RPS      float64       `name:"rps" default:"0" help:"Requests per second per host (0 for no limit)"`
	Retries  int           `default:"0" help:"Retries per failed page fetch"`
	Timeout  time.Duration `short:"t" default:"10s" help:"Fetch timeout per page"`
	Filter   []string      `short:"F" name:"filter" help:"Only follow URLs matching regex (repeatable)"`
	Exclude  []string      `short:"E" name:"exclude" help:"Never follow URLs matching regex (repeatable)"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	URL   string     `arg:"" help:"Website URL to start from"`
	Out   string     `short:"o" type:"path" help:"Directory to write markdown files to; documents are printed as JSON otherwise"`
	Flags CrawlFlags `embed:""`
}

// IngestCmd is the "ingest" subcommand.
type IngestCmd struct {
	URL   string     `arg:"" help:"Website URL to start from"`
	Flags CrawlFlags `embed:""`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Question string   `arg:"" help:"Question to ask about the indexed content"`
	Sources  bool     `short:"s" help:"Print the source pages the answer is based on"`
	History  []string `help:"Earlier exchange as question=answer (repeatable)"`
}

// SourcesCmd is the "sources" subcommand.
type SourcesCmd struct {
	Delete []string `help:"Remove the indexed chunks of these page URLs instead of listing"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr   string     `env:"SITECHAT_ADDR" default:":3000" help:"Address to listen on"`
	Ingest bool       `help:"Enable POST /api/ingest"`
	Flags  CrawlFlags `embed:"" prefix:"crawl-"`
}
