package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/sitechat"
	"github.com/fwojciec/sitechat/crawl"
	"github.com/fwojciec/sitechat/gemini"
	"github.com/fwojciec/sitechat/goquery"
	sitechathttp "github.com/fwojciec/sitechat/http"
	"github.com/fwojciec/sitechat/index"
	"github.com/fwojciec/sitechat/prometheus"
	"github.com/fwojciec/sitechat/rod"
	sitechatslog "github.com/fwojciec/sitechat/slog"
	"github.com/fwojciec/sitechat/sqlite"
	"github.com/joho/godotenv"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing .env file is not an error.
	_ = godotenv.Load()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Registry collects the metrics served by the serve command.
	Registry *prom.Registry
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath:   defaultDBPath(),
		Registry: prom.NewRegistry(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("sitechat"),
		kong.Description("Crawl a website and chat with its content"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'sitechat --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	deps.Logger = newLogger(stderr, cli.LogLevel)
	deps.Metrics = prometheus.NewMetrics(m.Registry)
	deps.OpenFetcher = m.fetcherOpener(deps)
	deps.Sitemaps = sitechatslog.NewLoggingSitemapService(sitechathttp.NewSitemapService(nil), deps.Logger)

	if cmd == "crawl" {
		return kongCtx.Run(deps)
	}

	if cli.DB != "" {
		m.DBPath = cli.DB
	}
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set SITECHAT_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	deps.Chunks = sqlite.NewChunkService(m.DB)

	if cmd == "sources" {
		return kongCtx.Run(deps)
	}

	if cli.APIKey == "" {
		fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
		return fmt.Errorf("GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cli.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
		return fmt.Errorf("failed to connect to Gemini API: %w", err)
	}

	embedder := gemini.NewEmbedder(client, cli.EmbeddingModel)

	tokenCounter, err := gemini.NewTokenCounter(gemini.DefaultModel)
	if err != nil {
		return fmt.Errorf("failed to create token counter: %w", err)
	}

	indexer := index.NewIndexer(deps.Chunks, embedder)
	indexer.Tokens = tokenCounter
	deps.Indexer = prometheus.NewIndexer(sitechatslog.NewLoggingIndexer(indexer, deps.Logger), deps.Metrics)

	retriever := index.NewRetriever(deps.Chunks, embedder)
	asker := gemini.NewAsker(client, retriever,
		gemini.WithModel(cli.Model),
		gemini.WithAnswerLanguage(cli.Language),
	)
	deps.Asker = prometheus.NewAsker(sitechatslog.NewLoggingAsker(asker, deps.Logger), deps.Metrics)

	if cmd == "serve" {
		m.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	return kongCtx.Run(deps)
}

// fetcherOpener returns the function that starts the page fetcher for a crawl.
func (m *Main) fetcherOpener(deps *Dependencies) FetcherOpener {
	return func(ctx context.Context, seed string, flags *CrawlFlags) (sitechat.PageFetcher, error) {
		instrument := func(f sitechat.PageFetcher, backend string) sitechat.PageFetcher {
			logged := sitechatslog.NewLoggingPageFetcher(f, backend, deps.Logger)
			return prometheus.NewPageFetcher(logged, backend, deps.Metrics)
		}

		static := func() sitechat.PageFetcher {
			fetcher := sitechathttp.NewFetcher(sitechathttp.WithTimeout(flags.Timeout))
			logged := sitechatslog.NewLoggingFetcher(fetcher, deps.Logger)
			return instrument(goquery.NewStaticFetcher(logged), "static")
		}

		rendered := func() (sitechat.PageFetcher, error) {
			fetcher, err := rod.NewPageFetcher(rod.WithFetchTimeout(flags.Timeout))
			if err != nil {
				return nil, fmt.Errorf("failed to start browser: %w", err)
			}
			return instrument(fetcher, "rendered"), nil
		}

		switch flags.Backend {
		case BackendStatic:
			return static(), nil
		case BackendRendered:
			f, err := rendered()
			if err != nil {
				fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed")
			}
			return f, err
		default:
			return crawl.AutoFetcher(ctx, seed, static(), rendered, goquery.NewTextExtractor(), deps.Logger)
		}
	}
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "sitechat.db"
	}
	dir := filepath.Join(home, ".sitechat")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "sitechat.db")
}
