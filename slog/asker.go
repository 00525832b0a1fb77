package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitechat"
)

var (
	_ sitechat.Asker   = (*LoggingAsker)(nil)
	_ sitechat.Indexer = (*LoggingIndexer)(nil)
)

// LoggingAsker wraps an Asker with logging.
type LoggingAsker struct {
	next   sitechat.Asker
	logger *slog.Logger
}

// NewLoggingAsker creates a new LoggingAsker.
func NewLoggingAsker(next sitechat.Asker, logger *slog.Logger) *LoggingAsker {
	return &LoggingAsker{next: next, logger: logger}
}

// Ask delegates to the wrapped asker and logs the exchange size.
func (a *LoggingAsker) Ask(ctx context.Context, question string, history []sitechat.ChatMessage) (answer *sitechat.Answer, err error) {
	defer func(begin time.Time) {
		var sources int
		if answer != nil {
			sources = len(answer.SourceDocuments)
		}
		a.logger.Log(ctx, level(err), "ask",
			"question", question,
			"history", len(history),
			"sources", sources,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return a.next.Ask(ctx, question, history)
}

// LoggingIndexer wraps an Indexer with logging.
type LoggingIndexer struct {
	next   sitechat.Indexer
	logger *slog.Logger
}

// NewLoggingIndexer creates a new LoggingIndexer.
func NewLoggingIndexer(next sitechat.Indexer, logger *slog.Logger) *LoggingIndexer {
	return &LoggingIndexer{next: next, logger: logger}
}

// Index delegates to the wrapped indexer and logs the result.
func (i *LoggingIndexer) Index(ctx context.Context, docs []*sitechat.Document) (result *sitechat.IndexResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{"documents", len(docs), "duration", time.Since(begin), "err", err}
		if result != nil {
			attrs = append(attrs, "chunks", result.Chunks, "skipped", result.Skipped, "tokens", result.Tokens)
		}
		i.logger.Log(ctx, level(err), "index", attrs...)
	}(time.Now())
	return i.next.Index(ctx, docs)
}
