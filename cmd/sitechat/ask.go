package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/sitechat"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	history, err := parseHistory(c.History)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitechat.ErrorMessage(err))
		return err
	}

	answer, err := deps.Asker.Ask(deps.Ctx, c.Question, history)
	if err != nil {
		if sitechat.ErrorCode(err) == sitechat.ENOTFOUND {
			fmt.Fprintln(deps.Stderr, "Hint: Use 'sitechat ingest <url>' to index a website first")
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitechat.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, answer.Text)

	if c.Sources && len(answer.SourceDocuments) > 0 {
		fmt.Fprintln(deps.Stdout)
		fmt.Fprintln(deps.Stdout, "Sources:")
		seen := make(map[string]bool)
		for _, doc := range answer.SourceDocuments {
			if seen[doc.Metadata.URL] {
				continue
			}
			seen[doc.Metadata.URL] = true
			fmt.Fprintf(deps.Stdout, "  %s  %s\n", doc.Metadata.URL, doc.Metadata.Title)
		}
	}

	return nil
}

// parseHistory parses "question=answer" pairs.
func parseHistory(pairs []string) ([]sitechat.ChatMessage, error) {
	history := make([]sitechat.ChatMessage, 0, len(pairs))
	for _, p := range pairs {
		q, a, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(q) == "" {
			return nil, sitechat.Errorf(sitechat.EINVALID, "history entry %q is not question=answer", p)
		}
		history = append(history, sitechat.ChatMessage{Question: q, Answer: a})
	}
	return history, nil
}
