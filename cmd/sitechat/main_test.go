package main_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	main "github.com/fwojciec/sitechat/cmd/sitechat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain_Run_Help(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	err := main.NewMain().Run(context.Background(), []string{"--help"}, &stdout, &stderr)

	require.NoError(t, err)
	for _, cmd := range []string{"crawl", "ingest", "ask", "sources", "serve"} {
		assert.Contains(t, stdout.String(), cmd, "help should mention %s", cmd)
	}
	assert.Contains(t, stdout.String(), "Usage:")
}

func TestMain_Run_NoArgs(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	err := main.NewMain().Run(context.Background(), nil, &stdout, &stderr)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no command specified")
}

func TestMain_Run_RejectsUnknownBackend(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	err := main.NewMain().Run(context.Background(), []string{"crawl", "https://example.com", "--backend", "curl"}, &stdout, &stderr)

	assert.Error(t, err)
}

func TestMain_Run_SourcesOnEmptyDatabase(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{"--db", dbPath, "sources"}, &stdout, &stderr)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "No pages indexed")
}

func TestMain_Run_AskRequiresAPIKey(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{"--db", dbPath, "--api-key=", "ask", "What is this?"}, &stdout, &stderr)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
	assert.Contains(t, stderr.String(), "aistudio.google.com")
}
