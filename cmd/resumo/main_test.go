package main

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumo/internal/domain"
	"resumo/internal/scheduler"
)

type stubSummarizer struct {
	summary string
	ok      bool
	got     string
}

func (s *stubSummarizer) Summarize(_ context.Context, text string) (string, bool) {
	s.got = text
	return s.summary, s.ok
}

func TestRunDemoPrintsBothTexts(t *testing.T) {
	var out bytes.Buffer
	stub := &stubSummarizer{summary: "Resumo.", ok: true}

	runDemo(context.Background(), &out, stub)

	assert.Equal(t, exampleText, stub.got)
	assert.Contains(t, out.String(), "Texto Original:")
	assert.Contains(t, out.String(), "Condomínio Solar das Flores")
	assert.True(t, strings.HasSuffix(out.String(), "Resumo Gerado:\nResumo.\n"))
}

func TestRunDemoWithoutSummary(t *testing.T) {
	var out bytes.Buffer

	runDemo(context.Background(), &out, &stubSummarizer{})

	assert.Equal(t, "\n--- Resumindo texto de exemplo ---\n", out.String())
}

func TestPrinterNotify(t *testing.T) {
	var out bytes.Buffer
	p := &printer{out: &out}

	err := p.Notify(context.Background(), domain.Digest{
		FeedTitle: "Condomínio",
		Article:   domain.Article{Title: "Manutenção", URL: "https://example.com/1"},
		Summary:   "Piscina limpa.",
	})
	require.NoError(t, err)

	assert.Equal(t, "# Condomínio\n## Manutenção\nhttps://example.com/1\nPiscina limpa.\n\n", out.String())
}

func TestTextCommandWithoutCredential(t *testing.T) {
	t.Setenv("HUGGINGFACE_TOKEN", "")
	t.Setenv("PROVIDER", "huggingface")
	t.Setenv("DB_PATH", "none")
	t.Setenv("LOG_LEVEL", "error")
	t.Chdir(t.TempDir())

	var stdout, stderr bytes.Buffer

	c := &cli{}
	root := c.rootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs([]string{"text", "um", "texto"})

	err := root.ExecuteContext(context.Background())
	t.Cleanup(func() { c.app.close(context.Background()) })
	assert.ErrorIs(t, err, errNoSummary)
	assert.Empty(t, stdout.String())

	require.NotNil(t, c.app)
	assert.False(t, c.app.client.Available())
	assert.Nil(t, c.app.db)
}

func TestWatchOnceWithoutCredential(t *testing.T) {
	feedURL := "https://example.com/rss"
	dir := t.TempDir()

	t.Setenv("HUGGINGFACE_TOKEN", "")
	t.Setenv("PROVIDER", "huggingface")
	t.Setenv("DB_PATH", filepath.Join(dir, "resumo.sqlite"))
	t.Setenv("FEED_URLS", feedURL)
	t.Setenv("LOG_LEVEL", "error")
	t.Chdir(dir)

	var stdout bytes.Buffer

	c := &cli{}
	root := c.rootCmd()
	root.SetOut(&stdout)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"watch", "--once"})

	err := root.ExecuteContext(context.Background())
	t.Cleanup(func() { c.app.close(context.Background()) })
	assert.ErrorIs(t, err, scheduler.ErrSummarizerUnavailable)
	assert.Empty(t, stdout.String())

	require.NotNil(t, c.app.db)
	known, err := c.app.db.FeedKnown(context.Background(), feedURL)
	require.NoError(t, err)
	assert.False(t, known)
}
