package summarizer

import (
	"context"
	"log/slog"
	"strings"
)

// Client is the caller-facing summarization entry point. Every failure of the
// underlying backend collapses into ok == false plus one log record.
type Client struct {
	backend Summarizer
	log     *slog.Logger
}

// NewClient wraps backend. A nil backend gives a disabled client that
// answers every call with no result and never touches the network.
func NewClient(backend Summarizer, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}

	return &Client{
		backend: backend,
		log:     log,
	}
}

func (c *Client) Available() bool {
	return c != nil && c.backend != nil
}

// Model reports the backend model, or "" when unknown.
func (c *Client) Model() string {
	if !c.Available() {
		return ""
	}
	if m, ok := c.backend.(Modeler); ok {
		return m.Model()
	}
	return ""
}

func (c *Client) Summarize(ctx context.Context, text string) (string, bool) {
	return c.SummarizeInput(ctx, Input{Text: text})
}

func (c *Client) SummarizeInput(ctx context.Context, input Input) (string, bool) {
	if !c.Available() {
		c.logger().WarnContext(ctx, "Summarization client is not available",
			"textLength", len(input.Text))

		return "", false
	}

	summary, err := c.backend.Summarize(ctx, input)
	if err != nil {
		c.log.ErrorContext(ctx, "Failed to summarize text",
			"error", err,
			"model", c.Model(),
			"textLength", len(input.Text),
			"sourceURL", strings.TrimSpace(input.SourceURL))

		return "", false
	}

	return summary, true
}

func (c *Client) logger() *slog.Logger {
	if c == nil || c.log == nil {
		return slog.Default()
	}
	return c.log
}
