package summarizer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"resumo/internal/domain"
)

// Store persists summaries beyond the process lifetime.
type Store interface {
	GetSummary(ctx context.Context, key string) (string, bool, error)
	SaveSummary(ctx context.Context, summary domain.Summary) error
}

type CacheOptions struct {
	// Size is the in-memory entry limit; zero disables the memory tier.
	Size int
	TTL  time.Duration
	// Store, when set, records every summary the backend produces.
	Store Store
	// ReadStore also answers repeated inputs from Store.
	ReadStore bool
}

// Cached wraps a backend with an optional memory tier and an optional
// persistent history. Without a memory tier and without ReadStore every
// call reaches the backend.
type Cached struct {
	inner     Summarizer
	model     string
	recent    *recentSummaries
	store     Store
	readStore bool
	now       func() time.Time
	log       *slog.Logger
}

func NewCached(inner Summarizer, opts CacheOptions, log *slog.Logger) *Cached {
	model := ""
	if m, ok := inner.(Modeler); ok {
		model = m.Model()
	}

	return &Cached{
		inner:     inner,
		model:     model,
		recent:    newRecentSummaries(opts.Size, opts.TTL),
		store:     opts.Store,
		readStore: opts.ReadStore && opts.Store != nil,
		now:       time.Now,
		log:       log,
	}
}

// CacheKey identifies a summary by model and exact input text.
func CacheKey(model, text string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cached) Model() string {
	return c.model
}

func (c *Cached) Summarize(ctx context.Context, input Input) (string, error) {
	key := CacheKey(c.model, input.Text)
	now := c.now()

	if summary, ok := c.recent.lookup(key, now); ok {
		c.log.DebugContext(ctx, "Summary is served from memory",
			"key", key,
			"model", c.model,
			"memoryEntries", c.recent.size())

		return summary, nil
	}

	if c.readStore {
		summary, ok, err := c.store.GetSummary(ctx, key)
		if err != nil {
			c.log.WarnContext(ctx, "Failed to read stored summary",
				"error", err,
				"key", key)
		} else if ok {
			c.log.DebugContext(ctx, "Summary is served from history",
				"key", key,
				"model", c.model)
			c.remember(ctx, key, summary, now)

			return summary, nil
		}
	}

	summary, err := c.inner.Summarize(ctx, input)
	if err != nil {
		return "", err
	}

	c.remember(ctx, key, summary, now)

	if c.store != nil {
		saveErr := c.store.SaveSummary(ctx, domain.Summary{
			Key:       key,
			Model:     c.model,
			Source:    strings.TrimSpace(input.SourceURL),
			Input:     input.Text,
			Summary:   summary,
			CreatedAt: now.UTC(),
		})
		if saveErr != nil {
			c.log.WarnContext(ctx, "Failed to record summary",
				"error", saveErr,
				"key", key)
		}
	}

	return summary, nil
}

func (c *Cached) remember(ctx context.Context, key, summary string, now time.Time) {
	if dropped := c.recent.remember(key, summary, now); dropped > 0 {
		c.log.DebugContext(ctx, "Memory tier is trimmed",
			"droppedCount", dropped,
			"memoryEntries", c.recent.size())
	}
}
