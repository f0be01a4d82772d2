package summarizer

import (
	"fmt"
	"log/slog"

	"github.com/openai/openai-go/v3/option"

	"resumo/internal/config"
)

// New builds the backend selected by cfg.Provider. A non-nil history records
// every summary; it is consulted before the backend only with
// cfg.CachePersist. A missing credential returns an error wrapping
// ErrMissingToken and a nil Summarizer.
func New(cfg config.Config, history Store, log *slog.Logger) (Summarizer, error) {
	var backend Summarizer

	switch cfg.Provider {
	case config.ProviderOpenAI:
		s, err := NewOpenAISummarizer(cfg.OpenAIAPIKey, option.WithRequestTimeout(cfg.RequestTimeout))
		if err != nil {
			return nil, fmt.Errorf("create OpenAI summarizer: %w", err)
		}
		backend = s
	case config.ProviderHuggingFace:
		h, err := NewHuggingFace(
			cfg.HuggingFaceToken,
			cfg.ModelID,
			WithBaseURL(cfg.InferenceURL),
			WithTimeout(cfg.RequestTimeout),
		)
		if err != nil {
			return nil, fmt.Errorf("create Hugging Face summarizer: %w", err)
		}
		backend = h
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}

	if cfg.CacheSize == 0 && history == nil {
		return backend, nil
	}

	return NewCached(backend, CacheOptions{
		Size:      cfg.CacheSize,
		TTL:       cfg.CacheTTL,
		Store:     history,
		ReadStore: cfg.CachePersist,
	}, log), nil
}
