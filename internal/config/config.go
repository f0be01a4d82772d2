package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	ProviderHuggingFace = "huggingface"
	ProviderOpenAI      = "openai"

	DefaultModelID = "csebuetnlp/mT5_multilingual_XLSum"

	// DB_PATH value that turns history and the persistent cache off.
	dbPathDisabled = "none"
)

type Config struct {
	HuggingFaceToken string        `env:"HUGGINGFACE_TOKEN"`
	ModelID          string        `env:"MODEL_ID"          envDefault:"csebuetnlp/mT5_multilingual_XLSum"`
	InferenceURL     string        `env:"INFERENCE_URL"     envDefault:"https://router.huggingface.co/hf-inference/models"`
	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT"   envDefault:"60s"`
	Provider         string        `env:"PROVIDER"          envDefault:"huggingface"`
	OpenAIAPIKey     string        `env:"OPENAI_API_KEY"`

	DBPath       string        `env:"DB_PATH"       envDefault:"resumo.sqlite"`
	CacheSize    int           `env:"CACHE_SIZE"    envDefault:"0"`
	CacheTTL     time.Duration `env:"CACHE_TTL"     envDefault:"24h"`
	CachePersist bool          `env:"CACHE_PERSIST" envDefault:"false"`

	TelegramToken string  `env:"TELEGRAM_TOKEN"`
	AllowedUsers  []int64 `env:"ALLOWED_USERS"`

	FeedURLs     []string `env:"FEED_URLS"`
	WatchSpec    string   `env:"WATCH_SPEC"    envDefault:"0 * * * *"`
	WatchBacklog int      `env:"WATCH_BACKLOG" envDefault:"0"`

	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads an optional .env file from the working directory and then parses
// the process environment. Variables already set in the environment win over
// the ones from the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env file: %w", err)
	}

	return Parse()
}

// Parse builds a Config from the process environment only.
func Parse() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	cfg.normalize()

	if err = cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) normalize() {
	c.HuggingFaceToken = strings.TrimSpace(c.HuggingFaceToken)
	c.OpenAIAPIKey = strings.TrimSpace(c.OpenAIAPIKey)
	c.TelegramToken = strings.TrimSpace(c.TelegramToken)
	c.ModelID = strings.TrimSpace(c.ModelID)
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))

	c.DBPath = strings.TrimSpace(c.DBPath)
	if strings.EqualFold(c.DBPath, dbPathDisabled) {
		c.DBPath = ""
	}

	feeds := c.FeedURLs[:0]
	for _, u := range c.FeedURLs {
		if u = strings.TrimSpace(u); u != "" {
			feeds = append(feeds, u)
		}
	}
	c.FeedURLs = feeds
}

func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderHuggingFace, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}

	if c.ModelID == "" {
		return errors.New("model ID is empty")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive (got %s)", c.RequestTimeout)
	}

	if c.CacheSize < 0 {
		return fmt.Errorf("cache size must not be negative (got %d)", c.CacheSize)
	}

	if c.CacheSize > 0 && c.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive (got %s)", c.CacheTTL)
	}

	if c.WatchBacklog < 0 {
		return fmt.Errorf("watch backlog must not be negative (got %d)", c.WatchBacklog)
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}

	return nil
}

// Token returns the credential of the configured provider.
func (c *Config) Token() string {
	if c.Provider == ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.HuggingFaceToken
}

func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return level, nil
}
