package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"resumo/internal/config"
	"resumo/internal/database"
	"resumo/internal/source"
	"resumo/internal/summarizer"
)

type app struct {
	cfg     config.Config
	log     *slog.Logger
	db      *database.Database
	client  *summarizer.Client
	fetcher *source.Fetcher
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{}
	err := c.rootCmd().ExecuteContext(ctx)
	c.app.close(ctx)

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	level, err := cfg.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// newApp wires the shared components. Only an invalid configuration is an
// error; a missing credential or database leaves the app usable with a
// disabled client or without history.
func newApp(ctx context.Context, logOutput io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := newLogger(cfg, logOutput)
	slog.SetDefault(log)

	a := &app{
		cfg:     cfg,
		log:     log,
		fetcher: source.NewFetcher(nil, log),
	}

	var history summarizer.Store
	if cfg.DBPath != "" {
		db, dbErr := database.New(ctx, cfg.DBPath, log)
		if dbErr != nil {
			log.WarnContext(ctx, "Failed to initialize db so history is disabled",
				"error", dbErr,
				"dbPath", cfg.DBPath)
		} else {
			a.db = db
			history = db
		}
	}

	backend, err := summarizer.New(cfg, history, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to configure summarization client",
			"error", err,
			"provider", cfg.Provider,
			"model", cfg.ModelID)
	} else {
		log.InfoContext(ctx, "Summarization client is configured",
			"provider", cfg.Provider,
			"model", cfg.ModelID)
	}

	a.client = summarizer.NewClient(backend, log)

	return a, nil
}

func (a *app) close(ctx context.Context) {
	if a == nil || a.db == nil {
		return
	}

	if err := a.db.Close(); err != nil {
		a.log.ErrorContext(ctx, "Failed to close db",
			"error", err,
			"dbPath", a.cfg.DBPath)
	}
}
