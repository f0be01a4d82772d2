package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"resumo/internal/domain"
	"resumo/internal/summarizer"
)

const (
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0
	checkFeedsTimeout     = 15 * time.Minute
)

// ErrSummarizerUnavailable is returned when feeds would be checked with a
// disabled summarization client.
var ErrSummarizerUnavailable = errors.New("summarization client is not available")

// Notifier delivers a summarized feed item somewhere.
type Notifier interface {
	Notify(ctx context.Context, digest domain.Digest) error
}

type feedFetcher interface {
	FetchFeed(ctx context.Context, feedURL string) (string, []domain.Article, error)
}

type seenStore interface {
	FeedKnown(ctx context.Context, feedURL string) (bool, error)
	ItemSeen(ctx context.Context, feedURL, itemID string) (bool, error)
	MarkItemSeen(ctx context.Context, feedURL, itemID string) (bool, error)
}

type summaryClient interface {
	Available() bool
	SummarizeInput(ctx context.Context, input summarizer.Input) (string, bool)
}

type Options struct {
	// Spec is a standard five-field cron expression, evaluated in UTC.
	Spec     string
	FeedURLs []string
	// Backlog is how many items of a feed checked for the first time are
	// summarized, counted in feed order. The rest are only recorded as seen.
	Backlog int
}

type Scheduler struct {
	ctx      context.Context
	cron     *cron.Cron
	spec     string
	feedURLs []string
	backlog  int
	fetcher  feedFetcher
	seen     seenStore
	client   summaryClient
	notifier Notifier
	log      *slog.Logger
}

func New(
	ctx context.Context,
	opts Options,
	fetcher feedFetcher,
	seen seenStore,
	client summaryClient,
	notifier Notifier,
	log *slog.Logger,
) *Scheduler {
	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	return &Scheduler{
		ctx:      ctx,
		cron:     c,
		spec:     strings.TrimSpace(opts.Spec),
		feedURLs: opts.FeedURLs,
		backlog:  max(opts.Backlog, 0),
		fetcher:  fetcher,
		seen:     seen,
		client:   client,
		notifier: notifier,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if len(s.feedURLs) == 0 {
		return errors.New("no feeds to watch")
	}

	if !s.client.Available() {
		return ErrSummarizerUnavailable
	}

	if _, err := s.cron.AddFunc(s.spec, s.checkFeeds); err != nil {
		return fmt.Errorf("add cron job (spec = %s): %w", s.spec, err)
	}

	s.cron.Start()

	return nil
}

// Stop stops the cron and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) checkFeeds() {
	ctx, cancel := context.WithTimeout(s.ctx, checkFeedsTimeout)
	defer cancel()

	select {
	case <-ctx.Done():
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return
	default:
	}

	sent, err := s.RunOnce(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to check feeds",
			"error", err,
			"feedCount", len(s.feedURLs),
			"sentCount", sent)

		return
	}

	s.log.InfoContext(ctx, "Feeds are checked",
		"feedCount", len(s.feedURLs),
		"sentCount", sent)
}

// RunOnce checks every feed a single time and returns how many digests were
// delivered. A failing feed does not stop the others. An item is recorded as
// seen only once its digest is delivered, so failed items are retried on the
// next run.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	if !s.client.Available() {
		return 0, ErrSummarizerUnavailable
	}

	var errs []error
	sent := 0

	for _, feedURL := range s.feedURLs {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		n, err := s.checkFeed(ctx, feedURL)
		sent += n
		if err != nil {
			errs = append(errs, fmt.Errorf("check feed (URL = %s): %w", feedURL, err))
		}
	}

	return sent, errors.Join(errs...)
}

func (s *Scheduler) checkFeed(ctx context.Context, feedURL string) (int, error) {
	title, articles, err := s.fetcher.FetchFeed(ctx, feedURL)
	if err != nil {
		return 0, fmt.Errorf("fetch feed: %w", err)
	}

	known, err := s.seen.FeedKnown(ctx, feedURL)
	if err != nil {
		return 0, fmt.Errorf("check feed history: %w", err)
	}
	if !known {
		if articles, err = s.seedFeed(ctx, feedURL, articles); err != nil {
			return 0, err
		}
	}

	var errs []error
	sent := 0

	for _, article := range articles {
		seen, seenErr := s.seen.ItemSeen(ctx, feedURL, article.ID)
		if seenErr != nil {
			errs = append(errs, fmt.Errorf("check item (ID = %s): %w", article.ID, seenErr))
			continue
		}
		if seen {
			continue
		}

		if deliverErr := s.deliver(ctx, feedURL, title, article); deliverErr != nil {
			errs = append(errs, fmt.Errorf("deliver item (ID = %s): %w", article.ID, deliverErr))
			continue
		}
		sent++

		if _, markErr := s.seen.MarkItemSeen(ctx, feedURL, article.ID); markErr != nil {
			errs = append(errs, fmt.Errorf("mark item seen (ID = %s): %w", article.ID, markErr))
		}
	}

	return sent, errors.Join(errs...)
}

// seedFeed records every item past the backlog as seen without summarizing
// it and returns the backlog.
func (s *Scheduler) seedFeed(
	ctx context.Context,
	feedURL string,
	articles []domain.Article,
) ([]domain.Article, error) {
	backlog := min(s.backlog, len(articles))

	var errs []error
	for _, article := range articles[backlog:] {
		if _, err := s.seen.MarkItemSeen(ctx, feedURL, article.ID); err != nil {
			errs = append(errs, fmt.Errorf("mark item seen (ID = %s): %w", article.ID, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("seed feed: %w", err)
	}

	s.log.InfoContext(ctx, "Feed is seeded",
		"feedURL", feedURL,
		"seededCount", len(articles)-backlog,
		"backlogCount", backlog)

	return articles[:backlog], nil
}

func (s *Scheduler) deliver(ctx context.Context, feedURL, title string, article domain.Article) error {
	summary, ok := s.client.SummarizeInput(ctx, summarizer.Input{
		Text:      article.Text,
		SourceURL: article.URL,
	})
	if !ok {
		return errors.New("no summary")
	}

	return s.notifier.Notify(ctx, domain.Digest{
		FeedURL:   feedURL,
		FeedTitle: title,
		Article:   article,
		Summary:   summary,
	})
}
