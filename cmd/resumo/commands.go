package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"resumo/internal/bot"
	"resumo/internal/scheduler"
	"resumo/internal/summarizer"
)

const (
	defaultFeedLimit    = 5
	defaultHistoryLimit = 10
)

var errNoSummary = errors.New("no summary was produced")

// cli owns the app built by the root pre-run hook so main can release it
// whatever the command outcome.
type cli struct {
	app *app
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "resumo",
		Short:         "Summarize text with a hosted inference model",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			runDemo(cmd.Context(), cmd.OutOrStdout(), c.app.client)
			return nil
		},
	}

	root.AddCommand(
		c.textCmd(),
		c.urlCmd(),
		c.feedCmd(),
		c.historyCmd(),
		c.botCmd(),
		c.watchCmd(),
	)

	return root
}

func (c *cli) textCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "text [TEXT...]",
		Short: "Summarize the given text, or standard input when no text is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(data)
			}

			summary, ok := c.app.client.Summarize(cmd.Context(), text)
			if !ok {
				return errNoSummary
			}

			fmt.Fprintln(cmd.OutOrStdout(), summary)

			return nil
		},
	}
}

func (c *cli) urlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "url URL",
		Short: "Fetch a web page and summarize its text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app

			article, err := a.fetcher.FetchPage(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("fetch page: %w", err)
			}

			summary, ok := a.client.SummarizeInput(cmd.Context(), summarizer.Input{
				Text:      article.Text,
				SourceURL: article.URL,
			})
			if !ok {
				return errNoSummary
			}

			printArticle(cmd.OutOrStdout(), article.Title, article.URL, summary)

			return nil
		},
	}
}

func (c *cli) feedCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "feed URL",
		Short: "Summarize the latest items of an RSS, Atom or JSON feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app

			title, articles, err := a.fetcher.FetchFeed(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("fetch feed: %w", err)
			}

			if limit > 0 && len(articles) > limit {
				articles = articles[:limit]
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s\n", title)

			failed := 0
			for _, article := range articles {
				summary, ok := a.client.SummarizeInput(cmd.Context(), summarizer.Input{
					Text:      article.Text,
					SourceURL: article.URL,
				})
				if !ok {
					failed++
					continue
				}

				fmt.Fprintln(out)
				printArticle(out, article.Title, article.URL, summary)
			}

			if len(articles) > 0 && failed == len(articles) {
				return errNoSummary
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", defaultFeedLimit, "maximum number of items to summarize (0 = all)")

	return cmd
}

func (c *cli) historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the most recent stored summaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := c.app
			if a.db == nil {
				return errors.New("history is disabled (no database)")
			}

			summaries, err := a.db.RecentSummaries(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("get recent summaries: %w", err)
			}

			out := cmd.OutOrStdout()
			for i, s := range summaries {
				if i > 0 {
					fmt.Fprintln(out)
				}

				fmt.Fprintf(out, "[%s] %s\n", s.CreatedAt.Local().Format("2006-01-02 15:04"), s.Model)
				if s.Source != "" {
					fmt.Fprintln(out, s.Source)
				}
				fmt.Fprintln(out, s.Summary)
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", defaultHistoryLimit, "number of summaries to show")

	return cmd
}

func (c *cli) botCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot; also watches FEED_URLS when set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := c.app
			ctx := cmd.Context()

			botInst, err := bot.New(a.cfg.TelegramToken, a.client, a.fetcher, a.cfg.AllowedUsers, a.log)
			if err != nil {
				a.log.ErrorContext(ctx, "Failed to initialize bot",
					"error", err,
					"allowedUsersCount", len(a.cfg.AllowedUsers))

				return err
			}
			a.log.InfoContext(ctx, "Bot is initialized",
				"allowedUsersCount", len(a.cfg.AllowedUsers))

			switch {
			case len(a.cfg.FeedURLs) == 0:
			case a.db == nil:
				a.log.WarnContext(ctx, "Feeds are not watched because history is disabled",
					"feedCount", len(a.cfg.FeedURLs))
			case !a.client.Available():
				a.log.WarnContext(ctx, "Feeds are not watched because summarization is not configured",
					"feedCount", len(a.cfg.FeedURLs),
					"provider", a.cfg.Provider)
			default:
				sched, schedErr := a.startScheduler(cmd, botInst)
				if schedErr != nil {
					return schedErr
				}
				defer sched.Stop()
			}

			botInst.Start(ctx)
			a.log.InfoContext(ctx, "Bot is stopped")

			return nil
		},
	}
}

func (c *cli) watchCmd() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Summarize new items of FEED_URLS on the WATCH_SPEC schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := c.app
			ctx := cmd.Context()

			if a.db == nil {
				return errors.New("watch needs a database to remember seen items")
			}

			notifier := &printer{out: cmd.OutOrStdout()}

			if once {
				sched := a.newScheduler(cmd, notifier)
				sent, err := sched.RunOnce(ctx)
				a.log.InfoContext(ctx, "Feeds are checked",
					"feedCount", len(a.cfg.FeedURLs),
					"sentCount", sent)

				return err
			}

			sched, err := a.startScheduler(cmd, notifier)
			if err != nil {
				return err
			}
			defer sched.Stop()

			<-ctx.Done()
			a.log.InfoContext(ctx, "Shutdown signal is received")

			return nil
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "check the feeds once and exit")

	return cmd
}

func (a *app) newScheduler(cmd *cobra.Command, notifier scheduler.Notifier) *scheduler.Scheduler {
	return scheduler.New(
		cmd.Context(),
		scheduler.Options{
			Spec:     a.cfg.WatchSpec,
			FeedURLs: a.cfg.FeedURLs,
			Backlog:  a.cfg.WatchBacklog,
		},
		a.fetcher,
		a.db,
		a.client,
		notifier,
		a.log,
	)
}

func (a *app) startScheduler(cmd *cobra.Command, notifier scheduler.Notifier) (*scheduler.Scheduler, error) {
	ctx := cmd.Context()
	sched := a.newScheduler(cmd, notifier)

	if err := sched.Start(); err != nil {
		a.log.ErrorContext(ctx, "Failed to start scheduler",
			"error", err,
			"spec", a.cfg.WatchSpec,
			"feedCount", len(a.cfg.FeedURLs))

		return nil, err
	}
	a.log.InfoContext(ctx, "Scheduler is started",
		"spec", a.cfg.WatchSpec,
		"timezone", scheduler.Timezone,
		"feedCount", len(a.cfg.FeedURLs))

	return sched, nil
}
