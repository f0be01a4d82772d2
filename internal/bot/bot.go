package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"resumo/internal/domain"
	"resumo/internal/markdown"
	"resumo/internal/ratelimiter"
	"resumo/internal/summarizer"
)

const updateProcessingTimeout = 2 * time.Minute

type sender interface {
	SendMessage(ctx context.Context, params *tgbot.SendMessageParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *tgbot.SendChatActionParams) (bool, error)
}

type summaryClient interface {
	Available() bool
	SummarizeInput(ctx context.Context, input summarizer.Input) (string, bool)
}

type pageFetcher interface {
	FetchPage(ctx context.Context, pageURL string) (domain.Article, error)
}

type Bot struct {
	api          *tgbot.Bot
	sender       sender
	client       summaryClient
	fetcher      pageFetcher
	rateLimiter  *ratelimiter.RateLimiter
	allowedUsers []int64
	log          *slog.Logger
}

func New(
	token string,
	client *summarizer.Client,
	fetcher pageFetcher,
	allowedUsers []int64,
	log *slog.Logger,
) (*Bot, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("token is empty")
	}

	b := &Bot{
		client:       client,
		fetcher:      fetcher,
		rateLimiter:  ratelimiter.New(),
		allowedUsers: allowedUsers,
		log:          log,
	}

	api, err := tgbot.New(token, tgbot.WithDefaultHandler(b.handleUpdate))
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}

	b.api = api
	b.sender = api

	return b, nil
}

// Start long-polls updates until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	b.api.Start(ctx)
}

func (b *Bot) handleUpdate(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	if update == nil || update.Message == nil {
		return
	}

	updateCtx, cancel := context.WithTimeout(ctx, updateProcessingTimeout)
	defer cancel()

	message := update.Message
	chatID := message.Chat.ID

	var userID int64
	var username string
	if message.From != nil {
		userID = message.From.ID
		username = message.From.Username
	}

	if !b.userAllowed(userID) {
		b.log.DebugContext(updateCtx, "User is not allowed",
			"userID", userID,
			"chatID", chatID,
			"username", username,
			"chatType", message.Chat.Type)

		return
	}

	if err := b.handleMessage(updateCtx, message); err != nil {
		b.log.ErrorContext(updateCtx, "Failed to handle message",
			"error", err,
			"chatID", chatID,
			"userID", userID,
			"chatType", message.Chat.Type,
			"messageID", message.ID)
	}
}

func (b *Bot) userAllowed(userID int64) bool {
	if len(b.allowedUsers) == 0 {
		return true
	}

	for _, allowed := range b.allowedUsers {
		if allowed == userID {
			return true
		}
	}

	return false
}

// Notify sends a feed digest entry to every allowed user.
func (b *Bot) Notify(ctx context.Context, digest domain.Digest) error {
	if len(b.allowedUsers) == 0 {
		b.log.WarnContext(ctx, "No recipients for digest",
			"feedURL", digest.FeedURL,
			"articleURL", digest.Article.URL)

		return nil
	}

	text := formatDigest(digest)

	var errs []error
	for _, userID := range b.allowedUsers {
		if err := b.send(ctx, userID, text, 0); err != nil {
			errs = append(errs, fmt.Errorf("send digest (userID = %d): %w", userID, err))
		}
	}

	return errors.Join(errs...)
}

func formatDigest(digest domain.Digest) string {
	title := digest.Article.Title
	if feedTitle := strings.TrimSpace(digest.FeedTitle); feedTitle != "" {
		if title == "" {
			title = feedTitle
		} else {
			title = feedTitle + ": " + title
		}
	}

	return markdown.Summary(title, digest.Article.URL, digest.Summary)
}

func (b *Bot) send(ctx context.Context, chatID int64, text string, replyTo int) error {
	params := &tgbot.SendMessageParams{
		ChatID:    chatID,
		Text:      markdown.Truncate(text, markdown.MaxMessageLength),
		ParseMode: models.ParseModeMarkdown,
	}

	if replyTo != 0 {
		params.ReplyParameters = &models.ReplyParameters{MessageID: replyTo}
	}

	_, err := b.sender.SendMessage(ctx, params)

	return err
}
