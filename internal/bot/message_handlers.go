package bot

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-telegram/bot/models"

	"resumo/internal/markdown"
	"resumo/internal/source"
	"resumo/internal/summarizer"
)

var errEmptySummary = errors.New("summary is empty")

const welcomeText = `🤖 *Resumo*

Send me any text and I will reply with a short summary\.
Send a link and I will summarize the page behind it\.

/help shows this message again\.`

const (
	failedText      = "❌ Failed to summarize\\."
	unavailableText = "✖️ Summarization is not configured\\."
	emptyText       = "✖️ Send some text or a link\\."
	rateLimitedText = "⏳ Too many requests, try again in %d s\\."
)

func (b *Bot) handleMessage(ctx context.Context, message *models.Message) error {
	text := strings.TrimSpace(message.Text)
	if text == "" {
		text = strings.TrimSpace(message.Caption)
	}

	chatID := message.Chat.ID

	switch {
	case isCommand(text, "/start"), isCommand(text, "/help"):
		return b.send(ctx, chatID, welcomeText, 0)
	case text == "":
		return b.send(ctx, chatID, emptyText, message.ID)
	default:
		return b.handleText(ctx, text, message)
	}
}

func isCommand(text, command string) bool {
	name, _, _ := strings.Cut(text, " ")
	name, _, _ = strings.Cut(name, "@")
	return name == command
}

func (b *Bot) handleText(ctx context.Context, text string, message *models.Message) error {
	chatID := message.Chat.ID

	if ok, delay := b.rateLimiter.Allow(chatID); !ok {
		b.log.DebugContext(ctx, "Rate limiting message",
			"chatID", chatID,
			"delay", delay)

		seconds := int(math.Ceil(delay.Seconds()))
		return b.send(ctx, chatID, fmt.Sprintf(rateLimitedText, seconds), message.ID)
	}

	if !b.client.Available() {
		return b.send(ctx, chatID, unavailableText, message.ID)
	}

	var reply string
	err := b.withSpinner(ctx, chatID, func() error {
		var buildErr error
		reply, buildErr = b.buildReply(ctx, text)
		return buildErr
	})
	if err != nil {
		sendErr := b.send(ctx, chatID, failedText, message.ID)
		if sendErr != nil {
			return fmt.Errorf("%w; send failure message: %w", err, sendErr)
		}
		return err
	}

	if err = b.send(ctx, chatID, reply, message.ID); err != nil {
		return fmt.Errorf("send summary: %w", err)
	}

	return nil
}

func (b *Bot) buildReply(ctx context.Context, text string) (string, error) {
	input := summarizer.Input{Text: text}
	var title, pageURL string

	if urls := source.FindURLs(text); len(urls) > 0 {
		pageURL = urls[0]

		article, err := b.fetcher.FetchPage(ctx, pageURL)
		switch {
		case err == nil:
			title = article.Title
			input = summarizer.Input{Text: article.Text, SourceURL: pageURL}
		case source.StripURLs(text) != "":
			// Fall back to the words around the link.
			b.log.WarnContext(ctx, "Failed to fetch page, summarizing message text",
				"error", err,
				"pageURL", pageURL)

			input = summarizer.Input{Text: source.StripURLs(text)}
			pageURL = ""
		default:
			return "", fmt.Errorf("fetch page: %w", err)
		}
	}

	summary, ok := b.client.SummarizeInput(ctx, input)
	if !ok {
		return "", fmt.Errorf("summarize (sourceURL = %s): no result", pageURL)
	}
	// Telegram rejects empty messages.
	if title == "" && pageURL == "" && strings.TrimSpace(summary) == "" {
		return "", fmt.Errorf("summarize: %w", errEmptySummary)
	}

	return markdown.Summary(title, pageURL, summary), nil
}
