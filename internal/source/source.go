package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"resumo/internal/domain"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

	defaultClientTimeout = 20 * time.Second
)

var ErrNoText = errors.New("no text found")

// Fetcher pulls summarizable text out of web pages and feeds.
type Fetcher struct {
	client    *http.Client
	libParser *gofeed.Parser
	log       *slog.Logger
}

func NewFetcher(client *http.Client, log *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: defaultClientTimeout}
	}

	libParser := gofeed.NewParser()
	libParser.Client = client
	libParser.UserAgent = userAgent

	return &Fetcher{
		client:    client,
		libParser: libParser,
		log:       log,
	}
}

func validateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("URL is empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse URL: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}

	if u.Host == "" {
		return "", errors.New("URL host is empty")
	}

	return u.String(), nil
}

// FetchPage downloads an HTML page and extracts its title and readable text.
func (f *Fetcher) FetchPage(ctx context.Context, pageURL string) (domain.Article, error) {
	pageURL, err := validateURL(pageURL)
	if err != nil {
		return domain.Article{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return domain.Article{}, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req) //nolint:gosec // URL is validated above
	if err != nil {
		return domain.Article{}, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			f.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"pageURL", pageURL)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return domain.Article{}, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return domain.Article{}, fmt.Errorf("create document from reader: %w", err)
	}

	text := documentText(doc)
	if text == "" {
		return domain.Article{}, fmt.Errorf("%w (URL = %s)", ErrNoText, pageURL)
	}

	return domain.Article{
		ID:    pageURL,
		Title: documentTitle(doc),
		URL:   pageURL,
		Text:  text,
	}, nil
}

// FetchFeed parses an RSS, Atom or JSON feed. Items without any text are
// skipped. It returns the feed title along with the articles.
func (f *Fetcher) FetchFeed(ctx context.Context, feedURL string) (string, []domain.Article, error) {
	feedURL, err := validateURL(feedURL)
	if err != nil {
		return "", nil, err
	}

	parsed, err := f.libParser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return "", nil, fmt.Errorf("parse feed (URL = %s): %w", feedURL, err)
	}

	title := strings.TrimSpace(parsed.Title)
	if title == "" {
		f.log.WarnContext(ctx, "Empty feed title",
			"feedURL", feedURL,
			"fallbackTitle", feedURL)

		title = feedURL
	}

	articles := make([]domain.Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		article, ok := articleFromItem(item)
		if !ok {
			f.log.DebugContext(ctx, "Skipping feed item without text",
				"feedURL", feedURL,
				"itemLink", item.Link)

			continue
		}

		articles = append(articles, article)
	}

	return title, articles, nil
}

func articleFromItem(item *gofeed.Item) (domain.Article, bool) {
	if item == nil {
		return domain.Article{}, false
	}

	text := htmlText(item.Content)
	if text == "" {
		text = htmlText(item.Description)
	}
	if text == "" {
		text = strings.TrimSpace(item.Title)
	}
	if text == "" {
		return domain.Article{}, false
	}

	id := strings.TrimSpace(item.GUID)
	if id == "" {
		id = strings.TrimSpace(item.Link)
	}
	if id == "" {
		id = strings.TrimSpace(item.Title)
	}

	var published time.Time
	switch {
	case item.PublishedParsed != nil:
		published = *item.PublishedParsed
	case item.UpdatedParsed != nil:
		published = *item.UpdatedParsed
	}

	return domain.Article{
		ID:        id,
		Title:     strings.TrimSpace(item.Title),
		URL:       strings.TrimSpace(item.Link),
		Text:      text,
		Published: published,
	}, true
}
