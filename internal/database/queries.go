package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"resumo/internal/domain"
)

const defaultRecentLimit = 10

func (d *Database) GetSummary(ctx context.Context, key string) (string, bool, error) {
	query := "select summary from summaries where key = ?"

	var summary string
	err := d.db.QueryRowContext(ctx, query, key).Scan(&summary)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to execute query: %w", err)
	}

	return summary, true, nil
}

func (d *Database) SaveSummary(ctx context.Context, s domain.Summary) error {
	if strings.TrimSpace(s.Key) == "" {
		return errors.New("summary key is empty")
	}

	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `insert into summaries (key, model, source, input, summary, created_at)
	values (?, ?, ?, ?, ?, ?)
	on conflict (key) do update
	set summary = excluded.summary,
	source = excluded.source,
	created_at = excluded.created_at`

	_, err := d.db.ExecContext(ctx, query,
		s.Key,
		s.Model,
		strings.TrimSpace(s.Source),
		s.Input,
		s.Summary,
		createdAt.UTC(),
	)

	return err
}

// RecentSummaries returns the newest summaries first.
func (d *Database) RecentSummaries(ctx context.Context, limit int) ([]domain.Summary, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	query := `select key, model, source, input, summary, created_at
	from summaries
	order by created_at desc, rowid desc
	limit ?`

	rows, err := d.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			d.log.ErrorContext(ctx, "Failed to close rows",
				"error", err,
				"limit", limit,
				"operation", "RecentSummaries")
		}
	}()

	var summaries []domain.Summary
	for rows.Next() {
		var s domain.Summary
		if err = rows.Scan(&s.Key, &s.Model, &s.Source, &s.Input, &s.Summary, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		summaries = append(summaries, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return summaries, nil
}

// FeedKnown reports whether any item of the feed has been recorded.
func (d *Database) FeedKnown(ctx context.Context, feedURL string) (bool, error) {
	query := "select exists (select 1 from seen_items where feed_url = ?)"

	var known bool
	if err := d.db.QueryRowContext(ctx, query, strings.TrimSpace(feedURL)).Scan(&known); err != nil {
		return false, fmt.Errorf("failed to execute query: %w", err)
	}

	return known, nil
}

func (d *Database) ItemSeen(ctx context.Context, feedURL, itemID string) (bool, error) {
	query := "select exists (select 1 from seen_items where feed_url = ? and item_id = ?)"

	var seen bool
	err := d.db.QueryRowContext(ctx, query,
		strings.TrimSpace(feedURL),
		strings.TrimSpace(itemID),
	).Scan(&seen)
	if err != nil {
		return false, fmt.Errorf("failed to execute query: %w", err)
	}

	return seen, nil
}

// MarkItemSeen records a feed item and reports whether it was new.
func (d *Database) MarkItemSeen(ctx context.Context, feedURL, itemID string) (bool, error) {
	feedURL = strings.TrimSpace(feedURL)
	itemID = strings.TrimSpace(itemID)
	if feedURL == "" || itemID == "" {
		return false, errors.New("feed URL or item ID is empty")
	}

	query := "insert or ignore into seen_items (feed_url, item_id) values (?, ?)"

	res, err := d.db.ExecContext(ctx, query, feedURL, itemID)
	if err != nil {
		return false, fmt.Errorf("failed to execute query: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected > 0, nil
}
