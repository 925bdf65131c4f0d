package database

import (
	"context"
	"database/sql"
	"fmt"
)

var _ FeedStore = (*FeedRepository)(nil)

// FeedRepository handles database operations for feeds
type FeedRepository struct {
	db *DB
}

// NewFeedRepository creates a new feed repository
func NewFeedRepository(db *DB) *FeedRepository {
	return &FeedRepository{db: db}
}

// GetFeedByURL retrieves a feed by its URL, the feed's natural key.
func (r *FeedRepository) GetFeedByURL(ctx context.Context, feedURL string) (*Feed, error) {
	var feed Feed
	err := r.db.QueryRowContext(ctx, `
		SELECT id, feed_url, title, description, publisher_id, last_fetched_at, created_at, updated_at
		FROM feeds
		WHERE feed_url = $1
	`, feedURL).Scan(
		&feed.ID, &feed.FeedURL, &feed.Title, &feed.Description,
		&feed.PublisherID, &feed.LastFetchedAt, &feed.CreatedAt, &feed.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed by URL: %w", err)
	}

	return &feed, nil
}

// GetAllFeeds returns every known feed, oldest first.
func (r *FeedRepository) GetAllFeeds(ctx context.Context) ([]Feed, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, feed_url, title, description, publisher_id, last_fetched_at, created_at, updated_at
		FROM feeds
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get feeds: %w", err)
	}
	defer rows.Close()

	var feeds []Feed
	for rows.Next() {
		var feed Feed
		err := rows.Scan(
			&feed.ID, &feed.FeedURL, &feed.Title, &feed.Description,
			&feed.PublisherID, &feed.LastFetchedAt, &feed.CreatedAt, &feed.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		feeds = append(feeds, feed)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed rows: %w", err)
	}

	return feeds, nil
}

// InsertFeed creates a new feed row and returns its ID.
func (r *FeedRepository) InsertFeed(ctx context.Context, feedURL, title, description string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO feeds (feed_url, title, description, last_fetched_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id
	`, feedURL, title, description).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to insert feed: %w", err)
	}

	return id, nil
}

// UpdateFeedMetadata refreshes title/description and stamps a successful fetch.
func (r *FeedRepository) UpdateFeedMetadata(ctx context.Context, feedID int64, title, description string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE feeds
		SET title = $2, description = $3, last_fetched_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`, feedID, title, description)

	if err != nil {
		return fmt.Errorf("failed to update feed metadata: %w", err)
	}

	return nil
}

// SetFeedPublisher stores the publisher reference on the feed row.
func (r *FeedRepository) SetFeedPublisher(ctx context.Context, feedID, publisherID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE feeds
		SET publisher_id = $2, updated_at = NOW()
		WHERE id = $1
	`, feedID, publisherID)

	if err != nil {
		return fmt.Errorf("failed to set feed publisher: %w", err)
	}

	return nil
}

// GetFeedCount returns the total number of feeds
func (r *FeedRepository) GetFeedCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM feeds").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get feed count: %w", err)
	}
	return count, nil
}
