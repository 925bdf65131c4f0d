package database

import (
	"context"
	"database/sql"
	"fmt"
)

var _ ItemStore = (*ItemRepository)(nil)

// ItemRepository handles database operations for feed items
type ItemRepository struct {
	db *DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// GetItemByGUID retrieves an item by its (feed, guid) natural key.
func (r *ItemRepository) GetItemByGUID(ctx context.Context, feedID int64, guid string) (*Item, error) {
	var item Item
	err := r.db.QueryRowContext(ctx, `
		SELECT id, feed_id, guid, link, title, content, content_snippet,
		       published_at, content_extracted_at, extraction_attempts, created_at
		FROM feed_items
		WHERE feed_id = $1 AND guid = $2
	`, feedID, guid).Scan(
		&item.ID, &item.FeedID, &item.GUID, &item.Link, &item.Title,
		&item.Content, &item.ContentSnippet, &item.PublishedAt,
		&item.ContentExtractedAt, &item.ExtractionAttempts, &item.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item by GUID: %w", err)
	}

	return &item, nil
}

// InsertItem stores a new item row and returns its ID.
func (r *ItemRepository) InsertItem(ctx context.Context, item Item) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO feed_items (feed_id, guid, link, title, content, content_snippet, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, item.FeedID, item.GUID, item.Link, item.Title, item.Content,
		item.ContentSnippet, item.PublishedAt).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to insert item: %w", err)
	}

	return id, nil
}

// UpdateItemContentIfLonger overwrites title/content only when the new content
// is strictly longer than the stored content, so a truncated re-fetch never
// regresses an item.
func (r *ItemRepository) UpdateItemContentIfLonger(ctx context.Context, itemID int64, title, content string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE feed_items
		SET title = COALESCE(NULLIF($2, ''), title), content = $3
		WHERE id = $1 AND char_length($3) > char_length(content)
	`, itemID, title, content)

	if err != nil {
		return false, fmt.Errorf("failed to update item content: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}

// GetItemCount returns the total number of items
func (r *ItemRepository) GetItemCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM feed_items").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get item count: %w", err)
	}
	return count, nil
}

// GetUserItems returns a subscriber's items in reverse chronological order,
// joined with feed, authors, publisher and the user's read/save state.
func (r *ItemRepository) GetUserItems(ctx context.Context, userID int64, limit, offset int) ([]UserItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT fi.id, f.id, f.title, fi.title, fi.content, fi.link, fi.published_at,
		       COALESCE(string_agg(DISTINCT a.name, ', '), ''),
		       COALESCE(MAX(p.name), ''),
		       COALESCE(BOOL_OR(ufis.is_read), FALSE),
		       COALESCE(BOOL_OR(ufis.is_saved), FALSE)
		FROM feed_items fi
		JOIN feeds f ON f.id = fi.feed_id
		JOIN subscriptions s ON s.feed_id = f.id AND s.user_id = $1
		LEFT JOIN feed_item_authors fia ON fia.item_id = fi.id
		LEFT JOIN authors a ON a.id = fia.author_id
		LEFT JOIN feed_item_publishers fip ON fip.item_id = fi.id
		LEFT JOIN publishers p ON p.id = fip.publisher_id
		LEFT JOIN user_feed_item_state ufis ON ufis.item_id = fi.id AND ufis.user_id = $1
		GROUP BY fi.id, f.id
		ORDER BY fi.published_at DESC NULLS LAST, fi.id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get user items: %w", err)
	}
	defer rows.Close()

	var items []UserItem
	for rows.Next() {
		var item UserItem
		err := rows.Scan(
			&item.ItemID, &item.FeedID, &item.FeedTitle, &item.Title,
			&item.Content, &item.Link, &item.PublishedAt,
			&item.Authors, &item.PublisherName, &item.IsRead, &item.IsSaved,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user item rows: %w", err)
	}

	return items, nil
}

// GetItemsForExtraction returns items that still need full-article content,
// newest first. Items that failed three times are left alone.
func (r *ItemRepository) GetItemsForExtraction(ctx context.Context, limit int) ([]ItemForExtraction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, link
		FROM feed_items
		WHERE link <> ''
		  AND content_extracted_at IS NULL
		  AND extraction_attempts < 3
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get items for extraction: %w", err)
	}
	defer rows.Close()

	var items []ItemForExtraction
	for rows.Next() {
		var item ItemForExtraction
		if err := rows.Scan(&item.ID, &item.Link); err != nil {
			return nil, fmt.Errorf("failed to scan extraction row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating extraction rows: %w", err)
	}

	return items, nil
}

// RecordExtractionAttempt bumps the attempt counter and, on success, stamps
// the extraction time so the item is not picked up again.
func (r *ItemRepository) RecordExtractionAttempt(ctx context.Context, itemID int64, succeeded bool) error {
	var err error
	if succeeded {
		_, err = r.db.ExecContext(ctx, `
			UPDATE feed_items
			SET extraction_attempts = extraction_attempts + 1, content_extracted_at = NOW()
			WHERE id = $1
		`, itemID)
	} else {
		_, err = r.db.ExecContext(ctx, `
			UPDATE feed_items
			SET extraction_attempts = extraction_attempts + 1
			WHERE id = $1
		`, itemID)
	}

	if err != nil {
		return fmt.Errorf("failed to record extraction attempt: %w", err)
	}

	return nil
}
