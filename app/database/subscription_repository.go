package database

import (
	"context"
	"fmt"
)

var _ SubscriptionStore = (*SubscriptionRepository)(nil)

// SubscriptionRepository handles user subscriptions and per-user item state
type SubscriptionRepository struct {
	db *DB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Subscribe adds a (user, feed) subscription (insert-ignore).
func (r *SubscriptionRepository) Subscribe(ctx context.Context, userID, feedID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subscriptions (user_id, feed_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, userID, feedID)

	if err != nil {
		return fmt.Errorf("failed to subscribe user to feed: %w", err)
	}

	return nil
}

// GetSubscriberIDs returns the users subscribed to a feed.
func (r *SubscriptionRepository) GetSubscriberIDs(ctx context.Context, feedID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id FROM subscriptions WHERE feed_id = $1
	`, feedID)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscribers: %w", err)
	}
	defer rows.Close()

	var userIDs []int64
	for rows.Next() {
		var userID int64
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan subscriber row: %w", err)
		}
		userIDs = append(userIDs, userID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscriber rows: %w", err)
	}

	return userIDs, nil
}

// GetSubscriptions returns a user's feeds with item and unread counts.
func (r *SubscriptionRepository) GetSubscriptions(ctx context.Context, userID int64) ([]SubscriptionSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT f.id, f.title, f.description, f.feed_url, f.last_fetched_at,
		       COUNT(DISTINCT fi.id),
		       COUNT(DISTINCT fi.id) FILTER (WHERE COALESCE(ufis.is_read, FALSE) = FALSE)
		FROM subscriptions s
		JOIN feeds f ON f.id = s.feed_id
		LEFT JOIN feed_items fi ON fi.feed_id = f.id
		LEFT JOIN user_feed_item_state ufis ON ufis.item_id = fi.id AND ufis.user_id = s.user_id
		WHERE s.user_id = $1
		GROUP BY f.id
		ORDER BY f.title
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []SubscriptionSummary
	for rows.Next() {
		var sub SubscriptionSummary
		err := rows.Scan(
			&sub.FeedID, &sub.Title, &sub.Description, &sub.FeedURL,
			&sub.LastFetchedAt, &sub.ItemCount, &sub.UnreadCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription row: %w", err)
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscription rows: %w", err)
	}

	return subs, nil
}

// EnsureItemState creates the default unread/unsaved state row (insert-ignore).
func (r *SubscriptionRepository) EnsureItemState(ctx context.Context, userID, itemID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_feed_item_state (user_id, item_id, is_read, is_saved)
		VALUES ($1, $2, FALSE, FALSE)
		ON CONFLICT DO NOTHING
	`, userID, itemID)

	if err != nil {
		return fmt.Errorf("failed to ensure item state: %w", err)
	}

	return nil
}

// SetItemState updates a user's read/save flags for an item. A nil flag
// leaves the stored value unchanged.
func (r *SubscriptionRepository) SetItemState(ctx context.Context, userID, itemID int64, isRead, isSaved *bool) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_feed_item_state (user_id, item_id, is_read, is_saved)
		VALUES ($1, $2, COALESCE($3, FALSE), COALESCE($4, FALSE))
		ON CONFLICT (user_id, item_id) DO UPDATE SET
			is_read = COALESCE($3, user_feed_item_state.is_read),
			is_saved = COALESCE($4, user_feed_item_state.is_saved),
			updated_at = NOW()
	`, userID, itemID, isRead, isSaved)

	if err != nil {
		return fmt.Errorf("failed to set item state: %w", err)
	}

	return nil
}
