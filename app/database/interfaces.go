package database

import (
	"context"
)

type FeedStore interface {
	GetFeedByURL(ctx context.Context, feedURL string) (*Feed, error)
	GetAllFeeds(ctx context.Context) ([]Feed, error)
	GetFeedCount(ctx context.Context) (int, error)

	InsertFeed(ctx context.Context, feedURL, title, description string) (int64, error)
	UpdateFeedMetadata(ctx context.Context, feedID int64, title, description string) error
	SetFeedPublisher(ctx context.Context, feedID, publisherID int64) error
}

type ItemStore interface {
	GetItemByGUID(ctx context.Context, feedID int64, guid string) (*Item, error)
	GetItemCount(ctx context.Context) (int, error)
	GetUserItems(ctx context.Context, userID int64, limit, offset int) ([]UserItem, error)

	InsertItem(ctx context.Context, item Item) (int64, error)
	// UpdateItemContentIfLonger overwrites title/content only when the new
	// content is strictly longer than what is stored. An empty title keeps
	// the stored one. Returns whether a row was updated.
	UpdateItemContentIfLonger(ctx context.Context, itemID int64, title, content string) (bool, error)

	GetItemsForExtraction(ctx context.Context, limit int) ([]ItemForExtraction, error)
	RecordExtractionAttempt(ctx context.Context, itemID int64, succeeded bool) error
}

// CatalogStore manages the deduplicated reference entities (authors,
// publishers, categories) and their associations. All Link* methods have
// insert-ignore semantics: linking an already-linked pair is a no-op.
type CatalogStore interface {
	FindOrCreateAuthor(ctx context.Context, name string) (int64, error)
	FindOrCreatePublisher(ctx context.Context, name, website, logoURL string) (int64, error)
	FindOrCreateCategory(ctx context.Context, name string) (int64, error)

	LinkItemAuthor(ctx context.Context, itemID, authorID int64) error
	LinkItemPublisher(ctx context.Context, itemID, publisherID int64) error
	LinkFeedCategory(ctx context.Context, feedID, categoryID int64) error
}

type SubscriptionStore interface {
	Subscribe(ctx context.Context, userID, feedID int64) error
	GetSubscriberIDs(ctx context.Context, feedID int64) ([]int64, error)
	GetSubscriptions(ctx context.Context, userID int64) ([]SubscriptionSummary, error)

	// EnsureItemState creates the default unread/unsaved state row for a
	// subscriber, ignoring the insert if the row already exists.
	EnsureItemState(ctx context.Context, userID, itemID int64) error
	SetItemState(ctx context.Context, userID, itemID int64, isRead, isSaved *bool) error
}
