package database

import (
	"time"
)

// Feed represents one external RSS/Atom source.
type Feed struct {
	ID            int64
	FeedURL       string
	Title         string
	Description   string
	PublisherID   *int64
	LastFetchedAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Item represents one article belonging to a feed. The (FeedID, GUID) pair is
// unique; re-ingesting the same feed never creates a duplicate row.
type Item struct {
	ID                 int64
	FeedID             int64
	GUID               string
	Link               string
	Title              string
	Content            string
	ContentSnippet     string
	PublishedAt        *time.Time
	ContentExtractedAt *time.Time
	ExtractionAttempts int
	CreatedAt          time.Time
}

// UserItem is an item joined with feed, author, publisher and per-user
// read/save state for subscriber-facing listings.
type UserItem struct {
	ItemID        int64
	FeedID        int64
	FeedTitle     string
	Title         string
	Content       string
	Link          string
	PublishedAt   *time.Time
	Authors       string
	PublisherName string
	IsRead        bool
	IsSaved       bool
}

// SubscriptionSummary is one subscribed feed with its item counts.
type SubscriptionSummary struct {
	FeedID        int64
	Title         string
	Description   string
	FeedURL       string
	LastFetchedAt *time.Time
	ItemCount     int
	UnreadCount   int
}

// ItemForExtraction identifies an item whose full article content has not
// been fetched yet.
type ItemForExtraction struct {
	ID   int64
	Link string
}
