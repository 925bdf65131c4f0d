package api

import (
	"time"

	"fireside/app/database"
	"fireside/app/feed"
)

type Handler struct {
	feedRepo  database.FeedStore
	itemRepo  database.ItemStore
	subRepo   database.SubscriptionStore
	refresher *feed.Refresher
}

type AddFeedRequest struct {
	URL    string `json:"url" binding:"required"`
	UserID int64  `json:"user_id"`
}

type SetItemStateRequest struct {
	UserID  int64 `json:"user_id" binding:"required"`
	IsRead  *bool `json:"is_read"`
	IsSaved *bool `json:"is_saved"`
}

type ItemResponse struct {
	ID          int64      `json:"id"`
	FeedID      int64      `json:"feed_id"`
	FeedTitle   string     `json:"feed_title"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Link        string     `json:"link"`
	PublishedAt *time.Time `json:"published_at"`
	Authors     string     `json:"authors"`
	Publisher   string     `json:"publisher"`
	IsRead      bool       `json:"is_read"`
	IsSaved     bool       `json:"is_saved"`
}

type SubscriptionResponse struct {
	FeedID        int64      `json:"feed_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	FeedURL       string     `json:"feed_url"`
	LastFetchedAt *time.Time `json:"last_fetched_at"`
	ItemCount     int        `json:"item_count"`
	UnreadCount   int        `json:"unread_count"`
}
