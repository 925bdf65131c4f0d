package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"fireside/app/database"
	"fireside/app/feed"
)

func NewHandler(feedRepo database.FeedStore, itemRepo database.ItemStore,
	subRepo database.SubscriptionStore, refresher *feed.Refresher) *Handler {
	return &Handler{
		feedRepo:  feedRepo,
		itemRepo:  itemRepo,
		subRepo:   subRepo,
		refresher: refresher,
	}
}

// AddFeed registers a feed URL, fetches it immediately and subscribes the
// requesting user when a user_id is provided.
func (h *Handler) AddFeed(c *gin.Context) {
	var req AddFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid feed URL"})
		return
	}

	parsed, err := url.Parse(req.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Feed URL must be an absolute http(s) URL"})
		return
	}

	res := h.refresher.RefreshOne(c.Request.Context(), req.URL, req.UserID)
	if !res.Success {
		c.JSON(http.StatusUnprocessableEntity, res)
		return
	}

	c.JSON(http.StatusOK, res)
}

// RefreshFeed re-fetches a single feed by URL.
func (h *Handler) RefreshFeed(c *gin.Context) {
	var req AddFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid feed URL"})
		return
	}

	existing, err := h.feedRepo.GetFeedByURL(c.Request.Context(), req.URL)
	if err != nil {
		slog.Error("Database error", "operation", "get_feed_by_url", "feed_url", req.URL, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed is not registered"})
		return
	}

	res := h.refresher.RefreshOne(c.Request.Context(), req.URL, req.UserID)
	if !res.Success {
		c.JSON(http.StatusUnprocessableEntity, res)
		return
	}

	c.JSON(http.StatusOK, res)
}

// RefreshFeeds re-fetches every registered feed and reports the batch outcome.
func (h *Handler) RefreshFeeds(c *gin.Context) {
	batch, err := h.refresher.RefreshAll(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "refresh_all", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, batch)
}

// GetItems returns a user's subscribed items, newest first.
func (h *Handler) GetItems(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid user_id parameter"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	items, err := h.itemRepo.GetUserItems(c.Request.Context(), userID, limit, offset)
	if err != nil {
		slog.Error("Database error", "operation", "get_user_items", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	responses := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, ItemResponse{
			ID:          item.ItemID,
			FeedID:      item.FeedID,
			FeedTitle:   item.FeedTitle,
			Title:       item.Title,
			Content:     item.Content,
			Link:        item.Link,
			PublishedAt: item.PublishedAt,
			Authors:     item.Authors,
			Publisher:   item.PublisherName,
			IsRead:      item.IsRead,
			IsSaved:     item.IsSaved,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"items":  responses,
		"limit":  limit,
		"offset": offset,
	})
}

// SetItemState updates a user's read/save flags for one item. Absent flags
// are left unchanged.
func (h *Handler) SetItemState(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || itemID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
		return
	}

	var req SetItemStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid user_id in request body"})
		return
	}

	if req.IsRead == nil && req.IsSaved == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one of is_read or is_saved is required"})
		return
	}

	if err := h.subRepo.SetItemState(c.Request.Context(), req.UserID, itemID, req.IsRead, req.IsSaved); err != nil {
		slog.Error("Database error", "operation", "set_item_state", "item_id", itemID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetSubscriptions lists a user's feeds with unread counts.
func (h *Handler) GetSubscriptions(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid user_id parameter"})
		return
	}

	subs, err := h.subRepo.GetSubscriptions(c.Request.Context(), userID)
	if err != nil {
		slog.Error("Database error", "operation", "get_subscriptions", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	responses := make([]SubscriptionResponse, 0, len(subs))
	for _, sub := range subs {
		responses = append(responses, SubscriptionResponse{
			FeedID:        sub.FeedID,
			Title:         sub.Title,
			Description:   sub.Description,
			FeedURL:       sub.FeedURL,
			LastFetchedAt: sub.LastFetchedAt,
			ItemCount:     sub.ItemCount,
			UnreadCount:   sub.UnreadCount,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"subscriptions": responses,
		"total":         len(responses),
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if feedCount, err := h.feedRepo.GetFeedCount(c.Request.Context()); err == nil {
		health["feeds"] = feedCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{}

	if feedCount, err := h.feedRepo.GetFeedCount(c.Request.Context()); err == nil {
		stats["feeds"] = feedCount
	}
	if itemCount, err := h.itemRepo.GetItemCount(c.Request.Context()); err == nil {
		stats["items"] = itemCount
	}

	c.JSON(http.StatusOK, stats)
}
