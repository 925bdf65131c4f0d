package feed

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"

	"fireside/app/database"
)

// Result reports the outcome of reconciling one fetched feed into storage.
type Result struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	FeedID       int64  `json:"feed_id,omitempty"`
	NewItems     int    `json:"new_items"`
	UpdatedItems int    `json:"updated_items"`
}

// Processor reconciles a parsed feed into the database. Reconciliation is
// idempotent: running it twice over the same payload creates nothing new.
// Item-level failures are logged and skipped so one bad entry never sinks the
// rest of the feed.
type Processor struct {
	feeds   database.FeedStore
	items   database.ItemStore
	catalog database.CatalogStore
	subs    database.SubscriptionStore
}

// NewProcessor creates a new feed processor
func NewProcessor(feeds database.FeedStore, items database.ItemStore, catalog database.CatalogStore, subs database.SubscriptionStore) *Processor {
	return &Processor{
		feeds:   feeds,
		items:   items,
		catalog: catalog,
		subs:    subs,
	}
}

// Reconcile upserts the feed row, its publisher, categories and items. When
// userID is non-zero the user is also subscribed to the feed.
func (p *Processor) Reconcile(ctx context.Context, f *Feed, feedURL string, userID int64) Result {
	if f == nil {
		return Result{Success: false, Message: "could not fetch or parse feed"}
	}

	feedID, err := p.upsertFeed(ctx, f, feedURL)
	if err != nil {
		slog.Error("Failed to upsert feed", "feed_url", feedURL, "error", err)
		return Result{Success: false, Message: fmt.Sprintf("failed to store feed: %v", err)}
	}

	publisherID := p.upsertPublisher(ctx, f, feedID)
	p.linkFeedCategories(ctx, feedID, f.Categories)

	if userID > 0 {
		if err := p.subs.Subscribe(ctx, userID, feedID); err != nil {
			slog.Warn("Failed to subscribe user to feed", "user_id", userID, "feed_id", feedID, "error", err)
		}
	}

	var newItems, updatedItems int
	for _, item := range f.Items {
		created, updated, err := p.reconcileItem(ctx, feedID, publisherID, item)
		if err != nil {
			slog.Warn("Failed to reconcile item", "feed_id", feedID, "item_title", item.Title, "error", err)
			continue
		}
		if created {
			newItems++
		}
		if updated {
			updatedItems++
		}
	}

	return Result{
		Success:      true,
		Message:      fmt.Sprintf("feed processed: %d new items, %d updated", newItems, updatedItems),
		FeedID:       feedID,
		NewItems:     newItems,
		UpdatedItems: updatedItems,
	}
}

func (p *Processor) upsertFeed(ctx context.Context, f *Feed, feedURL string) (int64, error) {
	existing, err := p.feeds.GetFeedByURL(ctx, feedURL)
	if err != nil {
		return 0, err
	}

	if existing == nil {
		title := cmp.Or(f.Title, "Untitled Feed")
		return p.feeds.InsertFeed(ctx, feedURL, title, f.Description)
	}

	// A degraded fetch with an empty title must not wipe the stored one.
	title := cmp.Or(f.Title, existing.Title)
	description := cmp.Or(f.Description, existing.Description)
	if err := p.feeds.UpdateFeedMetadata(ctx, existing.ID, title, description); err != nil {
		return 0, err
	}

	return existing.ID, nil
}

func (p *Processor) upsertPublisher(ctx context.Context, f *Feed, feedID int64) int64 {
	if f.Publisher == nil || cleanName(f.Publisher.Name) == "" {
		return 0
	}

	name := cleanName(f.Publisher.Name)
	publisherID, err := p.catalog.FindOrCreatePublisher(ctx, name, f.Publisher.URL, f.Publisher.Logo)
	if err != nil {
		slog.Warn("Failed to upsert publisher", "feed_id", feedID, "publisher", name, "error", err)
		return 0
	}

	if err := p.feeds.SetFeedPublisher(ctx, feedID, publisherID); err != nil {
		slog.Warn("Failed to set feed publisher", "feed_id", feedID, "error", err)
	}

	return publisherID
}

func (p *Processor) linkFeedCategories(ctx context.Context, feedID int64, names []string) {
	for _, name := range names {
		name = cleanName(name)
		if name == "" {
			continue
		}
		categoryID, err := p.catalog.FindOrCreateCategory(ctx, name)
		if err != nil {
			slog.Warn("Failed to upsert category", "feed_id", feedID, "category", name, "error", err)
			continue
		}
		if err := p.catalog.LinkFeedCategory(ctx, feedID, categoryID); err != nil {
			slog.Warn("Failed to link feed category", "feed_id", feedID, "category", name, "error", err)
		}
	}
}

// reconcileItem upserts one item. The GUID falls back to the link; an item
// with neither cannot be deduplicated across fetches and is skipped.
func (p *Processor) reconcileItem(ctx context.Context, feedID, publisherID int64, item Item) (created, updated bool, err error) {
	guid := cmp.Or(item.GUID, item.Link)
	if guid == "" {
		slog.Warn("Skipping item without GUID or link", "feed_id", feedID, "item_title", item.Title)
		return false, false, nil
	}

	existing, err := p.items.GetItemByGUID(ctx, feedID, guid)
	if err != nil {
		return false, false, err
	}

	content := cmp.Or(item.Content, item.ContentSnippet)

	var itemID int64
	if existing == nil {
		itemID, err = p.items.InsertItem(ctx, database.Item{
			FeedID:         feedID,
			GUID:           guid,
			Link:           item.Link,
			Title:          cmp.Or(item.Title, "Untitled Item"),
			Content:        content,
			ContentSnippet: item.ContentSnippet,
			PublishedAt:    parsePublishedAt(item.PubDate),
		})
		if err != nil {
			return false, false, err
		}
		created = true
	} else {
		itemID = existing.ID
		if len(content) > len(existing.Content) {
			updated, err = p.items.UpdateItemContentIfLonger(ctx, itemID, item.Title, content)
			if err != nil {
				return false, false, err
			}
		}
	}

	p.linkItemAuthors(ctx, itemID, item.Authors)

	// Item-level categories describe the feed's subject matter, so they
	// attach to the feed, not the item.
	p.linkFeedCategories(ctx, feedID, item.Categories)

	if publisherID > 0 {
		if err := p.catalog.LinkItemPublisher(ctx, itemID, publisherID); err != nil {
			slog.Warn("Failed to link item publisher", "item_id", itemID, "error", err)
		}
	}

	if created {
		p.fanOutItemState(ctx, feedID, itemID)
	}

	return created, updated, nil
}

func (p *Processor) linkItemAuthors(ctx context.Context, itemID int64, names []string) {
	for _, name := range names {
		name = cleanName(name)
		if name == "" {
			continue
		}
		authorID, err := p.catalog.FindOrCreateAuthor(ctx, name)
		if err != nil {
			slog.Warn("Failed to upsert author", "item_id", itemID, "author", name, "error", err)
			continue
		}
		if err := p.catalog.LinkItemAuthor(ctx, itemID, authorID); err != nil {
			slog.Warn("Failed to link item author", "item_id", itemID, "author", name, "error", err)
		}
	}
}

// fanOutItemState seeds an unread state row for every current subscriber of
// the feed so new items show up as unread without a read-time join fallback.
func (p *Processor) fanOutItemState(ctx context.Context, feedID, itemID int64) {
	userIDs, err := p.subs.GetSubscriberIDs(ctx, feedID)
	if err != nil {
		slog.Warn("Failed to get feed subscribers", "feed_id", feedID, "error", err)
		return
	}

	for _, userID := range userIDs {
		if err := p.subs.EnsureItemState(ctx, userID, itemID); err != nil {
			slog.Warn("Failed to seed item state", "user_id", userID, "item_id", itemID, "error", err)
		}
	}
}
