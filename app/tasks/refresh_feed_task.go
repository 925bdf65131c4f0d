package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"fireside/app/feed"
)

type RefreshFeedTask struct {
	Task
	refresher *feed.Refresher
}

func NewRefreshFeedTask(feedURL string, refresher *feed.Refresher) *RefreshFeedTask {
	return &RefreshFeedTask{
		Task:      NewTask(TaskTypeRefreshFeed, feedURL),
		refresher: refresher,
	}
}

func (t *RefreshFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	res := t.refresher.RefreshOne(ctx, t.FeedURL, 0)
	if !res.Success {
		return fmt.Errorf("feed refresh failed: %s", res.Message)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"feed_url", t.FeedURL,
		"duration", t.GetDuration(),
		"new_items", res.NewItems,
		"updated_items", res.UpdatedItems)

	return nil
}
