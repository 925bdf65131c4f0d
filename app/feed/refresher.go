package feed

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"
)

// Refresher drives the fetch-then-reconcile cycle. Concurrent refreshes of
// the same feed URL are collapsed into one in-flight run via singleflight;
// callers arriving while a refresh is running share its result.
type Refresher struct {
	fetcher   *Fetcher
	processor *Processor
	group     singleflight.Group
}

// BatchResult summarizes refreshing a set of feeds.
type BatchResult struct {
	Total     int      `json:"total"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Details   []Result `json:"details"`
}

// NewRefresher creates a new refresher
func NewRefresher(fetcher *Fetcher, processor *Processor) *Refresher {
	return &Refresher{
		fetcher:   fetcher,
		processor: processor,
	}
}

// RefreshOne fetches and reconciles a single feed. The subscription for a
// non-zero userID happens outside the deduplicated section so a caller who
// joins another caller's in-flight refresh still gets subscribed.
func (r *Refresher) RefreshOne(ctx context.Context, feedURL string, userID int64) Result {
	v, _, _ := r.group.Do(feedURL, func() (interface{}, error) {
		f, err := r.fetcher.Run(ctx, feedURL)
		if err != nil {
			slog.Warn("Feed refresh failed", "feed_url", feedURL, "error", err)
			return Result{Success: false, Message: "could not fetch or parse feed: " + err.Error()}, nil
		}
		return r.processor.Reconcile(ctx, f, feedURL, 0), nil
	})

	res := v.(Result)

	if userID > 0 && res.Success && res.FeedID > 0 {
		if err := r.processor.subs.Subscribe(ctx, userID, res.FeedID); err != nil {
			slog.Warn("Failed to subscribe user to feed", "user_id", userID, "feed_id", res.FeedID, "error", err)
		}
	}

	return res
}

// RefreshAll refreshes every known feed sequentially.
func (r *Refresher) RefreshAll(ctx context.Context) (BatchResult, error) {
	feeds, err := r.processor.feeds.GetAllFeeds(ctx)
	if err != nil {
		return BatchResult{}, err
	}

	batch := BatchResult{Total: len(feeds)}
	for _, f := range feeds {
		res := r.RefreshOne(ctx, f.FeedURL, 0)
		if res.Success {
			batch.Succeeded++
		} else {
			batch.Failed++
		}
		batch.Details = append(batch.Details, res)
	}

	slog.Info("Feed refresh batch completed",
		"total", batch.Total, "succeeded", batch.Succeeded, "failed", batch.Failed)

	return batch, nil
}
