package feed

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mmcdole/gofeed"
)

// Fetcher downloads a feed over HTTP and parses it into the canonical shape.
// Parsing is two-stage: gofeed first, and when that rejects the document the
// lax fallback parser gets a try before the feed is declared unreadable.
type Fetcher struct {
	client    *http.Client
	parser    *gofeed.Parser
	userAgent string
}

// NewFetcher creates a fetcher using the given HTTP client
func NewFetcher(client *http.Client, userAgent string) *Fetcher {
	return &Fetcher{
		client:    client,
		parser:    gofeed.NewParser(),
		userAgent: userAgent,
	}
}

// Run fetches and parses the feed at feedURL.
func (f *Fetcher) Run(ctx context.Context, feedURL string) (*Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", feedURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("feed %s returned HTTP %d", feedURL, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("feed %s returned an empty body", feedURL)
	}

	parsed, err := f.parser.Parse(bytes.NewReader(data))
	if err == nil {
		return fromGofeed(parsed, feedURL), nil
	}

	slog.Debug("Primary feed parse failed, trying lax parser", "feed_url", feedURL, "error", err)

	fallback, ferr := parseFallback(data, feedURL)
	if ferr != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", feedURL, ferr)
	}

	return fallback, nil
}

func fromGofeed(gf *gofeed.Feed, feedURL string) *Feed {
	f := &Feed{
		Title:       gf.Title,
		Description: gf.Description,
		Link:        gf.Link,
		FeedURL:     feedURL,
	}

	if gf.Image != nil {
		f.Publisher = &Publisher{
			Name: gf.Title,
			URL:  gf.Link,
			Logo: gf.Image.URL,
		}
	}

	for _, c := range gf.Categories {
		if name := cleanName(c); name != "" {
			f.Categories = append(f.Categories, name)
		}
	}

	for _, it := range gf.Items {
		f.Items = append(f.Items, fromGofeedItem(it))
	}

	return f
}

func fromGofeedItem(it *gofeed.Item) Item {
	item := Item{
		Title:          it.Title,
		Content:        cmp.Or(it.Content, it.Description),
		ContentSnippet: it.Description,
		Link:           it.Link,
		GUID:           cmp.Or(it.GUID, it.Link),
		PubDate:        it.Published,
	}

	for _, p := range it.Authors {
		if p == nil {
			continue
		}
		if name := cleanName(p.Name); name != "" {
			item.Authors = append(item.Authors, name)
		}
	}
	if len(item.Authors) == 0 && it.DublinCoreExt != nil && len(it.DublinCoreExt.Creator) > 0 {
		if name := cleanName(it.DublinCoreExt.Creator[0]); name != "" {
			item.Authors = append(item.Authors, name)
		}
	}
	if len(item.Authors) > 0 {
		item.Author = item.Authors[0]
	}

	for _, c := range it.Categories {
		if name := cleanName(c); name != "" {
			item.Categories = append(item.Categories, name)
		}
	}

	return item
}
