package feed

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/text/unicode/norm"
)

// normalizeRSSItem maps a raw RSS item onto the canonical shape. Field
// priorities follow what feeds actually populate: content:encoded beats the
// description, dc:creator fills in for a missing author, dc:date fills in
// for a missing pubDate.
func normalizeRSSItem(raw rssItem) Item {
	guid := raw.GUID.Text()
	if guid == "" {
		guid = raw.Link.Text()
	}

	author := cleanName(raw.Author.Text())
	if author == "" {
		author = cleanName(raw.Creator.Text())
	}

	content := raw.Content.Text()
	if content == "" {
		content = raw.Encoded.Text()
	}
	if content == "" {
		content = raw.Description.Text()
	}

	pubDate := raw.PubDate.Text()
	if pubDate == "" {
		pubDate = raw.Date.Text()
	}

	item := Item{
		Title:          raw.Title.Text(),
		Content:        content,
		ContentSnippet: raw.Description.Text(),
		Link:           raw.Link.Text(),
		GUID:           guid,
		PubDate:        pubDate,
		Author:         author,
	}
	if author != "" {
		item.Authors = []string{author}
	}

	for _, c := range raw.Categories {
		if name := cleanName(c.Text()); name != "" {
			item.Categories = append(item.Categories, name)
		}
	}

	return item
}

// normalizeAtomEntry maps a raw Atom entry onto the canonical shape. The
// entry id doubles as the GUID, falling back to the resolved link; a missing
// published date falls back to updated.
func normalizeAtomEntry(raw atomEntry) Item {
	link := resolveLink(raw.Links)

	guid := raw.ID.Text()
	if guid == "" {
		guid = link
	}

	content := raw.Content.Text()
	if content == "" {
		content = raw.Summary.Text()
	}

	pubDate := raw.Published.Text()
	if pubDate == "" {
		pubDate = raw.Updated.Text()
	}

	var authors []string
	for _, p := range raw.Authors {
		if name := cleanName(p.Name.Text()); name != "" {
			authors = append(authors, name)
		}
	}

	item := Item{
		Title:          raw.Title.Text(),
		Content:        content,
		ContentSnippet: raw.Summary.Text(),
		Link:           link,
		GUID:           guid,
		PubDate:        pubDate,
		Authors:        authors,
	}
	if len(authors) > 0 {
		item.Author = authors[0]
	}

	for _, c := range raw.Categories {
		name := c.Term
		if name == "" {
			name = c.Value
		}
		if name = cleanName(name); name != "" {
			item.Categories = append(item.Categories, name)
		}
	}

	return item
}

// cleanName canonicalizes a human-facing name so the same author or category
// spelled with different Unicode forms dedupes to one row.
func cleanName(name string) string {
	return strings.TrimSpace(norm.NFC.String(name))
}

// parsePublishedAt parses a feed-supplied date in whatever format the feed
// chose. Unparseable or absent dates yield nil rather than an error; the item
// is still worth keeping.
func parsePublishedAt(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return nil
	}

	utc := t.UTC()
	return &utc
}
