package feed

// Feed is the canonical dialect-independent representation of a fetched feed.
// Both the primary parser and the lax fallback parser produce this shape.
type Feed struct {
	Title       string
	Description string
	Link        string
	FeedURL     string
	Publisher   *Publisher
	Categories  []string
	Items       []Item
}

// Publisher carries channel-level branding. RSS feeds only yield one when the
// channel declares an <image>; Atom feeds always do.
type Publisher struct {
	Name string
	URL  string
	Logo string
}

// Item is one normalized entry. PubDate stays a raw string here; parsing into
// a timestamp happens at reconciliation time so a bad date never drops an item.
type Item struct {
	Title          string
	Content        string
	ContentSnippet string
	Link           string
	GUID           string
	PubDate        string
	Author         string
	Authors        []string
	Categories     []string
}
