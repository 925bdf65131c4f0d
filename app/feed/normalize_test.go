package feed

import (
	"testing"
	"time"
)

func TestNormalizeRSSItemGUIDFallback(t *testing.T) {
	item := normalizeRSSItem(rssItem{
		Title: textNode{Value: "No GUID"},
		Link:  textNode{Value: "http://example.com/post"},
	})

	if item.GUID != "http://example.com/post" {
		t.Errorf("Expected link as GUID fallback, got '%s'", item.GUID)
	}
}

func TestNormalizeRSSItemAuthorPriority(t *testing.T) {
	item := normalizeRSSItem(rssItem{
		Author:  textNode{Value: "editor@example.com"},
		Creator: textNode{Value: "Jane"},
	})
	if item.Author != "editor@example.com" {
		t.Errorf("Expected author element to win over dc:creator, got '%s'", item.Author)
	}

	item = normalizeRSSItem(rssItem{
		Creator: textNode{Value: "  Jane  "},
	})
	if item.Author != "Jane" {
		t.Errorf("Expected trimmed dc:creator fallback, got '%s'", item.Author)
	}
	if len(item.Authors) != 1 || item.Authors[0] != "Jane" {
		t.Errorf("Expected authors list to mirror author, got %v", item.Authors)
	}
}

func TestNormalizeAtomEntryDateFallback(t *testing.T) {
	item := normalizeAtomEntry(atomEntry{
		ID:      textNode{Value: "urn:1"},
		Updated: textNode{Value: "2024-02-01T00:00:00Z"},
	})

	if item.PubDate != "2024-02-01T00:00:00Z" {
		t.Errorf("Expected updated as published fallback, got '%s'", item.PubDate)
	}
}

func TestNormalizeAtomEntryGUIDFallback(t *testing.T) {
	item := normalizeAtomEntry(atomEntry{
		Links: []atomLink{{Rel: "alternate", Type: "text/html", Href: "http://x/1"}},
	})

	if item.GUID != "http://x/1" {
		t.Errorf("Expected resolved link as GUID fallback, got '%s'", item.GUID)
	}
}

func TestCleanName(t *testing.T) {
	// "é" as e + combining acute normalizes to the precomposed form
	decomposed := "Jose\u0301"
	precomposed := "Jos\u00e9"

	if got := cleanName("  " + decomposed + "  "); got != precomposed {
		t.Errorf("Expected NFC-normalized trimmed name %q, got %q", precomposed, got)
	}

	if got := cleanName("   "); got != "" {
		t.Errorf("Expected empty result for whitespace, got %q", got)
	}
}

func TestParsePublishedAt(t *testing.T) {
	got := parsePublishedAt("Mon, 02 Jan 2006 15:04:05 GMT")
	if got == nil {
		t.Fatal("Expected RFC1123 date to parse")
	}
	expected := time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC)
	if !got.Equal(expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}

	if parsePublishedAt("2024-01-15T10:00:00+02:00") == nil {
		t.Error("Expected ISO 8601 date to parse")
	}

	if parsePublishedAt("not a date") != nil {
		t.Error("Expected nil for malformed date")
	}

	if parsePublishedAt("") != nil {
		t.Error("Expected nil for empty date")
	}
}
