package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Wire Blog</title>
    <link>http://example.com</link>
    <item>
      <title>Hello</title>
      <link>http://example.com/hello</link>
      <guid>hello-1</guid>
      <description>Greetings</description>
    </item>
  </channel>
</rss>`

func TestFetcherRun(t *testing.T) {
	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "Fireside Test/1.0")
	f, err := fetcher.Run(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected successful fetch, got error: %v", err)
	}

	if gotUserAgent != "Fireside Test/1.0" {
		t.Errorf("Expected configured user agent, got '%s'", gotUserAgent)
	}
	if f.Title != "Wire Blog" {
		t.Errorf("Expected title 'Wire Blog', got '%s'", f.Title)
	}
	if f.FeedURL != server.URL {
		t.Errorf("Expected feed URL '%s', got '%s'", server.URL, f.FeedURL)
	}
	if len(f.Items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(f.Items))
	}
	if f.Items[0].GUID != "hello-1" {
		t.Errorf("Expected GUID 'hello-1', got '%s'", f.Items[0].GUID)
	}
}

func TestFetcherRunHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "Fireside Test/1.0")
	if _, err := fetcher.Run(context.Background(), server.URL); err == nil {
		t.Error("Expected error for HTTP 404")
	}
}

func TestFetcherRunEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "Fireside Test/1.0")
	if _, err := fetcher.Run(context.Background(), server.URL); err == nil {
		t.Error("Expected error for empty body")
	}
}

func TestFetcherRunNotAFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body>just a page</body></html>`))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "Fireside Test/1.0")
	if _, err := fetcher.Run(context.Background(), server.URL); err == nil {
		t.Error("Expected error for an HTML page")
	}
}

func TestFetcherFallbackOnUndeclaredEntity(t *testing.T) {
	// &nbsp; is undeclared in XML; the lax parser should still accept the feed.
	broken := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Broken&nbsp;Blog</title>
    <item>
      <title>Post</title>
      <guid>g1</guid>
    </item>
  </channel>
</rss>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(broken))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "Fireside Test/1.0")
	f, err := fetcher.Run(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected lax parser to accept the feed, got error: %v", err)
	}
	if len(f.Items) != 1 {
		t.Errorf("Expected 1 item from fallback parse, got %d", len(f.Items))
	}
}
