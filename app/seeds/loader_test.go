package seeds

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSeedsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seeds.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write seeds file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeSeedsFile(t, `feeds:
  - url: http://example.com/rss
  - url: http://other.example.com/feed.atom
`)

	seeds, err := Load(path)
	if err != nil {
		t.Fatalf("Expected successful load, got error: %v", err)
	}

	if len(seeds) != 2 {
		t.Fatalf("Expected 2 seeds, got %d", len(seeds))
	}
	if seeds[0].URL != "http://example.com/rss" {
		t.Errorf("Unexpected first seed URL: %s", seeds[0].URL)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	seeds, err := Load("")
	if err != nil {
		t.Fatalf("Expected no error for empty path, got: %v", err)
	}
	if len(seeds) != 0 {
		t.Errorf("Expected no seeds, got %d", len(seeds))
	}
}

func TestLoadMissingFile(t *testing.T) {
	seeds, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Expected missing file to be treated as empty, got: %v", err)
	}
	if len(seeds) != 0 {
		t.Errorf("Expected no seeds, got %d", len(seeds))
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeSeedsFile(t, "feeds: [url: http://x\n")
	if _, err := Load(path); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestLoadMissingURL(t *testing.T) {
	path := writeSeedsFile(t, `feeds:
  - url: http://example.com/rss
  - url: ""
`)
	if _, err := Load(path); err == nil {
		t.Error("Expected error for seed without URL")
	}
}
