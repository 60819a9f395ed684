package sources

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadParsesFeedsAndScrapeTargets(t *testing.T) {
	path := writeConfig(t, `
feeds:
  - name: BBC World
    url: https://feeds.bbci.co.uk/news/world/rss.xml
    lang: en
    categories: [world, politics]
scrape:
  - name: Example News
    url: https://example.com/news
    rules: ["h2 a", ".headline a"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cfg.Feeds) != 1 {
		t.Fatalf("got %d feeds, want 1", len(cfg.Feeds))
	}
	feed := cfg.Feeds[0]
	if feed.Name != "BBC World" || feed.Lang != "en" {
		t.Errorf("feed = %+v", feed)
	}
	if len(feed.Categories) != 2 {
		t.Errorf("got %d categories, want 2", len(feed.Categories))
	}
	if len(cfg.Scrape) != 1 {
		t.Fatalf("got %d scrape targets, want 1", len(cfg.Scrape))
	}
	if got := cfg.Scrape[0].Rules; len(got) != 2 || got[0] != "h2 a" {
		t.Errorf("rules = %v", got)
	}
}

func TestLoadAllowsEmptySections(t *testing.T) {
	path := writeConfig(t, `
feeds:
  - url: https://example.com/rss.xml
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cfg.Scrape) != 0 {
		t.Errorf("got %d scrape targets, want 0", len(cfg.Scrape))
	}
}

func TestLoadRejectsFeedWithoutURL(t *testing.T) {
	path := writeConfig(t, `
feeds:
  - name: nameless
`)

	if _, err := Load(path); err == nil {
		t.Error("Load() expected error for feed without url, got nil")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}
