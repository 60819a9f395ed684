package storage

import (
	"path/filepath"
	"testing"
	"time"
)

func TestFileStoreMarkAndCheck(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "seen.json"), 48)

	hash := HeadlineHash("Breaking News", "https://example.com/story/1")
	if fs.IsSeen(hash) {
		t.Error("IsSeen() = true before marking")
	}

	fs.MarkSeen(SeenHeadline{Hash: hash, Title: "Breaking News", Link: "https://example.com/story/1"})
	if !fs.IsSeen(hash) {
		t.Error("IsSeen() = false after marking")
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")

	first := NewFileStore(path, 48)
	hash := HeadlineHash("Persisted story", "https://example.com/p")
	first.MarkSeen(SeenHeadline{Hash: hash, Title: "Persisted story"})
	if err := first.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	second := NewFileStore(path, 48)
	if err := second.Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !second.IsSeen(hash) {
		t.Error("IsSeen() = false after reload")
	}
}

func TestFileStoreLoadMissingFile(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "absent.json"), 48)
	if err := fs.Load(); err != nil {
		t.Errorf("Load() on missing file error: %v", err)
	}
}

func TestFileStoreCleanupDropsExpired(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "seen.json"), 1)

	fs.MarkSeen(SeenHeadline{Hash: "fresh", Title: "fresh"})
	fs.mu.Lock()
	fs.items["stale"] = SeenHeadline{Hash: "stale", SeenAt: time.Now().Add(-2 * time.Hour)}
	fs.mu.Unlock()

	fs.Cleanup()

	if fs.IsSeen("stale") {
		t.Error("stale entry survived Cleanup()")
	}
	if !fs.IsSeen("fresh") {
		t.Error("fresh entry removed by Cleanup()")
	}
	if got := fs.GetStats()["total_items"]; got != 1 {
		t.Errorf("total_items = %d, want 1", got)
	}
}

func TestHeadlineHashNormalizesTitle(t *testing.T) {
	a := HeadlineHash("  Some   Headline ", "https://www.example.com/x")
	b := HeadlineHash("some headline", "https://example.com/y")
	if a != b {
		t.Error("hash should ignore case, spacing and path")
	}
}

func TestHeadlineHashSeparatesDomains(t *testing.T) {
	a := HeadlineHash("Same words", "https://one.example.com/x")
	b := HeadlineHash("Same words", "https://two.example.com/x")
	if a == b {
		t.Error("hash should differ across domains")
	}
}

func TestExtractDomain(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://www.example.com/a/b", "example.com"},
		{"http://News.Example.com", "news.example.com"},
		{"", "unknown"},
	}
	for _, tc := range cases {
		if got := extractDomain(tc.url); got != tc.want {
			t.Errorf("extractDomain(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}
