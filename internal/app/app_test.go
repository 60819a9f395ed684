package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/newspulse/backend/internal/config"
	"github.com/newspulse/backend/internal/fetch"
	"github.com/newspulse/backend/internal/news"
	"github.com/newspulse/backend/internal/newsapi"
	"github.com/newspulse/backend/internal/sources"
	"github.com/newspulse/backend/internal/storage"
)

func newFileAdapter(t *testing.T) *FileStoreAdapter {
	t.Helper()
	fs := storage.NewFileStore(filepath.Join(t.TempDir(), "seen.json"), 48)
	if err := fs.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return &FileStoreAdapter{store: fs}
}

func TestFileStoreAdapterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	fs := storage.NewFileStore(path, 48)
	adapter := &FileStoreAdapter{store: fs}
	ctx := context.Background()

	hash := storage.HeadlineHash("Big Story", "https://example.com/1")
	if adapter.IsSeen(ctx, hash) {
		t.Fatal("hash seen before marking")
	}
	err := adapter.MarkSeen(ctx, storage.SeenHeadline{Hash: hash, Title: "Big Story", Link: "https://example.com/1"})
	if err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}
	if !adapter.IsSeen(ctx, hash) {
		t.Fatal("hash not seen after marking")
	}

	// MarkSeen persists, so a fresh store sees the same hash.
	reloaded := storage.NewFileStore(path, 48)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.IsSeen(hash) {
		t.Fatal("hash lost across reload")
	}

	if got := adapter.Stats(ctx)["total_items"]; got != 1 {
		t.Errorf("total_items = %d, want 1", got)
	}
}

func TestMarkFreshFiltersSeen(t *testing.T) {
	a := &App{cfg: &config.Config{}, store: newFileAdapter(t)}
	ctx := context.Background()

	items := []news.Item{
		{Title: "First", Link: "https://example.com/1", Category: "General"},
		{Title: "Second", Link: "https://example.com/2", Category: "General"},
	}

	fresh := a.markFresh(ctx, items)
	if len(fresh) != 2 {
		t.Fatalf("first pass fresh = %d, want 2", len(fresh))
	}

	fresh = a.markFresh(ctx, items)
	if len(fresh) != 0 {
		t.Fatalf("second pass fresh = %d, want 0", len(fresh))
	}

	items = append(items, news.Item{Title: "Third", Link: "https://example.com/3"})
	fresh = a.markFresh(ctx, items)
	if len(fresh) != 1 || fresh[0].Title != "Third" {
		t.Fatalf("third pass fresh = %+v, want only Third", fresh)
	}
}

func TestGatherFromScrapeTarget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><h1><a href="/story/1">Big Story</a></h1></body></html>`))
	}))
	defer srv.Close()

	a := &App{
		cfg:     &config.Config{},
		fetcher: fetch.New(2 * time.Second),
		sources: &sources.Config{
			Scrape: []sources.ScrapeTarget{{Name: "Example", URL: srv.URL}},
		},
	}

	items := a.gather(context.Background())
	if len(items) != 1 {
		t.Fatalf("gathered %d items, want 1", len(items))
	}
	if items[0].Title != "Big Story" {
		t.Errorf("Title = %q", items[0].Title)
	}
	if items[0].Link != srv.URL+"/story/1" {
		t.Errorf("Link = %q", items[0].Link)
	}
	if items[0].Source != "Example" {
		t.Errorf("Source = %q", items[0].Source)
	}
}

func TestRunOncePublishesDigest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "ok",
			"articles": [
				{"title": "Economy Rebounds After Slow Quarter", "url": "https://example.com/economy", "source": {"name": "Wire"}},
				{"title": "New Vaccine Clears Final Trial", "url": "https://example.com/vaccine", "source": {"name": "Wire"}}
			]
		}`))
	}))
	defer srv.Close()

	a := &App{
		cfg: &config.Config{
			NewsCountry:  "us",
			NewsPageSize: 10,
			MaxHeadlines: 30,
		},
		newsClient: newsapi.New("test-key", 2*time.Second).WithBaseURL(srv.URL),
		store:      newFileAdapter(t),
	}

	digest, err := a.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if len(digest.Items) != 2 {
		t.Fatalf("digest has %d items, want 2", len(digest.Items))
	}
	if digest.FreshCount != 2 {
		t.Errorf("FreshCount = %d, want 2", digest.FreshCount)
	}
	if digest.Items[0].Category == "" || digest.Items[0].SentimentLabel == "" {
		t.Errorf("item not enriched: %+v", digest.Items[0])
	}
	if len(digest.WordCounts) == 0 {
		t.Error("no word counts")
	}
	if got := a.Latest(); got != digest {
		t.Error("Latest did not return the published digest")
	}

	// Same headlines again: nothing fresh, digest still published.
	second, err := a.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("second RunOnce: %v", err)
	}
	if second.FreshCount != 0 {
		t.Errorf("second FreshCount = %d, want 0", second.FreshCount)
	}
	if len(second.Items) != 2 {
		t.Errorf("second digest has %d items, want 2", len(second.Items))
	}
	if got := a.Latest(); got != second {
		t.Error("Latest not swapped to the second digest")
	}
}

func TestRunOnceNoContent(t *testing.T) {
	a := &App{cfg: &config.Config{}}

	_, err := a.RunOnce(context.Background())
	if !errors.Is(err, ErrNoContent) {
		t.Fatalf("err = %v, want ErrNoContent", err)
	}
}

func TestNewWiresFileBackend(t *testing.T) {
	cfg := &config.Config{
		NewsAPIKey:     "test-key",
		NewsCountry:    "us",
		AIProvider:     "groq",
		StoreBackend:   "file",
		SeenFilePath:   filepath.Join(t.TempDir(), "seen.json"),
		SeenTTLHours:   48,
		RequestTimeout: time.Second,
		RetryAttempts:  1,
		RetryDelay:     time.Millisecond,
	}

	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	if _, ok := a.store.(*FileStoreAdapter); !ok {
		t.Errorf("store is %T, want *FileStoreAdapter", a.store)
	}
	if a.newsClient == nil {
		t.Error("news client not wired")
	}
	if a.groq != nil {
		t.Error("groq wired without a key")
	}
	if a.notifier != nil {
		t.Error("notifier wired without a token")
	}
	if a.LimiterStats()["total_used"] != 0 {
		t.Error("limiter not fresh")
	}
}

func TestFormatDigestMessage(t *testing.T) {
	d := &Digest{
		GeneratedAt: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
		Summary:     "- markets up\n- rain expected",
	}
	fresh := []news.Item{
		{
			Title:           "Stocks <rally> & rebound",
			TranslatedTitle: "Акції зростають",
			Link:            "https://example.com/stocks",
			Source:          "Wire",
			Category:        "Business",
		},
		{Title: "Cup Final Tonight", Link: "https://example.com/cup", Category: "Sports"},
	}

	msg := formatDigestMessage(d, fresh, maxMessageItems)

	if !strings.Contains(msg, "NewsPulse digest") {
		t.Error("missing header")
	}
	if !strings.Contains(msg, "Stocks &lt;rally&gt; &amp; rebound") {
		t.Errorf("title not escaped:\n%s", msg)
	}
	if strings.Contains(msg, "<rally>") {
		t.Error("raw markup leaked into message")
	}
	if !strings.Contains(msg, "<i>Акції зростають</i>") {
		t.Error("missing translated title")
	}
	if !strings.Contains(msg, "Wire | Business") {
		t.Error("missing source/category line")
	}
	if !strings.Contains(msg, "- markets up") {
		t.Error("missing summary")
	}
	if !strings.Contains(msg, "Generated 2025-03-01 08:00 UTC") {
		t.Error("missing timestamp line")
	}
}

func TestFormatDigestMessageCapsItems(t *testing.T) {
	var fresh []news.Item
	for i := 0; i < 10; i++ {
		fresh = append(fresh, news.Item{
			Title:    "Item",
			Link:     "https://example.com",
			Category: "General",
		})
	}

	msg := formatDigestMessage(&Digest{GeneratedAt: time.Now()}, fresh, 5)
	if got := strings.Count(msg, "<a href="); got != 5 {
		t.Errorf("message has %d links, want 5", got)
	}
}

func TestCategoryEmoji(t *testing.T) {
	if categoryEmoji("Sports") == categoryEmoji("Business") {
		t.Error("categories share an emoji")
	}
	if categoryEmoji("General") != categoryEmoji("Unknown") {
		t.Error("fallback emoji not applied")
	}
}
