package rss

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/newspulse/backend/internal/sources"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
	<title>Example Feed</title>
	<item>
		<title>First entry</title>
		<link>https://example.com/1</link>
		<description>Something happened</description>
		<pubDate>Wed, 01 May 2024 10:00:00 GMT</pubDate>
	</item>
	<item>
		<title></title>
		<link>https://example.com/untitled</link>
	</item>
	<item>
		<title>Second entry</title>
		<link>https://example.com/2</link>
	</item>
</channel>
</rss>`

func TestFetchAllParsesItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	feeds := []sources.Feed{{Name: "Example", URL: srv.URL, Categories: []string{"world"}}}
	items := FetchAll(context.Background(), feeds)

	if len(items) != 2 {
		t.Fatalf("got %d items, want 2 (untitled entry should be skipped)", len(items))
	}
	if items[0].Title != "First entry" || items[0].Link != "https://example.com/1" {
		t.Errorf("items[0] = %+v", items[0])
	}
	if items[0].Source != "Example" {
		t.Errorf("Source = %q, want %q", items[0].Source, "Example")
	}
	if items[0].Published.IsZero() {
		t.Error("Published not parsed")
	}
	if len(items[0].Categories) != 1 || items[0].Categories[0] != "world" {
		t.Errorf("Categories = %v", items[0].Categories)
	}
}

func TestFetchAllUsesFeedTitleWhenUnnamed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	items := FetchAll(context.Background(), []sources.Feed{{URL: srv.URL}})
	if len(items) == 0 {
		t.Fatal("no items parsed")
	}
	if items[0].Source != "Example Feed" {
		t.Errorf("Source = %q, want feed title", items[0].Source)
	}
}

func TestFetchAllSkipsBrokenFeeds(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not xml"))
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleFeed))
	}))
	defer good.Close()

	feeds := []sources.Feed{
		{Name: "Broken", URL: bad.URL},
		{Name: "Good", URL: good.URL},
	}
	items := FetchAll(context.Background(), feeds)

	if len(items) != 2 {
		t.Fatalf("got %d items, want 2 from the good feed", len(items))
	}
	for _, item := range items {
		if item.Source != "Good" {
			t.Errorf("unexpected source %q", item.Source)
		}
	}
}
