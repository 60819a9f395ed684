package rss

import (
	"context"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/newspulse/backend/internal/logger"
	"github.com/newspulse/backend/internal/metrics"
	"github.com/newspulse/backend/internal/sources"
)

// Item is a single feed entry with the feed it came from.
type Item struct {
	Title       string
	Link        string
	Description string
	Published   time.Time
	Source      string
	Categories  []string
}

// FetchAll downloads and parses every feed. A broken feed is logged and
// skipped; the rest still come back.
func FetchAll(ctx context.Context, feeds []sources.Feed) []Item {
	parser := gofeed.NewParser()
	var allItems []Item
	successCount := 0

	for _, feed := range feeds {
		if ctx.Err() != nil {
			break
		}

		parsed, err := parser.ParseURLWithContext(feed.URL, ctx)
		if err != nil {
			logger.Warn("Failed to parse feed", "url", feed.URL, "error", err.Error())
			continue
		}

		sourceName := feed.Name
		if sourceName == "" {
			sourceName = parsed.Title
		}

		for _, entry := range parsed.Items {
			title := strings.TrimSpace(entry.Title)
			if title == "" {
				continue
			}
			item := Item{
				Title:       title,
				Link:        strings.TrimSpace(entry.Link),
				Description: strings.TrimSpace(entry.Description),
				Source:      sourceName,
				Categories:  feed.Categories,
			}
			if entry.PublishedParsed != nil {
				item.Published = *entry.PublishedParsed
			} else if entry.UpdatedParsed != nil {
				item.Published = *entry.UpdatedParsed
			}
			allItems = append(allItems, item)
		}

		successCount++
		metrics.Global.IncrementFeedsFetched()
		logger.Debug("Loaded feed", "source", sourceName, "items", len(parsed.Items))
	}

	logger.Info("Processed RSS feeds", "ok", successCount, "total", len(feeds))
	return allItems
}
