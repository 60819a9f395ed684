package news

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/newspulse/backend/internal/extract"
	"github.com/newspulse/backend/internal/logger"
	"github.com/newspulse/backend/internal/metrics"
	"github.com/newspulse/backend/internal/newsapi"
	"github.com/newspulse/backend/internal/rss"
	"github.com/newspulse/backend/internal/sentiment"
)

// Item is a single headline flowing through the digest pipeline.
type Item struct {
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Source    string    `json:"source"`
	Category  string    `json:"category"`
	Published time.Time `json:"published"`
	Excerpt   string    `json:"excerpt,omitempty"`

	TranslatedTitle string `json:"translated_title,omitempty"`

	Score          int     `json:"score"`
	Sentiment      float64 `json:"sentiment"`
	SentimentLabel string  `json:"sentiment_label"`
}

// categoryKeywords maps digest categories to their trigger words, checked
// in a fixed order so the same text always lands in the same category.
var categoryKeywords = []struct {
	name     string
	keywords []string
}{
	{"Technology", []string{"tech", "ai", "robotics", "software", "startup", "cyber"}},
	{"Health", []string{"health", "covid", "medicine", "vaccine", "hospital"}},
	{"Politics", []string{"election", "government", "senate", "parliament", "minister"}},
	{"Sports", []string{"sports", "football", "basketball", "olympics", "tournament"}},
	{"Business", []string{"business", "economy", "stocks", "market", "inflation"}},
}

// CategoryGeneral is the fallback when no keyword group matches.
const CategoryGeneral = "General"

// containsAny matches keywords against text: phrases as substrings, short
// tokens (<=3 chars) as whole words so "ai" doesn't hit "said", the rest
// as plain substrings.
func containsAny(text string, keywords []string) bool {
	text = strings.ToLower(text)

	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}

		if strings.Contains(k, " ") {
			if strings.Contains(text, k) {
				return true
			}
			continue
		}

		if len(k) <= 3 {
			re := regexp.MustCompile(`\b` + regexp.QuoteMeta(k) + `\b`)
			if re.MatchString(text) {
				return true
			}
			continue
		}

		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// Categorize assigns a headline to the first matching category group.
func Categorize(text string) string {
	for _, group := range categoryKeywords {
		if containsAny(text, group.keywords) {
			return group.name
		}
	}
	return CategoryGeneral
}

// makeContentKey hashes the normalized title for exact-duplicate detection.
func makeContentKey(title string) string {
	h := sha1.New()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(title))))
	return hex.EncodeToString(h.Sum(nil))
}

// makeSimilarityKey builds a softer key for near-duplicate detection:
// source host, the first few significant title words, and a time window.
// Two rewrites of the same story from the same site inside the window
// collapse into one.
func makeSimilarityKey(item Item) string {
	const (
		windowHours = 6
		maxWords    = 6
	)

	host := "unknown"
	if item.Link != "" && item.Link != extract.MissingLinkSentinel {
		if u, err := url.Parse(item.Link); err == nil && u.Host != "" {
			host = strings.ToLower(u.Host)
		}
	}

	norm := normalizeWords(item.Title)
	significant := make([]string, 0, maxWords)
	for _, w := range norm {
		if len(significant) >= maxWords {
			break
		}
		if len(w) <= 2 || isStopWord(w) {
			continue
		}
		significant = append(significant, w)
	}
	if len(significant) == 0 {
		for i := 0; i < len(norm) && i < maxWords; i++ {
			significant = append(significant, norm[i])
		}
	}

	t := item.Published
	if t.IsZero() {
		t = time.Now()
	}
	windowStart := t.Truncate(windowHours * time.Hour).Unix()

	return fmt.Sprintf("%s|%s|%d", host, strings.Join(significant, "_"), windowStart)
}

func normalizeWords(s string) []string {
	s = strings.ToLower(s)
	runes := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			runes = append(runes, r)
		} else {
			runes = append(runes, ' ')
		}
	}
	return strings.Fields(string(runes))
}

var titleStopWords = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "in": true, "on": true,
	"to": true, "at": true, "as": true, "for": true, "and": true, "but": true,
	"is": true, "are": true, "was": true, "with": true, "after": true,
}

func isStopWord(w string) bool {
	return titleStopWords[w]
}

// calculateScore ranks an item for digest ordering. Interest matches and
// freshness dominate; everything starts from a small base so unranked
// items still sort deterministically.
func calculateScore(item Item, interests []string) int {
	score := 10

	if len(interests) > 0 {
		if containsAny(item.Title, interests) {
			score += 30
		}
		for _, interest := range interests {
			if strings.EqualFold(interest, item.Category) {
				score += 20
				break
			}
		}
	}

	if item.Category != CategoryGeneral {
		score += 5
	}

	if !item.Published.IsZero() {
		age := time.Since(item.Published)
		switch {
		case age < 6*time.Hour:
			score += 15
		case age < 24*time.Hour:
			score += 5
		}
	}

	if item.Excerpt != "" {
		score += 5
	}

	return score
}

// FromHeadline converts an extracted headline into a pipeline item.
func FromHeadline(h extract.Headline, source string) Item {
	return Item{Title: h.Text, Link: h.Link, Source: source}
}

// FromAPIArticle converts a NewsAPI article into a pipeline item.
func FromAPIArticle(a newsapi.Article) Item {
	return Item{
		Title:     a.Title,
		Link:      a.URL,
		Source:    a.Source,
		Published: a.PublishedAt,
		Excerpt:   a.Description,
	}
}

// FromFeedItem converts an RSS entry into a pipeline item.
func FromFeedItem(f rss.Item) Item {
	return Item{
		Title:     f.Title,
		Link:      f.Link,
		Source:    f.Source,
		Published: f.Published,
		Excerpt:   f.Description,
	}
}

// Options tunes the processing pipeline.
type Options struct {
	Interests   []string
	MaxItems    int           // 0 = no cap
	FreshWindow time.Duration // 0 = keep everything regardless of age
}

// Process runs the full pipeline over merged items: age filter,
// three-level dedup, categorization, sentiment, scoring, interest filter,
// sort and cap. Input order decides which duplicate survives.
func Process(items []Item, opts Options) []Item {
	seenLinks := map[string]struct{}{}
	seenContent := map[string]struct{}{}
	seenSimilar := map[string]struct{}{}
	var kept []Item

	for _, item := range items {
		item.Title = strings.TrimSpace(item.Title)
		if item.Title == "" {
			continue
		}

		if opts.FreshWindow > 0 && !item.Published.IsZero() && time.Since(item.Published) > opts.FreshWindow {
			continue
		}

		// The placeholder link is shared by every story without a URL, so
		// it can't participate in link dedup.
		if item.Link != "" && item.Link != extract.MissingLinkSentinel {
			if _, dup := seenLinks[item.Link]; dup {
				metrics.Global.IncrementDuplicatesFiltered()
				continue
			}
			seenLinks[item.Link] = struct{}{}
		}

		contentKey := makeContentKey(item.Title)
		if _, dup := seenContent[contentKey]; dup {
			metrics.Global.IncrementDuplicatesFiltered()
			continue
		}
		seenContent[contentKey] = struct{}{}

		similarKey := makeSimilarityKey(item)
		if _, dup := seenSimilar[similarKey]; dup {
			logger.Debug("Similar story skipped", "title", item.Title)
			metrics.Global.IncrementDuplicatesFiltered()
			continue
		}
		seenSimilar[similarKey] = struct{}{}

		if item.Category == "" {
			item.Category = Categorize(item.Title)
		}
		item.Sentiment, item.SentimentLabel = sentiment.Analyze(item.Title)
		item.Score = calculateScore(item, opts.Interests)

		kept = append(kept, item)
	}

	kept = FilterByInterests(kept, opts.Interests)
	SortItems(kept)

	if opts.MaxItems > 0 && len(kept) > opts.MaxItems {
		kept = kept[:opts.MaxItems]
	}
	return kept
}

// FilterByInterests keeps items whose title or category matches any
// interest. An empty interest list keeps everything.
func FilterByInterests(items []Item, interests []string) []Item {
	if len(interests) == 0 {
		return items
	}
	var filtered []Item
	for _, item := range items {
		if containsAny(item.Title, interests) {
			filtered = append(filtered, item)
			continue
		}
		for _, interest := range interests {
			if strings.EqualFold(interest, item.Category) {
				filtered = append(filtered, item)
				break
			}
		}
	}
	return filtered
}

// SortItems orders by score, newest first within a score.
func SortItems(items []Item) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Published.After(items[j].Published)
	})
}

// Titles collects item titles, used for summaries and word stats.
func Titles(items []Item) []string {
	titles := make([]string, len(items))
	for i, item := range items {
		titles[i] = item.Title
	}
	return titles
}
