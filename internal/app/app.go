// Package app wires the sources, NLP clients and stores into the digest
// pipeline and publishes the latest digest for the HTTP layer.
package app

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/newspulse/backend/internal/cache"
	"github.com/newspulse/backend/internal/config"
	"github.com/newspulse/backend/internal/extract"
	"github.com/newspulse/backend/internal/facebook"
	"github.com/newspulse/backend/internal/fetch"
	"github.com/newspulse/backend/internal/gemini"
	"github.com/newspulse/backend/internal/groq"
	"github.com/newspulse/backend/internal/logger"
	"github.com/newspulse/backend/internal/metrics"
	"github.com/newspulse/backend/internal/news"
	"github.com/newspulse/backend/internal/newsapi"
	"github.com/newspulse/backend/internal/ratelimit"
	"github.com/newspulse/backend/internal/rss"
	"github.com/newspulse/backend/internal/scraper"
	"github.com/newspulse/backend/internal/sources"
	"github.com/newspulse/backend/internal/storage"
	"github.com/newspulse/backend/internal/telegram"
	"github.com/newspulse/backend/internal/translate"
	"github.com/newspulse/backend/internal/twitter"
	"github.com/newspulse/backend/internal/wordstats"
)

// ErrNoContent means a refresh cycle produced no usable headlines.
var ErrNoContent = errors.New("no headlines collected")

const (
	classifyTopCount = 3
	topWordCount     = 20
	maxMessageItems  = 5
	maxMessageLen    = 4000
)

// Digest is one refresh cycle's output, served as JSON and optionally
// delivered to Telegram.
type Digest struct {
	GeneratedAt time.Time             `json:"generated_at"`
	Items       []news.Item           `json:"items"`
	FreshCount  int                   `json:"fresh_count"`
	Summary     string                `json:"summary,omitempty"`
	Checks      []HeadlineCheck       `json:"checks,omitempty"`
	Tweets      []twitter.Tweet       `json:"tweets,omitempty"`
	Posts       []facebook.Post       `json:"posts,omitempty"`
	WordCounts  []wordstats.WordCount `json:"word_counts,omitempty"`
}

// HeadlineCheck is a fake-news verdict for one digest headline.
type HeadlineCheck struct {
	Title      string  `json:"title"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// App owns the clients and stores of the digest pipeline.
type App struct {
	cfg *config.Config

	fetcher    *fetch.Client
	sources    *sources.Config
	newsClient *newsapi.Client
	twitter    *twitter.Client
	facebook   *facebook.Client

	limiter    *ratelimit.AILimiter
	aiCache    *cache.Cache
	groq       *groq.Client
	gemini     *gemini.Client
	translator *translate.Translator

	store    SeenStore
	notifier *telegram.Client

	mu     sync.RWMutex
	latest *Digest
}

// New wires the application from configuration. The context is used for
// client handshakes (Gemini, Redis).
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	a.fetcher = fetch.New(cfg.RequestTimeout)
	a.fetcher.MaxAttempts = cfg.RetryAttempts
	a.fetcher.RetryDelay = cfg.RetryDelay

	if cfg.SourcesConfigPath != "" {
		src, err := sources.Load(cfg.SourcesConfigPath)
		if err != nil {
			logger.Warn("Sources config not loaded", "path", cfg.SourcesConfigPath, "error", err.Error())
		} else {
			a.sources = src
			logger.Info("Sources loaded", "feeds", len(src.Feeds), "scrape_targets", len(src.Scrape))
		}
	}

	if cfg.NewsAPIKey != "" {
		a.newsClient = newsapi.New(cfg.NewsAPIKey, cfg.RequestTimeout)
	}
	if a.newsClient == nil && a.sources == nil {
		return nil, errors.New("no news sources configured")
	}

	if cfg.TwitterBearerToken != "" {
		a.twitter = twitter.New(cfg.TwitterBearerToken, cfg.RequestTimeout)
	}
	if cfg.FacebookToken != "" && cfg.FacebookPageID != "" {
		a.facebook = facebook.New(cfg.FacebookToken, cfg.RequestTimeout)
	}

	a.aiCache = cache.New()
	a.limiter = ratelimit.New(map[string]int{
		ratelimit.ProviderGroq:      cfg.MaxGroqRequests,
		ratelimit.ProviderGemini:    cfg.MaxGeminiRequests,
		ratelimit.ProviderTranslate: 0,
	}, cfg.MaxAIRequests)

	switch cfg.AIProvider {
	case "gemini":
		if cfg.GeminiAPIKey != "" {
			gem, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, "", a.limiter, a.aiCache)
			if err != nil {
				return nil, fmt.Errorf("init gemini: %w", err)
			}
			a.gemini = gem
		}
	default:
		if cfg.GroqAPIKey != "" {
			a.groq = groq.New(cfg.GroqAPIKey, cfg.GroqModel, cfg.GroqBaseURL, a.limiter, a.aiCache)
		}
	}

	// Gemini handles translation itself when it is the active provider.
	if cfg.TargetLanguage != "" && a.gemini == nil {
		a.translator = translate.New(cfg.OpenAIAPIKey, a.limiter, a.aiCache)
	}

	store, err := newSeenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.store = store

	if cfg.TelegramToken != "" && cfg.TelegramChatID != "" {
		a.notifier = telegram.New(cfg.TelegramToken, cfg.TelegramChatID)
	}

	return a, nil
}

func newSeenStore(ctx context.Context, cfg *config.Config) (SeenStore, error) {
	switch cfg.StoreBackend {
	case "postgres":
		ps, err := storage.NewPostgresStore(cfg.DatabaseURL, cfg.SeenTTLHours)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return &PostgresStoreAdapter{store: ps}, nil
	case "redis":
		rs, err := storage.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SeenTTLHours)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return &RedisStoreAdapter{store: rs}, nil
	default:
		fs := storage.NewFileStore(cfg.SeenFilePath, cfg.SeenTTLHours)
		if err := fs.Load(); err != nil {
			return nil, fmt.Errorf("load seen store: %w", err)
		}
		return &FileStoreAdapter{store: fs}, nil
	}
}

// RunOnce executes one refresh cycle and publishes the result as the
// latest digest.
func (a *App) RunOnce(ctx context.Context) (*Digest, error) {
	start := time.Now()
	logger.Info("Refresh started")

	items := a.gather(ctx)
	if len(items) == 0 {
		metrics.Global.SetError("no headlines collected")
		return nil, ErrNoContent
	}

	processed := news.Process(items, news.Options{
		Interests: a.cfg.Interests,
		MaxItems:  a.cfg.MaxHeadlines,
	})
	if len(processed) == 0 {
		metrics.Global.SetError("all headlines filtered out")
		return nil, ErrNoContent
	}

	a.translateTitles(ctx, processed)
	a.enrichContent(ctx, processed)

	summary := a.summarize(ctx, processed)
	checks := a.classifyTop(ctx, processed)
	tweets, posts := a.gatherSocial(ctx)

	fresh := a.markFresh(ctx, processed)

	digest := &Digest{
		GeneratedAt: time.Now(),
		Items:       processed,
		FreshCount:  len(fresh),
		Summary:     summary,
		Checks:      checks,
		Tweets:      tweets,
		Posts:       posts,
		WordCounts:  wordstats.Frequencies(news.Titles(processed), topWordCount),
	}

	a.mu.Lock()
	a.latest = digest
	a.mu.Unlock()

	metrics.Global.RecordRefreshTime(time.Since(start))
	metrics.Global.SetLastRun()
	metrics.Global.IncrementDigestsPublished()

	if a.notifier != nil && len(fresh) > 0 {
		a.deliver(ctx, digest, fresh)
	}

	logger.Info("Refresh finished",
		"items", len(processed),
		"fresh", len(fresh),
		"duration", time.Since(start).String(),
	)
	return digest, nil
}

// gather pulls headlines from every enabled source. A broken source is
// logged and skipped; the cycle continues with whatever arrived.
func (a *App) gather(ctx context.Context) []news.Item {
	var items []news.Item

	if a.newsClient != nil {
		articles, err := a.newsClient.TopHeadlines(ctx, a.cfg.NewsCountry, a.cfg.NewsPageSize)
		if err != nil {
			logger.Warn("NewsAPI fetch failed", "error", err.Error())
		}
		for _, art := range articles {
			items = append(items, news.FromAPIArticle(art))
		}
	}

	if a.sources != nil && len(a.sources.Feeds) > 0 {
		for _, fi := range rss.FetchAll(ctx, a.sources.Feeds) {
			items = append(items, news.FromFeedItem(fi))
		}
	}

	if a.sources != nil {
		for _, target := range a.sources.Scrape {
			headlines, err := scraper.ScrapeHeadlines(ctx, a.fetcher, target.URL, target.Rules)
			if errors.Is(err, extract.ErrNoHeadlines) {
				logger.Warn("No headlines matched", "site", target.Name, "url", target.URL)
				continue
			}
			if err != nil {
				logger.Warn("Scrape failed", "site", target.Name, "error", err.Error())
				continue
			}
			for _, h := range headlines {
				items = append(items, news.FromHeadline(h, target.Name))
			}
		}
	}

	metrics.Global.AddHeadlinesCollected(len(items))
	return items
}

func (a *App) gatherSocial(ctx context.Context) ([]twitter.Tweet, []facebook.Post) {
	var tweets []twitter.Tweet
	var posts []facebook.Post

	if a.twitter != nil {
		tw, err := a.twitter.SearchRecent(ctx, a.cfg.TwitterQuery, a.cfg.TwitterMaxResults)
		if err != nil {
			logger.Warn("Twitter fetch failed", "error", err.Error())
		} else {
			tweets = tw
		}
	}

	if a.facebook != nil {
		fb, err := a.facebook.PagePosts(ctx, a.cfg.FacebookPageID)
		if err != nil {
			logger.Warn("Facebook fetch failed", "error", err.Error())
		} else {
			posts = fb
		}
	}

	return tweets, posts
}

// translateTitles fills TranslatedTitle in place when a target language is
// configured. A failed translation keeps the original title.
func (a *App) translateTitles(ctx context.Context, items []news.Item) {
	if a.cfg.TargetLanguage == "" {
		return
	}
	for i := range items {
		var translated string
		var err error
		switch {
		case a.translator != nil:
			translated, err = a.translator.Translate(ctx, items[i].Title, "auto", a.cfg.TargetLanguage)
		case a.gemini != nil:
			translated, err = a.gemini.Translate(ctx, items[i].Title, a.cfg.TargetLanguage)
		default:
			return
		}
		if err != nil {
			logger.Warn("Title translation failed", "error", err.Error())
			continue
		}
		if translated != "" && translated != items[i].Title {
			items[i].TranslatedTitle = translated
		}
	}
}

// enrichContent pulls full article text for the top digest items so the
// summarizer sees more than bare titles. Best effort; items keep their feed
// excerpt when extraction fails.
func (a *App) enrichContent(ctx context.Context, items []news.Item) {
	if a.fetcher == nil || (a.groq == nil && a.gemini == nil) {
		return
	}

	urls := make([]string, 0, len(items))
	for _, item := range items {
		if strings.HasPrefix(item.Link, "http") {
			urls = append(urls, item.Link)
		}
	}
	if len(urls) == 0 {
		return
	}

	articles := scraper.ExtractArticles(ctx, a.fetcher, urls)
	for i := range items {
		if article, ok := articles[items[i].Link]; ok {
			items[i].Excerpt = article.Content
		}
	}
}

// summarize produces the digest summary through the active provider.
func (a *App) summarize(ctx context.Context, items []news.Item) string {
	if len(items) == 0 || (a.groq == nil && a.gemini == nil) {
		return ""
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		line := item.Title
		if item.Excerpt != "" {
			line += "\n" + snippet(item.Excerpt, 500)
		}
		lines = append(lines, line)
	}

	var summary string
	var err error
	if a.groq != nil {
		summary, err = a.groq.SummarizeHeadlines(ctx, lines)
	} else {
		summary, err = a.gemini.SummarizeHeadlines(ctx, lines)
	}
	if err != nil {
		logger.Warn("Summarization failed", "provider", a.cfg.AIProvider, "error", err.Error())
		return ""
	}
	return summary
}

// snippet cuts s down to roughly max bytes on a word boundary.
func snippet(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}

// classifyTop runs the fake-news check on the first few digest items.
// Only the Groq provider does classification.
func (a *App) classifyTop(ctx context.Context, items []news.Item) []HeadlineCheck {
	if a.groq == nil {
		return nil
	}

	n := classifyTopCount
	if n > len(items) {
		n = len(items)
	}

	checks := make([]HeadlineCheck, 0, n)
	for _, item := range items[:n] {
		verdict, err := a.groq.ClassifyHeadline(ctx, item.Title)
		if err != nil {
			logger.Warn("Headline check failed", "title", item.Title, "error", err.Error())
			continue
		}
		checks = append(checks, HeadlineCheck{
			Title:      item.Title,
			Label:      verdict.Label,
			Confidence: verdict.Confidence,
		})
	}
	return checks
}

// markFresh records unseen items in the store and returns them.
func (a *App) markFresh(ctx context.Context, items []news.Item) []news.Item {
	var fresh []news.Item
	for _, item := range items {
		hash := storage.HeadlineHash(item.Title, item.Link)
		if a.store.IsSeen(ctx, hash) {
			continue
		}
		if err := a.store.MarkSeen(ctx, storage.SeenHeadline{
			Hash:     hash,
			Title:    item.Title,
			Link:     item.Link,
			Category: item.Category,
			Source:   item.Source,
		}); err != nil {
			logger.Warn("Mark seen failed", "error", err.Error())
		}
		fresh = append(fresh, item)
	}
	return fresh
}

// deliver posts the fresh items to Telegram, shrinking the message when it
// would exceed the API limit.
func (a *App) deliver(ctx context.Context, d *Digest, fresh []news.Item) {
	msg := formatDigestMessage(d, fresh, maxMessageItems)
	if len(msg) > maxMessageLen {
		msg = formatDigestMessage(d, fresh, 2)
	}
	if err := a.notifier.SendMessage(ctx, msg); err != nil {
		logger.Warn("Telegram delivery failed", "error", err.Error())
	}
}

// Latest returns the most recently published digest, or nil before the
// first successful refresh.
func (a *App) Latest() *Digest {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.latest
}

// StoreStats exposes seen-store counters for the metrics endpoint.
func (a *App) StoreStats(ctx context.Context) map[string]int {
	return a.store.Stats(ctx)
}

// LimiterStats exposes AI usage counters for the metrics endpoint.
func (a *App) LimiterStats() map[string]interface{} {
	return a.limiter.GetStats()
}

// Close releases clients and flushes the seen store.
func (a *App) Close() {
	if a.gemini != nil {
		a.gemini.Close()
	}
	a.aiCache.Close()
	if err := a.store.Close(); err != nil {
		logger.Warn("Store close failed", "error", err.Error())
	}
}

// formatDigestMessage renders fresh digest items as a Telegram HTML message.
func formatDigestMessage(d *Digest, fresh []news.Item, maxItems int) string {
	var b strings.Builder

	b.WriteString("📰 <b>NewsPulse digest</b>\n")
	b.WriteString("━━━━━━━━━━━━━━━━━━━━\n\n")

	count := 0
	for _, item := range fresh {
		if count >= maxItems {
			break
		}
		count++

		b.WriteString(fmt.Sprintf("%s <b>%d.</b> <a href=\"%s\">%s</a>\n",
			categoryEmoji(item.Category), count, html.EscapeString(item.Link), html.EscapeString(item.Title)))
		if item.TranslatedTitle != "" && item.TranslatedTitle != item.Title {
			b.WriteString(fmt.Sprintf("<i>%s</i>\n", html.EscapeString(item.TranslatedTitle)))
		}

		meta := item.Category
		if item.Source != "" {
			meta = item.Source + " | " + meta
		}
		b.WriteString(meta + "\n\n")
	}

	if d.Summary != "" {
		b.WriteString("📋 <b>Summary</b>\n")
		b.WriteString(html.EscapeString(d.Summary))
		b.WriteString("\n\n")
	}

	b.WriteString("━━━━━━━━━━━━━━━━━━━━\n")
	b.WriteString("Generated " + d.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"))

	return b.String()
}

func categoryEmoji(category string) string {
	switch category {
	case "Technology":
		return "💻"
	case "Health":
		return "🏥"
	case "Politics":
		return "🏛"
	case "Sports":
		return "⚽"
	case "Business":
		return "📈"
	}
	return "📰"
}
