package metrics

import (
	"sync"
	"time"
)

// Metrics tracks pipeline counters for the monitoring endpoints.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	HeadlinesCollected   int64
	PagesScraped         int64
	APIFetches           int64
	TweetsFetched        int64
	PostsFetched         int64
	FeedsFetched         int64
	DuplicatesFiltered   int64
	SummariesGenerated   int64
	TranslationsDone     int64
	FailedTranslations   int64
	ClassificationsDone  int64
	DigestsPublished     int64
	NotificationsSent    int64

	// Timings
	LastRefreshTime    time.Duration
	AverageRefreshTime time.Duration
	TotalRefreshTime   time.Duration
	RefreshCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddHeadlinesCollected(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HeadlinesCollected += int64(n)
}

func (m *Metrics) IncrementPagesScraped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PagesScraped++
}

func (m *Metrics) IncrementAPIFetches() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.APIFetches++
}

func (m *Metrics) AddTweetsFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TweetsFetched += int64(n)
}

func (m *Metrics) AddPostsFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PostsFetched += int64(n)
}

func (m *Metrics) IncrementFeedsFetched() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedsFetched++
}

func (m *Metrics) IncrementDuplicatesFiltered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered++
}

func (m *Metrics) IncrementSummariesGenerated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummariesGenerated++
}

func (m *Metrics) IncrementTranslationsDone() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TranslationsDone++
}

func (m *Metrics) IncrementFailedTranslations() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailedTranslations++
}

func (m *Metrics) IncrementClassificationsDone() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClassificationsDone++
}

func (m *Metrics) IncrementDigestsPublished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DigestsPublished++
}

func (m *Metrics) IncrementNotificationsSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotificationsSent++
}

func (m *Metrics) RecordRefreshTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastRefreshTime = duration
	m.TotalRefreshTime += duration
	m.RefreshCount++

	if m.RefreshCount > 0 {
		m.AverageRefreshTime = m.TotalRefreshTime / time.Duration(m.RefreshCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"headlines_collected":     m.HeadlinesCollected,
		"pages_scraped":           m.PagesScraped,
		"api_fetches":             m.APIFetches,
		"tweets_fetched":          m.TweetsFetched,
		"posts_fetched":           m.PostsFetched,
		"feeds_fetched":           m.FeedsFetched,
		"duplicates_filtered":     m.DuplicatesFiltered,
		"summaries_generated":     m.SummariesGenerated,
		"translations_done":       m.TranslationsDone,
		"failed_translations":     m.FailedTranslations,
		"classifications_done":    m.ClassificationsDone,
		"digests_published":       m.DigestsPublished,
		"notifications_sent":      m.NotificationsSent,
		"last_refresh_time_ms":    m.LastRefreshTime.Milliseconds(),
		"average_refresh_time_ms": m.AverageRefreshTime.Milliseconds(),
		"last_run_time":           m.LastRunTime.Format(time.RFC3339),
		"last_error_time":         m.LastErrorTime.Format(time.RFC3339),
		"last_error":              m.LastError,
		"is_healthy":              m.IsHealthy,
	}
}
