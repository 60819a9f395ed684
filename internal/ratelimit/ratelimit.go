// Package ratelimit caps daily AI usage so a busy news cycle can't burn
// through provider quotas.
package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"github.com/newspulse/backend/internal/logger"
)

// Provider names known to the limiter.
const (
	ProviderGroq      = "groq"
	ProviderGemini    = "gemini"
	ProviderTranslate = "translate"
)

// AILimiter tracks per-provider and total request counts with a daily reset.
// A limit of 0 means unlimited.
type AILimiter struct {
	mu          sync.Mutex
	counts      map[string]int
	limits      map[string]int
	totalCount  int
	maxTotal    int
	resetTime   time.Time
	tokensSaved int
	cacheHits   int
	cacheMisses int
}

// New creates a limiter. limits maps provider name to its daily cap.
func New(limits map[string]int, maxTotal int) *AILimiter {
	copied := make(map[string]int, len(limits))
	for provider, limit := range limits {
		copied[provider] = limit
	}
	return &AILimiter{
		counts:    make(map[string]int),
		limits:    copied,
		maxTotal:  maxTotal,
		resetTime: time.Now().Add(24 * time.Hour),
	}
}

// CanUse reports whether one more request to the provider fits the limits.
func (rl *AILimiter) CanUse(provider string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()
	return rl.allowed(provider) == nil
}

// Use consumes one request slot for the provider.
func (rl *AILimiter) Use(provider string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()
	if err := rl.allowed(provider); err != nil {
		return err
	}

	rl.counts[provider]++
	rl.totalCount++
	rl.cacheMisses++

	logger.Debug("AI usage",
		"provider", provider,
		"used", rl.counts[provider],
		"limit", rl.limits[provider],
		"total", rl.totalCount,
	)
	return nil
}

// allowed must be called with the mutex held.
func (rl *AILimiter) allowed(provider string) error {
	if limit := rl.limits[provider]; limit > 0 && rl.counts[provider] >= limit {
		return fmt.Errorf("%s rate limit exceeded (%d/%d)", provider, rl.counts[provider], limit)
	}
	if rl.maxTotal > 0 && rl.totalCount >= rl.maxTotal {
		return fmt.Errorf("total AI rate limit exceeded (%d/%d)", rl.totalCount, rl.maxTotal)
	}
	return nil
}

// RecordCacheHit notes a request answered from cache, with a rough token
// count the hit saved.
func (rl *AILimiter) RecordCacheHit(estimatedTokens int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.cacheHits++
	rl.tokensSaved += estimatedTokens
}

// CacheHitRate returns the percentage of AI lookups answered from cache.
func (rl *AILimiter) CacheHitRate() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.hitRateLocked()
}

func (rl *AILimiter) hitRateLocked() float64 {
	total := rl.cacheHits + rl.cacheMisses
	if total == 0 {
		return 0
	}
	return float64(rl.cacheHits) / float64(total) * 100
}

// GetStats returns a snapshot for the metrics endpoint.
func (rl *AILimiter) GetStats() map[string]interface{} {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	stats := map[string]interface{}{
		"total_used":     rl.totalCount,
		"total_limit":    rl.maxTotal,
		"cache_hits":     rl.cacheHits,
		"cache_misses":   rl.cacheMisses,
		"cache_hit_rate": rl.hitRateLocked(),
		"tokens_saved":   rl.tokensSaved,
		"reset_time":     rl.resetTime,
	}
	for provider, limit := range rl.limits {
		stats[provider+"_used"] = rl.counts[provider]
		stats[provider+"_limit"] = limit
	}
	for provider, used := range rl.counts {
		if _, ok := rl.limits[provider]; !ok {
			stats[provider+"_used"] = used
			stats[provider+"_limit"] = 0
		}
	}
	return stats
}

// checkReset clears counters once the daily window rolls over.
// Must be called with the mutex held.
func (rl *AILimiter) checkReset() {
	if !time.Now().After(rl.resetTime) {
		return
	}
	logger.Info("Resetting AI rate limiter counters",
		"total_used", rl.totalCount,
		"cache_hit_rate", rl.hitRateLocked(),
	)
	rl.counts = make(map[string]int)
	rl.totalCount = 0
	rl.cacheHits = 0
	rl.cacheMisses = 0
	rl.tokensSaved = 0
	rl.resetTime = time.Now().Add(24 * time.Hour)
}
