package metrics

import (
	"testing"
	"time"
)

func TestCountersAccumulate(t *testing.T) {
	m := &Metrics{IsHealthy: true}

	m.AddHeadlinesCollected(5)
	m.AddHeadlinesCollected(3)
	m.IncrementDuplicatesFiltered()
	m.IncrementSummariesGenerated()

	stats := m.GetStats()
	if got := stats["headlines_collected"].(int64); got != 8 {
		t.Errorf("headlines_collected = %d, want 8", got)
	}
	if got := stats["duplicates_filtered"].(int64); got != 1 {
		t.Errorf("duplicates_filtered = %d, want 1", got)
	}
	if got := stats["summaries_generated"].(int64); got != 1 {
		t.Errorf("summaries_generated = %d, want 1", got)
	}
}

func TestRefreshTimeAveraging(t *testing.T) {
	m := &Metrics{}

	m.RecordRefreshTime(100 * time.Millisecond)
	m.RecordRefreshTime(300 * time.Millisecond)

	stats := m.GetStats()
	if got := stats["last_refresh_time_ms"].(int64); got != 300 {
		t.Errorf("last_refresh_time_ms = %d, want 300", got)
	}
	if got := stats["average_refresh_time_ms"].(int64); got != 200 {
		t.Errorf("average_refresh_time_ms = %d, want 200", got)
	}
}

func TestHealthTransitions(t *testing.T) {
	m := &Metrics{IsHealthy: true}

	m.SetError("newsapi unreachable")
	if m.GetStats()["is_healthy"].(bool) {
		t.Error("expected unhealthy after SetError")
	}
	if m.GetStats()["last_error"].(string) != "newsapi unreachable" {
		t.Error("last_error not recorded")
	}

	m.SetLastRun()
	if !m.GetStats()["is_healthy"].(bool) {
		t.Error("expected healthy again after SetLastRun")
	}
}
