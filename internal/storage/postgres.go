package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/newspulse/backend/internal/logger"
)

// PostgresStore keeps seen headlines and cached AI summaries in PostgreSQL.
type PostgresStore struct {
	db       *sql.DB
	ttlHours int
}

// SummaryCacheItem is a cached digest summary keyed by the hash of the
// headline batch it was generated from.
type SummaryCacheItem struct {
	ContentHash string
	Headlines   string
	Summary     string
	Provider    string
	CreatedAt   time.Time
	LastUsedAt  time.Time
	UseCount    int
}

// NewPostgresStore connects, pings and prepares the schema.
func NewPostgresStore(connectionString string, ttlHours int) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &PostgresStore{
		db:       db,
		ttlHours: ttlHours,
	}

	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	logger.Info("PostgreSQL store connected")
	return store, nil
}

func (ps *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS seen_headlines (
		id SERIAL PRIMARY KEY,
		hash VARCHAR(64) UNIQUE NOT NULL,
		title TEXT NOT NULL,
		link TEXT NOT NULL,
		category VARCHAR(50),
		source VARCHAR(100),
		seen_at TIMESTAMP NOT NULL DEFAULT NOW(),
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_seen_headlines_hash ON seen_headlines(hash);
	CREATE INDEX IF NOT EXISTS idx_seen_headlines_seen_at ON seen_headlines(seen_at);
	CREATE INDEX IF NOT EXISTS idx_seen_headlines_link ON seen_headlines(link);

	CREATE TABLE IF NOT EXISTS summary_cache (
		id SERIAL PRIMARY KEY,
		content_hash VARCHAR(64) UNIQUE NOT NULL,
		headlines TEXT NOT NULL,
		summary TEXT,
		provider VARCHAR(50),
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		last_used_at TIMESTAMP NOT NULL DEFAULT NOW(),
		use_count INTEGER DEFAULT 1
	);

	CREATE INDEX IF NOT EXISTS idx_summary_cache_hash ON summary_cache(content_hash);
	`

	if _, err := ps.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// IsSeen checks whether the hash was recorded within the TTL window.
func (ps *PostgresStore) IsSeen(ctx context.Context, hash string) bool {
	cutoff := time.Now().Add(-time.Duration(ps.ttlHours) * time.Hour)

	var count int
	query := `SELECT COUNT(*) FROM seen_headlines WHERE hash = $1 AND seen_at > $2`
	if err := ps.db.QueryRowContext(ctx, query, hash, cutoff).Scan(&count); err != nil {
		logger.Warn("Seen lookup failed", "error", err.Error())
		return false
	}
	return count > 0
}

// IsLinkSeen checks whether the exact link was recorded within the TTL window.
func (ps *PostgresStore) IsLinkSeen(ctx context.Context, link string) bool {
	cutoff := time.Now().Add(-time.Duration(ps.ttlHours) * time.Hour)

	var count int
	query := `SELECT COUNT(*) FROM seen_headlines WHERE link = $1 AND seen_at > $2`
	if err := ps.db.QueryRowContext(ctx, query, link, cutoff).Scan(&count); err != nil {
		logger.Warn("Link lookup failed", "error", err.Error())
		return false
	}
	return count > 0
}

// MarkSeen records a headline. Re-marking refreshes seen_at.
func (ps *PostgresStore) MarkSeen(ctx context.Context, h SeenHeadline) error {
	query := `
		INSERT INTO seen_headlines (hash, title, link, category, source, seen_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (hash) DO UPDATE SET seen_at = NOW()
	`
	if _, err := ps.db.ExecContext(ctx, query, h.Hash, h.Title, h.Link, h.Category, h.Source); err != nil {
		return fmt.Errorf("mark seen: %w", err)
	}
	return nil
}

// Cleanup deletes rows past the TTL window.
func (ps *PostgresStore) Cleanup(ctx context.Context) error {
	cutoff := time.Now().Add(-time.Duration(ps.ttlHours) * time.Hour)

	result, err := ps.db.ExecContext(ctx, `DELETE FROM seen_headlines WHERE seen_at < $1`, cutoff)
	if err != nil {
		return fmt.Errorf("cleanup seen headlines: %w", err)
	}

	if rows, _ := result.RowsAffected(); rows > 0 {
		logger.Debug("Cleaned up seen headlines", "rows", rows)
	}
	return nil
}

// GetStats returns store statistics.
func (ps *PostgresStore) GetStats(ctx context.Context) (map[string]int, error) {
	stats := make(map[string]int)

	var total int
	if err := ps.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM seen_headlines`).Scan(&total); err != nil {
		return nil, err
	}
	stats["total_items"] = total

	cutoff := time.Now().Add(-time.Duration(ps.ttlHours) * time.Hour)
	var active int
	if err := ps.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM seen_headlines WHERE seen_at > $1`, cutoff).Scan(&active); err != nil {
		return nil, err
	}
	stats["active_items"] = active

	rows, err := ps.db.QueryContext(ctx, `
		SELECT category, COUNT(*)
		FROM seen_headlines
		WHERE seen_at > $1
		GROUP BY category
	`, cutoff)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var category string
			var count int
			if err := rows.Scan(&category, &count); err == nil {
				stats["category_"+category] = count
			}
		}
	}

	return stats, nil
}

// GetRecent returns the latest recorded headlines, newest first.
func (ps *PostgresStore) GetRecent(ctx context.Context, limit int) ([]SeenHeadline, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT hash, title, link, category, source, seen_at
		FROM seen_headlines
		ORDER BY seen_at DESC
		LIMIT $1
	`
	rows, err := ps.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []SeenHeadline
	for rows.Next() {
		var item SeenHeadline
		if err := rows.Scan(&item.Hash, &item.Title, &item.Link, &item.Category, &item.Source, &item.SeenAt); err != nil {
			logger.Warn("Row scan failed", "error", err.Error())
			continue
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetSummaryCache looks up a cached summary. A miss returns ok=false, not
// an error.
func (ps *PostgresStore) GetSummaryCache(ctx context.Context, contentHash string) (SummaryCacheItem, bool, error) {
	var item SummaryCacheItem

	query := `
		SELECT content_hash, headlines, summary, provider, created_at, last_used_at, use_count
		FROM summary_cache
		WHERE content_hash = $1
	`
	err := ps.db.QueryRowContext(ctx, query, contentHash).Scan(
		&item.ContentHash, &item.Headlines, &item.Summary, &item.Provider,
		&item.CreatedAt, &item.LastUsedAt, &item.UseCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return item, false, nil
		}
		return item, false, fmt.Errorf("get summary cache: %w", err)
	}
	return item, true, nil
}

// SetSummaryCache stores or refreshes a cached summary.
func (ps *PostgresStore) SetSummaryCache(ctx context.Context, item SummaryCacheItem) error {
	query := `
		INSERT INTO summary_cache (content_hash, headlines, summary, provider, created_at, last_used_at, use_count)
		VALUES ($1, $2, $3, $4, NOW(), NOW(), 1)
		ON CONFLICT (content_hash) DO UPDATE SET
			headlines = EXCLUDED.headlines,
			summary = EXCLUDED.summary,
			provider = EXCLUDED.provider,
			last_used_at = NOW(),
			use_count = summary_cache.use_count + 1
	`
	if _, err := ps.db.ExecContext(ctx, query, item.ContentHash, item.Headlines, item.Summary, item.Provider); err != nil {
		return fmt.Errorf("set summary cache: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (ps *PostgresStore) Close() error {
	if ps.db != nil {
		return ps.db.Close()
	}
	return nil
}
