package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/newspulse/backend/internal/logger"
)

const seenKeyPrefix = "seen:"

// RedisStore keeps seen headlines in Redis with native expiry, so there is
// no cleanup pass at all.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, addr, password string, db, ttlHours int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.Info("Redis store connected", "addr", addr)
	return &RedisStore{
		client: client,
		ttl:    time.Duration(ttlHours) * time.Hour,
	}, nil
}

// IsSeen checks whether the hash has an unexpired key.
func (rs *RedisStore) IsSeen(ctx context.Context, hash string) bool {
	n, err := rs.client.Exists(ctx, seenKeyPrefix+hash).Result()
	if err != nil {
		logger.Warn("Seen lookup failed", "error", err.Error())
		return false
	}
	return n > 0
}

// MarkSeen records a headline under its hash; Redis expires it after TTL.
func (rs *RedisStore) MarkSeen(ctx context.Context, h SeenHeadline) error {
	h.SeenAt = time.Now()
	payload, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("marshal seen headline: %w", err)
	}
	if err := rs.client.Set(ctx, seenKeyPrefix+h.Hash, payload, rs.ttl).Err(); err != nil {
		return fmt.Errorf("mark seen: %w", err)
	}
	return nil
}

// GetSeen returns the stored record for a hash, if present.
func (rs *RedisStore) GetSeen(ctx context.Context, hash string) (SeenHeadline, bool, error) {
	var h SeenHeadline
	payload, err := rs.client.Get(ctx, seenKeyPrefix+hash).Result()
	if err != nil {
		if err == redis.Nil {
			return h, false, nil
		}
		return h, false, fmt.Errorf("get seen headline: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), &h); err != nil {
		return h, false, fmt.Errorf("parse seen headline: %w", err)
	}
	return h, true, nil
}

// GetStats returns store statistics. DBSize counts every key in the
// database, which matches as long as the DB is dedicated to this app.
func (rs *RedisStore) GetStats(ctx context.Context) (map[string]int, error) {
	size, err := rs.client.DBSize(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("redis dbsize: %w", err)
	}
	return map[string]int{"total_items": int(size)}, nil
}

// Close closes the client connection pool.
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}
