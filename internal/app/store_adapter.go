package app

import (
	"context"

	"github.com/newspulse/backend/internal/storage"
)

// SeenStore is the common surface of the file, Postgres and Redis stores.
type SeenStore interface {
	IsSeen(ctx context.Context, hash string) bool
	MarkSeen(ctx context.Context, h storage.SeenHeadline) error
	Stats(ctx context.Context) map[string]int
	Close() error
}

// FileStoreAdapter wraps FileStore, which is synchronous and in-process, so
// the context is unused and every mark persists straight to disk.
type FileStoreAdapter struct {
	store *storage.FileStore
}

func (f *FileStoreAdapter) IsSeen(_ context.Context, hash string) bool {
	return f.store.IsSeen(hash)
}

func (f *FileStoreAdapter) MarkSeen(_ context.Context, h storage.SeenHeadline) error {
	f.store.MarkSeen(h)
	return f.store.Save()
}

func (f *FileStoreAdapter) Stats(_ context.Context) map[string]int {
	return f.store.GetStats()
}

func (f *FileStoreAdapter) Close() error {
	f.store.Cleanup()
	return f.store.Save()
}

// PostgresStoreAdapter wraps PostgresStore to implement SeenStore.
type PostgresStoreAdapter struct {
	store *storage.PostgresStore
}

func (p *PostgresStoreAdapter) IsSeen(ctx context.Context, hash string) bool {
	return p.store.IsSeen(ctx, hash)
}

func (p *PostgresStoreAdapter) MarkSeen(ctx context.Context, h storage.SeenHeadline) error {
	return p.store.MarkSeen(ctx, h)
}

func (p *PostgresStoreAdapter) Stats(ctx context.Context) map[string]int {
	stats, err := p.store.GetStats(ctx)
	if err != nil {
		return map[string]int{}
	}
	return stats
}

func (p *PostgresStoreAdapter) Close() error {
	return p.store.Close()
}

// RedisStoreAdapter wraps RedisStore to implement SeenStore.
type RedisStoreAdapter struct {
	store *storage.RedisStore
}

func (r *RedisStoreAdapter) IsSeen(ctx context.Context, hash string) bool {
	return r.store.IsSeen(ctx, hash)
}

func (r *RedisStoreAdapter) MarkSeen(ctx context.Context, h storage.SeenHeadline) error {
	return r.store.MarkSeen(ctx, h)
}

func (r *RedisStoreAdapter) Stats(ctx context.Context) map[string]int {
	stats, err := r.store.GetStats(ctx)
	if err != nil {
		return map[string]int{}
	}
	return stats
}

func (r *RedisStoreAdapter) Close() error {
	return r.store.Close()
}
