package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// SeenHeadline is a headline the digest already carried.
type SeenHeadline struct {
	Hash     string    `json:"hash"`
	Title    string    `json:"title"`
	Link     string    `json:"link"`
	Category string    `json:"category"`
	Source   string    `json:"source"`
	SeenAt   time.Time `json:"seen_at"`
}

// FileStore keeps seen headlines in a JSON file. Good enough for a single
// instance; use the postgres or redis store when running more than one.
type FileStore struct {
	filePath string
	ttlHours int
	items    map[string]SeenHeadline
	mu       sync.RWMutex
}

// NewFileStore creates a file-backed seen store.
func NewFileStore(filePath string, ttlHours int) *FileStore {
	return &FileStore{
		filePath: filePath,
		ttlHours: ttlHours,
		items:    make(map[string]SeenHeadline),
	}
}

// Load reads the store from disk, dropping entries past their TTL.
func (fs *FileStore) Load() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, err := os.Stat(fs.filePath); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(fs.filePath)
	if err != nil {
		return fmt.Errorf("read seen store: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var items []SeenHeadline
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("parse seen store: %w", err)
	}

	cutoff := time.Now().Add(-time.Duration(fs.ttlHours) * time.Hour)
	for _, item := range items {
		if item.SeenAt.After(cutoff) {
			fs.items[item.Hash] = item
		}
	}
	return nil
}

// Save writes the store to disk.
func (fs *FileStore) Save() error {
	fs.mu.RLock()
	items := make([]SeenHeadline, 0, len(fs.items))
	for _, item := range fs.items {
		items = append(items, item)
	}
	fs.mu.RUnlock()

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal seen store: %w", err)
	}
	if err := os.WriteFile(fs.filePath, data, 0644); err != nil {
		return fmt.Errorf("write seen store: %w", err)
	}
	return nil
}

// IsSeen reports whether the hash is in the store and within TTL.
func (fs *FileStore) IsSeen(hash string) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	item, exists := fs.items[hash]
	if !exists {
		return false
	}
	cutoff := time.Now().Add(-time.Duration(fs.ttlHours) * time.Hour)
	return item.SeenAt.After(cutoff)
}

// MarkSeen records a headline.
func (fs *FileStore) MarkSeen(h SeenHeadline) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	h.SeenAt = time.Now()
	fs.items[h.Hash] = h
}

// Cleanup drops expired entries from memory.
func (fs *FileStore) Cleanup() {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	cutoff := time.Now().Add(-time.Duration(fs.ttlHours) * time.Hour)
	for hash, item := range fs.items {
		if item.SeenAt.Before(cutoff) {
			delete(fs.items, hash)
		}
	}
}

// GetStats returns store statistics.
func (fs *FileStore) GetStats() map[string]int {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	return map[string]int{
		"total_items": len(fs.items),
	}
}

// HeadlineHash builds a stable identifier from the normalized title and
// the link's domain, so the same story re-fetched keeps one hash while
// the same wording from two sites stays distinct.
func HeadlineHash(title, link string) string {
	normalizedTitle := strings.ToLower(strings.TrimSpace(title))
	normalizedTitle = strings.Join(strings.Fields(normalizedTitle), " ")

	h := sha256.New()
	h.Write([]byte(normalizedTitle + "|" + extractDomain(link)))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// extractDomain pulls the bare domain out of a URL.
func extractDomain(url string) string {
	if url == "" {
		return "unknown"
	}

	url = strings.TrimPrefix(url, "http://")
	url = strings.TrimPrefix(url, "https://")

	parts := strings.Split(url, "/")
	if len(parts) == 0 {
		return "unknown"
	}

	domain := strings.TrimPrefix(parts[0], "www.")
	return strings.ToLower(domain)
}
