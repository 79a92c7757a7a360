package repository

import (
	"context"
	"sync"
	"time"
)

// MemoryRateLimitStore is the in-process fallback used when Redis is
// unreachable. Counters reset when their window expires.
type MemoryRateLimitStore struct {
	mu      sync.Mutex
	entries map[string]*rateLimitEntry
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func NewMemoryRateLimitStore() *MemoryRateLimitStore {
	return &MemoryRateLimitStore{entries: make(map[string]*rateLimitEntry)}
}

func (r *MemoryRateLimitStore) Allow(_ context.Context, userID string, limit int, window time.Duration) (bool, error) {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[userID]
	if !ok || now.After(entry.expiresAt) {
		entry = &rateLimitEntry{count: 1, expiresAt: now.Add(window)}
		r.entries[userID] = entry
	} else {
		entry.count++
	}

	return entry.count <= limit, nil
}
