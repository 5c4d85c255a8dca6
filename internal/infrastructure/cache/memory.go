package cache

import (
	"context"
	"sync"
	"time"

	"github.com/mirepoix/v1/internal/ports/outbound"
)

// MemoryRepository is a process-local cache used in tests and when no
// Redis instance is configured.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryRepository creates an in-memory cache repository.
func NewMemoryRepository() outbound.CacheRepository {
	return &MemoryRepository{
		entries: make(map[string]memoryEntry),
	}
}

// Get retrieves a value; a missing or expired key returns ErrCacheMiss.
func (m *MemoryRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, ErrCacheMiss
	}
	return entry.value, nil
}

// Set stores a value; a zero TTL keeps the entry until deleted.
func (m *MemoryRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

// Delete removes a value.
func (m *MemoryRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}
