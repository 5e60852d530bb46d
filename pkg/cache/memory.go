package cache

import (
	"context"
	"sync"
	"time"

	"nimbus-hq/callisto/pkg/providers"
)

// MemoryStore implements Store with an in-process map. It is the
// default store; all entries are lost when the process exits.
//
// MemoryStore is thread-safe and supports concurrent access using
// sync.RWMutex.
type MemoryStore struct {
	// entries maps digest keys to cached vectors.
	entries map[string]memoryEntry

	// mu protects access to entries.
	mu sync.RWMutex

	// maxEntries is the maximum number of entries before eviction.
	maxEntries int
}

type memoryEntry struct {
	embedding providers.Embedding
	storedAt  time.Time
}

// MemoryStoreConfig configures the memory store.
type MemoryStoreConfig struct {
	// MaxEntries is the maximum number of vectors to retain. The
	// oldest entry is evicted when the limit is reached.
	// Default: 10,000
	MaxEntries int
}

// NewMemoryStore creates a memory store with default settings.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithConfig(MemoryStoreConfig{MaxEntries: 10000})
}

// NewMemoryStoreWithConfig creates a memory store with custom configuration.
func NewMemoryStoreWithConfig(cfg MemoryStoreConfig) *MemoryStore {
	if cfg.MaxEntries == 0 {
		cfg.MaxEntries = 10000
	}
	return &MemoryStore{
		entries:    make(map[string]memoryEntry),
		maxEntries: cfg.MaxEntries,
	}
}

// Get returns the cached embedding for the key, or ok=false on a miss.
func (m *MemoryStore) Get(ctx context.Context, key Key) (providers.Embedding, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[key.digest()]
	if !ok {
		return nil, false, nil
	}

	// Copy so callers cannot mutate the cached vector.
	out := make(providers.Embedding, len(entry.embedding))
	copy(out, entry.embedding)
	return out, true, nil
}

// Put stores an embedding under the key, replacing any prior value.
func (m *MemoryStore) Put(ctx context.Context, key Key, embedding providers.Embedding) error {
	stored := make(providers.Embedding, len(embedding))
	copy(stored, embedding)

	m.mu.Lock()
	defer m.mu.Unlock()

	digest := key.digest()
	if _, exists := m.entries[digest]; !exists && len(m.entries) >= m.maxEntries {
		m.evictOldestLocked()
	}

	m.entries[digest] = memoryEntry{
		embedding: stored,
		storedAt:  time.Now(),
	}
	return nil
}

// Delete removes a cached embedding.
func (m *MemoryStore) Delete(ctx context.Context, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key.digest())
	return nil
}

// Len returns the number of cached entries.
func (m *MemoryStore) Len(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries), nil
}

// Close is a no-op for the memory store.
func (m *MemoryStore) Close() error {
	return nil
}

// evictOldestLocked removes the entry with the oldest storedAt time.
// Caller must hold the write lock.
func (m *MemoryStore) evictOldestLocked() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range m.entries {
		if oldestKey == "" || entry.storedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.storedAt
		}
	}
	if oldestKey != "" {
		delete(m.entries, oldestKey)
	}
}
