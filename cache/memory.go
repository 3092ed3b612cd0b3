package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	expiresAt time.Time
	payload   []byte
}

// Memory is the built-in in-process cache. It is a mutex-guarded map
// with lazy expiry: expired entries are removed when next read, never
// proactively scanned. It exists so the token manager works without an
// external backend, for single-process use and for testing.
type Memory struct {
	mu   sync.Mutex
	data map[string]memoryEntry

	// now is replaceable for expiry tests.
	now func() time.Time
}

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]memoryEntry),
		now:  time.Now,
	}
}

// Get retrieves a payload from the cache. An entry whose expiry instant
// has passed is removed and reported as absent. The returned slice is a
// copy; the stored entry is owned exclusively by the cache.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.After(m.now()) {
		delete(m.data, key)
		return nil, false, nil
	}
	return append([]byte(nil), entry.payload...), true, nil
}

// SetEx stores a payload with the given TTL, replacing any prior entry
// for the key.
func (m *Memory) SetEx(_ context.Context, key string, ttl time.Duration, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = memoryEntry{
		expiresAt: m.now().Add(ttl),
		payload:   value,
	}
	return nil
}

// Close is a no-op for the in-process cache.
func (m *Memory) Close() error {
	return nil
}
