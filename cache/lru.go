package cache

import (
	"context"
	"time"

	"github.com/maypok86/otter/v2"
	"github.com/maypok86/otter/v2/stats"
)

type lruEntry struct {
	expiresAt time.Time
	payload   []byte
}

// LRU is a bounded in-memory cache implementation using otter. Unlike
// Memory it evicts under size pressure, which suits processes holding
// tokens for many credential sets or tenants.
type LRU struct {
	cache   *otter.Cache[string, lruEntry]
	counter *stats.Counter
}

// NewLRU creates a bounded in-memory cache. ttlBound is the longest
// lifetime any entry may have; per-entry TTLs shorter than the bound
// are enforced on read.
func NewLRU(ttlBound time.Duration, maxSize int) (*LRU, error) {
	counter := stats.NewCounter()
	cache := otter.Must(&otter.Options[string, lruEntry]{
		MaximumSize:      maxSize,
		StatsRecorder:    counter,
		ExpiryCalculator: otter.ExpiryCreating[string, lruEntry](ttlBound),
	})

	return &LRU{
		cache:   cache,
		counter: counter,
	}, nil
}

// Get retrieves a payload from the cache, treating entries past their
// per-entry expiry as absent.
func (l *LRU) Get(_ context.Context, key string) ([]byte, bool, error) {
	entry, ok := l.cache.GetEntry(key)
	if !ok {
		return nil, false, nil
	}

	if !entry.Value.expiresAt.After(time.Now()) {
		l.cache.Invalidate(key)
		return nil, false, nil
	}

	return entry.Value.payload, true, nil
}

// SetEx stores a payload with the given TTL, replacing any prior entry
// for the key.
func (l *LRU) SetEx(_ context.Context, key string, ttl time.Duration, value []byte) error {
	l.cache.Set(key, lruEntry{
		expiresAt: time.Now().Add(ttl),
		payload:   value,
	})
	return nil
}

// Close is a no-op: otter requires no explicit shutdown.
func (l *LRU) Close() error {
	return nil
}
