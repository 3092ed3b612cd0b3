package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUGet_NotFound(t *testing.T) {
	ctx := context.Background()
	cache, err := NewLRU(time.Minute, 100)
	require.NoError(t, err)

	payload, found, err := cache.Get(ctx, "nonexistent")

	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, payload)
}

func TestLRUSetExAndGet_Success(t *testing.T) {
	ctx := context.Background()
	cache, err := NewLRU(time.Minute, 100)
	require.NoError(t, err)

	err = cache.SetEx(ctx, "test-key", time.Minute, []byte("tok123"))
	require.NoError(t, err)

	payload, found, err := cache.Get(ctx, "test-key")

	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("tok123"), payload)
}

func TestLRUPerEntryTTLExpiry(t *testing.T) {
	ctx := context.Background()

	// cache-level bound is long; the per-entry TTL is what expires
	cache, err := NewLRU(time.Hour, 100)
	require.NoError(t, err)

	err = cache.SetEx(ctx, "test-key", 50*time.Millisecond, []byte("tok"))
	require.NoError(t, err)

	_, found, err := cache.Get(ctx, "test-key")
	require.NoError(t, err)
	assert.True(t, found)

	time.Sleep(80 * time.Millisecond)

	_, found, err = cache.Get(ctx, "test-key")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLRUSetEx_Overwrites(t *testing.T) {
	ctx := context.Background()
	cache, err := NewLRU(time.Minute, 100)
	require.NoError(t, err)

	require.NoError(t, cache.SetEx(ctx, "test-key", time.Minute, []byte("old")))
	require.NoError(t, cache.SetEx(ctx, "test-key", time.Minute, []byte("new")))

	payload, found, err := cache.Get(ctx, "test-key")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("new"), payload)
}
