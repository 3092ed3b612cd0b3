package skribble

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skribble-sdk/skribble-go/cache"
)

func TestNew_RequiresCredentials(t *testing.T) {
	tests := []struct {
		name     string
		username string
		apiKey   string
	}{
		{"no username", "", "secret"},
		{"no API key", "user", ""},
		{"neither", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(context.Background(), tc.username, tc.apiKey)

			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIBaseURL = ""

	_, err := New(context.Background(), "user", "secret", WithConfig(cfg))

	assert.ErrorContains(t, err, "SKRIBBLE_API_BASE_URL")
}

func TestNew_RejectsInvalidCacheConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.Type = "memcached"

	_, err := New(context.Background(), "user", "secret", WithConfig(cfg))

	assert.ErrorContains(t, err, "invalid cache type")
}

func TestNew_DefaultHTTPClientUsesConfiguredTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TimeoutSeconds = 7

	client, err := New(context.Background(), "user", "secret", WithConfig(cfg))
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, 7*time.Second, client.httpClient.Timeout)
}

func TestNew_CustomHTTPClientLeftUntouched(t *testing.T) {
	custom := &http.Client{Timeout: time.Second}

	client, err := New(context.Background(), "user", "secret", WithHTTPClient(custom))
	require.NoError(t, err)
	defer client.Close()

	assert.Same(t, custom, client.httpClient)
}

func TestNew_ServicesShareOneClient(t *testing.T) {
	client, err := New(context.Background(), "user", "secret")
	require.NoError(t, err)
	defer client.Close()

	assert.Same(t, client, client.SignatureRequests().client)
	assert.Same(t, client, client.Monitoring().client)
	assert.NotNil(t, client.TokenManager())
}

// closeTrackingCache flags Close so tests can assert ownership.
type closeTrackingCache struct {
	cache.TokenCache
	closed bool
}

func (c *closeTrackingCache) Close() error {
	c.closed = true
	return c.TokenCache.Close()
}

func TestClose_LeavesInjectedCacheOpen(t *testing.T) {
	tracked := &closeTrackingCache{TokenCache: cache.NewMemory()}

	client, err := New(context.Background(), "user", "secret", WithCache(tracked))
	require.NoError(t, err)

	require.NoError(t, client.Close())
	assert.False(t, tracked.closed, "injected caches belong to the caller")
}

func TestClose_ClosesOwnedCache(t *testing.T) {
	client, err := New(context.Background(), "user", "secret")
	require.NoError(t, err)

	assert.NoError(t, client.Close())
}
