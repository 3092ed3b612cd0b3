// Package cache provides the token cache capability used by the
// skribble client to store short-lived access tokens, together with
// in-process and distributed implementations.
package cache

import (
	"context"
	"fmt"
	"time"
)

// TokenCache defines the interface for token caching implementations.
// Values are opaque byte payloads; expiry is enforced by the backend.
type TokenCache interface {
	// Get retrieves a payload from the cache.
	// Returns the payload, whether it was found and unexpired, and any error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// SetEx stores a payload with a per-entry TTL, unconditionally
	// replacing any prior entry for the key.
	SetEx(ctx context.Context, key string, ttl time.Duration, value []byte) error

	// Close releases any resources held by the cache.
	Close() error
}

// Config selects and configures an external token cache backend. An
// empty Type means no external backend: the token manager falls back
// to its built-in in-process cache.
type Config struct {
	// Type selects the cache implementation: "" (built-in fallback),
	// "memory" or "valkey".
	Type string `env:"SKRIBBLE_CACHE_TYPE"`

	// MaxEntries bounds the in-memory cache size.
	MaxEntries int `env:"SKRIBBLE_CACHE_MAX_ENTRIES, default=10000"`

	Valkey     ValkeyConfig
	Encryption EncryptionConfig
}

// ValkeyConfig specifies distributed cache configuration.
type ValkeyConfig struct {
	// Address is the Valkey server address (host:port).
	Address string `env:"SKRIBBLE_VALKEY_ADDRESS"`

	// TLS enables TLS connection to Valkey. Defaults to true so the
	// secure option is the default.
	TLS bool `env:"SKRIBBLE_VALKEY_TLS, default=true"`

	// Username for Valkey authentication.
	Username string `env:"SKRIBBLE_VALKEY_USERNAME"`

	// Password for Valkey authentication.
	Password string `env:"SKRIBBLE_VALKEY_PASSWORD"`
}

// EncryptionConfig holds settings for at-rest encryption of cached
// tokens. Only supported with the valkey cache type.
type EncryptionConfig struct {
	Enabled bool `env:"SKRIBBLE_CACHE_ENCRYPTION_ENABLED, default=false"`

	// KeysetFile is the path to a cleartext Tink JSON keyset.
	KeysetFile string `env:"SKRIBBLE_CACHE_ENCRYPTION_KEYSET_FILE"`
}

// Validate checks that the cache configuration is valid.
func (c *Config) Validate() error {
	switch c.Type {
	case "", "memory", "valkey":
	default:
		return fmt.Errorf("invalid cache type %q: must be \"memory\" or \"valkey\"", c.Type)
	}

	// Encryption requires the distributed cache
	if c.Encryption.Enabled && c.Type != "valkey" {
		return fmt.Errorf("cache encryption requires SKRIBBLE_CACHE_TYPE=valkey")
	}

	if c.Encryption.Enabled && c.Encryption.KeysetFile == "" {
		return fmt.Errorf("SKRIBBLE_CACHE_ENCRYPTION_KEYSET_FILE required when encryption enabled")
	}

	// Valkey requires address
	if c.Type == "valkey" && c.Valkey.Address == "" {
		return fmt.Errorf("SKRIBBLE_VALKEY_ADDRESS required when SKRIBBLE_CACHE_TYPE=valkey")
	}

	return nil
}
