package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/valkey-io/valkey-go"
)

// Valkey implements TokenCache against a Valkey (or Redis-compatible)
// server. Expiry is delegated to the backend's own TTL mechanism via
// SET EX. Tokens cached here are shared across processes, so a fleet of
// clients with the same credentials performs a single login per TTL.
type Valkey struct {
	client   valkey.Client
	strategy EncryptionStrategy
}

// NewValkey creates a Valkey-backed cache. The strategy parameter
// controls encryption of cached values; nil defaults to
// NoEncryptionStrategy.
func NewValkey(client valkey.Client, strategy EncryptionStrategy) (*Valkey, error) {
	if strategy == nil {
		strategy = &NoEncryptionStrategy{}
	}
	return &Valkey{
		client:   client,
		strategy: strategy,
	}, nil
}

// Get retrieves a payload from the cache. Decryption failures are
// returned as errors and the corrupted entry is invalidated on a
// best-effort basis.
func (v *Valkey) Get(ctx context.Context, key string) ([]byte, bool, error) {
	storageKey := v.strategy.StorageKey(key)

	// A plain GET rather than client-side caching: a forced refresh in
	// another process must become visible here immediately.
	result := v.client.Do(ctx, v.client.B().Get().Key(storageKey).Build())
	if err := result.Error(); err != nil {
		// Key not found is not an error in our semantics
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cached value: %w", err)
	}

	val, err := result.ToString()
	if err != nil {
		return nil, false, fmt.Errorf("failed to convert cached value to string: %w", err)
	}

	data, err := v.strategy.DecryptValue(val, key)
	if err != nil {
		// Best-effort invalidation of the corrupted entry.
		_ = v.client.Do(ctx, v.client.B().Del().Key(storageKey).Build()).Error()

		return nil, false, fmt.Errorf("cache decryption failure for key %q: %w", key, err)
	}

	return data, true, nil
}

// SetEx stores a payload with the given TTL, replacing any prior entry
// for the key.
func (v *Valkey) SetEx(ctx context.Context, key string, ttl time.Duration, value []byte) error {
	encrypted, err := v.strategy.EncryptValue(value, key)
	if err != nil {
		return fmt.Errorf("failed to encrypt value: %w", err)
	}

	cmd := v.client.B().Set().Key(v.strategy.StorageKey(key)).Value(encrypted).ExSeconds(int64(ttl.Seconds())).Build()
	if err := v.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to set cached value: %w", err)
	}
	return nil
}

// Close releases resources associated with the cache client and
// encryption strategy.
func (v *Valkey) Close() error {
	if err := v.strategy.Close(); err != nil {
		log.Warn().Err(err).Msg("error closing encryption strategy")
	}
	v.client.Close()
	return nil
}

// StaticCredentialsFn returns an AuthCredentialsFn that always returns the
// configured username and password.
func StaticCredentialsFn(username, password string) func(valkey.AuthCredentialsContext) (valkey.AuthCredentials, error) {
	return func(valkey.AuthCredentialsContext) (valkey.AuthCredentials, error) {
		return valkey.AuthCredentials{
			Username: username,
			Password: password,
		}, nil
	}
}
