package cache

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/valkey-io/valkey-go"
)

// NewFromConfig creates a cache implementation based on the provided
// configuration. ttlBound is the longest lifetime any entry may have,
// used to size the in-memory implementation.
//
// The cache type must be "memory" or "valkey". An empty type returns
// nil: callers treat that as "use the built-in fallback".
func NewFromConfig(ctx context.Context, cfg Config, ttlBound time.Duration) (TokenCache, error) {
	switch cfg.Type {
	case "":
		return nil, nil

	case "valkey":
		log.Info().
			Str("cache_type", "valkey").
			Str("address", cfg.Valkey.Address).
			Bool("tls", cfg.Valkey.TLS).
			Bool("encryption", cfg.Encryption.Enabled).
			Msg("initializing distributed token cache")

		if cfg.Valkey.Address == "" {
			return nil, fmt.Errorf("valkey address is required when cache type is valkey")
		}

		valkeyOpts := valkey.ClientOption{
			InitAddress: []string{cfg.Valkey.Address},
		}

		if cfg.Valkey.Username != "" || cfg.Valkey.Password != "" {
			valkeyOpts.AuthCredentialsFn = StaticCredentialsFn(
				cfg.Valkey.Username,
				cfg.Valkey.Password,
			)
		}

		// Configure TLS if enabled
		if cfg.Valkey.TLS {
			valkeyOpts.TLSConfig = &tls.Config{
				MinVersion: tls.VersionTLS12,
			}
		}

		valkeyClient, err := valkey.NewClient(valkeyOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to create valkey client: %w", err)
		}

		var strategy EncryptionStrategy
		if cfg.Encryption.Enabled {
			strategy, err = NewTinkEncryptionStrategyFromFile(cfg.Encryption.KeysetFile)
			if err != nil {
				valkeyClient.Close()
				return nil, fmt.Errorf("initializing encryption: %w", err)
			}

			log.Info().Msg("token cache encryption enabled")
		}

		distributed, err := NewValkey(valkeyClient, strategy)
		if err != nil {
			if strategy != nil {
				_ = strategy.Close()
			}
			valkeyClient.Close()
			return nil, fmt.Errorf("failed to create distributed cache: %w", err)
		}

		return NewInstrumented(distributed, "valkey"), nil

	case "memory":
		log.Info().
			Str("cache_type", "memory").
			Int("max_entries", cfg.MaxEntries).
			Msg("initializing in-memory token cache")

		lru, err := NewLRU(ttlBound, cfg.MaxEntries)
		if err != nil {
			return nil, fmt.Errorf("failed to create memory cache: %w", err)
		}

		return NewInstrumented(lru, "memory"), nil

	default:
		return nil, fmt.Errorf("invalid cache type %q: must be either \"memory\" or \"valkey\"", cfg.Type)
	}
}
