package skribble

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/skribble-sdk/skribble-go/cache"
)

// Default endpoints for the Skribble production environments. The EU
// endpoints serve accounts hosted under German jurisdiction.
const (
	DefaultAPIBaseURL          = "https://api.skribble.com/v2"
	DefaultManagementBaseURL   = "https://api.skribble.com/management"
	DefaultAPIBaseEUURL        = "https://api.skribble.de/v2"
	DefaultManagementBaseEUURL = "https://api.skribble.de/management"
)

// DefaultAccessTokenTTL reflects the documented lifetime of a Skribble
// access token (about 20 minutes).
const DefaultAccessTokenTTL = 20 * time.Minute

// Config controls client behaviour. It is immutable after construction
// and shared read-only by all components.
type Config struct {
	APIBaseURL        string `env:"SKRIBBLE_API_BASE_URL, default=https://api.skribble.com/v2"`
	ManagementBaseURL string `env:"SKRIBBLE_MANAGEMENT_BASE_URL, default=https://api.skribble.com/management"`

	TimeoutSeconds     int    `env:"SKRIBBLE_HTTP_TIMEOUT_SECS, default=30"`
	InsecureSkipVerify bool   `env:"SKRIBBLE_TLS_INSECURE_SKIP_VERIFY, default=false"`
	UserAgent          string `env:"SKRIBBLE_USER_AGENT, default=skribble-go/0.1"`

	OutgoingHTTPMaxIdleConns    int `env:"SKRIBBLE_OUTGOING_MAX_IDLE_CONNS, default=100"`
	OutgoingHTTPMaxConnsPerHost int `env:"SKRIBBLE_OUTGOING_MAX_CONNS_PER_HOST, default=20"`

	AccessTokenTTLSeconds int    `env:"SKRIBBLE_ACCESS_TOKEN_TTL_SECS, default=1200"`
	CacheKeyPrefix        string `env:"SKRIBBLE_CACHE_KEY_PREFIX, default=skribble"`

	// TelemetryEnabled wraps the outgoing transport with OpenTelemetry
	// HTTP instrumentation.
	TelemetryEnabled bool `env:"SKRIBBLE_TELEMETRY_ENABLED, default=false"`

	Cache cache.Config
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		APIBaseURL:                  DefaultAPIBaseURL,
		ManagementBaseURL:           DefaultManagementBaseURL,
		TimeoutSeconds:              30,
		UserAgent:                   "skribble-go/0.1",
		OutgoingHTTPMaxIdleConns:    100,
		OutgoingHTTPMaxConnsPerHost: 20,
		AccessTokenTTLSeconds:       int(DefaultAccessTokenTTL.Seconds()),
		CacheKeyPrefix:              "skribble",
		Cache:                       cache.Config{MaxEntries: 10_000},
	}
}

// EUDefaults returns DefaultConfig with the endpoints switched to the
// EU (skribble.de) environment.
func EUDefaults() Config {
	cfg := DefaultConfig()
	cfg.APIBaseURL = DefaultAPIBaseEUURL
	cfg.ManagementBaseURL = DefaultManagementBaseEUURL
	return cfg
}

// LoadConfig populates a Config from SKRIBBLE_* environment variables.
func LoadConfig(ctx context.Context) (Config, error) {
	return loadConfig(ctx, envconfig.OsLookuper())
}

func loadConfig(ctx context.Context, lookup envconfig.Lookuper) (Config, error) {
	var cfg Config
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookup,
	})
	if err != nil {
		return cfg, err
	}

	err = cfg.Validate()
	if err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Timeout is the bound applied to every outgoing HTTP call.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// AccessTokenTTL is the lifetime applied to cached access tokens.
func (c Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLSeconds) * time.Second
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("SKRIBBLE_API_BASE_URL must not be empty")
	}
	if c.ManagementBaseURL == "" {
		return fmt.Errorf("SKRIBBLE_MANAGEMENT_BASE_URL must not be empty")
	}
	if c.AccessTokenTTLSeconds <= 0 {
		return fmt.Errorf("SKRIBBLE_ACCESS_TOKEN_TTL_SECS must be positive")
	}
	return c.Cache.Validate()
}
