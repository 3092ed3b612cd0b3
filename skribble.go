// Package skribble is a client SDK for the Skribble electronic
// signature REST API. It authenticates with username and API key,
// caches the short-lived access tokens it is issued, and exposes typed
// methods mirroring the remote endpoints.
package skribble

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"

	"github.com/skribble-sdk/skribble-go/cache"
	"github.com/skribble-sdk/skribble-go/internal/observe"
)

// Client is the entry point of the SDK. It owns the HTTP client, the
// token manager and the resource services, and is safe for concurrent
// use.
type Client struct {
	cfg        Config
	httpClient *http.Client
	tokens     *TokenManager

	signatureRequests *SignatureRequestsService
	monitoring        *MonitoringService

	// cacheInjected records whether the token cache was supplied by the
	// caller, in which case Close leaves it alone.
	cacheInjected bool
}

type clientOptions struct {
	cfg        *Config
	httpClient *http.Client
	tokenCache cache.TokenCache
	tenantID   string
}

// Option configures a Client.
type Option func(*clientOptions)

// WithConfig overrides the default configuration.
func WithConfig(cfg Config) Option {
	return func(o *clientOptions) {
		o.cfg = &cfg
	}
}

// WithHTTPClient supplies a custom HTTP client. Timeout and transport
// settings from the configuration are not applied to a supplied client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = httpClient
	}
}

// WithCache supplies an external token cache backend, typically shared
// between processes. The client does not close an injected cache.
func WithCache(c cache.TokenCache) Option {
	return func(o *clientOptions) {
		o.tokenCache = c
	}
}

// WithTenantID namespaces cached tokens for a sub-account.
func WithTenantID(tenantID string) Option {
	return func(o *clientOptions) {
		o.tenantID = tenantID
	}
}

// New creates a Client for the given API credentials.
func New(ctx context.Context, username, apiKey string, opts ...Option) (*Client, error) {
	if username == "" || apiKey == "" {
		return nil, &ConfigurationError{Message: "username and API key are required"}
	}

	var options clientOptions
	for _, opt := range opts {
		opt(&options)
	}

	cfg := DefaultConfig()
	if options.cfg != nil {
		cfg = *options.cfg
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := options.httpClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: configureTransport(cfg),
			Timeout:   cfg.Timeout(),
		}
	}

	tokenCache := options.tokenCache
	cacheInjected := tokenCache != nil
	if tokenCache == nil {
		var err error
		tokenCache, err = cache.NewFromConfig(ctx, cfg.Cache, cfg.AccessTokenTTL())
		if err != nil {
			return nil, fmt.Errorf("token cache configuration failed: %w", err)
		}
		// nil means no external backend configured: the token manager
		// falls back to its built-in in-process cache.
	}

	managerOpts := []TokenManagerOption{}
	if tokenCache != nil {
		managerOpts = append(managerOpts, WithTokenCache(tokenCache))
	}
	if options.tenantID != "" {
		managerOpts = append(managerOpts, WithTenant(options.tenantID))
	}

	client := &Client{
		cfg:           cfg,
		httpClient:    httpClient,
		tokens:        NewTokenManager(username, apiKey, httpClient, cfg, managerOpts...),
		cacheInjected: cacheInjected,
	}
	client.signatureRequests = &SignatureRequestsService{client: client}
	client.monitoring = &MonitoringService{client: client}

	return client, nil
}

func configureTransport(cfg Config) http.RoundTripper {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	transport.MaxIdleConns = cfg.OutgoingHTTPMaxIdleConns
	transport.MaxConnsPerHost = cfg.OutgoingHTTPMaxConnsPerHost

	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	if cfg.TelemetryEnabled {
		return observe.HTTPTransport(transport)
	}
	return transport
}

// SignatureRequests returns the signature request service.
func (c *Client) SignatureRequests() *SignatureRequestsService {
	return c.signatureRequests
}

// Monitoring returns the monitoring service.
func (c *Client) Monitoring() *MonitoringService {
	return c.monitoring
}

// TokenManager returns the authentication core, for callers that need
// direct token access or an oauth2.TokenSource.
func (c *Client) TokenManager() *TokenManager {
	return c.tokens
}

// Close releases the token cache, unless it was injected by the
// caller.
func (c *Client) Close() error {
	if c.cacheInjected {
		return nil
	}
	return c.tokens.Close()
}
