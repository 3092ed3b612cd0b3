package skribble

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/skribble-sdk/skribble-go/cache"
)

// tokenFieldPriority is the order in which JSON fields of the login
// response are consulted for the access token. The order mirrors the
// shapes observed from the live service and its API collection; it is a
// best-effort compatibility guess, not a documented contract.
var tokenFieldPriority = []string{"access_token", "token", "jwt", "AUTH_ACCESS_TOKEN"}

// TokenManager obtains and caches Skribble access tokens.
//
// Tokens are vended from the cache when present, and refreshed via
// POST /access/login on a miss or forced refresh. The cache backend is
// injectable; without one the manager owns a private in-process cache.
type TokenManager struct {
	username   string
	apiKey     string
	httpClient *http.Client
	cfg        Config
	cache      cache.TokenCache
	tenantID   string

	// group collapses concurrent logins for the same cache key into a
	// single network call. Duplicate logins would be harmless (the
	// service treats login as idempotent), merely wasteful.
	group singleflight.Group
}

// TokenManagerOption configures a TokenManager.
type TokenManagerOption func(*TokenManager)

// WithTokenCache supplies an external cache backend, shared between
// managers or processes. Without it the manager owns a private
// in-process cache.
func WithTokenCache(c cache.TokenCache) TokenManagerOption {
	return func(m *TokenManager) {
		if c != nil {
			m.cache = c
		}
	}
}

// WithTenant namespaces the manager's cache key, keeping tokens for
// separate sub-accounts of one credential set apart.
func WithTenant(tenantID string) TokenManagerOption {
	return func(m *TokenManager) {
		m.tenantID = tenantID
	}
}

// NewTokenManager creates a token manager for the given credentials.
// The HTTP client carries the timeout and TLS settings for the login
// exchange.
func NewTokenManager(username, apiKey string, httpClient *http.Client, cfg Config, opts ...TokenManagerOption) *TokenManager {
	m := &TokenManager{
		username:   username,
		apiKey:     apiKey,
		httpClient: httpClient,
		cfg:        cfg,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.cache == nil {
		// Each manager owns its own fallback instance: sharing a default
		// cache between managers would leak tokens across instances.
		m.cache = cache.NewMemory()
	}

	return m
}

// cacheKey derives the cache key from immutable construction-time
// state. Recomputed per access; cheap enough not to store.
func (m *TokenManager) cacheKey() string {
	base := fmt.Sprintf("%s:token:%s", m.cfg.CacheKeyPrefix, m.username)
	if m.tenantID != "" {
		return base + ":" + m.tenantID
	}
	return base
}

// GetAccessToken returns a currently valid access token, refreshing and
// caching it as needed. With forceRefresh the cache is bypassed and a
// fresh login is performed; callers that see a cached token rejected by
// the service are expected to retry once with forceRefresh set.
//
// Cache backend failures propagate unwrapped.
func (m *TokenManager) GetAccessToken(ctx context.Context, forceRefresh bool) (string, error) {
	key := m.cacheKey()

	if !forceRefresh {
		cached, found, err := m.cache.Get(ctx, key)
		if err != nil {
			return "", err
		}
		if found && len(cached) > 0 {
			log.Debug().Str("key", key).Msg("access token cache hit")
			return string(cached), nil
		}
	}

	token, err, _ := m.group.Do(key, func() (any, error) {
		token, err := m.login(ctx)
		if err != nil {
			return nil, err
		}

		// Store with the configured TTL (service docs: ~20 minutes).
		if err := m.cache.SetEx(ctx, key, m.cfg.AccessTokenTTL(), []byte(token)); err != nil {
			return nil, err
		}

		log.Debug().Str("key", key).Bool("forced", forceRefresh).Msg("access token refreshed")
		return token, nil
	})
	if err != nil {
		return "", err
	}

	return token.(string), nil
}

// Close releases the token cache.
func (m *TokenManager) Close() error {
	return m.cache.Close()
}

// login performs POST /access/login and returns the access token. It
// makes exactly one network call and never touches the cache.
func (m *TokenManager) login(ctx context.Context) (string, error) {
	url := m.cfg.APIBaseURL + "/access/login"
	payload := map[string]string{
		"username": m.username,
		"api-key":  m.apiKey,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", &AuthError{Message: "failed to encode login request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &AuthError{Message: "failed to build login request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if m.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", m.cfg.UserAgent)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", &AuthError{Message: "failed to call Skribble login endpoint", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &AuthError{Message: "failed to read login response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", loginHTTPError(resp.StatusCode, respBody)
	}

	token, err := extractToken(resp.Header.Get("Content-Type"), respBody)
	if err != nil {
		return "", err
	}

	return token, nil
}

// loginHTTPError builds the HTTPError for a non-200 login response,
// pulling a human-readable message from the body when it parses as
// JSON.
func loginHTTPError(statusCode int, body []byte) *HTTPError {
	httpErr := responseError(statusCode, body)
	httpErr.Message = "Login failed: " + httpErr.Message
	return httpErr
}

// extractToken locates the access token in a successful login response.
// JSON responses are searched field by field in priority order, falling
// back to a whole-body JSON string; anything else is treated as the raw
// token text.
func extractToken(contentType string, body []byte) (string, error) {
	if strings.Contains(contentType, "application/json") {
		var parsed any
		if err := json.Unmarshal(body, &parsed); err != nil {
			return "", &AuthError{Message: "login response declared JSON but did not parse", Err: err}
		}

		switch data := parsed.(type) {
		case map[string]any:
			for _, field := range tokenFieldPriority {
				if s, ok := data[field].(string); ok && s != "" {
					return s, nil
				}
			}
			return "", &AuthError{Message: "login succeeded but no access token found in response JSON"}

		case string:
			if data == "" {
				return "", &AuthError{Message: "login succeeded but access token is empty"}
			}
			return data, nil

		default:
			return "", &AuthError{Message: "login succeeded but no access token found in response JSON"}
		}
	}

	// Some implementations return the raw token text.
	token := strings.TrimSpace(string(body))
	if token == "" {
		return "", &AuthError{Message: "login succeeded but access token is empty"}
	}

	return token, nil
}
