package skribble

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"
)

// apiCall describes one REST call for the dispatcher. The zero value
// is an authenticated GET against the API base expecting 200.
type apiCall struct {
	method     string
	path       string // joined to the base URL, must start with "/"
	management bool   // use the management base URL
	noAuth     bool   // skip the bearer token
	query      url.Values
	body       any // JSON-encoded when non-nil
	expect     int // expected status, default 200
	out        any // JSON decode target, nil to discard the body
}

// do performs an API call, attaching a bearer token and decoding the
// JSON response. When a cached token is rejected with 401 or 403 the
// call is retried exactly once with a forced token refresh before the
// failure is surfaced.
func (c *Client) do(ctx context.Context, call apiCall) error {
	resp, body, err := c.send(ctx, call, false)
	if err != nil {
		return err
	}

	if !call.noAuth && tokenRejected(resp.StatusCode) {
		log.Debug().Str("path", call.path).Int("status", resp.StatusCode).Msg("cached token rejected, retrying with forced refresh")

		resp, body, err = c.send(ctx, call, true)
		if err != nil {
			return err
		}
	}

	expect := call.expect
	if expect == 0 {
		expect = http.StatusOK
	}

	if resp.StatusCode != expect {
		return responseError(resp.StatusCode, body)
	}

	if call.out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, call.out); err != nil {
			return fmt.Errorf("decoding %s %s response: %w", call.method, call.path, err)
		}
	}

	return nil
}

// tokenRejected reports whether a status indicates the bearer token was
// not accepted. Some deployments signal a revoked token with 403 rather
// than 401.
func tokenRejected(statusCode int) bool {
	return statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden
}

func (c *Client) send(ctx context.Context, call apiCall, forceRefresh bool) (*http.Response, []byte, error) {
	base := c.cfg.APIBaseURL
	if call.management {
		base = c.cfg.ManagementBaseURL
	}

	target := base + call.path
	if len(call.query) > 0 {
		target += "?" + call.query.Encode()
	}

	var reqBody io.Reader
	if call.body != nil {
		encoded, err := json.Marshal(call.body)
		if err != nil {
			return nil, nil, fmt.Errorf("encoding %s %s request: %w", call.method, call.path, err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, call.method, target, reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("building %s %s request: %w", call.method, call.path, err)
	}

	if call.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	if !call.noAuth {
		token, err := c.tokens.GetAccessToken(ctx, forceRefresh)
		if err != nil {
			return nil, nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("calling %s %s: %w", call.method, call.path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s %s response: %w", call.method, call.path, err)
	}

	return resp, body, nil
}

// responseError builds the HTTPError for an unexpected response status,
// extracting a message from the JSON body when one is present.
func responseError(statusCode int, body []byte) *HTTPError {
	text := string(body)
	msg := text

	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		parsed = nil
	} else if obj, ok := parsed.(map[string]any); ok {
		if s, ok := obj["message"].(string); ok && s != "" {
			msg = s
		} else if s, ok := obj["error"].(string); ok && s != "" {
			msg = s
		}
	}

	return &HTTPError{
		StatusCode:   statusCode,
		Message:      msg,
		ResponseText: text,
		Response:     parsed,
	}
}
