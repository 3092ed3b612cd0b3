package skribble

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthError(t *testing.T) {
	wrapped := errors.New("connection refused")
	err := &AuthError{Message: "failed to call Skribble login endpoint", Err: wrapped}

	assert.Equal(t, "failed to call Skribble login endpoint: connection refused", err.Error())
	assert.ErrorIs(t, err, wrapped)

	bare := &AuthError{Message: "access token is empty"}
	assert.Equal(t, "access token is empty", bare.Error())
	assert.Nil(t, errors.Unwrap(bare))
}

func TestHTTPErrorStatus(t *testing.T) {
	err := &HTTPError{StatusCode: http.StatusForbidden, Message: "no permission"}

	status, message := err.Status()
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "no permission", message)
	assert.Equal(t, "skribble: HTTP 403: no permission", err.Error())

	// without a message the status text stands in
	blank := &HTTPError{StatusCode: http.StatusBadGateway}
	status, message = blank.Status()
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "Bad Gateway", message)
}

func TestConfigurationError(t *testing.T) {
	err := &ConfigurationError{Message: "username and API key are required"}
	assert.Equal(t, "skribble: username and API key are required", err.Error())
}
