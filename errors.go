package skribble

import (
	"fmt"
	"net/http"
)

// HTTPStatuser provides HTTP status information for errors.
type HTTPStatuser interface {
	Status() (int, string)
}

// AuthError indicates that a login exchange could not produce a usable
// access token: the endpoint was unreachable, the response carried no
// recognizable token, or the token was empty. It is not retried
// internally.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// HTTPError indicates a non-success response from the Skribble API. The
// raw body is retained in both parsed and textual form for caller
// inspection.
type HTTPError struct {
	StatusCode   int
	Message      string
	ResponseText string

	// Response is the JSON-parsed body, nil when the body did not parse.
	Response any
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("skribble: HTTP %d: %s", e.StatusCode, e.Message)
}

// Status implements HTTPStatuser.
func (e *HTTPError) Status() (int, string) {
	message := e.Message
	if message == "" {
		message = http.StatusText(e.StatusCode)
	}
	return e.StatusCode, message
}

// ConfigurationError indicates the caller violated a request
// precondition, such as supplying more than one of a set of mutually
// exclusive fields.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return "skribble: " + e.Message
}
