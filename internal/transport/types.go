package transport

import (
	"fmt"
	"net/http"
	"time"
)

// Defaults for the TimeTree API.
const (
	DefaultBaseURL    = "https://timetreeapis.com"
	DefaultAccept     = "application/vnd.timetree.v1+json"
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 2
	DefaultUserAgent  = "timetree-go"

	// HeaderRequestID carries the per-request correlation id.
	HeaderRequestID = "X-Request-Id"
)

// Response is a successful (2xx) reply from the API.
type Response struct {
	StatusCode int
	Body       []byte
}

// HTTPError represents a non-success response from the API.
type HTTPError struct {
	// StatusCode is the HTTP status code returned by the API
	StatusCode int

	// Body is the raw response body, kept verbatim for diagnosis
	Body string

	// Method and URL identify the failed request
	Method string
	URL    string
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	return fmt.Sprintf("timetree %s %s: HTTP %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// NotFound reports whether the API answered 404.
func (e *HTTPError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// retriable reports whether a GET answered with this status may be retried.
func (e *HTTPError) retriable() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
