package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"

	"github.com/teemow/timetree/internal/instrumentation"
	"github.com/teemow/timetree/internal/logging"
)

// Config configures an HTTPTransport.
type Config struct {
	// BaseURL is the API root (default: https://timetreeapis.com)
	BaseURL string

	// Token is the personal access token sent as a bearer credential
	Token string

	// Accept is the API version media type (default: application/vnd.timetree.v1+json)
	Accept string

	// UserAgent is sent with every request (default: timetree-go)
	UserAgent string

	// Timeout bounds each HTTP attempt (default: 30s)
	Timeout time.Duration

	// MaxRetries is the number of extra attempts for a failed GET. 0 disables retries.
	MaxRetries int

	// InitialBackoff is the first retry delay (default: 500ms)
	InitialBackoff time.Duration

	// Logger receives request diagnostics (default: slog.Default())
	Logger *slog.Logger

	// Metrics records per-request metrics; nil disables recording
	Metrics *instrumentation.Metrics

	// BaseTransport is the round tripper under the auth layer (default: http.DefaultTransport)
	BaseTransport http.RoundTripper
}

// HTTPTransport sends requests to the TimeTree API over HTTP.
// It holds no mutable state and is safe for concurrent use.
type HTTPTransport struct {
	baseURL        string
	accept         string
	userAgent      string
	maxRetries     int
	initialBackoff time.Duration
	client         *http.Client
	logger         *slog.Logger
	metrics        *instrumentation.Metrics
}

// New creates an HTTPTransport from the given configuration.
func New(cfg Config) (*HTTPTransport, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("access token cannot be empty")
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("max retries cannot be negative, got %d", cfg.MaxRetries)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}

	accept := cfg.Accept
	if accept == "" {
		accept = DefaultAccept
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	initialBackoff := cfg.InitialBackoff
	if initialBackoff == 0 {
		initialBackoff = 500 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	base := cfg.BaseTransport
	if base == nil {
		base = http.DefaultTransport
	}

	authed := &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}),
		Base:   base,
	}

	logger.Debug("created TimeTree transport",
		slog.String("base_url", baseURL),
		logging.Token(cfg.Token),
		slog.Int("max_retries", cfg.MaxRetries))

	return &HTTPTransport{
		baseURL:        strings.TrimRight(baseURL, "/"),
		accept:         accept,
		userAgent:      userAgent,
		maxRetries:     cfg.MaxRetries,
		initialBackoff: initialBackoff,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(authed),
		},
		logger:  logger,
		metrics: cfg.Metrics,
	}, nil
}

// BaseURL returns the API root this transport sends requests to.
func (t *HTTPTransport) BaseURL() string {
	return t.baseURL
}

// Request sends a request and returns the successful response.
// body, when non-nil, is JSON-encoded. Non-2xx replies return *HTTPError.
func (t *HTTPTransport) Request(ctx context.Context, method, path string, query url.Values, body any) (*Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	target := t.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	if method != http.MethodGet || t.maxRetries == 0 {
		return t.send(ctx, method, target, path, payload)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = t.initialBackoff

	return backoff.Retry(ctx, func() (*Response, error) {
		resp, err := t.send(ctx, method, target, path, payload)
		if err != nil && !retriable(err) {
			return nil, backoff.Permanent(err)
		}
		return resp, err
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(t.maxRetries+1)),
		backoff.WithNotify(func(err error, delay time.Duration) {
			t.logger.Info("retrying TimeTree request",
				slog.String(logging.KeyMethod, method),
				slog.String(logging.KeyPath, path),
				slog.Duration("delay", delay),
				logging.Err(err))
		}),
	)
}

// send performs one HTTP attempt.
func (t *HTTPTransport) send(ctx context.Context, method, target, path string, payload []byte) (*Response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", t.accept)
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set(HeaderRequestID, requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger := t.logger.With(
		slog.String(logging.KeyMethod, method),
		slog.String(logging.KeyPath, path),
		slog.String(logging.KeyRequestID, requestID),
	)
	template := pathTemplate(path)

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		t.metrics.RecordHTTPRequest(ctx, method, template, 0, time.Since(start))
		logger.Warn("TimeTree request failed", logging.Err(err))
		return nil, fmt.Errorf("failed to send %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	duration := time.Since(start)
	t.metrics.RecordHTTPRequest(ctx, method, template, resp.StatusCode, duration)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn("TimeTree request returned an error status",
			slog.Int(logging.KeyStatusCode, resp.StatusCode),
			slog.String("body", string(data)))
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Body:       string(data),
			Method:     method,
			URL:        target,
		}
	}

	logger.Debug("TimeTree request succeeded",
		slog.Int(logging.KeyStatusCode, resp.StatusCode),
		slog.Duration(logging.KeyDuration, duration))

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

// retriable reports whether a failed GET attempt may be repeated.
func retriable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.retriable()
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// pathTemplate replaces resource ids in an API path with {id} so metric
// labels stay low-cardinality.
func pathTemplate(path string) string {
	segments := strings.Split(path, "/")
	for i := 1; i < len(segments); i++ {
		switch segments[i-1] {
		case "calendars", "events":
			if segments[i] != "" {
				segments[i] = "{id}"
			}
		}
	}
	return strings.Join(segments, "/")
}
