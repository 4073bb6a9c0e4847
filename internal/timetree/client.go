package timetree

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/teemow/timetree/internal/instrumentation"
	"github.com/teemow/timetree/internal/logging"
	"github.com/teemow/timetree/internal/transport"
)

// Transport performs a single API request. Non-success responses are
// returned as *HTTPError.
type Transport interface {
	Request(ctx context.Context, method, path string, query url.Values, body any) (*transport.Response, error)
}

// Client provides access to calendars. It is safe for concurrent use.
type Client struct {
	transport Transport
	logger    *slog.Logger
	metrics   *instrumentation.Metrics
}

// Option configures a Client
type Option func(*Client)

// WithLogger sets the logger used for operation logs
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records every operation in m
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New creates a Client that sends its requests through t.
func New(t Transport, opts ...Option) *Client {
	c := &Client{
		transport: t,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// call performs one request and records it as an operation on resource.
func (c *Client) call(ctx context.Context, resource, operation, calendarID, method, path string, query url.Values, body any) (*transport.Response, error) {
	attrs := instrumentation.NewSpanAttributeBuilder().
		WithCalendar(calendarID).
		WithReadOnly(method == http.MethodGet).
		Build()
	ctx, span := instrumentation.StartAPISpan(ctx, resource, operation, attrs...)
	defer span.End()

	start := time.Now()
	resp, err := c.transport.Request(ctx, method, path, query, body)
	duration := time.Since(start)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	c.metrics.RecordAPIOperation(ctx, resource, operation, calendarID, status, duration)

	c.logger.DebugContext(ctx, "timetree operation",
		logging.Resource(resource),
		logging.Operation(operation),
		logging.Calendar(calendarID),
		logging.Status(status),
		slog.Duration(logging.KeyDuration, duration),
		logging.Err(err))

	return resp, err
}

// Calendar returns an unfetched calendar bound to this client. Its
// attributes are zero; use GetCalendar to load them.
func (c *Client) Calendar(id string) *Calendar {
	return &Calendar{ID: id, client: c}
}

// ListCalendars lists the calendars accessible with the client's token.
// Labels and members of the returned calendars are fetched on first use.
func (c *Client) ListCalendars(ctx context.Context) ([]*Calendar, error) {
	resp, err := c.call(ctx, instrumentation.ResourceCalendar, instrumentation.OperationList, "",
		http.MethodGet, "/calendars", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	items, err := decodeDataList(resp.Body, TypeCalendar)
	if err != nil {
		return nil, err
	}

	calendars := make([]*Calendar, 0, len(items))
	for _, item := range items {
		cal, err := decodeCalendar(item)
		if err != nil {
			return nil, err
		}
		cal.client = c
		calendars = append(calendars, cal)
	}

	return calendars, nil
}

// GetCalendar fetches a single calendar by id.
func (c *Client) GetCalendar(ctx context.Context, id string) (*Calendar, error) {
	if id == "" {
		return nil, &InvalidArgumentError{Op: "get calendar", Argument: "id", Reason: "must not be empty"}
	}

	resp, err := c.call(ctx, instrumentation.ResourceCalendar, instrumentation.OperationGet, id,
		http.MethodGet, calendarPath(id), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get calendar %s: %w", id, err)
	}

	raw, err := decodeData(resp.Body, TypeCalendar)
	if err != nil {
		return nil, err
	}
	cal, err := decodeCalendar(raw)
	if err != nil {
		return nil, err
	}
	cal.client = c

	return cal, nil
}

func calendarPath(id string) string {
	return "/calendars/" + url.PathEscape(id)
}

func eventPath(calendarID, eventID string) string {
	return calendarPath(calendarID) + "/events/" + url.PathEscape(eventID)
}
