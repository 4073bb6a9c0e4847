package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/teemow/timetree/internal/instrumentation"
	"github.com/teemow/timetree/internal/logging"
	"github.com/teemow/timetree/internal/timetree"
)

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx       context.Context
	cancel    context.CancelFunc
	client    *timetree.Client
	metrics   *instrumentation.Metrics
	audit     *instrumentation.AuditLogger
	logger    *slog.Logger
	timezone  string
	calendars map[string]*timetree.Calendar // by id, kept for the server lifetime
	mu        sync.RWMutex
	shutdown  bool
}

// Option configures a ServerContext
type Option func(*ServerContext)

// WithMetrics sets the recorder used by tool handlers
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(sc *ServerContext) {
		sc.metrics = m
	}
}

// WithAuditLogger replaces the default audit logger
func WithAuditLogger(al *instrumentation.AuditLogger) Option {
	return func(sc *ServerContext) {
		sc.audit = al
	}
}

// WithLogger sets the server logger
func WithLogger(logger *slog.Logger) Option {
	return func(sc *ServerContext) {
		if logger != nil {
			sc.logger = logger
		}
	}
}

// WithTimezone sets the zone used when a tool call names none
func WithTimezone(tz string) Option {
	return func(sc *ServerContext) {
		if tz != "" {
			sc.timezone = tz
		}
	}
}

// NewServerContext creates a new server context
func NewServerContext(ctx context.Context, client *timetree.Client, opts ...Option) (*ServerContext, error) {
	if client == nil {
		return nil, fmt.Errorf("timetree client is required")
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	sc := &ServerContext{
		ctx:       shutdownCtx,
		cancel:    cancel,
		client:    client,
		logger:    slog.Default(),
		timezone:  timetree.DefaultTimezone,
		calendars: make(map[string]*timetree.Calendar),
	}
	for _, opt := range opts {
		opt(sc)
	}
	if sc.audit == nil {
		sc.audit = instrumentation.NewAuditLogger(sc.logger)
	}

	return sc, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Client returns the TimeTree client
func (sc *ServerContext) Client() *timetree.Client {
	return sc.client
}

// Metrics returns the metrics recorder; nil when instrumentation is off.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the tool audit logger
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.audit
}

// Logger returns the server logger
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Timezone returns the default zone for tool calls
func (sc *ServerContext) Timezone() string {
	return sc.timezone
}

// Calendar returns the calendar kept for id, creating an unfetched one on
// first use. Repeated calls return the same instance so its label and member
// caches are shared.
func (sc *ServerContext) Calendar(id string) *timetree.Calendar {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if cal, ok := sc.calendars[id]; ok {
		return cal
	}

	cal := sc.client.Calendar(id)
	sc.calendars[id] = cal
	logging.WithCalendar(sc.logger, id).Debug("calendar cached")
	return cal
}

// RememberCalendars keeps fetched calendars for later tool calls. Calendars
// already known by id are not replaced.
func (sc *ServerContext) RememberCalendars(cals ...*timetree.Calendar) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	for _, cal := range cals {
		if cal == nil || cal.ID == "" {
			continue
		}
		if _, ok := sc.calendars[cal.ID]; !ok {
			sc.calendars[cal.ID] = cal
		}
	}
}

// CachedCalendars returns how many calendars are kept.
func (sc *ServerContext) CachedCalendars() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return len(sc.calendars)
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
