package instrumentation

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPrometheusProvider(t *testing.T) *Provider {
	t.Helper()

	provider, err := NewProvider(context.Background(), Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return provider
}

// gatheredNames returns the metric family names currently exposed by the provider.
func gatheredNames(t *testing.T, p *Provider) []string {
	t.Helper()

	families, err := p.Gatherer().Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	return names
}

func containsPrefix(names []string, prefix string) bool {
	for _, n := range names {
		if strings.HasPrefix(n, prefix) {
			return true
		}
	}
	return false
}

func TestMetrics_RecordHTTPRequest(t *testing.T) {
	provider := newPrometheusProvider(t)
	ctx := context.Background()

	provider.Metrics().RecordHTTPRequest(ctx, "GET", "/calendars", 200, 100*time.Millisecond)
	provider.Metrics().RecordHTTPRequest(ctx, "POST", "/calendars/{id}/events", 500, 50*time.Millisecond)

	names := gatheredNames(t, provider)
	assert.True(t, containsPrefix(names, "timetree_http_requests"), "names: %v", names)
	assert.True(t, containsPrefix(names, "timetree_http_request_duration_seconds"), "names: %v", names)
}

func TestMetrics_RecordAPIOperation(t *testing.T) {
	provider := newPrometheusProvider(t)
	ctx := context.Background()

	provider.Metrics().RecordAPIOperation(ctx, ResourceCalendar, OperationList, "", StatusSuccess, 200*time.Millisecond)
	provider.Metrics().RecordAPIOperation(ctx, ResourceEvent, OperationCreate, "cal-1", StatusError, 500*time.Millisecond)

	names := gatheredNames(t, provider)
	assert.True(t, containsPrefix(names, "timetree_api_operations"), "names: %v", names)
}

func TestMetrics_RecordToolInvocation(t *testing.T) {
	provider := newPrometheusProvider(t)

	provider.Metrics().RecordToolInvocation(context.Background(), "timetree_list_calendars", StatusSuccess, time.Second)

	names := gatheredNames(t, provider)
	assert.True(t, containsPrefix(names, "mcp_tool_invocations"), "names: %v", names)
}

func TestMetrics_NilSafe(t *testing.T) {
	ctx := context.Background()

	// Zero value and nil pointer are both no-op recorders
	var zero Metrics
	zero.RecordHTTPRequest(ctx, "GET", "/calendars", 200, time.Millisecond)
	zero.RecordAPIOperation(ctx, ResourceLabel, OperationList, "", StatusSuccess, time.Millisecond)
	zero.RecordToolInvocation(ctx, "tool", StatusSuccess, time.Millisecond)

	var nilMetrics *Metrics
	nilMetrics.RecordHTTPRequest(ctx, "GET", "/calendars", 200, time.Millisecond)
	nilMetrics.RecordAPIOperation(ctx, ResourceMember, OperationList, "", StatusSuccess, time.Millisecond)
	nilMetrics.RecordToolInvocation(ctx, "tool", StatusSuccess, time.Millisecond)
}
