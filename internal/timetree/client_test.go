package timetree

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/timetree/internal/instrumentation"
)

func TestClient_RecordsOperations(t *testing.T) {
	provider, err := instrumentation.NewProvider(context.Background(), instrumentation.Config{
		ServiceName:     "timetree-test",
		Enabled:         true,
		MetricsExporter: instrumentation.ExporterPrometheus,
		TracingExporter: instrumentation.ExporterNone,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	stub := newStubTransport()
	stub.reply(http.MethodGet, "/calendars", []byte(`{"data": []}`))
	client := New(stub, WithLogger(logger), WithMetrics(provider.Metrics()))

	_, err = client.ListCalendars(context.Background())
	require.NoError(t, err)

	families, err := provider.Gatherer().Gather()
	require.NoError(t, err)
	var found bool
	for _, f := range families {
		if strings.HasPrefix(f.GetName(), "timetree_api_operations") {
			found = true
		}
	}
	assert.True(t, found)

	assert.Contains(t, logs.String(), `"operation":"list"`)
	assert.Contains(t, logs.String(), `"resource":"calendar"`)
	assert.Contains(t, logs.String(), `"status":"success"`)
}

func TestClient_NilOptions(t *testing.T) {
	client := New(newStubTransport(), WithLogger(nil), WithMetrics(nil))
	assert.NotNil(t, client.logger)
}
