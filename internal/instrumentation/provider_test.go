package instrumentation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewProvider_Disabled(t *testing.T) {
	config := Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Enabled:        false,
	}

	provider, err := NewProvider(context.Background(), config)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if provider.Enabled() {
		t.Error("expected provider to be disabled")
	}

	if provider.Metrics() == nil {
		t.Error("expected metrics to be non-nil even when disabled")
	}

	if provider.PrometheusHandler() != nil {
		t.Error("expected no prometheus handler when disabled")
	}

	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("expected no error on shutdown, got %v", err)
	}
}

func TestNewProvider_PrometheusExporter(t *testing.T) {
	config := Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: "prometheus",
		TracingExporter: "none",
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, config)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	if !provider.Enabled() {
		t.Error("expected provider to be enabled")
	}

	if provider.Gatherer() == nil {
		t.Error("expected Gatherer to be non-nil for prometheus exporter")
	}

	handler := provider.PrometheusHandler()
	if handler == nil {
		t.Fatal("expected PrometheusHandler to be non-nil for prometheus exporter")
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 from metrics handler, got %d", rec.Code)
	}

	if provider.Tracer("test") == nil {
		t.Error("expected tracer to be non-nil")
	}
}

func TestNewProvider_StdoutExporter(t *testing.T) {
	config := Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: "stdout",
		TracingExporter: "stdout",
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, config)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	if provider.PrometheusHandler() != nil {
		t.Error("expected PrometheusHandler to be nil for stdout exporter")
	}
}

func TestNewProvider_InvalidExporters(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{
			name:   "invalid metrics exporter",
			config: Config{ServiceName: "test-service", Enabled: true, MetricsExporter: "invalid", TracingExporter: "none"},
		},
		{
			name:   "invalid tracing exporter",
			config: Config{ServiceName: "test-service", Enabled: true, MetricsExporter: "prometheus", TracingExporter: "invalid"},
		},
		{
			name:   "otlp tracing without endpoint",
			config: Config{ServiceName: "test-service", Enabled: true, MetricsExporter: "prometheus", TracingExporter: "otlp"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if _, err := NewProvider(ctx, tt.config); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestProvider_Tracer_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if provider.Tracer("test") == nil {
		t.Error("expected tracer to be non-nil (no-op)")
	}
}

func TestNewMetricReader_RegistryOnlyForPrometheus(t *testing.T) {
	ctx := context.Background()

	reader, registry, err := newMetricReader(ctx, Config{MetricsExporter: ExporterPrometheus})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reader == nil || registry == nil {
		t.Error("expected prometheus reader with its own registry")
	}

	reader, registry, err = newMetricReader(ctx, Config{MetricsExporter: ExporterStdout})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reader == nil {
		t.Error("expected stdout reader")
	}
	if registry != nil {
		t.Error("expected no registry for stdout exporter")
	}
	_ = reader.Shutdown(ctx)

	if _, _, err := newMetricReader(ctx, Config{MetricsExporter: ExporterOTLP}); err == nil {
		t.Error("expected error for otlp metrics without endpoint")
	}
}

func TestNewResource_InstanceID(t *testing.T) {
	res, err := newResource(context.Background(), Config{ServiceName: "svc", ServiceInstanceID: "node-1"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	found := false
	for _, kv := range res.Attributes() {
		if string(kv.Key) == "service.instance.id" {
			found = true
			if kv.Value.AsString() != "node-1" {
				t.Errorf("expected instance id node-1, got %q", kv.Value.AsString())
			}
		}
	}
	if !found {
		t.Error("expected service.instance.id attribute")
	}
}
