package instrumentation

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config selects the exporters for the client's API metrics and spans.
type Config struct {
	ServiceName       string
	ServiceVersion    string
	ServiceInstanceID string // hostname when empty

	// Enabled is false with INSTRUMENTATION_ENABLED=false; the provider then
	// records nothing.
	Enabled bool

	MetricsExporter string // prometheus, otlp or stdout
	TracingExporter string // otlp, stdout or none

	// OTLPEndpoint is host:port without a scheme.
	OTLPEndpoint string
	OTLPInsecure bool

	TraceSamplingRate  float64 // 0.0 to 1.0
	PrometheusEndpoint string

	// DetailedLabels adds calendar ids to API operation metrics. Keep it off
	// unless the account has few calendars.
	DetailedLabels bool
}

// DefaultConfig reads the OTEL_* and exporter environment variables.
// Unparsable values fall back to the default.
func DefaultConfig() Config {
	return Config{
		ServiceName:        env("OTEL_SERVICE_NAME", "timetree", parseString),
		ServiceVersion:     "unknown",
		ServiceInstanceID:  env("OTEL_SERVICE_INSTANCE_ID", "", parseString),
		Enabled:            env("INSTRUMENTATION_ENABLED", true, strconv.ParseBool),
		MetricsExporter:    env("METRICS_EXPORTER", ExporterPrometheus, parseString),
		TracingExporter:    env("TRACING_EXPORTER", ExporterNone, parseString),
		OTLPEndpoint:       env("OTEL_EXPORTER_OTLP_ENDPOINT", "", parseString),
		OTLPInsecure:       env("OTEL_EXPORTER_OTLP_INSECURE", false, strconv.ParseBool),
		TraceSamplingRate:  env("OTEL_TRACES_SAMPLER_ARG", 0.1, parseFloat),
		PrometheusEndpoint: env("PROMETHEUS_ENDPOINT", "/metrics", parseString),
		DetailedLabels:     env("METRICS_DETAILED_LABELS", false, strconv.ParseBool),
	}
}

func env[T any](key string, fallback T, parse func(string) (T, error)) T {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := parse(raw)
	if err != nil {
		return fallback
	}
	return v
}

func parseString(s string) (string, error) { return s, nil }

func parseFloat(s string) (float64, error) { return strconv.ParseFloat(s, 64) }

// Validate rejects unknown exporters, a sampling rate outside [0, 1] and an
// OTLP exporter without an endpoint. Empty exporter names are allowed.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %f", c.TraceSamplingRate)
	}

	switch c.MetricsExporter {
	case "", ExporterPrometheus, ExporterOTLP, ExporterStdout:
	default:
		return fmt.Errorf("invalid metrics exporter %q, must be one of: prometheus, otlp, stdout", c.MetricsExporter)
	}
	switch c.TracingExporter {
	case "", ExporterOTLP, ExporterStdout, ExporterNone:
	default:
		return fmt.Errorf("invalid tracing exporter %q, must be one of: otlp, stdout, none", c.TracingExporter)
	}

	if c.OTLPEndpoint == "" && (c.MetricsExporter == ExporterOTLP || c.TracingExporter == ExporterOTLP) {
		return errors.New("OTLP endpoint is required when an OTLP exporter is selected")
	}
	return nil
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)

// DefaultMetricInterval is the push interval of the periodic readers.
const DefaultMetricInterval = 10 * time.Second

// Resource kinds used as the "resource" label on API operation metrics.
const (
	ResourceCalendar = "calendar"
	ResourceEvent    = "event"
	ResourceLabel    = "label"
	ResourceMember   = "member"
)

// Operation types used as the "operation" label on API operation metrics.
const (
	OperationList     = "list"
	OperationGet      = "get"
	OperationCreate   = "create"
	OperationUpdate   = "update"
	OperationDelete   = "delete"
	OperationUpcoming = "upcoming"
)
