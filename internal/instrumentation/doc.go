// Package instrumentation provides OpenTelemetry instrumentation for the
// timetree client and its MCP server.
//
// # Metrics
//
// HTTP metrics (one sample per wire request, retries included):
//   - timetree_http_requests_total: Counter by method, path template, and status code
//   - timetree_http_request_duration_seconds: Histogram of request durations
//
// API metrics (one sample per resource operation):
//   - timetree_api_operations_total: Counter by resource, operation, status
//   - timetree_api_operation_duration_seconds: Histogram of operation durations
//
// MCP Tool metrics:
//   - mcp_tool_invocations_total: Counter by tool name and status
//   - mcp_tool_duration_seconds: Histogram of tool execution durations
//
// # Tracing
//
// Spans are created for resource operations (timetree.<resource>.<operation>)
// and MCP tool invocations (tool.<name>). HTTP client spans come from otelhttp.
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: timetree)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordAPIOperation(ctx, "event", "create", calendarID, "success", time.Since(start))
package instrumentation
