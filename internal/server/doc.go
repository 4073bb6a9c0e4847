// Package server provides the shared state and auxiliary HTTP endpoints of
// the timetree MCP server.
//
// # Key Components
//
// ServerContext holds the TimeTree client used by every tool. It keeps one
// *timetree.Calendar per calendar id for the lifetime of the server, so the
// labels and members of a calendar are fetched at most once per process.
//
// MetricsServer exposes Prometheus metrics from the instrumentation provider
// on a dedicated port, together with the health endpoints of HealthChecker:
//   - /metrics: Prometheus scrape endpoint
//   - /healthz: liveness
//   - /readyz: readiness (fails once the server context shuts down)
//   - /healthz/detailed: uptime and number of cached calendars
package server
