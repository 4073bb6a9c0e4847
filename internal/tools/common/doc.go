// Package common provides shared helpers for the MCP tool packages: the
// instrumentation wrapper applied to every handler, argument accessors, and
// the mapping of client errors to tool error results.
package common
