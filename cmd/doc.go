// Package cmd implements the command-line interface for timetree.
//
// This package provides the following commands:
//   - calendars: List calendars and read their labels and members
//   - events: List upcoming events, read, create and delete events
//   - serve: Start the MCP server to provide tools for AI assistants
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// Settings come from an optional YAML file (--config), a .env file, TIMETREE_*
// environment variables and the global flags, in increasing precedence.
package cmd
