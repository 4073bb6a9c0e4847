// Package logging provides structured logging utilities for the timetree client.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Handler construction (json, text, colored text via tint)
//   - Consistent attribute naming across the codebase
//   - Token sanitization
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "calendar.list")
//	logger.Info("listing calendars",
//	    logging.Status(logging.StatusSuccess))
//
// # Security Considerations
//
// Access tokens are never logged directly, only their length via SanitizeToken.
package logging
