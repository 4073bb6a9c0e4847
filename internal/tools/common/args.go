package common

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/timetree/internal/timetree"
)

// Argument names shared by several tools.
const (
	ArgCalendarID = "calendar_id"
	ArgEventID    = "event_id"
	ArgTimezone   = "timezone"
)

// RequiredString returns a non-empty string argument.
func RequiredString(args map[string]any, name string) (string, error) {
	v, ok := args[name].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return v, nil
}

// OptionalString returns a string argument or "".
func OptionalString(args map[string]any, name string) string {
	v, _ := args[name].(string)
	return v
}

// OptionalStringPtr returns nil when the argument is absent.
func OptionalStringPtr(args map[string]any, name string) *string {
	v, ok := args[name].(string)
	if !ok {
		return nil
	}
	return &v
}

// OptionalInt returns a numeric argument, or def when it is absent. JSON
// numbers arrive as float64.
func OptionalInt(args map[string]any, name string, def int) (int, error) {
	switch v := args[name].(type) {
	case nil:
		return def, nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("%s must be a whole number", name)
		}
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("%s must be a number", name)
	}
}

// OptionalBool returns a boolean argument, or def when it is absent.
func OptionalBool(args map[string]any, name string, def bool) bool {
	if v, ok := args[name].(bool); ok {
		return v
	}
	return def
}

// StringList returns an array-of-strings argument, dropping blanks. Ids
// may contain commas, so a single string is taken as one element.
func StringList(args map[string]any, name string) []string {
	var raw []any
	switch v := args[name].(type) {
	case []any:
		raw = v
	case []string:
		for _, s := range v {
			raw = append(raw, s)
		}
	case string:
		raw = []any{v}
	}

	var out []string
	for _, item := range raw {
		if s, ok := item.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// ErrorResult converts a client error into a tool error result, naming the
// kind of failure so the caller can react to it.
func ErrorResult(action string, err error) *mcp.CallToolResult {
	var (
		argErr     *timetree.InvalidArgumentError
		stateErr   *timetree.InvalidStateError
		decodeErr  *timetree.DecodeError
		httpErr    *timetree.HTTPError
		missingErr *timetree.MissingAttributesError
	)

	switch {
	case errors.As(err, &argErr):
		return mcp.NewToolResultError(fmt.Sprintf("Invalid argument: %v", argErr))
	case errors.As(err, &stateErr):
		return mcp.NewToolResultError(fmt.Sprintf("Invalid state: %v", stateErr))
	case errors.As(err, &httpErr) && httpErr.NotFound():
		return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: not found", action))
	case errors.As(err, &httpErr):
		return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: TimeTree answered HTTP %d: %s", action, httpErr.StatusCode, httpErr.Body))
	case errors.As(err, &decodeErr):
		return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: unexpected response: %v", action, err))
	case errors.As(err, &missingErr):
		return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: %v", action, missingErr))
	default:
		return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: %v", action, err))
	}
}
