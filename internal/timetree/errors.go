package timetree

import (
	"fmt"

	"github.com/teemow/timetree/internal/transport"
)

// HTTPError is returned when the API answers with a non-success status.
type HTTPError = transport.HTTPError

// DecodeError reports a response that could not be mapped onto a resource.
type DecodeError struct {
	Type  string // wire type being decoded, e.g. "event"
	Field string // offending field; empty when the document itself is malformed
	Err   error
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	switch {
	case e.Field == "":
		return fmt.Sprintf("failed to decode %s: %v", e.Type, e.Err)
	case e.Err == nil:
		return fmt.Sprintf("failed to decode %s: missing required field %q", e.Type, e.Field)
	default:
		return fmt.Sprintf("failed to decode %s: field %q: %v", e.Type, e.Field, e.Err)
	}
}

// Unwrap returns the underlying error
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// InvalidArgumentError reports a caller-supplied value outside its documented bounds.
type InvalidArgumentError struct {
	Op       string
	Argument string
	Reason   string
}

// Error implements the error interface
func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("%s: invalid %s: %s", e.Op, e.Argument, e.Reason)
}

// InvalidStateError reports an operation invoked on a resource that lacks the
// identity it needs, such as updating an event that was never created.
type InvalidStateError struct {
	Op     string
	Reason string
}

// Error implements the error interface
func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// MissingAttributesError is returned when the full form of an id-only
// resource is requested.
type MissingAttributesError struct {
	Type string
	ID   string
}

// Error implements the error interface
func (e *MissingAttributesError) Error() string {
	return fmt.Sprintf("%s %q has no attributes", e.Type, e.ID)
}
