package timetree

import (
	"context"
)

// Event is an event that exists on the server.
type Event struct {
	ID string
	EventValue

	calendarID string
	client     *Client
}

// Equal reports whether both events carry the same non-empty id.
func (e *Event) Equal(other *Event) bool {
	if e == nil || other == nil || e.ID == "" {
		return false
	}
	return e.ID == other.ID
}

// CalendarID returns the id of the calendar the event was read from, or ""
// for an event built by the caller.
func (e *Event) CalendarID() string {
	return e.calendarID
}

func (e *Event) calendar(op string) (*Calendar, error) {
	if e.ID == "" {
		return nil, &InvalidStateError{Op: op, Reason: "event has no id; create it first"}
	}
	if e.client == nil || e.calendarID == "" {
		return nil, &InvalidStateError{Op: op, Reason: "event is not bound to a calendar"}
	}
	return e.client.Calendar(e.calendarID), nil
}

// Update sends the event's current attributes and relationships to the server.
func (e *Event) Update(ctx context.Context) (*Event, error) {
	cal, err := e.calendar("update event")
	if err != nil {
		return nil, err
	}
	return cal.UpdateEvent(ctx, e)
}

// Delete removes the event from its calendar.
func (e *Event) Delete(ctx context.Context) error {
	cal, err := e.calendar("delete event")
	if err != nil {
		return err
	}
	return cal.DeleteEvent(ctx, e)
}
