package timetree

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/teemow/timetree/internal/instrumentation"
)

// Upcoming event window accepted by the API, in days.
const (
	MinUpcomingDays = 1
	MaxUpcomingDays = 7
)

// Calendar is a TimeTree calendar. Labels and members are fetched on first
// access and kept for the lifetime of the instance.
type Calendar struct {
	ID         string
	Attributes CalendarAttributes

	client *Client

	labelsMu sync.Mutex
	labels   []Label // nil until fetched

	membersMu sync.Mutex
	members   []Member
}

// Equal reports whether both calendars have the same id.
func (c *Calendar) Equal(other *Calendar) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.ID == other.ID
}

func (c *Calendar) checkBound(op string) error {
	if c.client == nil {
		return &InvalidStateError{Op: op, Reason: "calendar is not bound to a client"}
	}
	if c.ID == "" {
		return &InvalidStateError{Op: op, Reason: "calendar has no id"}
	}
	return nil
}

// Labels returns the calendar's labels. The first successful call fetches
// them; later calls return the same labels without a request.
func (c *Calendar) Labels(ctx context.Context) ([]Label, error) {
	if err := c.checkBound("list labels"); err != nil {
		return nil, err
	}

	c.labelsMu.Lock()
	defer c.labelsMu.Unlock()

	if c.labels == nil {
		labels, err := c.fetchLabels(ctx)
		if err != nil {
			return nil, err
		}
		c.labels = labels
	}

	return slices.Clone(c.labels), nil
}

func (c *Calendar) fetchLabels(ctx context.Context) ([]Label, error) {
	resp, err := c.client.call(ctx, instrumentation.ResourceLabel, instrumentation.OperationList, c.ID,
		http.MethodGet, calendarPath(c.ID)+"/labels", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels of calendar %s: %w", c.ID, err)
	}

	items, err := decodeDataList(resp.Body, TypeLabel)
	if err != nil {
		return nil, err
	}

	labels := make([]Label, 0, len(items))
	for _, item := range items {
		l, err := decodeLabel(item)
		if err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	return labels, nil
}

// Members returns the calendar's members, fetched once like Labels.
func (c *Calendar) Members(ctx context.Context) ([]Member, error) {
	if err := c.checkBound("list members"); err != nil {
		return nil, err
	}

	c.membersMu.Lock()
	defer c.membersMu.Unlock()

	if c.members == nil {
		members, err := c.fetchMembers(ctx)
		if err != nil {
			return nil, err
		}
		c.members = members
	}

	return slices.Clone(c.members), nil
}

func (c *Calendar) fetchMembers(ctx context.Context) ([]Member, error) {
	resp, err := c.client.call(ctx, instrumentation.ResourceMember, instrumentation.OperationList, c.ID,
		http.MethodGet, calendarPath(c.ID)+"/members", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of calendar %s: %w", c.ID, err)
	}

	items, err := decodeDataList(resp.Body, TypeMember)
	if err != nil {
		return nil, err
	}

	members := make([]Member, 0, len(items))
	for _, item := range items {
		m, err := decodeMember(item)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

// UpcomingEvents lists events starting within the next days days, as seen
// from timezone. days must be between 1 and 7; an empty timezone means
// DefaultTimezone.
func (c *Calendar) UpcomingEvents(ctx context.Context, days int, timezone string) ([]*Event, error) {
	const op = "list upcoming events"

	if days < MinUpcomingDays || days > MaxUpcomingDays {
		return nil, &InvalidArgumentError{
			Op:       op,
			Argument: "days",
			Reason:   fmt.Sprintf("%d is outside the range %d to %d", days, MinUpcomingDays, MaxUpcomingDays),
		}
	}
	timezone = zoneOrDefault(timezone)
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, &InvalidArgumentError{Op: op, Argument: "timezone", Reason: err.Error()}
	}
	if err := c.checkBound(op); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("timezone", timezone)
	query.Set("days", strconv.Itoa(days))

	resp, err := c.client.call(ctx, instrumentation.ResourceEvent, instrumentation.OperationUpcoming, c.ID,
		http.MethodGet, calendarPath(c.ID)+"/upcoming_events", query, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming events of calendar %s: %w", c.ID, err)
	}

	items, err := decodeDataList(resp.Body, TypeEvent)
	if err != nil {
		return nil, err
	}

	events := make([]*Event, 0, len(items))
	for _, item := range items {
		ev, err := decodeEvent(item)
		if err != nil {
			return nil, err
		}
		events = append(events, c.bind(ev))
	}
	return events, nil
}

// GetEvent fetches a single event of the calendar.
func (c *Calendar) GetEvent(ctx context.Context, eventID string) (*Event, error) {
	if eventID == "" {
		return nil, &InvalidArgumentError{Op: "get event", Argument: "event id", Reason: "must not be empty"}
	}
	if err := c.checkBound("get event"); err != nil {
		return nil, err
	}

	resp, err := c.client.call(ctx, instrumentation.ResourceEvent, instrumentation.OperationGet, c.ID,
		http.MethodGet, eventPath(c.ID, eventID), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get event %s: %w", eventID, err)
	}

	ev, err := decodeEventDocument(resp.Body)
	if err != nil {
		return nil, err
	}
	return c.bind(ev), nil
}

// CreateEvent creates an event in the calendar and returns it with its
// server-assigned id.
//
// A *DecodeError means the event was created but the response could not be read.
func (c *Calendar) CreateEvent(ctx context.Context, value EventValue) (*Event, error) {
	if err := c.checkBound("create event"); err != nil {
		return nil, err
	}
	body, err := encodeEventValue(value)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.call(ctx, instrumentation.ResourceEvent, instrumentation.OperationCreate, c.ID,
		http.MethodPost, calendarPath(c.ID)+"/events", nil, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create event in calendar %s: %w", c.ID, err)
	}

	ev, err := decodeEventDocument(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("event created but the response is unusable: %w", err)
	}
	return c.bind(ev), nil
}

// UpdateEvent replaces the event's attributes and relationships and returns
// the event as stored by the server.
func (c *Calendar) UpdateEvent(ctx context.Context, ev *Event) (*Event, error) {
	if err := c.checkBound("update event"); err != nil {
		return nil, err
	}
	if ev == nil || ev.ID == "" {
		return nil, &InvalidStateError{Op: "update event", Reason: "event has no id; create it first"}
	}
	body, err := encodeEventValue(ev.EventValue)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.call(ctx, instrumentation.ResourceEvent, instrumentation.OperationUpdate, c.ID,
		http.MethodPut, eventPath(c.ID, ev.ID), nil, body)
	if err != nil {
		return nil, fmt.Errorf("failed to update event %s: %w", ev.ID, err)
	}

	updated, err := decodeEventDocument(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("event %s updated but the response is unusable: %w", ev.ID, err)
	}
	return c.bind(updated), nil
}

// DeleteEvent deletes the event. Deleting an event that no longer exists
// returns the API's 404 as *HTTPError.
func (c *Calendar) DeleteEvent(ctx context.Context, ev *Event) error {
	if err := c.checkBound("delete event"); err != nil {
		return err
	}
	if ev == nil || ev.ID == "" {
		return &InvalidStateError{Op: "delete event", Reason: "event has no id; create it first"}
	}

	_, err := c.client.call(ctx, instrumentation.ResourceEvent, instrumentation.OperationDelete, c.ID,
		http.MethodDelete, eventPath(c.ID, ev.ID), nil, nil)
	if err != nil {
		return fmt.Errorf("failed to delete event %s: %w", ev.ID, err)
	}
	return nil
}

func (c *Calendar) bind(ev *Event) *Event {
	ev.calendarID = c.ID
	ev.client = c.client
	return ev
}

func decodeEventDocument(body []byte) (*Event, error) {
	raw, err := decodeData(body, TypeEvent)
	if err != nil {
		return nil, err
	}
	return decodeEvent(raw)
}
