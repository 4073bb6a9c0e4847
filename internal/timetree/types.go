package timetree

import (
	"time"
)

// DefaultTimezone is used for event start and end times when no zone is given.
const DefaultTimezone = "Asia/Tokyo"

// Event categories understood by the API. The field itself is free-form.
const (
	CategorySchedule = "schedule"
	CategoryKeep     = "keep"
)

// Wire type discriminators
const (
	TypeCalendar = "calendar"
	TypeEvent    = "event"
	TypeLabel    = "label"
	TypeMember   = "user"
)

// EventAttributes holds the writable fields of an event.
//
// StartAt and EndAt are wall-clock values; only their date and clock fields
// are used and they are interpreted in StartTimezone and EndTimezone.
type EventAttributes struct {
	Title         string
	Category      string
	AllDay        bool
	StartAt       time.Time
	EndAt         time.Time
	StartTimezone string
	EndTimezone   string
	Description   *string
	Location      *string
	URL           *string
}

// NewEventAttributes returns attributes with both zones set to DefaultTimezone.
func NewEventAttributes(title, category string, allDay bool, startAt, endAt time.Time) EventAttributes {
	return EventAttributes{
		Title:         title,
		Category:      category,
		AllDay:        allDay,
		StartAt:       startAt,
		EndAt:         endAt,
		StartTimezone: DefaultTimezone,
		EndTimezone:   DefaultTimezone,
	}
}

// LabelAttributes describes a calendar label
type LabelAttributes struct {
	Name  string
	Color string // opaque, e.g. "#2ecc87"
}

// MemberAttributes describes a calendar member
type MemberAttributes struct {
	Name        string
	Description string
	ImageURL    string
}

// CalendarAttributes describes a calendar
type CalendarAttributes struct {
	Name        string
	CreatedAt   time.Time
	Description string
	ImageURL    *string
	Color       string
	Order       int
}
