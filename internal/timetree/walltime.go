package timetree

import (
	"time"
)

// ParseWallClock reads user input for an event's start or end time as a
// wall-clock value in zone. It accepts RFC 3339 timestamps, which are
// converted to zone, and the offset-less forms "2006-01-02T15:04:05",
// "2006-01-02 15:04:05" and "2006-01-02". An empty zone means DefaultTimezone.
func ParseWallClock(value, zone string) (time.Time, error) {
	zone = zoneOrDefault(zone)
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, &InvalidArgumentError{Op: "parse time", Argument: "timezone", Reason: err.Error()}
	}
	t, err := parseTimestamp(value, loc)
	if err != nil {
		return time.Time{}, &InvalidArgumentError{Op: "parse time", Argument: "time", Reason: err.Error()}
	}
	return t, nil
}

// StartInstant returns the moment the event starts, reading StartAt's date
// and clock fields in StartTimezone.
func (a EventAttributes) StartInstant() (time.Time, error) {
	return instant(a.StartAt, a.StartTimezone, a.AllDay)
}

// EndInstant is StartInstant for EndAt and EndTimezone.
func (a EventAttributes) EndInstant() (time.Time, error) {
	return instant(a.EndAt, a.EndTimezone, a.AllDay)
}

func instant(t time.Time, zone string, allDay bool) (time.Time, error) {
	zone = zoneOrDefault(zone)
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, &InvalidArgumentError{Op: "resolve time", Argument: "timezone", Reason: err.Error()}
	}
	if allDay {
		year, month, day := t.Date()
		return localize(year, month, day, 0, 0, 0, 0, loc), nil
	}
	return localizeFields(t, loc), nil
}
