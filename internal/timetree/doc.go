// Package timetree provides a client for the TimeTree calendar API.
//
// The package models calendars, events, labels and members as typed resources
// and maps them onto the API's JSON:API wire format:
//   - Listing and fetching calendars
//   - Resolving a calendar's labels and members (fetched once per instance)
//   - Listing upcoming events for up to seven days
//   - Creating, updating and deleting events
//
// All HTTP traffic goes through a Transport; internal/transport provides the
// production implementation with bearer authentication and retries.
//
// # Date and time encoding
//
// EventAttributes.StartAt and EndAt hold wall-clock values. On encode they are
// interpreted in StartTimezone and EndTimezone and written with the zone's
// UTC offset at that instant, for example "2020-01-12T09:54:32+09:00". For
// all-day events the time of day is dropped and midnight is written instead.
// On decode the server's timestamps are converted back into the named zones,
// so a decoded event re-encodes to the same strings.
//
// # Example Usage
//
//	tr, err := transport.New(transport.Config{Token: token})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := timetree.New(tr)
//
//	cal, err := client.GetCalendar(ctx, "calendar-id")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	labels, err := cal.Labels(ctx)
//	...
//	ev, err := cal.CreateEvent(ctx, timetree.EventValue{
//	    Attributes: timetree.NewEventAttributes("Lunch", timetree.CategorySchedule, false, start, end),
//	    Relationships: timetree.EventRelationships{Label: labels[0]},
//	})
//
// # Errors
//
// Validation failures are reported as *InvalidArgumentError or *InvalidStateError
// before any request is sent. Malformed responses yield *DecodeError and
// non-success responses yield *HTTPError. Match them with errors.As.
package timetree
