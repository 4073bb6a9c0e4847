// Package icalendar renders TimeTree events as an iCalendar (RFC 5545)
// document so they can be imported into other calendar applications.
package icalendar

import (
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/teemow/timetree/internal/timetree"
)

// ProductID identifies this program in the PRODID property.
const ProductID = "-//teemow//timetree//EN"

// Options controls the calendar-level properties of an export.
type Options struct {
	// Name becomes X-WR-CALNAME when set.
	Name string
	// Labels resolve an event's label id to a CATEGORIES value.
	Labels []timetree.Label
	// Stamp is written as DTSTAMP; zero means time.Now.
	Stamp time.Time
}

// Write encodes events as a VCALENDAR and writes it to w.
func Write(w io.Writer, events []*timetree.Event, opts Options) error {
	cal, err := Build(events, opts)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, cal.Serialize())
	return err
}

// Build returns the VCALENDAR for events.
func Build(events []*timetree.Event, opts Options) (*ics.Calendar, error) {
	stamp := opts.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}
	labels := make(map[string]string, len(opts.Labels))
	for _, l := range opts.Labels {
		if l.Attributes != nil {
			labels[l.ID] = l.Attributes.Name
		}
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(ProductID)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}

	for _, ev := range events {
		if ev == nil || ev.ID == "" {
			continue
		}
		if err := addEvent(cal, ev, labels, stamp); err != nil {
			return nil, fmt.Errorf("failed to export event %s: %w", ev.ID, err)
		}
	}
	return cal, nil
}

func addEvent(cal *ics.Calendar, ev *timetree.Event, labels map[string]string, stamp time.Time) error {
	a := ev.Attributes
	start, err := a.StartInstant()
	if err != nil {
		return err
	}
	end, err := a.EndInstant()
	if err != nil {
		return err
	}

	vev := cal.AddEvent(ev.ID)
	vev.SetDtStampTime(stamp)
	vev.SetSummary(a.Title)
	if a.AllDay {
		// DTEND of a date-valued event is exclusive while TimeTree's end day is inclusive.
		vev.SetAllDayStartAt(start)
		vev.SetAllDayEndAt(end.AddDate(0, 0, 1))
	} else {
		vev.SetStartAt(start)
		vev.SetEndAt(end)
	}
	if a.Description != nil {
		vev.SetDescription(*a.Description)
	}
	if a.Location != nil {
		vev.SetLocation(*a.Location)
	}
	if a.URL != nil {
		vev.SetURL(*a.URL)
	}
	if name, ok := labels[ev.Relationships.Label.ID]; ok {
		vev.AddProperty(ics.ComponentPropertyCategories, name)
	}
	return nil
}
