package icalendar

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/AlekSi/pointer"
	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/timetree/internal/timetree"
)

func event(id string, allDay bool, start, end time.Time) *timetree.Event {
	attrs := timetree.NewEventAttributes("Event "+id, timetree.CategorySchedule, allDay, start, end)
	return &timetree.Event{
		ID: id,
		EventValue: timetree.EventValue{
			Attributes: attrs,
			Relationships: timetree.EventRelationships{
				Label: timetree.Label{ID: "cal-1,1"},
			},
		},
	}
}

func TestWrite(t *testing.T) {
	lunch := event("ev-1", false,
		time.Date(2020, 1, 12, 12, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 12, 13, 0, 0, 0, time.UTC))
	lunch.Attributes.Location = pointer.ToString("Shibuya")
	lunch.Attributes.URL = pointer.ToString("https://example.com/lunch")
	trip := event("ev-2", true,
		time.Date(2020, 1, 13, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 14, 0, 0, 0, 0, time.UTC))

	var buf bytes.Buffer
	err := Write(&buf, []*timetree.Event{lunch, trip, {}}, Options{
		Name:   "Family",
		Labels: []timetree.Label{{ID: "cal-1,1", Attributes: &timetree.LabelAttributes{Name: "Work", Color: "#2ecc87"}}},
		Stamp:  time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "X-WR-CALNAME:Family")
	assert.Contains(t, buf.String(), "PRODID:"+ProductID)

	cal, err := ics.ParseCalendar(strings.NewReader(buf.String()))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 2, "events without an id are skipped")

	first := events[0]
	assert.Equal(t, "ev-1", first.Id())
	assert.Equal(t, "Event ev-1", first.GetProperty(ics.ComponentPropertySummary).Value)
	assert.Equal(t, "20200112T030000Z", first.GetProperty(ics.ComponentPropertyDtStart).Value)
	assert.Equal(t, "20200112T040000Z", first.GetProperty(ics.ComponentPropertyDtEnd).Value)
	assert.Equal(t, "Shibuya", first.GetProperty(ics.ComponentPropertyLocation).Value)
	assert.Equal(t, "Work", first.GetProperty(ics.ComponentPropertyCategories).Value)
	assert.Nil(t, first.GetProperty(ics.ComponentPropertyDescription))

	second := events[1]
	assert.Equal(t, "20200113", second.GetProperty(ics.ComponentPropertyDtStart).Value)
	assert.Equal(t, "20200115", second.GetProperty(ics.ComponentPropertyDtEnd).Value)
}

func TestBuild_UnknownZone(t *testing.T) {
	ev := event("ev-1", false, time.Now(), time.Now())
	ev.Attributes.StartTimezone = "Mars/Olympus"

	_, err := Build([]*timetree.Event{ev}, Options{})
	var argErr *timetree.InvalidArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Contains(t, err.Error(), "ev-1")
}
