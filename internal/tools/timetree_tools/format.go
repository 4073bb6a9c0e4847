package timetree_tools

import (
	"fmt"
	"strings"
	"time"

	"github.com/AlekSi/pointer"

	"github.com/teemow/timetree/internal/timetree"
)

func formatCalendar(cal *timetree.Calendar) string {
	var sb strings.Builder
	a := cal.Attributes
	fmt.Fprintf(&sb, "Calendar: %s\n", a.Name)
	fmt.Fprintf(&sb, "ID: %s\n", cal.ID)
	if a.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", a.Description)
	}
	fmt.Fprintf(&sb, "Color: %s\n", a.Color)
	fmt.Fprintf(&sb, "Order: %d\n", a.Order)
	if !a.CreatedAt.IsZero() {
		fmt.Fprintf(&sb, "Created: %s\n", a.CreatedAt.Format(time.RFC3339))
	}
	if url := pointer.GetString(a.ImageURL); url != "" {
		fmt.Fprintf(&sb, "Image: %s\n", url)
	}
	return sb.String()
}

func formatLabels(labels []timetree.Label) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Labels (%d):\n", len(labels))
	for _, l := range labels {
		if l.Attributes == nil {
			fmt.Fprintf(&sb, "  - %s\n", l.ID)
			continue
		}
		fmt.Fprintf(&sb, "  - %s (%s) [%s]\n", l.Attributes.Name, l.Attributes.Color, l.ID)
	}
	return sb.String()
}

func formatMembers(members []timetree.Member) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Members (%d):\n", len(members))
	for _, m := range members {
		if m.Attributes == nil {
			fmt.Fprintf(&sb, "  - %s\n", m.ID)
			continue
		}
		fmt.Fprintf(&sb, "  - %s [%s]", m.Attributes.Name, m.ID)
		if m.Attributes.Description != "" {
			fmt.Fprintf(&sb, " - %s", m.Attributes.Description)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatTime(t time.Time, allDay bool) string {
	if allDay {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339)
}

func formatEvent(ev *timetree.Event) string {
	var sb strings.Builder
	a := ev.Attributes
	fmt.Fprintf(&sb, "Event: %s\n", a.Title)
	fmt.Fprintf(&sb, "ID: %s\n", ev.ID)
	fmt.Fprintf(&sb, "Category: %s\n", a.Category)
	if a.AllDay {
		sb.WriteString("All day: yes\n")
	}
	fmt.Fprintf(&sb, "Start: %s (%s)\n", formatTime(a.StartAt, a.AllDay), a.StartTimezone)
	fmt.Fprintf(&sb, "End: %s (%s)\n", formatTime(a.EndAt, a.AllDay), a.EndTimezone)
	if v := pointer.GetString(a.Description); v != "" {
		fmt.Fprintf(&sb, "Description: %s\n", v)
	}
	if v := pointer.GetString(a.Location); v != "" {
		fmt.Fprintf(&sb, "Location: %s\n", v)
	}
	if v := pointer.GetString(a.URL); v != "" {
		fmt.Fprintf(&sb, "URL: %s\n", v)
	}

	rels := ev.Relationships
	fmt.Fprintf(&sb, "Label: %s\n", rels.Label.ID)
	if rels.Creator != nil {
		fmt.Fprintf(&sb, "Creator: %s\n", rels.Creator.ID)
	}
	if len(rels.Attendees) > 0 {
		fmt.Fprintf(&sb, "\nAttendees (%d):\n", len(rels.Attendees))
		for _, m := range rels.Attendees {
			fmt.Fprintf(&sb, "  - %s\n", m.ID)
		}
	}
	return sb.String()
}

func formatEvents(events []*timetree.Event) string {
	if len(events) == 0 {
		return "No upcoming events."
	}
	parts := make([]string, 0, len(events))
	for _, ev := range events {
		parts = append(parts, formatEvent(ev))
	}
	return fmt.Sprintf("Found %d events:\n\n%s", len(events), strings.Join(parts, "\n"))
}
