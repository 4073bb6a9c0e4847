package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/AlekSi/pointer"
	"github.com/spf13/cobra"

	"github.com/teemow/timetree/internal/datetime"
	"github.com/teemow/timetree/internal/icalendar"
	"github.com/teemow/timetree/internal/timetree"
)

func newEventsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "events",
		Aliases: []string{"event"},
		Short:   "List, read, create and delete events",
	}

	cmd.AddCommand(
		newUpcomingEventsCmd(opts),
		newGetEventCmd(opts),
		newCreateEventCmd(opts),
		newDeleteEventCmd(opts),
	)

	return cmd
}

func newUpcomingEventsCmd(opts *globalOptions) *cobra.Command {
	var (
		days   int
		output string
	)

	cmd := &cobra.Command{
		Use:   "upcoming <calendar-id>",
		Short: "List events starting within the next days",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "table" && output != "ics" {
				return fmt.Errorf("invalid --output %q: use table or ics", output)
			}
			client, cfg, err := opts.connect(cmd)
			if err != nil {
				return err
			}
			events, err := client.Calendar(args[0]).UpcomingEvents(cmd.Context(), days, cfg.Timezone)
			if err != nil {
				return err
			}
			if output == "ics" {
				return writeICS(cmd, client, args[0], events)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTART\tEND\tTITLE")
			for _, ev := range events {
				a := ev.Attributes
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", ev.ID, wallClock(a.StartAt, a.AllDay), wallClock(a.EndAt, a.AllDay), a.Title)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&days, "days", timetree.MinUpcomingDays,
		fmt.Sprintf("Number of days to look ahead (%d to %d)", timetree.MinUpcomingDays, timetree.MaxUpcomingDays))
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table or ics")

	return cmd
}

func newGetEventCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <calendar-id> <event-id>",
		Short: "Show an event",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := opts.connect(cmd)
			if err != nil {
				return err
			}
			ev, err := client.Calendar(args[0]).GetEvent(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			printEvent(cmd.OutOrStdout(), ev)
			return nil
		},
	}
}

func newCreateEventCmd(opts *globalOptions) *cobra.Command {
	var (
		title, category             string
		allDay                      bool
		start, end                  string
		endTimezone                 string
		labelID                     string
		attendees                   []string
		description, location, link string
	)

	cmd := &cobra.Command{
		Use:   "create <calendar-id>",
		Short: "Create an event",
		Long: `Create an event in a calendar.

--start and --end take wall-clock times ("2024-05-01T12:00:00", "2024-05-01")
read in --timezone, RFC 3339 timestamps which are converted to it, or English
phrases such as "tomorrow at 10am" or "next friday 18:30".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := opts.connect(cmd)
			if err != nil {
				return err
			}

			startZone := cfg.Timezone
			endZone := startZone
			if endTimezone != "" {
				endZone = endTimezone
			}
			parser := datetime.NewParser()
			startAt, err := parser.Parse(start, startZone)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			endAt, err := parser.Parse(end, endZone)
			if err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}

			attrs := timetree.NewEventAttributes(title, category, allDay, startAt, endAt)
			attrs.StartTimezone = startZone
			attrs.EndTimezone = endZone
			attrs.Description = pointer.ToStringOrNil(description)
			attrs.Location = pointer.ToStringOrNil(location)
			attrs.URL = pointer.ToStringOrNil(link)

			value := timetree.EventValue{
				Attributes: attrs,
				Relationships: timetree.EventRelationships{
					Label: timetree.Label{ID: labelID},
				},
			}
			for _, id := range attendees {
				value.Relationships.Attendees = append(value.Relationships.Attendees, timetree.Member{ID: id})
			}

			ev, err := client.Calendar(args[0]).CreateEvent(cmd.Context(), value)
			if err != nil {
				return err
			}
			printEvent(cmd.OutOrStdout(), ev)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&title, "title", "", "Event title")
	f.StringVar(&category, "category", timetree.CategorySchedule, "Event category: schedule or keep")
	f.BoolVar(&allDay, "all-day", false, "Create an all-day event")
	f.StringVar(&start, "start", "", "Start time")
	f.StringVar(&end, "end", "", "End time")
	f.StringVar(&endTimezone, "end-timezone", "", "Zone of the end time when it differs from --timezone")
	f.StringVar(&labelID, "label", "", "Label ID (see 'calendars labels')")
	// Member ids contain commas, so each id is passed with its own flag.
	f.StringArrayVar(&attendees, "attendee", nil, "Attendee member ID, repeatable (see 'calendars members')")
	f.StringVar(&description, "description", "", "Event description")
	f.StringVar(&location, "location", "", "Event location")
	f.StringVar(&link, "url", "", "Event URL")
	for _, name := range []string{"title", "start", "end", "label"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func newDeleteEventCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <calendar-id> <event-id>",
		Short: "Delete an event",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := opts.connect(cmd)
			if err != nil {
				return err
			}
			if err := client.Calendar(args[0]).DeleteEvent(cmd.Context(), &timetree.Event{ID: args[1]}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted event %s\n", args[1])
			return nil
		},
	}
}

// writeICS prints events as an iCalendar document named after the calendar
// with label names as categories.
func writeICS(cmd *cobra.Command, client *timetree.Client, calendarID string, events []*timetree.Event) error {
	cal, err := client.GetCalendar(cmd.Context(), calendarID)
	if err != nil {
		return err
	}
	labels, err := cal.Labels(cmd.Context())
	if err != nil {
		return err
	}
	return icalendar.Write(cmd.OutOrStdout(), events, icalendar.Options{
		Name:   cal.Attributes.Name,
		Labels: labels,
	})
}

func wallClock(t time.Time, allDay bool) string {
	if allDay {
		return t.Format(time.DateOnly)
	}
	return t.Format("2006-01-02 15:04")
}

func printEvent(out io.Writer, ev *timetree.Event) {
	a := ev.Attributes
	fmt.Fprintf(out, "ID:       %s\n", ev.ID)
	fmt.Fprintf(out, "Title:    %s\n", a.Title)
	fmt.Fprintf(out, "Category: %s\n", a.Category)
	fmt.Fprintf(out, "Start:    %s (%s)\n", wallClock(a.StartAt, a.AllDay), a.StartTimezone)
	fmt.Fprintf(out, "End:      %s (%s)\n", wallClock(a.EndAt, a.AllDay), a.EndTimezone)
	if a.AllDay {
		fmt.Fprintln(out, "All day:  yes")
	}
	if v := pointer.GetString(a.Location); v != "" {
		fmt.Fprintf(out, "Location: %s\n", v)
	}
	if v := pointer.GetString(a.URL); v != "" {
		fmt.Fprintf(out, "URL:      %s\n", v)
	}
	fmt.Fprintf(out, "Label:    %s\n", ev.Relationships.Label.ID)
	for _, m := range ev.Relationships.Attendees {
		fmt.Fprintf(out, "Attendee: %s\n", m.ID)
	}
	if v := pointer.GetString(a.Description); v != "" {
		fmt.Fprintf(out, "\n%s\n", v)
	}
}
