package timetree_tools

import (
	"context"
	"fmt"

	"github.com/AlekSi/pointer"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/timetree/internal/datetime"
	"github.com/teemow/timetree/internal/icalendar"
	"github.com/teemow/timetree/internal/logging"
	"github.com/teemow/timetree/internal/server"
	"github.com/teemow/timetree/internal/timetree"
	"github.com/teemow/timetree/internal/tools/batch"
	"github.com/teemow/timetree/internal/tools/common"
)

const (
	argTitle         = "title"
	argCategory      = "category"
	argAllDay        = "all_day"
	argStart         = "start"
	argEnd           = "end"
	argEndTimezone   = "end_timezone"
	argLabelID       = "label_id"
	argAttendeeIDs   = "attendee_ids"
	argDescription   = "description"
	argLocation      = "location"
	argURL           = "url"
	argDays          = "days"
	argFormat        = "format"
	timeArgHelp      = "RFC 3339 (converted to the event's zone), wall-clock 'YYYY-MM-DDTHH:MM:SS' / 'YYYY-MM-DD', or an English phrase like 'tomorrow at 10am', read in the event's zone"
	timezoneArgHelp  = "IANA zone of the event, e.g. 'Asia/Tokyo'"
	attendeesArgHelp = "Member ids (see timetree_list_members); an empty list removes all attendees"

	formatText = "text"
	formatICS  = "ics"
)

var timeParser = datetime.NewParser()

// eventFieldOptions are the arguments shared by the create and update tools.
func eventFieldOptions(required bool) []mcp.ToolOption {
	req := func(desc string) []mcp.PropertyOption {
		if required {
			return []mcp.PropertyOption{mcp.Required(), mcp.Description(desc)}
		}
		return []mcp.PropertyOption{mcp.Description(desc)}
	}

	return []mcp.ToolOption{
		mcp.WithString(argTitle, req("Event title")...),
		mcp.WithString(argCategory,
			mcp.Description("Event category: 'schedule' or 'keep' (default: schedule)"),
		),
		mcp.WithBoolean(argAllDay,
			mcp.Description("All-day event; the time of day of start and end is ignored"),
		),
		mcp.WithString(argStart, req("Start time: "+timeArgHelp)...),
		mcp.WithString(argEnd, req("End time: "+timeArgHelp)...),
		mcp.WithString(common.ArgTimezone,
			mcp.Description(timezoneArgHelp+". Applies to start and end."),
		),
		mcp.WithString(argEndTimezone,
			mcp.Description("Zone of the end time when it differs from timezone"),
		),
		mcp.WithString(argLabelID, req("Label ID (see timetree_list_labels)")...),
		mcp.WithArray(argAttendeeIDs,
			mcp.Description(attendeesArgHelp),
			mcp.WithStringItems(),
		),
		mcp.WithString(argDescription,
			mcp.Description("Event description; an empty string removes it"),
		),
		mcp.WithString(argLocation,
			mcp.Description("Event location; an empty string removes it"),
		),
		mcp.WithString(argURL,
			mcp.Description("Event URL; an empty string removes it"),
		),
	}
}

// RegisterEventTools registers event-related tools with the MCP server
func RegisterEventTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// Upcoming events tool (read-only, always available)
	upcomingTool := mcp.NewTool("timetree_upcoming_events",
		mcp.WithDescription("List events of a calendar starting within the next days"),
		mcp.WithString(common.ArgCalendarID,
			mcp.Required(),
			mcp.Description("Calendar ID"),
		),
		mcp.WithNumber(argDays,
			mcp.Description(fmt.Sprintf("Number of days to look ahead, %d to %d (default: %d)",
				timetree.MinUpcomingDays, timetree.MaxUpcomingDays, timetree.MinUpcomingDays)),
			mcp.Min(timetree.MinUpcomingDays),
			mcp.Max(timetree.MaxUpcomingDays),
		),
		mcp.WithString(common.ArgTimezone,
			mcp.Description("IANA zone the days are counted in (default: the server's zone)"),
		),
		mcp.WithString(argFormat,
			mcp.Description("Output format: 'text' (default) or 'ics' for an iCalendar document"),
			mcp.Enum(formatText, formatICS),
		),
	)

	s.AddTool(upcomingTool, common.InstrumentedToolHandler("timetree_upcoming_events", true, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpcomingEvents(ctx, request, sc)
		}))

	getEventTool := mcp.NewTool("timetree_get_event",
		mcp.WithDescription("Get a single event of a calendar"),
		mcp.WithString(common.ArgCalendarID,
			mcp.Required(),
			mcp.Description("Calendar ID"),
		),
		mcp.WithString(common.ArgEventID,
			mcp.Required(),
			mcp.Description("Event ID"),
		),
	)

	s.AddTool(getEventTool, common.InstrumentedToolHandler("timetree_get_event", true, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetEvent(ctx, request, sc)
		}))

	// Write tools (only available with !readOnly)
	if readOnly {
		return nil
	}

	createOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Create an event in a calendar"),
		mcp.WithString(common.ArgCalendarID,
			mcp.Required(),
			mcp.Description("Calendar ID"),
		),
	}, eventFieldOptions(true)...)
	createEventTool := mcp.NewTool("timetree_create_event", createOpts...)

	s.AddTool(createEventTool, common.InstrumentedToolHandler("timetree_create_event", false, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateEvent(ctx, request, sc)
		}))

	updateOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Update an event. Only the given fields change; changing the timezone keeps the wall-clock times."),
		mcp.WithString(common.ArgCalendarID,
			mcp.Required(),
			mcp.Description("Calendar ID"),
		),
		mcp.WithString(common.ArgEventID,
			mcp.Required(),
			mcp.Description("Event ID"),
		),
	}, eventFieldOptions(false)...)
	updateEventTool := mcp.NewTool("timetree_update_event", updateOpts...)

	s.AddTool(updateEventTool, common.InstrumentedToolHandler("timetree_update_event", false, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateEvent(ctx, request, sc)
		}))

	deleteEventTool := mcp.NewTool("timetree_delete_event",
		mcp.WithDescription("Delete one or more events from a calendar"),
		mcp.WithString(common.ArgCalendarID,
			mcp.Required(),
			mcp.Description("Calendar ID"),
		),
		mcp.WithString(common.ArgEventID,
			mcp.Required(),
			mcp.Description("Event ID (string) or array of event IDs to delete"),
		),
	)

	s.AddTool(deleteEventTool, common.InstrumentedToolHandler("timetree_delete_event", false, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteEvent(ctx, request, sc)
		}))

	return nil
}

func handleUpcomingEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	calendarID, err := common.RequiredString(args, common.ArgCalendarID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	days, err := common.OptionalInt(args, argDays, timetree.MinUpcomingDays)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	timezone := common.OptionalString(args, common.ArgTimezone)
	if timezone == "" {
		timezone = sc.Timezone()
	}

	format := common.OptionalString(args, argFormat)
	if format == "" {
		format = formatText
	}
	if format != formatText && format != formatICS {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported format %q, use %q or %q", format, formatText, formatICS)), nil
	}

	cal := sc.Calendar(calendarID)
	events, err := cal.UpcomingEvents(ctx, days, timezone)
	if err != nil {
		return common.ErrorResult("list upcoming events", err), nil
	}

	if format == formatText {
		return mcp.NewToolResultText(formatEvents(events)), nil
	}

	// Labels only add CATEGORIES, so the export goes ahead without them.
	labels, err := cal.Labels(ctx)
	if err != nil {
		logging.WithCalendar(sc.Logger(), calendarID).Warn("labels unavailable for export", logging.Err(err))
	}
	doc, err := icalendar.Build(events, icalendar.Options{Labels: labels})
	if err != nil {
		return common.ErrorResult("export upcoming events", err), nil
	}
	return mcp.NewToolResultText(doc.Serialize()), nil
}

func handleGetEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	calendarID, err := common.RequiredString(args, common.ArgCalendarID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	eventID, err := common.RequiredString(args, common.ArgEventID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ev, err := sc.Calendar(calendarID).GetEvent(ctx, eventID)
	if err != nil {
		return common.ErrorResult("get event", err), nil
	}

	return mcp.NewToolResultText(formatEvent(ev)), nil
}

// applyEventArgs copies the event fields present in args onto v. Times are
// parsed after the zones so they are read in the event's final zone.
func applyEventArgs(v *timetree.EventValue, args map[string]any) error {
	a := &v.Attributes

	if s, ok := args[argTitle].(string); ok {
		a.Title = s
	}
	if s := common.OptionalString(args, argCategory); s != "" {
		a.Category = s
	}
	a.AllDay = common.OptionalBool(args, argAllDay, a.AllDay)

	if tz := common.OptionalString(args, common.ArgTimezone); tz != "" {
		a.StartTimezone = tz
		a.EndTimezone = tz
	}
	if tz := common.OptionalString(args, argEndTimezone); tz != "" {
		a.EndTimezone = tz
	}

	if s := common.OptionalString(args, argStart); s != "" {
		t, err := timeParser.Parse(s, a.StartTimezone)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", argStart, err)
		}
		a.StartAt = t
	}
	if s := common.OptionalString(args, argEnd); s != "" {
		t, err := timeParser.Parse(s, a.EndTimezone)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", argEnd, err)
		}
		a.EndAt = t
	}

	if s := common.OptionalStringPtr(args, argDescription); s != nil {
		a.Description = pointer.ToStringOrNil(*s)
	}
	if s := common.OptionalStringPtr(args, argLocation); s != nil {
		a.Location = pointer.ToStringOrNil(*s)
	}
	if s := common.OptionalStringPtr(args, argURL); s != nil {
		a.URL = pointer.ToStringOrNil(*s)
	}

	if id := common.OptionalString(args, argLabelID); id != "" {
		v.Relationships.Label = timetree.Label{ID: id}
	}
	if _, ok := args[argAttendeeIDs]; ok {
		ids := common.StringList(args, argAttendeeIDs)
		attendees := make([]timetree.Member, 0, len(ids))
		for _, id := range ids {
			attendees = append(attendees, timetree.Member{ID: id})
		}
		v.Relationships.Attendees = attendees
	}

	return nil
}

func handleCreateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	calendarID, err := common.RequiredString(args, common.ArgCalendarID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	for _, name := range []string{argTitle, argStart, argEnd, argLabelID} {
		if _, err := common.RequiredString(args, name); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	value := timetree.EventValue{
		Attributes: timetree.EventAttributes{
			Category:      timetree.CategorySchedule,
			StartTimezone: sc.Timezone(),
			EndTimezone:   sc.Timezone(),
		},
	}
	if err := applyEventArgs(&value, args); err != nil {
		return common.ErrorResult("create event", err), nil
	}

	ev, err := sc.Calendar(calendarID).CreateEvent(ctx, value)
	if err != nil {
		return common.ErrorResult("create event", err), nil
	}

	return mcp.NewToolResultText("Event created successfully.\n\n" + formatEvent(ev)), nil
}

func handleUpdateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	calendarID, err := common.RequiredString(args, common.ArgCalendarID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	eventID, err := common.RequiredString(args, common.ArgEventID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ev, err := sc.Calendar(calendarID).GetEvent(ctx, eventID)
	if err != nil {
		return common.ErrorResult("get event", err), nil
	}
	if err := applyEventArgs(&ev.EventValue, args); err != nil {
		return common.ErrorResult("update event", err), nil
	}

	updated, err := ev.Update(ctx)
	if err != nil {
		return common.ErrorResult("update event", err), nil
	}

	return mcp.NewToolResultText("Event updated successfully.\n\n" + formatEvent(updated)), nil
}

func handleDeleteEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	calendarID, err := common.RequiredString(args, common.ArgCalendarID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	eventIDs, err := batch.ParseStringOrArray(args[common.ArgEventID], common.ArgEventID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cal := sc.Calendar(calendarID)
	deleteOne := func(ctx context.Context, eventID string) (string, error) {
		if err := cal.DeleteEvent(ctx, &timetree.Event{ID: eventID}); err != nil {
			return "", err
		}
		return fmt.Sprintf("Event %s deleted from calendar %s.", eventID, calendarID), nil
	}

	if len(eventIDs) == 1 {
		msg, err := deleteOne(ctx, eventIDs[0])
		if err != nil {
			return common.ErrorResult("delete event", err), nil
		}
		return mcp.NewToolResultText(msg), nil
	}

	results := batch.ProcessBatch(ctx, eventIDs, deleteOne)
	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}
