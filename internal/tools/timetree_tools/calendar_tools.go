package timetree_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/timetree/internal/server"
	"github.com/teemow/timetree/internal/tools/common"
)

// RegisterCalendarTools registers the calendar, label and member tools
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listCalendarsTool := mcp.NewTool("timetree_list_calendars",
		mcp.WithDescription("List all TimeTree calendars accessible with the configured token"),
	)

	s.AddTool(listCalendarsTool, common.InstrumentedToolHandler("timetree_list_calendars", true, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListCalendars(ctx, request, sc)
		}))

	getCalendarTool := mcp.NewTool("timetree_get_calendar",
		mcp.WithDescription("Get a TimeTree calendar by id"),
		mcp.WithString(common.ArgCalendarID,
			mcp.Required(),
			mcp.Description("Calendar ID"),
		),
	)

	s.AddTool(getCalendarTool, common.InstrumentedToolHandler("timetree_get_calendar", true, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetCalendar(ctx, request, sc)
		}))

	listLabelsTool := mcp.NewTool("timetree_list_labels",
		mcp.WithDescription("List the labels of a calendar. Every event needs one of these label ids."),
		mcp.WithString(common.ArgCalendarID,
			mcp.Required(),
			mcp.Description("Calendar ID"),
		),
	)

	s.AddTool(listLabelsTool, common.InstrumentedToolHandler("timetree_list_labels", true, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListLabels(ctx, request, sc)
		}))

	listMembersTool := mcp.NewTool("timetree_list_members",
		mcp.WithDescription("List the members of a calendar. Member ids can be used as event attendees."),
		mcp.WithString(common.ArgCalendarID,
			mcp.Required(),
			mcp.Description("Calendar ID"),
		),
	)

	s.AddTool(listMembersTool, common.InstrumentedToolHandler("timetree_list_members", true, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListMembers(ctx, request, sc)
		}))

	return nil
}

func handleListCalendars(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	calendars, err := sc.Client().ListCalendars(ctx)
	if err != nil {
		return common.ErrorResult("list calendars", err), nil
	}
	sc.RememberCalendars(calendars...)

	if len(calendars) == 0 {
		return mcp.NewToolResultText("No calendars found."), nil
	}

	parts := make([]string, 0, len(calendars))
	for _, cal := range calendars {
		parts = append(parts, formatCalendar(cal))
	}
	return mcp.NewToolResultText(fmt.Sprintf("Found %d calendars:\n\n%s", len(calendars), strings.Join(parts, "\n"))), nil
}

func handleGetCalendar(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	calendarID, err := common.RequiredString(request.GetArguments(), common.ArgCalendarID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cal, err := sc.Client().GetCalendar(ctx, calendarID)
	if err != nil {
		return common.ErrorResult("get calendar", err), nil
	}
	sc.RememberCalendars(cal)

	return mcp.NewToolResultText(formatCalendar(cal)), nil
}

func handleListLabels(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	calendarID, err := common.RequiredString(request.GetArguments(), common.ArgCalendarID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	labels, err := sc.Calendar(calendarID).Labels(ctx)
	if err != nil {
		return common.ErrorResult("list labels", err), nil
	}

	return mcp.NewToolResultText(formatLabels(labels)), nil
}

func handleListMembers(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	calendarID, err := common.RequiredString(request.GetArguments(), common.ArgCalendarID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	members, err := sc.Calendar(calendarID).Members(ctx)
	if err != nil {
		return common.ErrorResult("list members", err), nil
	}

	return mcp.NewToolResultText(formatMembers(members)), nil
}
