// Package timetree_tools provides MCP tools for TimeTree calendars.
//
// Read tools are always registered:
//   - timetree_list_calendars, timetree_get_calendar
//   - timetree_list_labels, timetree_list_members
//   - timetree_upcoming_events, timetree_get_event
//
// Write tools (timetree_create_event, timetree_update_event and
// timetree_delete_event) are registered only when the server is not
// read-only.
//
// Calendars are looked up through the server context, so the labels and
// members a calendar has fetched are reused by later tool calls.
package timetree_tools
