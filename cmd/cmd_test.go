package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/timetree/internal/server"
	"github.com/teemow/timetree/internal/timetree"
)

const calendarsResponse = `{"data": [{
	"id": "cal-1",
	"type": "calendar",
	"attributes": {
		"name": "Family",
		"description": "",
		"color": "#2ecc87",
		"order": 0,
		"image_url": null,
		"created_at": "2019-04-01T12:34:56.000Z"
	}
}]}`

const eventResponse = `{"data": {
	"id": "ev-1",
	"type": "event",
	"attributes": {
		"category": "schedule",
		"title": "Lunch",
		"all_day": false,
		"start_at": "2020-01-12T03:00:00.000Z",
		"start_timezone": "Asia/Tokyo",
		"end_at": "2020-01-12T04:00:00.000Z",
		"end_timezone": "Asia/Tokyo"
	},
	"relationships": {
		"label": {"data": {"id": "cal-1,1", "type": "label"}},
		"attendees": {"data": []}
	}
}}`

// run executes the CLI against an API served by handler.
func run(t *testing.T, handler http.Handler, args ...string) (string, error) {
	t.Helper()
	for _, key := range []string{"TIMETREE_ACCESS_TOKEN", "TIMETREE_BASE_URL", "TIMETREE_TIMEZONE"} {
		t.Setenv(key, "")
	}

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--token", "test-token", "--base-url", srv.URL}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCalendarsList(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendars", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, calendarsResponse)
	})

	out, err := run(t, handler, "calendars", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "cal-1")
	assert.Contains(t, out, "Family")
}

func TestEventsCreate(t *testing.T) {
	var sent map[string]any
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/calendars/cal-1/events", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, eventResponse)
	})

	out, err := run(t, handler, "events", "create", "cal-1",
		"--title", "Lunch",
		"--start", "2020-01-12T12:00:00",
		"--end", "2020-01-12T13:00:00",
		"--label", "cal-1,1",
		"--attendee", "cal-1,11",
		"--location", "Shibuya",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "ID:       ev-1")
	assert.Contains(t, out, "Start:    2020-01-12 12:00 (Asia/Tokyo)")

	data := sent["data"].(map[string]any)
	attrs := data["attributes"].(map[string]any)
	assert.Equal(t, "2020-01-12T12:00:00+09:00", attrs["start_at"])
	assert.Equal(t, "Shibuya", attrs["location"])
	assert.NotContains(t, attrs, "description")

	attendees := data["relationships"].(map[string]any)["attendees"].(map[string]any)["data"].([]any)
	require.Len(t, attendees, 1)
	assert.Equal(t, "cal-1,11", attendees[0].(map[string]any)["id"])
}

func TestEventsUpcoming_RejectsDaysBeforeRequest(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	})

	_, err := run(t, handler, "events", "upcoming", "cal-1", "--days", "8")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid days")
}

func TestEventsUpcoming_ICS(t *testing.T) {
	calendar := strings.Replace(strings.Replace(calendarsResponse, `{"data": [`, `{"data": `, 1), `}]}`, `}}`, 1)
	inner := strings.TrimSuffix(strings.TrimPrefix(eventResponse, `{"data": `), "}")
	routes := map[string]string{
		"/calendars/cal-1":                 calendar,
		"/calendars/cal-1/upcoming_events": `{"data": [` + inner + `]}`,
		"/calendars/cal-1/labels":          `{"data": [{"id": "cal-1,1", "type": "label", "attributes": {"name": "Work", "color": "#2ecc87"}}]}`,
	}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !assert.True(t, ok, "unexpected path %s", r.URL.Path) {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, body)
	})

	out, err := run(t, handler, "events", "upcoming", "cal-1", "--output", "ics")
	require.NoError(t, err)
	assert.Contains(t, out, "X-WR-CALNAME:Family")
	assert.Contains(t, out, "UID:ev-1")
	assert.Contains(t, out, "DTSTART:20200112T030000Z")
	assert.Contains(t, out, "CATEGORIES:Work")
}

func TestEventsCreate_Phrase(t *testing.T) {
	var sent map[string]any
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, eventResponse)
	})

	_, err := run(t, handler, "events", "create", "cal-1",
		"--title", "Standup",
		"--start", "tomorrow at 10am",
		"--end", "tomorrow at 11am",
		"--label", "cal-1,1",
	)
	require.NoError(t, err)

	attrs := sent["data"].(map[string]any)["attributes"].(map[string]any)
	assert.True(t, strings.HasSuffix(attrs["start_at"].(string), "T10:00:00+09:00"), attrs["start_at"])
	assert.True(t, strings.HasSuffix(attrs["end_at"].(string), "T11:00:00+09:00"), attrs["end_at"])
}

func TestEventsDelete_NotFound(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"type":"not_found"}`, http.StatusNotFound)
	})

	_, err := run(t, handler, "events", "delete", "cal-1", "ev-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestMissingToken(t *testing.T) {
	t.Setenv("TIMETREE_ACCESS_TOKEN", "")

	root := newRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"calendars", "list"})

	err := root.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access token is required")
}

func TestVersion(t *testing.T) {
	SetVersion("1.2.3")
	t.Cleanup(func() { SetVersion("dev") })

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "timetree version 1.2.3\n", out.String())
}

func TestGenerateDocs(t *testing.T) {
	markdown, err := generateDocs(context.Background())
	require.NoError(t, err)

	assert.Contains(t, markdown, "### timetree_list_calendars")
	assert.Contains(t, markdown, "### timetree_delete_event")
	assert.Contains(t, markdown, "- `calendar_id` (string, required)")

	read, write, found := strings.Cut(markdown, "## Write Tools")
	require.True(t, found)
	assert.Contains(t, read, "timetree_upcoming_events")
	assert.NotContains(t, read, "timetree_create_event")
	assert.Contains(t, write, "timetree_create_event")
}

func TestNewHTTPHandler_Health(t *testing.T) {
	sc, err := server.NewServerContext(context.Background(), timetree.New(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	mcpSrv := mcpserver.NewMCPServer("timetree", "test", mcpserver.WithToolCapabilities(true))
	require.NoError(t, registerAllTools(mcpSrv, sc, true))
	health := server.NewHealthChecker(sc)

	srv := httptest.NewServer(newHTTPHandler(mcpSrv, health, false))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	health.SetReady(false)
	resp, err = http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
