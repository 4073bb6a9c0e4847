package timetree

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"

	"github.com/teemow/timetree/internal/transport"
)

const calendarJSON = `{
	"id": "cal-1",
	"type": "calendar",
	"attributes": {
		"name": "Family",
		"description": "Shared family calendar",
		"color": "#2ecc87",
		"order": 2,
		"image_url": null,
		"created_at": "2019-04-01T12:34:56.000Z"
	},
	"relationships": {
		"labels": {"data": [{"id": "cal-1,1", "type": "label"}]},
		"members": {"data": [{"id": "cal-1,11", "type": "user"}]}
	}
}`

const eventJSON = `{
	"id": "ev-1",
	"type": "event",
	"attributes": {
		"category": "schedule",
		"title": "Lunch",
		"all_day": false,
		"start_at": "2020-01-12T00:54:32.000Z",
		"start_timezone": "Asia/Tokyo",
		"end_at": "2020-01-12T01:54:32.000Z",
		"end_timezone": "Asia/Tokyo",
		"recurrence": null,
		"description": "Ramen",
		"location": null,
		"url": null,
		"updated_at": "2020-01-10T08:00:00.000Z",
		"created_at": "2020-01-10T08:00:00.000Z"
	},
	"relationships": {
		"creator": {"data": {"id": "cal-1,11", "type": "user"}},
		"label": {"data": {"id": "cal-1,1", "type": "label"}},
		"attendees": {"data": [
			{"id": "cal-1,12", "type": "user"},
			{"id": "cal-1,11", "type": "user"}
		]}
	}
}`

const labelsJSON = `{"data": [
	{"id": "cal-1,1", "type": "label", "attributes": {"name": "Work", "color": "#2ecc87"}},
	{"id": "cal-1,2", "type": "label", "attributes": {"name": "Private", "color": "#3498db"}}
]}`

const membersJSON = `{"data": [
	{"id": "cal-1,11", "type": "user", "attributes": {"name": "Hanako", "description": "", "image_url": "https://example.com/h.png"}}
]}`

func document(data string) []byte {
	return []byte(`{"data": ` + data + `}`)
}

// recordedRequest is one call seen by stubTransport.
type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
}

// stubTransport answers requests from a route table and counts them.
type stubTransport struct {
	mu       sync.Mutex
	requests []recordedRequest
	routes   map[string]func() (*transport.Response, error)
}

func newStubTransport() *stubTransport {
	return &stubTransport{routes: make(map[string]func() (*transport.Response, error))}
}

// on registers a handler for "METHOD /path".
func (s *stubTransport) on(method, path string, fn func() (*transport.Response, error)) {
	s.routes[method+" "+path] = fn
}

// reply registers a fixed 200 answer.
func (s *stubTransport) reply(method, path string, body []byte) {
	s.on(method, path, func() (*transport.Response, error) {
		return &transport.Response{StatusCode: http.StatusOK, Body: body}, nil
	})
}

func (s *stubTransport) Request(_ context.Context, method, path string, query url.Values, body any) (*transport.Response, error) {
	var raw []byte
	if body != nil {
		var err error
		if raw, err = json.Marshal(body); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	s.requests = append(s.requests, recordedRequest{Method: method, Path: path, Query: query, Body: raw})
	fn, ok := s.routes[method+" "+path]
	s.mu.Unlock()

	if !ok {
		return nil, &transport.HTTPError{StatusCode: http.StatusNotFound, Method: method, URL: path, Body: "no route"}
	}
	return fn()
}

func (s *stubTransport) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *stubTransport) last() recordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		panic("no requests recorded")
	}
	return s.requests[len(s.requests)-1]
}
