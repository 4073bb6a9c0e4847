package timetree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // zone data for hosts without a system zoneinfo

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// naiveLayouts are accepted for timestamps that carry no UTC offset.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// payload is an insertion-ordered JSON object used for request bodies.
type payload = orderedmap.OrderedMap[string, any]

func newPayload() *payload {
	return orderedmap.New[string, any]()
}

// wireObject is a JSON object whose members are decoded on demand.
type wireObject map[string]json.RawMessage

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func (o wireObject) present(key string) bool {
	raw, ok := o[key]
	return ok && !isNull(raw)
}

func (o wireObject) field(typ, key string, v any) error {
	if !o.present(key) {
		return &DecodeError{Type: typ, Field: key}
	}
	if err := json.Unmarshal(o[key], v); err != nil {
		return &DecodeError{Type: typ, Field: key, Err: err}
	}
	return nil
}

func (o wireObject) requireString(typ, key string) (string, error) {
	var s string
	err := o.field(typ, key, &s)
	return s, err
}

func (o wireObject) optionalString(typ, key string) (*string, error) {
	if !o.present(key) {
		return nil, nil
	}
	s, err := o.requireString(typ, key)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (o wireObject) requireBool(typ, key string) (bool, error) {
	var b bool
	err := o.field(typ, key, &b)
	return b, err
}

func (o wireObject) requireInt(typ, key string) (int, error) {
	var n int
	err := o.field(typ, key, &n)
	return n, err
}

func (o wireObject) requireObject(typ, key string) (wireObject, error) {
	var obj wireObject
	if err := o.field(typ, key, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func (o wireObject) optionalObject(typ, key string) (wireObject, error) {
	if !o.present(key) {
		return nil, nil
	}
	return o.requireObject(typ, key)
}

func (o wireObject) requireTime(typ, key string, loc *time.Location) (time.Time, error) {
	s, err := o.requireString(typ, key)
	if err != nil {
		return time.Time{}, err
	}
	t, err := parseTimestamp(s, loc)
	if err != nil {
		return time.Time{}, &DecodeError{Type: typ, Field: key, Err: err}
	}
	return t, nil
}

func (o wireObject) requireZone(typ, key string) (string, *time.Location, error) {
	name, err := o.requireString(typ, key)
	if err != nil {
		return "", nil, err
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return "", nil, &DecodeError{Type: typ, Field: key, Err: err}
	}
	return name, loc, nil
}

func decodeObject(raw []byte, typ string) (wireObject, error) {
	var obj wireObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, &DecodeError{Type: typ, Err: err}
	}
	if obj == nil {
		return nil, &DecodeError{Type: typ, Err: errors.New("expected an object, got null")}
	}
	return obj, nil
}

// resource is a decoded JSON:API resource object.
type resource struct {
	id            string
	attributes    wireObject // nil when the key is absent
	relationships wireObject
}

func decodeResource(raw []byte, typ string) (*resource, error) {
	obj, err := decodeObject(raw, typ)
	if err != nil {
		return nil, err
	}

	id, err := obj.requireString(typ, "id")
	if err != nil {
		return nil, err
	}

	if obj.present("type") {
		got, err := obj.requireString(typ, "type")
		if err != nil {
			return nil, err
		}
		if got != typ {
			return nil, &DecodeError{Type: typ, Field: "type", Err: fmt.Errorf("unexpected type %q", got)}
		}
	}

	attrs, err := obj.optionalObject(typ, "attributes")
	if err != nil {
		return nil, err
	}
	rels, err := obj.optionalObject(typ, "relationships")
	if err != nil {
		return nil, err
	}

	return &resource{id: id, attributes: attrs, relationships: rels}, nil
}

// decodeData returns the primary data of a response document.
func decodeData(body []byte, typ string) (json.RawMessage, error) {
	doc, err := decodeObject(body, typ)
	if err != nil {
		return nil, err
	}
	if !doc.present("data") {
		return nil, &DecodeError{Type: typ, Field: "data"}
	}
	return doc["data"], nil
}

// decodeDataList returns the elements of a collection document.
func decodeDataList(body []byte, typ string) ([]json.RawMessage, error) {
	raw, err := decodeData(body, typ)
	if err != nil {
		return nil, err
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &DecodeError{Type: typ, Field: "data", Err: err}
	}
	return items, nil
}

// relationshipData returns the "data" member of the named relationship.
func relationshipData(rels wireObject, key string) (json.RawMessage, error) {
	rel, err := rels.requireObject(TypeEvent, key)
	if err != nil {
		return nil, err
	}
	if !rel.present("data") {
		return nil, &DecodeError{Type: TypeEvent, Field: key}
	}
	return rel["data"], nil
}

func decodeLabel(raw []byte) (Label, error) {
	res, err := decodeResource(raw, TypeLabel)
	if err != nil {
		return Label{}, err
	}

	label := Label{ID: res.id}
	if res.attributes == nil {
		return label, nil
	}

	name, err := res.attributes.requireString(TypeLabel, "name")
	if err != nil {
		return Label{}, err
	}
	color, err := res.attributes.requireString(TypeLabel, "color")
	if err != nil {
		return Label{}, err
	}
	label.Attributes = &LabelAttributes{Name: name, Color: color}

	return label, nil
}

func decodeMember(raw []byte) (Member, error) {
	res, err := decodeResource(raw, TypeMember)
	if err != nil {
		return Member{}, err
	}

	member := Member{ID: res.id}
	if res.attributes == nil {
		return member, nil
	}

	attrs := &MemberAttributes{}
	if attrs.Name, err = res.attributes.requireString(TypeMember, "name"); err != nil {
		return Member{}, err
	}
	if attrs.Description, err = res.attributes.requireString(TypeMember, "description"); err != nil {
		return Member{}, err
	}
	if attrs.ImageURL, err = res.attributes.requireString(TypeMember, "image_url"); err != nil {
		return Member{}, err
	}
	member.Attributes = attrs

	return member, nil
}

func decodeEventAttributes(o wireObject) (EventAttributes, error) {
	var (
		a   EventAttributes
		err error
	)

	if a.Title, err = o.requireString(TypeEvent, "title"); err != nil {
		return a, err
	}
	if a.Category, err = o.requireString(TypeEvent, "category"); err != nil {
		return a, err
	}
	if a.AllDay, err = o.requireBool(TypeEvent, "all_day"); err != nil {
		return a, err
	}

	startZone, startLoc, err := o.requireZone(TypeEvent, "start_timezone")
	if err != nil {
		return a, err
	}
	endZone, endLoc, err := o.requireZone(TypeEvent, "end_timezone")
	if err != nil {
		return a, err
	}
	a.StartTimezone, a.EndTimezone = startZone, endZone

	// Wall-clock values in the event's own zones keep re-encoding lossless.
	start, err := o.requireTime(TypeEvent, "start_at", startLoc)
	if err != nil {
		return a, err
	}
	end, err := o.requireTime(TypeEvent, "end_at", endLoc)
	if err != nil {
		return a, err
	}
	a.StartAt, a.EndAt = start, end

	if a.Description, err = o.optionalString(TypeEvent, "description"); err != nil {
		return a, err
	}
	if a.Location, err = o.optionalString(TypeEvent, "location"); err != nil {
		return a, err
	}
	if a.URL, err = o.optionalString(TypeEvent, "url"); err != nil {
		return a, err
	}

	return a, nil
}

func decodeEventRelationships(rels wireObject) (EventRelationships, error) {
	var r EventRelationships

	raw, err := relationshipData(rels, "label")
	if err != nil {
		return r, err
	}
	if r.Label, err = decodeLabel(raw); err != nil {
		return r, err
	}

	raw, err = relationshipData(rels, "attendees")
	if err != nil {
		return r, err
	}
	var attendees []json.RawMessage
	if err := json.Unmarshal(raw, &attendees); err != nil {
		return r, &DecodeError{Type: TypeEvent, Field: "attendees", Err: err}
	}
	r.Attendees = make([]Member, 0, len(attendees))
	for _, item := range attendees {
		m, err := decodeMember(item)
		if err != nil {
			return r, err
		}
		r.Attendees = append(r.Attendees, m)
	}

	creator, err := rels.optionalObject(TypeEvent, "creator")
	if err != nil {
		return r, err
	}
	if creator != nil && creator.present("data") {
		m, err := decodeMember(creator["data"])
		if err != nil {
			return r, err
		}
		r.Creator = &m
	}

	return r, nil
}

func decodeEvent(raw []byte) (*Event, error) {
	res, err := decodeResource(raw, TypeEvent)
	if err != nil {
		return nil, err
	}
	value, err := decodeEventBody(res.attributes, res.relationships)
	if err != nil {
		return nil, err
	}
	return &Event{ID: res.id, EventValue: value}, nil
}

// decodeEventValue reads an event that has no id yet: a bare
// {type, attributes, relationships} object or a {"data": ...} write document.
func decodeEventValue(raw []byte) (EventValue, error) {
	obj, err := decodeObject(raw, TypeEvent)
	if err != nil {
		return EventValue{}, err
	}
	if !obj.present("attributes") && obj.present("data") {
		if obj, err = obj.requireObject(TypeEvent, "data"); err != nil {
			return EventValue{}, err
		}
	}
	if obj.present("type") {
		got, err := obj.requireString(TypeEvent, "type")
		if err != nil {
			return EventValue{}, err
		}
		if got != TypeEvent {
			return EventValue{}, &DecodeError{Type: TypeEvent, Field: "type", Err: fmt.Errorf("unexpected type %q", got)}
		}
	}

	attrs, err := obj.optionalObject(TypeEvent, "attributes")
	if err != nil {
		return EventValue{}, err
	}
	rels, err := obj.optionalObject(TypeEvent, "relationships")
	if err != nil {
		return EventValue{}, err
	}
	return decodeEventBody(attrs, rels)
}

func decodeEventBody(attributes, relationships wireObject) (EventValue, error) {
	if attributes == nil {
		return EventValue{}, &DecodeError{Type: TypeEvent, Field: "attributes"}
	}
	if relationships == nil {
		return EventValue{}, &DecodeError{Type: TypeEvent, Field: "relationships"}
	}

	attrs, err := decodeEventAttributes(attributes)
	if err != nil {
		return EventValue{}, err
	}
	rels, err := decodeEventRelationships(relationships)
	if err != nil {
		return EventValue{}, err
	}
	return EventValue{Attributes: attrs, Relationships: rels}, nil
}

func decodeCalendar(raw []byte) (*Calendar, error) {
	res, err := decodeResource(raw, TypeCalendar)
	if err != nil {
		return nil, err
	}
	o := res.attributes
	if o == nil {
		return nil, &DecodeError{Type: TypeCalendar, Field: "attributes"}
	}

	var a CalendarAttributes
	if a.Name, err = o.requireString(TypeCalendar, "name"); err != nil {
		return nil, err
	}
	createdAt, err := o.requireTime(TypeCalendar, "created_at", time.UTC)
	if err != nil {
		return nil, err
	}
	a.CreatedAt = createdAt.UTC()
	if a.Description, err = o.requireString(TypeCalendar, "description"); err != nil {
		return nil, err
	}
	if a.ImageURL, err = o.optionalString(TypeCalendar, "image_url"); err != nil {
		return nil, err
	}
	if a.Color, err = o.requireString(TypeCalendar, "color"); err != nil {
		return nil, err
	}
	if a.Order, err = o.requireInt(TypeCalendar, "order"); err != nil {
		return nil, err
	}

	return &Calendar{ID: res.id, Attributes: a}, nil
}

// parseTimestamp parses an ISO-8601 timestamp and returns it as wall-clock
// time in loc. A trailing "Z" is read as "+00:00"; values without an offset
// keep their fields and are read in loc.
func parseTimestamp(s string, loc *time.Location) (time.Time, error) {
	t, naive, err := scanTimestamp(s)
	if err != nil {
		return time.Time{}, err
	}
	if naive {
		return localizeFields(t, loc), nil
	}
	return t.In(loc), nil
}

// scanTimestamp parses s and reports whether it lacked an offset. Naive
// values come back in UTC with their fields untouched.
func scanTimestamp(s string) (time.Time, bool, error) {
	if strings.HasSuffix(s, "Z") {
		s = strings.TrimSuffix(s, "Z") + "+00:00"
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("unrecognized timestamp %q", s)
}

func localizeFields(t time.Time, loc *time.Location) time.Time {
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()
	return localize(year, month, day, hour, minute, sec, t.Nanosecond(), loc)
}

// formatTimestamp reads the date and clock fields of t as wall-clock time in
// zone and formats them with the offset localize picks. All-day values are
// truncated to midnight first. Offsets with seconds (historical local mean
// time) are rounded to the nearest minute.
func formatTimestamp(t time.Time, zone string, allDay bool) (string, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return "", err
	}

	year, month, day := t.Date()
	hour, minute, sec := t.Clock()
	nsec := t.Nanosecond()
	if allDay {
		hour, minute, sec, nsec = 0, 0, 0, 0
	}
	local := localize(year, month, day, hour, minute, sec, nsec, loc)

	var b strings.Builder
	fmt.Fprintf(&b, "%04d-%02d-%02dT%02d:%02d:%02d", year, int(month), day, hour, minute, sec)
	if micro := nsec / int(time.Microsecond); micro != 0 {
		fmt.Fprintf(&b, ".%06d", micro)
	}
	_, offset := local.Zone()
	b.WriteString(formatOffset(offset))
	return b.String(), nil
}

// localize returns the instant at which loc shows the given wall clock. The
// wall clock is never moved: an ambiguous time in a fall-back overlap takes
// the standard-time offset, and a time inside a spring-forward gap keeps its
// fields in a fixed zone carrying the standard-time offset.
func localize(year int, month time.Month, day, hour, minute, sec, nsec int, loc *time.Location) time.Time {
	wall := time.Date(year, month, day, hour, minute, sec, nsec, time.UTC)
	local := time.Date(year, month, day, hour, minute, sec, nsec, loc)

	type candidate struct {
		offset int
		dst    bool
	}
	var candidates []candidate
	for _, sample := range []time.Time{wall.Add(-24 * time.Hour), local, wall.Add(24 * time.Hour)} {
		at := sample.In(loc)
		_, off := at.Zone()
		c := candidate{offset: off, dst: at.IsDST()}
		known := false
		for _, k := range candidates {
			if k.offset == c.offset {
				known = true
				break
			}
		}
		if !known {
			candidates = append(candidates, c)
		}
	}

	var valid []candidate
	for _, c := range candidates {
		if _, off := wall.Add(-time.Duration(c.offset) * time.Second).In(loc).Zone(); off == c.offset {
			valid = append(valid, c)
		}
	}
	gap := len(valid) == 0
	if gap {
		valid = candidates
	}
	chosen := valid[0]
	for _, c := range valid {
		if !c.dst {
			chosen = c
			break
		}
	}

	if gap {
		name, _ := local.Zone()
		return time.Date(year, month, day, hour, minute, sec, nsec, time.FixedZone(name, chosen.offset))
	}
	return wall.Add(-time.Duration(chosen.offset) * time.Second).In(loc)
}

func formatOffset(seconds int) string {
	sign := '+'
	if seconds < 0 {
		sign = '-'
		seconds = -seconds
	}
	minutes := (seconds + 30) / 60
	return fmt.Sprintf("%c%02d:%02d", sign, minutes/60, minutes%60)
}

func zoneOrDefault(zone string) string {
	if zone == "" {
		return DefaultTimezone
	}
	return zone
}

func encodeEventAttributes(a EventAttributes) (*payload, error) {
	startZone := zoneOrDefault(a.StartTimezone)
	endZone := zoneOrDefault(a.EndTimezone)

	startAt, err := formatTimestamp(a.StartAt, startZone, a.AllDay)
	if err != nil {
		return nil, &InvalidArgumentError{Op: "encode event", Argument: "start_timezone", Reason: err.Error()}
	}
	endAt, err := formatTimestamp(a.EndAt, endZone, a.AllDay)
	if err != nil {
		return nil, &InvalidArgumentError{Op: "encode event", Argument: "end_timezone", Reason: err.Error()}
	}

	p := newPayload()
	p.Set("title", a.Title)
	p.Set("category", a.Category)
	p.Set("all_day", a.AllDay)
	p.Set("start_at", startAt)
	p.Set("end_at", endAt)
	p.Set("start_timezone", startZone)
	p.Set("end_timezone", endZone)
	if a.Description != nil {
		p.Set("description", *a.Description)
	}
	if a.Location != nil {
		p.Set("location", *a.Location)
	}
	if a.URL != nil {
		p.Set("url", *a.URL)
	}

	return p, nil
}

func withData(data any) *payload {
	p := newPayload()
	p.Set("data", data)
	return p
}

// encodeEventRelationships writes label and attendee references. The creator
// is assigned by the server and never sent.
func encodeEventRelationships(r EventRelationships) (*payload, error) {
	if r.Label.ID == "" {
		return nil, &InvalidArgumentError{Op: "encode event", Argument: "label", Reason: "an event needs a label id"}
	}

	attendees := make([]*payload, 0, len(r.Attendees))
	for _, m := range r.Attendees {
		attendees = append(attendees, m.Reference())
	}

	p := newPayload()
	p.Set("label", withData(r.Label.Reference()))
	p.Set("attendees", withData(attendees))
	return p, nil
}

// encodeEventValue builds the create/update request document.
func encodeEventValue(v EventValue) (*payload, error) {
	attrs, err := encodeEventAttributes(v.Attributes)
	if err != nil {
		return nil, err
	}
	rels, err := encodeEventRelationships(v.Relationships)
	if err != nil {
		return nil, err
	}

	data := newPayload()
	data.Set("attributes", attrs)
	data.Set("relationships", rels)

	return withData(data), nil
}
