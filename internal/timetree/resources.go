package timetree

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

func reference(id, typ string) *payload {
	p := orderedmap.New[string, any]()
	p.Set("id", id)
	p.Set("type", typ)
	return p
}

// Label is a calendar label. Attributes is nil for an id-only reference.
type Label struct {
	ID         string
	Attributes *LabelAttributes
}

// Type returns the wire discriminator
func (l Label) Type() string {
	return TypeLabel
}

// Equal reports whether both labels have the same id. Attributes are ignored.
func (l Label) Equal(other Label) bool {
	return l.ID == other.ID
}

// Reference returns the {id, type} relationship object.
func (l Label) Reference() *orderedmap.OrderedMap[string, any] {
	return reference(l.ID, TypeLabel)
}

// Full returns the {id, type, attributes} object.
func (l Label) Full() (*orderedmap.OrderedMap[string, any], error) {
	if l.Attributes == nil {
		return nil, &MissingAttributesError{Type: TypeLabel, ID: l.ID}
	}

	attrs := orderedmap.New[string, any]()
	attrs.Set("name", l.Attributes.Name)
	attrs.Set("color", l.Attributes.Color)

	p := l.Reference()
	p.Set("attributes", attrs)
	return p, nil
}

// Member is a calendar member. Its wire type is "user".
type Member struct {
	ID         string
	Attributes *MemberAttributes
}

// Type returns the wire discriminator
func (m Member) Type() string {
	return TypeMember
}

// Equal reports whether both members have the same id. Attributes are ignored.
func (m Member) Equal(other Member) bool {
	return m.ID == other.ID
}

// Reference returns the {id, type} relationship object.
func (m Member) Reference() *orderedmap.OrderedMap[string, any] {
	return reference(m.ID, TypeMember)
}

// Full returns the {id, type, attributes} object.
func (m Member) Full() (*orderedmap.OrderedMap[string, any], error) {
	if m.Attributes == nil {
		return nil, &MissingAttributesError{Type: TypeMember, ID: m.ID}
	}

	attrs := orderedmap.New[string, any]()
	attrs.Set("name", m.Attributes.Name)
	attrs.Set("description", m.Attributes.Description)
	attrs.Set("image_url", m.Attributes.ImageURL)

	p := m.Reference()
	p.Set("attributes", attrs)
	return p, nil
}

// EventRelationships references the label, attendees and creator of an event.
// Attendee order is kept as received.
type EventRelationships struct {
	Label     Label
	Attendees []Member
	Creator   *Member // set by the server; never sent
}

// EventValue is the writable shape of an event, used to create one.
type EventValue struct {
	Attributes    EventAttributes
	Relationships EventRelationships
}

// Payload returns the request document sent when creating or updating the event.
func (v EventValue) Payload() (*orderedmap.OrderedMap[string, any], error) {
	return encodeEventValue(v)
}
