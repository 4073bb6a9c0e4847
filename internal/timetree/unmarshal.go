package timetree

// UnmarshalJSON decodes a label resource object. Attributes stay nil for an
// id-only reference.
func (l *Label) UnmarshalJSON(data []byte) error {
	label, err := decodeLabel(data)
	if err != nil {
		return err
	}
	*l = label
	return nil
}

// UnmarshalJSON decodes a member ("user") resource object.
func (m *Member) UnmarshalJSON(data []byte) error {
	member, err := decodeMember(data)
	if err != nil {
		return err
	}
	*m = member
	return nil
}

// UnmarshalJSON decodes an event without an id, either as a bare resource
// object or as the {"data": ...} document Payload produces. An id, if
// present, is ignored.
func (v *EventValue) UnmarshalJSON(data []byte) error {
	value, err := decodeEventValue(data)
	if err != nil {
		return err
	}
	*v = value
	return nil
}

// UnmarshalJSON decodes an event resource object, which must carry an id. The
// calendar an event is bound to is kept.
func (e *Event) UnmarshalJSON(data []byte) error {
	ev, err := decodeEvent(data)
	if err != nil {
		return err
	}
	e.ID = ev.ID
	e.EventValue = ev.EventValue
	return nil
}

// DecodeCalendar decodes a calendar resource object. The result is not bound
// to a client, so its Labels, Members and event operations need a calendar
// obtained from Client instead.
func DecodeCalendar(data []byte) (*Calendar, error) {
	return decodeCalendar(data)
}
