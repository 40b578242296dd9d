package model

import "time"

type requestedTimeKind int

const (
	requestedTimeUnspecified requestedTimeKind = iota
	requestedTimeDate
	requestedTimeDateTime
)

// RequestedTime is the appointment slot a patient asked for. It is either
// unspecified, a date, or a date with a clock time.
type RequestedTime struct {
	kind  requestedTimeKind
	value time.Time
}

// UnspecifiedTime returns a RequestedTime with no date
func UnspecifiedTime() RequestedTime {
	return RequestedTime{}
}

// RequestedDate returns a date-only RequestedTime. The clock part of d is dropped.
func RequestedDate(d time.Time) RequestedTime {
	y, m, day := d.Date()
	return RequestedTime{
		kind:  requestedTimeDate,
		value: time.Date(y, m, day, 0, 0, 0, 0, d.Location()),
	}
}

// RequestedDateTime returns a RequestedTime with both date and clock time
func RequestedDateTime(t time.Time) RequestedTime {
	return RequestedTime{
		kind:  requestedTimeDateTime,
		value: t.Truncate(time.Minute),
	}
}

// IsSpecified reports whether a date was resolved
func (r RequestedTime) IsSpecified() bool {
	return r.kind != requestedTimeUnspecified
}

// HasClock reports whether a clock time was resolved
func (r RequestedTime) HasClock() bool {
	return r.kind == requestedTimeDateTime
}

// Time returns the resolved value and whether one exists
func (r RequestedTime) Time() (time.Time, bool) {
	return r.value, r.IsSpecified()
}

// String renders "2006-01-02 15:04", "2006-01-02" or "unspecified time"
func (r RequestedTime) String() string {
	switch r.kind {
	case requestedTimeDateTime:
		return r.value.Format("2006-01-02 15:04")
	case requestedTimeDate:
		return r.value.Format(time.DateOnly)
	default:
		return "unspecified time"
	}
}

// MarshalText implements encoding.TextMarshaler
func (r RequestedTime) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}
