package types

import "fmt"

// RequestKind represents the kind of change a patient asks for
type RequestKind string

const (
	RequestKindAppointment RequestKind = "appointment"
	RequestKindMedication  RequestKind = "medication"
)

// AllRequestKinds returns all valid request kinds
func AllRequestKinds() []RequestKind {
	return []RequestKind{
		RequestKindAppointment,
		RequestKindMedication,
	}
}

// IsValid checks if the request kind is valid
func (k RequestKind) IsValid() bool {
	switch k {
	case RequestKindAppointment,
		RequestKindMedication:
		return true
	default:
		return false
	}
}

// Label returns a human readable label for the request kind
func (k RequestKind) Label() string {
	switch k {
	case RequestKindAppointment:
		return "Appointment Change"
	case RequestKindMedication:
		return "Medication Change"
	default:
		return string(k)
	}
}

// String returns the string representation of the request kind
func (k RequestKind) String() string {
	return string(k)
}

// ParseRequestKind parses a string into a RequestKind
func ParseRequestKind(s string) (RequestKind, error) {
	kind := RequestKind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid request kind: %s", s)
	}
	return kind, nil
}
