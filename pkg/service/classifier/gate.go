package classifier

import "strings"

// Gate reports whether message may be answered. A message is rejected when it
// contains a disallowed keyword, even if it also contains a health keyword,
// and when it contains no health keyword at all.
func (l *Lexicon) Gate(message string) bool {
	lowered := strings.ToLower(message)
	if containsAny(lowered, l.Disallowed) {
		return false
	}
	return containsAny(lowered, l.Health)
}

// IsReplyAllowed reports whether a generated reply is free of disallowed keywords
func (l *Lexicon) IsReplyAllowed(reply string) bool {
	return !containsAny(strings.ToLower(reply), l.ReplyDisallowed)
}

// IsAppointmentRequest reports whether message asks to book or change an appointment
func (l *Lexicon) IsAppointmentRequest(message string) bool {
	lowered := strings.ToLower(message)
	return strings.Contains(lowered, l.AppointmentWord) && containsAny(lowered, l.AppointmentActions)
}

// IsTreatmentRequest reports whether message asks about a medication or treatment change
func (l *Lexicon) IsTreatmentRequest(message string) bool {
	return containsAny(strings.ToLower(message), l.Treatment)
}
