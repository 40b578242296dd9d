package usecase

import "errors"

// Sentinel errors for use case layer
var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrEmptyMessage    = errors.New("message is empty")
	ErrInvalidPatient  = errors.New("invalid patient")
)

// Fixed texts returned to the patient or the dashboard when a collaborator fails
const (
	ApologyReply        = "Sorry, I'm having trouble responding right now."
	UnsafeReplyFallback = "I'm sorry, but I can't assist with that request."
	SummaryFallback     = "Error generating summary."
	InsightsFallback    = "Error extracting medical insights."
)

// Context keys for error values
const (
	PatientIDKey = "patient_id"
)
