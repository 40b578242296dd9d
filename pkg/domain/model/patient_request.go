package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/healthbot/pkg/domain/types"
)

// PatientRequestID is a UUID v7 identifier for PatientRequest
type PatientRequestID string

// NewPatientRequestID generates a new time ordered PatientRequestID
func NewPatientRequestID() PatientRequestID {
	return PatientRequestID(uuid.Must(uuid.NewV7()).String())
}

// String returns the string representation of PatientRequestID
func (id PatientRequestID) String() string {
	return string(id)
}

// PatientRequest is an appointment or medication change asked for in chat.
// It is recorded once and never updated.
type PatientRequest struct {
	ID        PatientRequestID  `json:"id"`
	PatientID PatientID         `json:"patient_id"`
	Kind      types.RequestKind `json:"kind"`
	Details   string            `json:"details"`
	CreatedAt time.Time         `json:"created_at"`
}
