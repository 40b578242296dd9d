package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// PatientID is a UUID-based identifier for Patient
type PatientID string

// NewPatientID generates a new UUID v4 PatientID
func NewPatientID() PatientID {
	return PatientID(uuid.New().String())
}

// String returns the string representation of PatientID
func (id PatientID) String() string {
	return string(id)
}

// Patient is the profile of the person chatting with the assistant
type Patient struct {
	ID                PatientID `json:"id"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	BirthDate         time.Time `json:"birth_date"`
	Phone             string    `json:"phone"`
	Email             string    `json:"email"`
	MedicalCondition  string    `json:"medical_condition"`
	MedicationRegimen string    `json:"medication_regimen"`
	LastAppointment   time.Time `json:"last_appointment"`
	NextAppointment   time.Time `json:"next_appointment"`
	DoctorName        string    `json:"doctor_name"`
	LabTests          string    `json:"lab_tests,omitempty"`
	VitalSigns        string    `json:"vital_signs,omitempty"`
	Weight            *float64  `json:"weight,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// PatientKey identifies a patient by name and birth date. Two records with the
// same key are the same person.
type PatientKey struct {
	FirstName string
	LastName  string
	BirthDate string // 2006-01-02
}

// Key returns the uniqueness key of the patient
func (p *Patient) Key() PatientKey {
	return PatientKey{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		BirthDate: p.BirthDate.Format(time.DateOnly),
	}
}

// FullName returns "First Last". It is also the patient node name in the
// knowledge graph.
func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Validate checks the required profile fields
func (p *Patient) Validate() error {
	if strings.TrimSpace(p.FirstName) == "" {
		return goerr.Wrap(ErrMissingRequired, "patient first name is required", goerr.V(FieldKey, "first_name"))
	}
	if strings.TrimSpace(p.LastName) == "" {
		return goerr.Wrap(ErrMissingRequired, "patient last name is required", goerr.V(FieldKey, "last_name"))
	}
	if p.BirthDate.IsZero() {
		return goerr.Wrap(ErrMissingRequired, "patient birth date is required",
			goerr.V(FieldKey, "birth_date"),
			goerr.V("name", p.FullName()))
	}
	if p.Weight != nil && *p.Weight < 0 {
		return goerr.Wrap(ErrInvalidValue, "patient weight must not be negative",
			goerr.V(FieldKey, "weight"),
			goerr.V(ValueKey, *p.Weight))
	}
	return nil
}

// Copy returns a deep copy of the patient
func (p *Patient) Copy() *Patient {
	if p == nil {
		return nil
	}
	c := *p
	if p.Weight != nil {
		w := *p.Weight
		c.Weight = &w
	}
	return &c
}
