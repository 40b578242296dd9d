package interfaces

import (
	"context"

	"github.com/secmon-lab/healthbot/pkg/domain/model"
)

// PatientRepository defines the interface for Patient data access
type PatientRepository interface {
	// Put creates or updates a patient. A patient with the same PatientKey is
	// updated in place and keeps its ID and CreatedAt. Returns the stored patient.
	Put(ctx context.Context, patient *model.Patient) (*model.Patient, error)

	// Get retrieves a patient by ID. Returns ErrNotFound if missing.
	Get(ctx context.Context, id model.PatientID) (*model.Patient, error)

	// First retrieves the earliest created patient. Returns ErrNotFound if
	// there is no patient.
	First(ctx context.Context) (*model.Patient, error)

	// List retrieves all patients ordered by CreatedAt ascending
	List(ctx context.Context) ([]*model.Patient, error)
}
