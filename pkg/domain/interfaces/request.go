package interfaces

import (
	"context"

	"github.com/secmon-lab/healthbot/pkg/domain/model"
)

// RequestRepository defines the interface for PatientRequest persistence.
// Requests are append only.
type RequestRepository interface {
	// Create stores a new request. ID and CreatedAt are assigned when empty.
	Create(ctx context.Context, req *model.PatientRequest) (*model.PatientRequest, error)

	// List returns the requests of a patient, oldest first
	List(ctx context.Context, patientID model.PatientID) ([]*model.PatientRequest, error)
}
