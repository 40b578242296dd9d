package interfaces

import (
	"context"

	"github.com/secmon-lab/healthbot/pkg/domain/model"
	"github.com/secmon-lab/healthbot/pkg/domain/types"
)

// TurnRepository defines the interface for conversation turn persistence
type TurnRepository interface {
	// Append stores a new turn. ID and CreatedAt are assigned here.
	Append(ctx context.Context, patientID model.PatientID, sender types.Sender, text string) (*model.Turn, error)

	// Recent returns up to limit turns, most recent first
	Recent(ctx context.Context, patientID model.PatientID, limit int) ([]*model.Turn, error)

	// List returns every turn of the patient, oldest first
	List(ctx context.Context, patientID model.PatientID) ([]*model.Turn, error)
}
