package interfaces

import (
	"context"

	"github.com/secmon-lab/healthbot/pkg/domain/model"
)

// KnowledgeGraph projects patient facts into a graph keyed by patient full name
type KnowledgeGraph interface {
	// SavePatient merges the patient node and its profile properties
	SavePatient(ctx context.Context, patient *model.Patient) error

	// SaveEntities merges one entity node per value, linked to the patient by
	// a HAS_<KIND> relationship
	SaveEntities(ctx context.Context, patientName string, entities model.Entities) error

	// GetKnowledge returns everything known about the patient. An unknown
	// patient yields empty knowledge, not an error.
	GetKnowledge(ctx context.Context, patientName string) (*model.Knowledge, error)

	Close(ctx context.Context) error
}
