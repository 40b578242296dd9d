package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/healthbot/pkg/domain/interfaces"
	"github.com/secmon-lab/healthbot/pkg/domain/model"
)

type patientRepository struct {
	mu       sync.RWMutex
	patients map[model.PatientID]*model.Patient
	now      func() time.Time
}

var _ interfaces.PatientRepository = &patientRepository{}

func newPatientRepository() *patientRepository {
	return &patientRepository{
		patients: make(map[model.PatientID]*model.Patient),
		now:      now,
	}
}

func (r *patientRepository) findByKey(key model.PatientKey) *model.Patient {
	for _, p := range r.patients {
		if p.Key() == key {
			return p
		}
	}
	return nil
}

func (r *patientRepository) Put(ctx context.Context, patient *model.Patient) (*model.Patient, error) {
	if err := patient.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid patient")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := patient.Copy()
	ts := r.now()
	stored.UpdatedAt = ts

	existing := r.findByKey(patient.Key())
	if existing == nil && patient.ID != "" {
		existing = r.patients[patient.ID]
	}

	if existing != nil {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	} else {
		if stored.ID == "" {
			stored.ID = model.NewPatientID()
		}
		stored.CreatedAt = ts
	}

	r.patients[stored.ID] = stored
	return stored.Copy(), nil
}

func (r *patientRepository) Get(ctx context.Context, id model.PatientID) (*model.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.patients[id]
	if !ok {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "patient not found", goerr.V("id", id))
	}
	return p.Copy(), nil
}

func (r *patientRepository) First(ctx context.Context) (*model.Patient, error) {
	patients, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(patients) == 0 {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "no patient registered")
	}
	return patients[0], nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	patients := make([]*model.Patient, 0, len(r.patients))
	for _, p := range r.patients {
		patients = append(patients, p.Copy())
	}

	sort.Slice(patients, func(i, j int) bool {
		if patients[i].CreatedAt.Equal(patients[j].CreatedAt) {
			return patients[i].ID < patients[j].ID
		}
		return patients[i].CreatedAt.Before(patients[j].CreatedAt)
	})
	return patients, nil
}
