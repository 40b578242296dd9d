package usecase

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/healthbot/pkg/domain/interfaces"
	"github.com/secmon-lab/healthbot/pkg/domain/model"
	"github.com/secmon-lab/healthbot/pkg/utils/errutil"
	"github.com/secmon-lab/healthbot/pkg/utils/logging"
)

// SummaryTurnLimit is how many recent turns are summarized
const SummaryTurnLimit = 10

type PatientUseCase struct {
	repo       interfaces.Repository
	graph      interfaces.KnowledgeGraph
	summarizer interfaces.Summarizer
	llmTimeout time.Duration
}

func NewPatientUseCase(repo interfaces.Repository, graph interfaces.KnowledgeGraph, summarizer interfaces.Summarizer, llmTimeout time.Duration) *PatientUseCase {
	return &PatientUseCase{
		repo:       repo,
		graph:      graph,
		summarizer: summarizer,
		llmTimeout: llmTimeout,
	}
}

func (uc *PatientUseCase) get(ctx context.Context, id model.PatientID) (*model.Patient, error) {
	p, err := uc.repo.Patient().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrPatientNotFound, "patient not found", goerr.V(PatientIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get patient", goerr.V(PatientIDKey, id))
	}
	return p, nil
}

// Get returns a patient by ID
func (uc *PatientUseCase) Get(ctx context.Context, id model.PatientID) (*model.Patient, error) {
	return uc.get(ctx, id)
}

// First returns the earliest registered patient
func (uc *PatientUseCase) First(ctx context.Context) (*model.Patient, error) {
	p, err := uc.repo.Patient().First(ctx)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrPatientNotFound, "no patient registered")
		}
		return nil, goerr.Wrap(err, "failed to get first patient")
	}
	return p, nil
}

// List returns every patient
func (uc *PatientUseCase) List(ctx context.Context) ([]*model.Patient, error) {
	patients, err := uc.repo.Patient().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list patients")
	}
	return patients, nil
}

// Put creates or updates a patient and mirrors it to the knowledge graph
func (uc *PatientUseCase) Put(ctx context.Context, patient *model.Patient) (*model.Patient, error) {
	if err := patient.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidPatient, err.Error())
	}

	stored, err := uc.repo.Patient().Put(ctx, patient)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to put patient", goerr.V("name", patient.FullName()))
	}

	if uc.graph != nil {
		if err := uc.graph.SavePatient(ctx, stored); err != nil {
			_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to save patient node", goerr.V(PatientIDKey, stored.ID)),
				"knowledge graph update failed")
		}
	}

	logging.From(ctx).Info("patient saved", "patient_id", stored.ID)
	return stored, nil
}

// Messages returns the conversation of a patient, oldest first
func (uc *PatientUseCase) Messages(ctx context.Context, id model.PatientID) ([]*model.Turn, error) {
	if _, err := uc.get(ctx, id); err != nil {
		return nil, err
	}
	turns, err := uc.repo.Turn().List(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list turns", goerr.V(PatientIDKey, id))
	}
	return turns, nil
}

// Requests returns the recorded requests of a patient, oldest first
func (uc *PatientUseCase) Requests(ctx context.Context, id model.PatientID) ([]*model.PatientRequest, error) {
	if _, err := uc.get(ctx, id); err != nil {
		return nil, err
	}
	requests, err := uc.repo.Request().List(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list patient requests", goerr.V(PatientIDKey, id))
	}
	return requests, nil
}

// Knowledge returns what the knowledge graph holds about a patient
func (uc *PatientUseCase) Knowledge(ctx context.Context, id model.PatientID) (*model.Knowledge, error) {
	p, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if uc.graph == nil {
		return model.NewKnowledge(p.FullName()), nil
	}

	k, err := uc.graph.GetKnowledge(ctx, p.FullName())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get knowledge", goerr.V(PatientIDKey, id))
	}
	return k, nil
}

// Summary summarizes the latest turns of a patient. Summarizer failures
// yield the fixed fallback texts instead of an error.
func (uc *PatientUseCase) Summary(ctx context.Context, id model.PatientID) (*model.Summary, error) {
	if _, err := uc.get(ctx, id); err != nil {
		return nil, err
	}

	fallback := &model.Summary{Summary: SummaryFallback, MedicalInsights: InsightsFallback}
	if uc.summarizer == nil {
		return fallback, nil
	}

	turns, err := uc.repo.Turn().Recent(ctx, id, SummaryTurnLimit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get recent turns", goerr.V(PatientIDKey, id))
	}
	slices.Reverse(turns)

	ctx, cancel := context.WithTimeout(ctx, uc.llmTimeout)
	defer cancel()

	summary, err := uc.summarizer.Summarize(ctx, turns)
	if err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "summarization failed", goerr.V(PatientIDKey, id)), "summarization failed")
		return fallback, nil
	}
	return summary, nil
}

// SyncProfiles mirrors every patient profile into the knowledge graph and
// returns how many were written
func (uc *PatientUseCase) SyncProfiles(ctx context.Context) (int, error) {
	if uc.graph == nil {
		return 0, nil
	}

	patients, err := uc.repo.Patient().List(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list patients")
	}

	for i, p := range patients {
		if err := uc.graph.SavePatient(ctx, p); err != nil {
			return i, goerr.Wrap(err, "failed to sync patient profile", goerr.V(PatientIDKey, p.ID))
		}
	}
	return len(patients), nil
}
