package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/secmon-lab/healthbot/pkg/domain/interfaces"
	"github.com/secmon-lab/healthbot/pkg/domain/model"
	"github.com/secmon-lab/healthbot/pkg/domain/types"
)

type turnRepository struct {
	mu    sync.RWMutex
	turns map[model.PatientID][]*model.Turn // oldest first
	now   func() time.Time
}

var _ interfaces.TurnRepository = &turnRepository{}

func newTurnRepository() *turnRepository {
	return &turnRepository{
		turns: make(map[model.PatientID][]*model.Turn),
		now:   now,
	}
}

func copyTurn(t *model.Turn) *model.Turn {
	c := *t
	return &c
}

func (r *turnRepository) Append(ctx context.Context, patientID model.PatientID, sender types.Sender, text string) (*model.Turn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := r.now()
	turn := &model.Turn{
		ID:        model.NewTurnID(ts),
		PatientID: patientID,
		Sender:    sender,
		Text:      text,
		CreatedAt: ts,
	}
	r.turns[patientID] = append(r.turns[patientID], turn)
	return copyTurn(turn), nil
}

func (r *turnRepository) Recent(ctx context.Context, patientID model.PatientID, limit int) ([]*model.Turn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.turns[patientID]
	if limit <= 0 {
		return []*model.Turn{}, nil
	}
	start := max(len(all)-limit, 0)

	recent := make([]*model.Turn, 0, len(all)-start)
	for _, t := range all[start:] {
		recent = append(recent, copyTurn(t))
	}
	slices.Reverse(recent)
	return recent, nil
}

func (r *turnRepository) List(ctx context.Context, patientID model.PatientID) ([]*model.Turn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.turns[patientID]
	turns := make([]*model.Turn, 0, len(all))
	for _, t := range all {
		turns = append(turns, copyTurn(t))
	}
	return turns, nil
}
