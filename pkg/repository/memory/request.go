package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/healthbot/pkg/domain/interfaces"
	"github.com/secmon-lab/healthbot/pkg/domain/model"
)

type requestRepository struct {
	mu       sync.RWMutex
	requests map[model.PatientID][]*model.PatientRequest
	now      func() time.Time
}

var _ interfaces.RequestRepository = &requestRepository{}

func newRequestRepository() *requestRepository {
	return &requestRepository{
		requests: make(map[model.PatientID][]*model.PatientRequest),
		now:      now,
	}
}

func copyRequest(req *model.PatientRequest) *model.PatientRequest {
	c := *req
	return &c
}

func (r *requestRepository) Create(ctx context.Context, req *model.PatientRequest) (*model.PatientRequest, error) {
	if !req.Kind.IsValid() {
		return nil, goerr.New("invalid request kind", goerr.V("kind", req.Kind))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyRequest(req)
	if created.ID == "" {
		created.ID = model.NewPatientRequestID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = r.now()
	}

	for _, existing := range r.requests[created.PatientID] {
		if existing.ID == created.ID {
			return nil, goerr.New("patient request already exists", goerr.V("id", created.ID))
		}
	}

	r.requests[created.PatientID] = append(r.requests[created.PatientID], created)
	return copyRequest(created), nil
}

func (r *requestRepository) List(ctx context.Context, patientID model.PatientID) ([]*model.PatientRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.requests[patientID]
	requests := make([]*model.PatientRequest, 0, len(all))
	for _, req := range all {
		requests = append(requests, copyRequest(req))
	}
	return requests, nil
}
