package sqldb

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/healthbot/pkg/domain/interfaces"
	"github.com/secmon-lab/healthbot/pkg/domain/model"
	"github.com/secmon-lab/healthbot/pkg/domain/types"
)

type requestRepository struct {
	q *querier
}

var _ interfaces.RequestRepository = &requestRepository{}

func (r *requestRepository) Create(ctx context.Context, req *model.PatientRequest) (*model.PatientRequest, error) {
	if !req.Kind.IsValid() {
		return nil, goerr.New("invalid request kind", goerr.V("kind", req.Kind))
	}

	created := *req
	if created.ID == "" {
		created.ID = model.NewPatientRequestID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	_, err := r.q.db.ExecContext(ctx,
		r.q.rebind(`INSERT INTO patient_requests (id, patient_id, kind, details, created_at) VALUES (?, ?, ?, ?, ?)`),
		string(created.ID), string(created.PatientID), string(created.Kind), created.Details, formatTime(created.CreatedAt),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create patient request",
			goerr.V("id", created.ID),
			goerr.V("patientID", created.PatientID))
	}
	return &created, nil
}

func (r *requestRepository) List(ctx context.Context, patientID model.PatientID) ([]*model.PatientRequest, error) {
	rows, err := r.q.db.QueryContext(ctx,
		r.q.rebind(`SELECT id, patient_id, kind, details, created_at FROM patient_requests WHERE patient_id = ? ORDER BY created_at, id`),
		string(patientID))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list patient requests", goerr.V("patientID", patientID))
	}
	defer func() { _ = rows.Close() }()

	requests := []*model.PatientRequest{}
	for rows.Next() {
		var (
			req               model.PatientRequest
			id, pid, kind, ts string
		)
		if err := rows.Scan(&id, &pid, &kind, &req.Details, &ts); err != nil {
			return nil, goerr.Wrap(err, "failed to scan patient request")
		}
		req.ID = model.PatientRequestID(id)
		req.PatientID = model.PatientID(pid)
		req.Kind = types.RequestKind(kind)
		if req.CreatedAt, err = parseTime(ts); err != nil {
			return nil, err
		}
		requests = append(requests, &req)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate patient requests")
	}
	return requests, nil
}
