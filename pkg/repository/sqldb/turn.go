package sqldb

import (
	"context"
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/healthbot/pkg/domain/interfaces"
	"github.com/secmon-lab/healthbot/pkg/domain/model"
	"github.com/secmon-lab/healthbot/pkg/domain/types"
)

type turnRepository struct {
	q *querier
}

var _ interfaces.TurnRepository = &turnRepository{}

func (r *turnRepository) Append(ctx context.Context, patientID model.PatientID, sender types.Sender, text string) (*model.Turn, error) {
	now := time.Now().UTC()
	turn := &model.Turn{
		ID:        model.NewTurnID(now),
		PatientID: patientID,
		Sender:    sender,
		Text:      text,
		CreatedAt: now,
	}

	_, err := r.q.db.ExecContext(ctx,
		r.q.rebind(`INSERT INTO turns (id, patient_id, sender, text, created_at) VALUES (?, ?, ?, ?, ?)`),
		string(turn.ID), string(patientID), string(sender), text, formatTime(now),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to append turn", goerr.V("patientID", patientID))
	}
	return turn, nil
}

func (r *turnRepository) Recent(ctx context.Context, patientID model.PatientID, limit int) ([]*model.Turn, error) {
	if limit <= 0 {
		return []*model.Turn{}, nil
	}
	return r.query(ctx,
		`SELECT id, patient_id, sender, text, created_at FROM turns WHERE patient_id = ? ORDER BY id DESC LIMIT ?`,
		string(patientID), limit)
}

func (r *turnRepository) List(ctx context.Context, patientID model.PatientID) ([]*model.Turn, error) {
	turns, err := r.query(ctx,
		`SELECT id, patient_id, sender, text, created_at FROM turns WHERE patient_id = ? ORDER BY id DESC`,
		string(patientID))
	if err != nil {
		return nil, err
	}
	slices.Reverse(turns)
	return turns, nil
}

func (r *turnRepository) query(ctx context.Context, query string, args ...any) ([]*model.Turn, error) {
	rows, err := r.q.db.QueryContext(ctx, r.q.rebind(query), args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query turns")
	}
	defer func() { _ = rows.Close() }()

	turns := []*model.Turn{}
	for rows.Next() {
		var (
			t                         model.Turn
			id, patientID, sender, ts string
		)
		if err := rows.Scan(&id, &patientID, &sender, &t.Text, &ts); err != nil {
			return nil, goerr.Wrap(err, "failed to scan turn")
		}
		t.ID = model.TurnID(id)
		t.PatientID = model.PatientID(patientID)
		t.Sender = types.Sender(sender)
		if t.CreatedAt, err = parseTime(ts); err != nil {
			return nil, err
		}
		turns = append(turns, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate turns")
	}
	return turns, nil
}
