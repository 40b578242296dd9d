package firestore

import (
	"context"
	"slices"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/healthbot/pkg/domain/interfaces"
	"github.com/secmon-lab/healthbot/pkg/domain/model"
	"github.com/secmon-lab/healthbot/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type turnRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.TurnRepository = &turnRepository{}

func newTurnRepository(client *firestore.Client) *turnRepository {
	return &turnRepository{client: client}
}

type turnDoc struct {
	ID        string    `firestore:"id"`
	PatientID string    `firestore:"patient_id"`
	Sender    string    `firestore:"sender"`
	Text      string    `firestore:"text"`
	CreatedAt time.Time `firestore:"created_at"`
}

func (d *turnDoc) toModel() *model.Turn {
	return &model.Turn{
		ID:        model.TurnID(d.ID),
		PatientID: model.PatientID(d.PatientID),
		Sender:    types.Sender(d.Sender),
		Text:      d.Text,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

// collection returns patients/{id}/turns. Document IDs are ULIDs, so ordering
// by document ID is chronological.
func (r *turnRepository) collection(patientID model.PatientID) *firestore.CollectionRef {
	return patientsRef(r.client, r.collectionPrefix).Doc(string(patientID)).Collection(turnsCollection)
}

func (r *turnRepository) Append(ctx context.Context, patientID model.PatientID, sender types.Sender, text string) (*model.Turn, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	turn := &model.Turn{
		ID:        model.NewTurnID(now),
		PatientID: patientID,
		Sender:    sender,
		Text:      text,
		CreatedAt: now,
	}

	doc := &turnDoc{
		ID:        string(turn.ID),
		PatientID: string(patientID),
		Sender:    string(sender),
		Text:      text,
		CreatedAt: now,
	}
	if _, err := r.collection(patientID).Doc(doc.ID).Create(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to append turn", goerr.V("patientID", patientID))
	}
	return turn, nil
}

func (r *turnRepository) Recent(ctx context.Context, patientID model.PatientID, limit int) ([]*model.Turn, error) {
	if limit <= 0 {
		return []*model.Turn{}, nil
	}
	query := r.collection(patientID).OrderBy(firestore.DocumentID, firestore.Desc).Limit(limit)
	return r.query(ctx, query, patientID)
}

func (r *turnRepository) List(ctx context.Context, patientID model.PatientID) ([]*model.Turn, error) {
	turns, err := r.query(ctx, r.collection(patientID).OrderBy(firestore.DocumentID, firestore.Desc), patientID)
	if err != nil {
		return nil, err
	}
	slices.Reverse(turns)
	return turns, nil
}

func (r *turnRepository) query(ctx context.Context, query firestore.Query, patientID model.PatientID) ([]*model.Turn, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	turns := []*model.Turn{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate turns", goerr.V("patientID", patientID))
		}

		var d turnDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal turn", goerr.V("docID", doc.Ref.ID))
		}
		turns = append(turns, d.toModel())
	}
	return turns, nil
}
