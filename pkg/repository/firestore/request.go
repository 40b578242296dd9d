package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/healthbot/pkg/domain/interfaces"
	"github.com/secmon-lab/healthbot/pkg/domain/model"
	"github.com/secmon-lab/healthbot/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type requestRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.RequestRepository = &requestRepository{}

func newRequestRepository(client *firestore.Client) *requestRepository {
	return &requestRepository{client: client}
}

type requestDoc struct {
	ID        string    `firestore:"id"`
	PatientID string    `firestore:"patient_id"`
	Kind      string    `firestore:"kind"`
	Details   string    `firestore:"details"`
	CreatedAt time.Time `firestore:"created_at"`
}

func (r *requestRepository) collection(patientID model.PatientID) *firestore.CollectionRef {
	return patientsRef(r.client, r.collectionPrefix).Doc(string(patientID)).Collection(requestsCollection)
}

func (r *requestRepository) Create(ctx context.Context, req *model.PatientRequest) (*model.PatientRequest, error) {
	if !req.Kind.IsValid() {
		return nil, goerr.New("invalid request kind", goerr.V("kind", req.Kind))
	}

	created := *req
	if created.ID == "" {
		created.ID = model.NewPatientRequestID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}

	doc := &requestDoc{
		ID:        string(created.ID),
		PatientID: string(created.PatientID),
		Kind:      string(created.Kind),
		Details:   created.Details,
		CreatedAt: created.CreatedAt,
	}
	// Create fails if the document exists, keeping requests immutable
	if _, err := r.collection(created.PatientID).Doc(doc.ID).Create(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create patient request",
			goerr.V("id", created.ID),
			goerr.V("patientID", created.PatientID))
	}
	return &created, nil
}

func (r *requestRepository) List(ctx context.Context, patientID model.PatientID) ([]*model.PatientRequest, error) {
	iter := r.collection(patientID).OrderBy("created_at", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	requests := []*model.PatientRequest{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate patient requests", goerr.V("patientID", patientID))
		}

		var d requestDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal patient request", goerr.V("docID", doc.Ref.ID))
		}
		requests = append(requests, &model.PatientRequest{
			ID:        model.PatientRequestID(d.ID),
			PatientID: model.PatientID(d.PatientID),
			Kind:      types.RequestKind(d.Kind),
			Details:   d.Details,
			CreatedAt: d.CreatedAt.UTC(),
		})
	}
	return requests, nil
}
