package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/healthbot/pkg/domain/interfaces"
)

const (
	patientsCollection = "patients"
	turnsCollection    = "turns"
	requestsCollection = "requests"
)

// Firestore stores patients as top level documents with turns and requests
// as subcollections of each patient
type Firestore struct {
	client  *firestore.Client
	patient *patientRepository
	turn    *turnRepository
	request *requestRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prefixes the top level collection, e.g. for test isolation
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.patient.collectionPrefix = prefix
		f.turn.collectionPrefix = prefix
		f.request.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:  client,
		patient: newPatientRepository(client),
		turn:    newTurnRepository(client),
		request: newRequestRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Patient() interfaces.PatientRepository {
	return f.patient
}

func (f *Firestore) Turn() interfaces.TurnRepository {
	return f.turn
}

func (f *Firestore) Request() interfaces.RequestRepository {
	return f.request
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func patientsRef(client *firestore.Client, prefix string) *firestore.CollectionRef {
	if prefix != "" {
		return client.Collection(prefix + "_" + patientsCollection)
	}
	return client.Collection(patientsCollection)
}
