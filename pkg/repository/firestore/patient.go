package firestore

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/healthbot/pkg/domain/interfaces"
	"github.com/secmon-lab/healthbot/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type patientRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.PatientRepository = &patientRepository{}

func newPatientRepository(client *firestore.Client) *patientRepository {
	return &patientRepository{client: client}
}

// patientDoc is the Firestore persistence model
type patientDoc struct {
	ID                string    `firestore:"id"`
	Key               string    `firestore:"patient_key"`
	FirstName         string    `firestore:"first_name"`
	LastName          string    `firestore:"last_name"`
	BirthDate         time.Time `firestore:"birth_date"`
	Phone             string    `firestore:"phone"`
	Email             string    `firestore:"email"`
	MedicalCondition  string    `firestore:"medical_condition"`
	MedicationRegimen string    `firestore:"medication_regimen"`
	LastAppointment   time.Time `firestore:"last_appointment"`
	NextAppointment   time.Time `firestore:"next_appointment"`
	DoctorName        string    `firestore:"doctor_name"`
	LabTests          string    `firestore:"lab_tests"`
	VitalSigns        string    `firestore:"vital_signs"`
	Weight            *float64  `firestore:"weight"`
	CreatedAt         time.Time `firestore:"created_at"`
	UpdatedAt         time.Time `firestore:"updated_at"`
}

// keyString flattens a PatientKey into a single equality-queryable field
func keyString(key model.PatientKey) string {
	return strings.Join([]string{key.FirstName, key.LastName, key.BirthDate}, "\x1f")
}

func toPatientDoc(p *model.Patient) *patientDoc {
	return &patientDoc{
		ID:                string(p.ID),
		Key:               keyString(p.Key()),
		FirstName:         p.FirstName,
		LastName:          p.LastName,
		BirthDate:         p.BirthDate,
		Phone:             p.Phone,
		Email:             p.Email,
		MedicalCondition:  p.MedicalCondition,
		MedicationRegimen: p.MedicationRegimen,
		LastAppointment:   p.LastAppointment,
		NextAppointment:   p.NextAppointment,
		DoctorName:        p.DoctorName,
		LabTests:          p.LabTests,
		VitalSigns:        p.VitalSigns,
		Weight:            p.Weight,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func (d *patientDoc) toModel() *model.Patient {
	return &model.Patient{
		ID:                model.PatientID(d.ID),
		FirstName:         d.FirstName,
		LastName:          d.LastName,
		BirthDate:         d.BirthDate.UTC(),
		Phone:             d.Phone,
		Email:             d.Email,
		MedicalCondition:  d.MedicalCondition,
		MedicationRegimen: d.MedicationRegimen,
		LastAppointment:   d.LastAppointment.UTC(),
		NextAppointment:   d.NextAppointment.UTC(),
		DoctorName:        d.DoctorName,
		LabTests:          d.LabTests,
		VitalSigns:        d.VitalSigns,
		Weight:            d.Weight,
		CreatedAt:         d.CreatedAt.UTC(),
		UpdatedAt:         d.UpdatedAt.UTC(),
	}
}

func (r *patientRepository) collection() *firestore.CollectionRef {
	return patientsRef(r.client, r.collectionPrefix)
}

func (r *patientRepository) Put(ctx context.Context, patient *model.Patient) (*model.Patient, error) {
	if err := patient.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid patient")
	}

	stored := patient.Copy()
	now := time.Now().UTC().Truncate(time.Microsecond)
	stored.UpdatedAt = now

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		query := r.collection().
			Where("patient_key", "==", keyString(patient.Key())).
			OrderBy("created_at", firestore.Asc).
			Limit(1)
		docs, err := tx.Documents(query).GetAll()
		if err != nil {
			return goerr.Wrap(err, "failed to query patient by key")
		}

		var existing *patientDoc
		if len(docs) > 0 {
			var d patientDoc
			if err := docs[0].DataTo(&d); err != nil {
				return goerr.Wrap(err, "failed to unmarshal patient", goerr.V("docID", docs[0].Ref.ID))
			}
			existing = &d
		} else if patient.ID != "" {
			snap, err := tx.Get(r.collection().Doc(string(patient.ID)))
			switch {
			case err == nil:
				var d patientDoc
				if err := snap.DataTo(&d); err != nil {
					return goerr.Wrap(err, "failed to unmarshal patient", goerr.V("id", patient.ID))
				}
				existing = &d
			case status.Code(err) != codes.NotFound:
				return goerr.Wrap(err, "failed to get patient", goerr.V("id", patient.ID))
			}
		}

		if existing != nil {
			stored.ID = model.PatientID(existing.ID)
			stored.CreatedAt = existing.CreatedAt.UTC()
		} else {
			if stored.ID == "" {
				stored.ID = model.NewPatientID()
			}
			stored.CreatedAt = now
		}

		return tx.Set(r.collection().Doc(string(stored.ID)), toPatientDoc(stored))
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to put patient", goerr.V("name", patient.FullName()))
	}

	return stored, nil
}

func (r *patientRepository) Get(ctx context.Context, id model.PatientID) (*model.Patient, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "patient not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get patient", goerr.V("id", id))
	}

	var d patientDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal patient", goerr.V("id", id))
	}
	return d.toModel(), nil
}

func (r *patientRepository) First(ctx context.Context) (*model.Patient, error) {
	patients, err := r.list(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(patients) == 0 {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "no patient registered")
	}
	return patients[0], nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	return r.list(ctx, 0)
}

func (r *patientRepository) list(ctx context.Context, limit int) ([]*model.Patient, error) {
	query := r.collection().OrderBy("created_at", firestore.Asc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	patients := []*model.Patient{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate patients")
		}

		var d patientDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal patient", goerr.V("docID", doc.Ref.ID))
		}
		patients = append(patients, d.toModel())
	}
	return patients, nil
}
