package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/healthbot/pkg/domain/interfaces"
	"github.com/secmon-lab/healthbot/pkg/domain/model"
)

type patientRepository struct {
	q *querier
}

var _ interfaces.PatientRepository = &patientRepository{}

const patientColumns = `id, first_name, last_name, birth_date, phone, email, medical_condition,
	medication_regimen, last_appointment, next_appointment, doctor_name, lab_tests,
	vital_signs, weight, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPatient(row rowScanner) (*model.Patient, error) {
	var (
		p                             model.Patient
		id, birth, lastAppt, nextAppt string
		createdAt, updatedAt          string
		weight                        sql.NullFloat64
	)
	if err := row.Scan(&id, &p.FirstName, &p.LastName, &birth, &p.Phone, &p.Email,
		&p.MedicalCondition, &p.MedicationRegimen, &lastAppt, &nextAppt, &p.DoctorName,
		&p.LabTests, &p.VitalSigns, &weight, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	p.ID = model.PatientID(id)
	if weight.Valid {
		w := weight.Float64
		p.Weight = &w
	}

	var err error
	if p.BirthDate, err = time.Parse(time.DateOnly, birth); err != nil {
		return nil, goerr.Wrap(err, "invalid stored birth date", goerr.V("id", id))
	}
	for _, f := range []struct {
		dst *time.Time
		src string
	}{
		{&p.LastAppointment, lastAppt},
		{&p.NextAppointment, nextAppt},
		{&p.CreatedAt, createdAt},
		{&p.UpdatedAt, updatedAt},
	} {
		if *f.dst, err = parseTime(f.src); err != nil {
			return nil, goerr.Wrap(err, "invalid stored patient", goerr.V("id", id))
		}
	}
	return &p, nil
}

func (r *patientRepository) Put(ctx context.Context, patient *model.Patient) (*model.Patient, error) {
	if err := patient.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid patient")
	}

	tx, err := r.q.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	stored := patient.Copy()
	now := time.Now().UTC()
	stored.UpdatedAt = now
	key := patient.Key()

	var existingID, existingCreated string
	err = tx.QueryRowContext(ctx,
		r.q.rebind(`SELECT id, created_at FROM patients WHERE first_name = ? AND last_name = ? AND birth_date = ?`),
		key.FirstName, key.LastName, key.BirthDate,
	).Scan(&existingID, &existingCreated)
	if errors.Is(err, sql.ErrNoRows) && patient.ID != "" {
		err = tx.QueryRowContext(ctx, r.q.rebind(`SELECT id, created_at FROM patients WHERE id = ?`), string(patient.ID)).
			Scan(&existingID, &existingCreated)
	}

	switch {
	case err == nil:
		stored.ID = model.PatientID(existingID)
		if stored.CreatedAt, err = parseTime(existingCreated); err != nil {
			return nil, err
		}
	case errors.Is(err, sql.ErrNoRows):
		if stored.ID == "" {
			stored.ID = model.NewPatientID()
		}
		stored.CreatedAt = now
	default:
		return nil, goerr.Wrap(err, "failed to look up patient", goerr.V("name", patient.FullName()))
	}

	var weight sql.NullFloat64
	if stored.Weight != nil {
		weight = sql.NullFloat64{Float64: *stored.Weight, Valid: true}
	}

	_, err = tx.ExecContext(ctx, r.q.rebind(`INSERT INTO patients (`+patientColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			birth_date = excluded.birth_date,
			phone = excluded.phone,
			email = excluded.email,
			medical_condition = excluded.medical_condition,
			medication_regimen = excluded.medication_regimen,
			last_appointment = excluded.last_appointment,
			next_appointment = excluded.next_appointment,
			doctor_name = excluded.doctor_name,
			lab_tests = excluded.lab_tests,
			vital_signs = excluded.vital_signs,
			weight = excluded.weight,
			updated_at = excluded.updated_at`),
		string(stored.ID), stored.FirstName, stored.LastName, key.BirthDate, stored.Phone, stored.Email,
		stored.MedicalCondition, stored.MedicationRegimen, formatTime(stored.LastAppointment),
		formatTime(stored.NextAppointment), stored.DoctorName, stored.LabTests, stored.VitalSigns,
		weight, formatTime(stored.CreatedAt), formatTime(stored.UpdatedAt),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to upsert patient", goerr.V("id", stored.ID))
	}

	if err := tx.Commit(); err != nil {
		return nil, goerr.Wrap(err, "failed to commit patient", goerr.V("id", stored.ID))
	}

	stored.BirthDate, _ = time.Parse(time.DateOnly, key.BirthDate)
	return stored, nil
}

func (r *patientRepository) Get(ctx context.Context, id model.PatientID) (*model.Patient, error) {
	row := r.q.db.QueryRowContext(ctx, r.q.rebind(`SELECT `+patientColumns+` FROM patients WHERE id = ?`), string(id))
	p, err := scanPatient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "patient not found", goerr.V("id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get patient", goerr.V("id", id))
	}
	return p, nil
}

func (r *patientRepository) First(ctx context.Context) (*model.Patient, error) {
	row := r.q.db.QueryRowContext(ctx, `SELECT `+patientColumns+` FROM patients ORDER BY created_at, id LIMIT 1`)
	p, err := scanPatient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "no patient registered")
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get first patient")
	}
	return p, nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	rows, err := r.q.db.QueryContext(ctx, `SELECT `+patientColumns+` FROM patients ORDER BY created_at, id`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list patients")
	}
	defer func() { _ = rows.Close() }()

	patients := []*model.Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan patient")
		}
		patients = append(patients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate patients")
	}
	return patients, nil
}
