package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/healthbot/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

// Seed holds the path of a patient file upserted at start-up
type Seed struct {
	path string
}

func (x *Seed) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "patient-file",
			Category:    "Patient",
			Usage:       "TOML file describing a patient to upsert at start-up",
			Sources:     cli.EnvVars("HEALTHBOT_PATIENT_FILE"),
			Destination: &x.path,
		},
	}
}

// Path returns the configured file path
func (x *Seed) Path() string {
	return x.path
}

// Configure loads the patient file, or returns nil when no file is set
func (x *Seed) Configure() (*model.Patient, error) {
	if x.path == "" {
		return nil, nil
	}
	return LoadPatient(x.path)
}

// patientFile is the TOML layout of a patient. Dates are TOML local dates and
// appointments TOML local date-times, interpreted as UTC.
type patientFile struct {
	FirstName         string              `toml:"first_name"`
	LastName          string              `toml:"last_name"`
	BirthDate         toml.LocalDate      `toml:"birth_date"`
	Phone             string              `toml:"phone"`
	Email             string              `toml:"email"`
	MedicalCondition  string              `toml:"medical_condition"`
	MedicationRegimen string              `toml:"medication_regimen"`
	LastAppointment   *toml.LocalDateTime `toml:"last_appointment"`
	NextAppointment   *toml.LocalDateTime `toml:"next_appointment"`
	DoctorName        string              `toml:"doctor_name"`
	LabTests          string              `toml:"lab_tests"`
	VitalSigns        string              `toml:"vital_signs"`
	Weight            *float64            `toml:"weight"`
}

func (f *patientFile) toModel() *model.Patient {
	p := &model.Patient{
		FirstName:         f.FirstName,
		LastName:          f.LastName,
		Phone:             f.Phone,
		Email:             f.Email,
		MedicalCondition:  f.MedicalCondition,
		MedicationRegimen: f.MedicationRegimen,
		DoctorName:        f.DoctorName,
		LabTests:          f.LabTests,
		VitalSigns:        f.VitalSigns,
		Weight:            f.Weight,
	}
	if f.BirthDate.Year != 0 {
		p.BirthDate = f.BirthDate.AsTime(time.UTC)
	}
	if f.LastAppointment != nil {
		p.LastAppointment = f.LastAppointment.AsTime(time.UTC)
	}
	if f.NextAppointment != nil {
		p.NextAppointment = f.NextAppointment.AsTime(time.UTC)
	}
	return p
}

// LoadPatient reads and validates a TOML patient file
func LoadPatient(path string) (*model.Patient, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "patient file not found", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read patient file", goerr.V(ConfigPathKey, path))
	}

	var f patientFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, goerr.Wrap(ErrInvalidPatientFile, "failed to parse patient TOML",
			goerr.V(ConfigPathKey, path),
			goerr.V("error", err.Error()))
	}

	patient := f.toModel()
	if err := patient.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidPatientFile, err.Error(), goerr.V(ConfigPathKey, path))
	}
	return patient, nil
}
