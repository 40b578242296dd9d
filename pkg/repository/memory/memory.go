package memory

import (
	"time"

	"github.com/secmon-lab/healthbot/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory keeps every record in process memory. It is used for tests and
// single process demos.
type Memory struct {
	patient *patientRepository
	turn    *turnRepository
	request *requestRepository
}

var _ interfaces.Repository = &Memory{}

// Option is a functional option for Memory
type Option func(*Memory)

// WithClock replaces the clock used for CreatedAt and UpdatedAt
func WithClock(now func() time.Time) Option {
	return func(m *Memory) {
		m.patient.now = now
		m.turn.now = now
		m.request.now = now
	}
}

func New(opts ...Option) *Memory {
	m := &Memory{
		patient: newPatientRepository(),
		turn:    newTurnRepository(),
		request: newRequestRepository(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Patient() interfaces.PatientRepository {
	return m.patient
}

func (m *Memory) Turn() interfaces.TurnRepository {
	return m.turn
}

func (m *Memory) Request() interfaces.RequestRepository {
	return m.request
}

func (m *Memory) Close() error {
	return nil
}

func now() time.Time {
	return time.Now().UTC()
}
