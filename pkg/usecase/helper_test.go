package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/healthbot/pkg/domain/model"
	"github.com/secmon-lab/healthbot/pkg/repository/memory"
)

// saturday is 2024-10-19, a Saturday
var saturday = time.Date(2024, 10, 19, 10, 0, 0, 0, time.UTC)

type mockReply struct {
	mu    sync.Mutex
	reply string
	err   error
	convs []*model.Conversation
}

func (m *mockReply) Reply(ctx context.Context, conv *model.Conversation) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.convs = append(m.convs, conv)
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockReply) calls() []*model.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.Conversation(nil), m.convs...)
}

type mockSummarizer struct {
	summary *model.Summary
	err     error
	turns   []*model.Turn
}

func (m *mockSummarizer) Summarize(ctx context.Context, turns []*model.Turn) (*model.Summary, error) {
	m.turns = turns
	if m.err != nil {
		return nil, m.err
	}
	return m.summary, nil
}

func seedPatient(t *testing.T, repo *memory.Memory) *model.Patient {
	t.Helper()
	p, err := repo.Patient().Put(context.Background(), &model.Patient{
		FirstName:        "John",
		LastName:         "Doe",
		BirthDate:        time.Date(1980, 5, 17, 0, 0, 0, 0, time.UTC),
		MedicalCondition: "Hypertension",
		NextAppointment:  time.Date(2024, 10, 22, 9, 30, 0, 0, time.UTC),
		DoctorName:       "Smith",
	})
	gt.NoError(t, err)
	return p
}
