package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/healthbot/pkg/domain/model"
	"github.com/secmon-lab/healthbot/pkg/repository/memory"
	"github.com/secmon-lab/healthbot/pkg/service/worker"
	"github.com/secmon-lab/healthbot/pkg/usecase"
)

type countingSyncer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *countingSyncer) SyncProfiles(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	return 1, nil
}

func (s *countingSyncer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestProfileSyncWorker_RunsPeriodically(t *testing.T) {
	syncer := &countingSyncer{}
	w := worker.NewProfileSyncWorker(syncer, 10*time.Millisecond)

	gt.NoError(t, w.Start(context.Background()))
	waitFor(t, func() bool { return syncer.count() >= 3 })
	w.Stop()

	after := syncer.count()
	time.Sleep(30 * time.Millisecond)
	gt.Equal(t, syncer.count(), after)
}

func TestProfileSyncWorker_ContinuesAfterFailure(t *testing.T) {
	syncer := &countingSyncer{err: errors.New("graph unavailable")}
	w := worker.NewProfileSyncWorker(syncer, 10*time.Millisecond)

	gt.NoError(t, w.Start(context.Background()))
	waitFor(t, func() bool { return syncer.count() >= 2 })
	w.Stop()
}

func TestProfileSyncWorker_ContextCancel(t *testing.T) {
	syncer := &countingSyncer{}
	w := worker.NewProfileSyncWorker(syncer, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	gt.NoError(t, w.Start(ctx))
	waitFor(t, func() bool { return syncer.count() == 1 })
	cancel()
	w.Stop()
}

func TestProfileSyncWorker_ProjectsPatients(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	graph := memory.NewGraph()
	uc := usecase.New(repo, usecase.WithKnowledgeGraph(graph))

	p, err := repo.Patient().Put(ctx, &model.Patient{
		FirstName:        "Ann",
		LastName:         "Lee",
		BirthDate:        time.Date(1990, 3, 4, 0, 0, 0, 0, time.UTC),
		MedicalCondition: "Asthma",
	})
	gt.NoError(t, err)

	w := worker.NewProfileSyncWorker(uc.Patient, time.Hour)
	gt.NoError(t, w.Start(ctx))
	waitFor(t, func() bool {
		k, err := graph.GetKnowledge(ctx, p.FullName())
		return err == nil && len(k.Profile) > 0
	})
	w.Stop()
}
