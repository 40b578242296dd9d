package worker

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/healthbot/pkg/utils/logging"
)

// DefaultProfileSyncInterval is used when the interval is not positive
const DefaultProfileSyncInterval = 10 * time.Minute

// ProfileSyncer mirrors stored patient profiles into the knowledge graph
type ProfileSyncer interface {
	SyncProfiles(ctx context.Context) (int, error)
}

// ProfileSyncWorker periodically re-projects every patient profile so that
// edits made directly in the store reach the knowledge graph.
//
// Single server instance is assumed. Running several instances only
// duplicates idempotent MERGE writes.
type ProfileSyncWorker struct {
	syncer   ProfileSyncer
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewProfileSyncWorker(syncer ProfileSyncer, interval time.Duration) *ProfileSyncWorker {
	if interval <= 0 {
		interval = DefaultProfileSyncInterval
	}
	return &ProfileSyncWorker{
		syncer:   syncer,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs an initial sync and the periodic loop in a background goroutine
func (w *ProfileSyncWorker) Start(ctx context.Context) error {
	logging.From(ctx).Info("profile sync worker starting", "interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *ProfileSyncWorker) Stop() {
	logging.Default().Info("profile sync worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("profile sync worker stopped")
}

func (w *ProfileSyncWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	if err := w.sync(ctx); err != nil {
		logging.From(ctx).Error("initial profile sync failed (will retry next interval)", "error", err.Error())
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.sync(ctx); err != nil {
				logging.From(ctx).Error("profile sync failed (will retry next interval)", "error", err.Error())
			}

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.From(ctx).Info("profile sync worker context cancelled")
			return
		}
	}
}

func (w *ProfileSyncWorker) sync(ctx context.Context) error {
	start := time.Now()

	n, err := w.syncer.SyncProfiles(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to sync profiles", goerr.V("synced", n))
	}

	logging.From(ctx).Info("profile sync completed",
		"count", n,
		"duration", time.Since(start).String())
	return nil
}
