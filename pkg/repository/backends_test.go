package repository_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/healthbot/pkg/domain/interfaces"
	"github.com/secmon-lab/healthbot/pkg/repository/firestore"
	"github.com/secmon-lab/healthbot/pkg/repository/memory"
	"github.com/secmon-lab/healthbot/pkg/repository/sqldb"
)

// backends lists every Repository implementation. Cloud backends skip
// themselves when their TEST_* variables are not set.
var backends = map[string]func(t *testing.T) interfaces.Repository{
	"memory":    newMemoryRepository,
	"sqlite":    newSQLiteRepository,
	"postgres":  newPostgresRepository,
	"firestore": newFirestoreRepository,
}

func runForEachBackend(t *testing.T, run func(t *testing.T, newRepo func(t *testing.T) interfaces.Repository)) {
	t.Helper()
	for name, newRepo := range backends {
		t.Run(name, func(t *testing.T) {
			run(t, newRepo)
		})
	}
}

func newMemoryRepository(t *testing.T) interfaces.Repository {
	return memory.New()
}

func newSQLiteRepository(t *testing.T) interfaces.Repository {
	t.Helper()
	ctx := context.Background()

	repo, err := sqldb.NewSQLite(ctx, filepath.Join(t.TempDir(), "healthbot.db"))
	gt.NoError(t, err).Required()
	gt.NoError(t, repo.Migrate(ctx)).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

func newPostgresRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_URL not set")
	}

	ctx := context.Background()
	repo, err := sqldb.NewPostgres(ctx, dsn)
	gt.NoError(t, err).Required()
	gt.NoError(t, repo.Migrate(ctx)).Required()

	// tests assume an empty database
	conn, err := sql.Open("postgres", dsn)
	gt.NoError(t, err).Required()
	_, err = conn.ExecContext(ctx, "TRUNCATE patients CASCADE")
	gt.NoError(t, err).Required()
	gt.NoError(t, conn.Close())
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		t.Skip("TEST_FIRESTORE_DATABASE_ID not set")
	}

	ctx := context.Background()
	prefix := fmt.Sprintf("test_%d", time.Now().UnixNano())
	repo, err := firestore.New(ctx, projectID, databaseID, firestore.WithCollectionPrefix(prefix))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}
