package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/healthbot/pkg/domain/interfaces"
	"github.com/secmon-lab/healthbot/pkg/repository/firestore"
	"github.com/secmon-lab/healthbot/pkg/repository/memory"
	"github.com/secmon-lab/healthbot/pkg/repository/sqldb"
	"github.com/secmon-lab/healthbot/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend     string
	projectID   string
	databaseID  string
	databaseURL string
	sqlitePath  string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Category:    "Repository",
			Usage:       "Repository backend type (memory, firestore, postgres or sqlite)",
			Value:       "memory",
			Sources:     cli.EnvVars("HEALTHBOT_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Category:    "Repository",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Sources:     cli.EnvVars("HEALTHBOT_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Category:    "Repository",
			Usage:       "Firestore Database ID",
			Sources:     cli.EnvVars("HEALTHBOT_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "database-url",
			Category:    "Repository",
			Usage:       "PostgreSQL connection string (required when using postgres backend)",
			Sources:     cli.EnvVars("HEALTHBOT_DATABASE_URL"),
			Destination: &r.databaseURL,
		},
		&cli.StringFlag{
			Name:        "sqlite-path",
			Category:    "Repository",
			Usage:       "SQLite database file",
			Value:       "healthbot.db",
			Sources:     cli.EnvVars("HEALTHBOT_SQLITE_PATH"),
			Destination: &r.sqlitePath,
		},
	}
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// ProjectID returns the Firestore project ID
func (r *Repository) ProjectID() string {
	return r.projectID
}

// DatabaseID returns the Firestore database ID
func (r *Repository) DatabaseID() string {
	return r.databaseID
}

// OpenSQL opens the SQL backend without migrating it
func (r *Repository) OpenSQL(ctx context.Context) (*sqldb.DB, error) {
	switch r.backend {
	case "postgres":
		if r.databaseURL == "" {
			return nil, goerr.Wrap(ErrMissingFlag, "database-url is required", goerr.V(FlagKey, "database-url"))
		}
		return sqldb.NewPostgres(ctx, r.databaseURL)

	case "sqlite":
		return sqldb.NewSQLite(ctx, r.sqlitePath)

	default:
		return nil, goerr.Wrap(ErrInvalidBackend, "not a SQL backend", goerr.V(BackendKey, r.backend))
	}
}

// Configure initializes and returns a repository based on the configured backend.
// SQL backends are migrated before use. The caller is responsible for calling
// Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case "firestore":
		if r.projectID == "" {
			return nil, goerr.Wrap(ErrMissingFlag, "firestore-project-id is required when using firestore backend",
				goerr.V(FlagKey, "firestore-project-id"))
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case "postgres", "sqlite":
		db, err := r.OpenSQL(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open SQL repository", goerr.V(BackendKey, r.backend))
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, goerr.Wrap(err, "failed to migrate SQL schema", goerr.V(BackendKey, r.backend))
		}
		logging.Default().Info("Using SQL repository", "backend", r.backend)
		return db, nil

	case "memory":
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.Wrap(ErrInvalidBackend, "invalid repository backend", goerr.V(BackendKey, r.backend))
	}
}
