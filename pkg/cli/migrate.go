package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/healthbot/pkg/cli/config"
	"github.com/secmon-lab/healthbot/pkg/repository/sqldb"
	"github.com/secmon-lab/healthbot/pkg/utils/logging"
	"github.com/secmon-lab/healthbot/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var repoCfg config.Repository
	var dryRun bool

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Preview changes without applying",
			Destination: &dryRun,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Apply SQL schema or Firestore indexes for the configured backend",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()
			logger.Info("Migrate configuration",
				"backend", repoCfg.Backend(),
				"dryRun", dryRun)

			switch repoCfg.Backend() {
			case "firestore":
				return migrateFirestore(ctx, repoCfg.ProjectID(), repoCfg.DatabaseID(), dryRun)

			case "postgres", "sqlite":
				if dryRun {
					w := c.Root().Writer
					if w == nil {
						w = os.Stdout
					}
					safe.Write(ctx, w, []byte(sqldb.Schema()))
					return nil
				}

				db, err := repoCfg.OpenSQL(ctx)
				if err != nil {
					return goerr.Wrap(err, "failed to open SQL database")
				}
				defer safe.Close(ctx, db)

				if err := db.Migrate(ctx); err != nil {
					return goerr.Wrap(err, "failed to apply schema")
				}
				logger.Info("Schema applied successfully")
				return nil

			case "memory":
				logger.Info("In-memory backend needs no migration")
				return nil

			default:
				return goerr.Wrap(config.ErrInvalidBackend, "cannot migrate backend", goerr.V(config.BackendKey, repoCfg.Backend()))
			}
		},
	}
}

func migrateFirestore(ctx context.Context, projectID, databaseID string, dryRun bool) error {
	logger := logging.Default()
	if projectID == "" {
		return goerr.Wrap(config.ErrMissingFlag, "firestore-project-id is required", goerr.V(config.FlagKey, "firestore-project-id"))
	}

	indexConfig := getIndexConfig()

	client, err := fireconf.NewClient(ctx, projectID, databaseID)
	if err != nil {
		return goerr.Wrap(err, "failed to create fireconf client")
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close fireconf client", "error", err.Error())
		}
	}()

	if dryRun {
		logger.Info("Dry run mode - previewing changes")
		plan, err := client.GetMigrationPlan(ctx, indexConfig)
		if err != nil {
			return goerr.Wrap(err, "failed to create migration plan")
		}

		if len(plan.Steps) == 0 {
			logger.Info("No changes required")
			return nil
		}

		for _, step := range plan.Steps {
			logger.Info("Migration step",
				"collection", step.Collection,
				"operation", step.Operation,
				"description", step.Description,
				"destructive", step.Destructive)
		}
		return nil
	}

	logger.Info("Applying migrations")
	if err := client.Migrate(ctx, indexConfig); err != nil {
		return goerr.Wrap(err, "failed to apply migrations")
	}
	logger.Info("Migrations applied successfully")
	return nil
}

// getIndexConfig returns the Firestore index configuration
func getIndexConfig() *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: "patients",
				Indexes: []fireconf.Index{
					// Put: patient_key ASC, created_at ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "patient_key", Order: fireconf.OrderAscending},
							{Path: "created_at", Order: fireconf.OrderAscending},
						},
					},
				},
			},
		},
	}
}
