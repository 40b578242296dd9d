package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/healthbot/pkg/cli/config"
	httpctrl "github.com/secmon-lab/healthbot/pkg/controller/http"
	"github.com/secmon-lab/healthbot/pkg/domain/interfaces"
	"github.com/secmon-lab/healthbot/pkg/service/classifier"
	"github.com/secmon-lab/healthbot/pkg/service/worker"
	"github.com/secmon-lab/healthbot/pkg/usecase"
	"github.com/secmon-lab/healthbot/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var syncInterval time.Duration
	var repoCfg config.Repository
	var llmCfg config.LLM
	var extractorCfg config.Extractor
	var graphCfg config.Graph
	var lexiconCfg config.Lexicon
	var seedCfg config.Seed

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("HEALTHBOT_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "profile-sync-interval",
			Usage:       "Interval of mirroring patient profiles into the knowledge graph",
			Value:       worker.DefaultProfileSyncInterval,
			Sources:     cli.EnvVars("HEALTHBOT_PROFILE_SYNC_INTERVAL"),
			Destination: &syncInterval,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, llmCfg.Flags()...)
	flags = append(flags, extractorCfg.Flags()...)
	flags = append(flags, graphCfg.Flags()...)
	flags = append(flags, lexiconCfg.Flags()...)
	flags = append(flags, seedCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			uc, graph, err := buildUseCases(ctx, repo, &llmCfg, &extractorCfg, &graphCfg, &lexiconCfg)
			if err != nil {
				return err
			}
			if graph != nil {
				defer func() {
					if err := graph.Close(context.Background()); err != nil {
						logging.Default().Error("failed to close knowledge graph", "error", err.Error())
					}
				}()
			}

			patient, err := seedCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load patient file")
			}
			if patient != nil {
				stored, err := uc.Patient.Put(ctx, patient)
				if err != nil {
					return goerr.Wrap(err, "failed to seed patient")
				}
				logging.Default().Info("Seeded patient", "patient_id", stored.ID)
			}

			var syncWorker *worker.ProfileSyncWorker
			if graph != nil {
				syncWorker = worker.NewProfileSyncWorker(uc.Patient, syncInterval)
				if err := syncWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start profile sync worker")
				}
			}

			var httpOpts []httpctrl.Options
			if pinger, ok := repo.(interfaces.Pinger); ok {
				httpOpts = append(httpOpts, httpctrl.WithPinger(pinger))
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				if syncWorker != nil {
					syncWorker.Stop()
				}
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				if syncWorker != nil {
					syncWorker.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}

// buildUseCases wires the classifier and LLM collaborators. The returned
// graph is nil when the knowledge graph is disabled.
func buildUseCases(ctx context.Context, repo interfaces.Repository, llmCfg *config.LLM, extractorCfg *config.Extractor, graphCfg *config.Graph, lexiconCfg *config.Lexicon) (*usecase.UseCases, interfaces.KnowledgeGraph, error) {
	llmSvc, err := llmCfg.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to configure LLM")
	}
	if llmSvc == nil {
		logging.Default().Warn("LLM provider not configured, replies and summaries use fallback texts")
	}

	c, err := buildClassifier(llmSvc, extractorCfg, lexiconCfg)
	if err != nil {
		return nil, nil, err
	}

	graph, err := graphCfg.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to configure knowledge graph")
	}

	opts := []usecase.Option{
		usecase.WithClassifier(c),
		usecase.WithLLMTimeout(llmCfg.Timeout()),
	}
	if llmSvc != nil {
		opts = append(opts,
			usecase.WithReplyGenerator(llmSvc),
			usecase.WithSummarizer(llmSvc),
		)
	}
	if graph != nil {
		opts = append(opts, usecase.WithKnowledgeGraph(graph))
	}

	return usecase.New(repo, opts...), graph, nil
}

func buildClassifier(llmSvc interfaces.LLM, extractorCfg *config.Extractor, lexiconCfg *config.Lexicon, opts ...classifier.Option) (*classifier.Classifier, error) {
	ext, err := extractorCfg.Configure(llmSvc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure extractor")
	}

	lexicon, err := lexiconCfg.Configure()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load lexicon")
	}

	logging.Default().Info("Classifier configured",
		"extractor", extractorCfg.Strategy(),
		"lexicon_file", lexiconCfg.Path())
	opts = append(opts, classifier.WithLexicon(lexicon))
	return classifier.New(ext, opts...), nil
}
