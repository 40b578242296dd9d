package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/healthbot/pkg/cli/config"
	"github.com/secmon-lab/healthbot/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var lexiconCfg config.Lexicon
	var seedCfg config.Seed

	var flags []cli.Flag
	flags = append(flags, lexiconCfg.Flags()...)
	flags = append(flags, seedCfg.Flags()...)

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate lexicon and patient files",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			lexicon, err := lexiconCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "lexicon validation failed")
			}
			logger.Info("Lexicon validation passed",
				"path", lexiconCfg.Path(),
				"disallowed", len(lexicon.Disallowed),
				"health", len(lexicon.Health),
				"treatment", len(lexicon.Treatment),
			)

			patient, err := seedCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "patient file validation failed")
			}
			if patient == nil {
				logger.Info("No patient file specified, skipping patient validation")
				return nil
			}

			logger.Info("Patient file validation passed",
				"path", seedCfg.Path(),
				"name", patient.FullName(),
			)
			return nil
		},
	}
}
