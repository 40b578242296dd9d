package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/healthbot/pkg/cli/config"
	"github.com/secmon-lab/healthbot/pkg/service/classifier"
	"github.com/urfave/cli/v3"
)

func cmdClassify() *cli.Command {
	var now string
	var asJSON bool
	var llmCfg config.LLM
	var extractorCfg config.Extractor
	var lexiconCfg config.Lexicon
	var seedCfg config.Seed

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "now",
			Usage:       "Reference time for weekday resolution (RFC3339, default current time)",
			Destination: &now,
		},
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "Print the result as JSON",
			Destination: &asJSON,
		},
	}
	flags = append(flags, llmCfg.Flags()...)
	flags = append(flags, extractorCfg.Flags()...)
	flags = append(flags, lexiconCfg.Flags()...)
	flags = append(flags, seedCfg.Flags()...)

	return &cli.Command{
		Name:      "classify",
		Aliases:   []string{"c"},
		Usage:     "Classify a single patient message",
		ArgsUsage: "<message>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			message := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(message) == "" {
				return goerr.New("message argument is required")
			}

			var opts []classifier.Option
			if now != "" {
				ts, err := time.Parse(time.RFC3339, now)
				if err != nil {
					return goerr.Wrap(err, "invalid --now", goerr.V("now", now))
				}
				opts = append(opts, classifier.WithClock(func() time.Time { return ts }))
			}

			llmSvc, err := llmCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure LLM")
			}
			cls, err := buildClassifier(llmSvc, &extractorCfg, &lexiconCfg, opts...)
			if err != nil {
				return err
			}

			patient, err := seedCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load patient file")
			}

			result := cls.Classify(ctx, classifier.Input{Message: message, Patient: patient})

			w := c.Root().Writer
			if w == nil {
				w = os.Stdout
			}
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return goerr.Wrap(err, "failed to encode result")
				}
				return nil
			}
			printResult(w, result)
			return nil
		},
	}
}

func printResult(w io.Writer, result *classifier.Result) {
	label := color.New(color.FgCyan, color.Bold)
	ok := color.New(color.FgGreen)
	ng := color.New(color.FgRed)

	label.Fprint(w, "allowed:  ")
	if result.Allowed {
		ok.Fprintln(w, "yes")
	} else {
		ng.Fprintln(w, "no")
		label.Fprint(w, "reply:    ")
		_, _ = io.WriteString(w, classifier.RefusalReply+"\n")
		return
	}

	label.Fprint(w, "request:  ")
	if result.Request == nil {
		_, _ = io.WriteString(w, "none\n")
	} else {
		ok.Fprintf(w, "%s (%s)\n", result.Request.Kind.Label(), result.Request.Details)
		label.Fprint(w, "summary:  ")
		_, _ = io.WriteString(w, result.Summary+"\n")
		label.Fprint(w, "time:     ")
		_, _ = io.WriteString(w, result.RequestedTime.String()+"\n")
	}

	for _, kind := range result.Entities.Kinds() {
		label.Fprintf(w, "%-9s ", kind.String()+":")
		_, _ = io.WriteString(w, strings.Join(result.Entities.Values(kind), ", ")+"\n")
	}
}
