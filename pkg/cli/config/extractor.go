package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/healthbot/pkg/domain/interfaces"
	"github.com/secmon-lab/healthbot/pkg/service/extractor"
	"github.com/urfave/cli/v3"
)

// Extractor selects the entity extraction strategy
type Extractor struct {
	strategy string
}

func (x *Extractor) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "extractor",
			Category:    "LLM",
			Usage:       "Entity extraction strategy (lexicon or llm)",
			Value:       "lexicon",
			Sources:     cli.EnvVars("HEALTHBOT_EXTRACTOR"),
			Destination: &x.strategy,
		},
	}
}

// Strategy returns the configured strategy name
func (x *Extractor) Strategy() string {
	return x.strategy
}

// Configure returns the extractor. The llm strategy needs a configured provider.
func (x *Extractor) Configure(provider interfaces.LLM) (interfaces.EntityExtractor, error) {
	switch x.strategy {
	case "", "lexicon":
		return extractor.NewLexicon(), nil

	case "llm":
		if provider == nil {
			return nil, goerr.Wrap(ErrLLMNotConfigured, "llm extractor requires --llm-provider")
		}
		return provider, nil

	default:
		return nil, goerr.Wrap(ErrInvalidBackend, "invalid extractor strategy", goerr.V(BackendKey, x.strategy))
	}
}
