package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/secmon-lab/healthbot/pkg/domain/interfaces"
	"github.com/secmon-lab/healthbot/pkg/service/llm"
	"github.com/secmon-lab/healthbot/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// LLM holds configuration for the language model provider
type LLM struct {
	provider    string
	timeout     time.Duration
	temperature float64
	wordBudget  int

	geminiProject  string
	geminiLocation string
	geminiModel    string

	openaiAPIKey  string
	openaiModel   string
	openaiBaseURL string
}

// Flags returns CLI flags for LLM configuration
func (x *LLM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "llm-provider",
			Category:    "LLM",
			Usage:       "LLM provider (gemini, openai or none)",
			Value:       "none",
			Sources:     cli.EnvVars("HEALTHBOT_LLM_PROVIDER"),
			Destination: &x.provider,
		},
		&cli.DurationFlag{
			Name:        "llm-timeout",
			Category:    "LLM",
			Usage:       "Timeout of each LLM call",
			Value:       usecase.DefaultLLMTimeout,
			Sources:     cli.EnvVars("HEALTHBOT_LLM_TIMEOUT"),
			Destination: &x.timeout,
		},
		&cli.FloatFlag{
			Name:        "llm-temperature",
			Category:    "LLM",
			Usage:       "Sampling temperature of LLM calls",
			Value:       llm.DefaultTemperature,
			Sources:     cli.EnvVars("HEALTHBOT_LLM_TEMPERATURE"),
			Destination: &x.temperature,
		},
		&cli.IntFlag{
			Name:        "llm-word-budget",
			Category:    "LLM",
			Usage:       "Maximum words of system prompt plus history in a reply prompt",
			Value:       llm.DefaultWordBudget,
			Sources:     cli.EnvVars("HEALTHBOT_LLM_WORD_BUDGET"),
			Destination: &x.wordBudget,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Category:    "LLM",
			Usage:       "Google Cloud project ID for Gemini API",
			Sources:     cli.EnvVars("HEALTHBOT_GEMINI_PROJECT"),
			Destination: &x.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Category:    "LLM",
			Usage:       "Google Cloud location for Gemini API",
			Value:       "us-central1",
			Sources:     cli.EnvVars("HEALTHBOT_GEMINI_LOCATION"),
			Destination: &x.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Category:    "LLM",
			Usage:       "Gemini model name (provider default when empty)",
			Sources:     cli.EnvVars("HEALTHBOT_GEMINI_MODEL"),
			Destination: &x.geminiModel,
		},
		&cli.StringFlag{
			Name:        "openai-api-key",
			Category:    "LLM",
			Usage:       "OpenAI API key",
			Sources:     cli.EnvVars("HEALTHBOT_OPENAI_API_KEY", "OPENAI_API_KEY"),
			Destination: &x.openaiAPIKey,
		},
		&cli.StringFlag{
			Name:        "openai-model",
			Category:    "LLM",
			Usage:       "OpenAI chat model",
			Value:       llm.DefaultOpenAIModel,
			Sources:     cli.EnvVars("HEALTHBOT_OPENAI_MODEL"),
			Destination: &x.openaiModel,
		},
		&cli.StringFlag{
			Name:        "openai-base-url",
			Category:    "LLM",
			Usage:       "OpenAI compatible API base URL",
			Sources:     cli.EnvVars("HEALTHBOT_OPENAI_BASE_URL"),
			Destination: &x.openaiBaseURL,
		},
	}
}

func (x LLM) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("provider", x.provider),
		slog.Duration("timeout", x.timeout),
		slog.Float64("temperature", x.temperature),
		slog.Int("word_budget", x.wordBudget),
		slog.String("gemini_project", x.geminiProject),
		slog.String("gemini_location", x.geminiLocation),
		slog.String("openai_model", x.openaiModel),
	)
}

// Timeout returns the per-call LLM timeout
func (x *LLM) Timeout() time.Duration {
	return x.timeout
}

// Configure creates the provider client. It returns nil when the provider is
// "none" so that LLM backed features degrade to their fallbacks.
func (x *LLM) Configure(ctx context.Context) (interfaces.LLM, error) {
	if x.provider != "" && x.provider != "none" {
		if x.wordBudget < 1 {
			return nil, goerr.Wrap(ErrInvalidFlag, "llm-word-budget must be positive",
				goerr.V(FlagKey, "llm-word-budget"), goerr.V("value", x.wordBudget))
		}
		if x.temperature < 0 || x.temperature > 2 {
			return nil, goerr.Wrap(ErrInvalidFlag, "llm-temperature must be between 0 and 2",
				goerr.V(FlagKey, "llm-temperature"), goerr.V("value", x.temperature))
		}
	}

	switch x.provider {
	case "", "none":
		return nil, nil

	case "gemini":
		if x.geminiProject == "" {
			return nil, goerr.Wrap(ErrMissingFlag, "gemini-project is required for gemini provider",
				goerr.V(FlagKey, "gemini-project"))
		}

		opts := []gemini.Option{gemini.WithTemperature(float32(x.temperature))}
		if x.geminiModel != "" {
			opts = append(opts, gemini.WithModel(x.geminiModel))
		}
		client, err := gemini.New(ctx, x.geminiProject, x.geminiLocation, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Gemini client")
		}
		svc, err := llm.NewGollem(client, llm.WithGollemWordBudget(x.wordBudget))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Gemini service")
		}
		return svc, nil

	case "openai":
		opts := []llm.OpenAIOption{
			llm.WithOpenAIModel(x.openaiModel),
			llm.WithOpenAITemperature(float32(x.temperature)),
			llm.WithOpenAIWordBudget(x.wordBudget),
		}
		if x.openaiBaseURL != "" {
			opts = append(opts, llm.WithOpenAIBaseURL(x.openaiBaseURL))
		}
		client, err := llm.NewOpenAI(x.openaiAPIKey, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create OpenAI client")
		}
		return client, nil

	default:
		return nil, goerr.Wrap(ErrInvalidBackend, "invalid LLM provider", goerr.V(BackendKey, x.provider))
	}
}
