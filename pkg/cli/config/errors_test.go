package config_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/healthbot/pkg/cli/config"
)

func TestConfigErrors_SentinelIdentification(t *testing.T) {
	sentinels := []struct {
		name string
		err  error
	}{
		{"ErrConfigNotFound", config.ErrConfigNotFound},
		{"ErrInvalidLexicon", config.ErrInvalidLexicon},
		{"ErrInvalidPatientFile", config.ErrInvalidPatientFile},
		{"ErrInvalidBackend", config.ErrInvalidBackend},
		{"ErrMissingFlag", config.ErrMissingFlag},
		{"ErrLLMNotConfigured", config.ErrLLMNotConfigured},
		{"ErrInvalidFlag", config.ErrInvalidFlag},
	}

	for _, tt := range sentinels {
		t.Run(tt.name+" can be identified", func(t *testing.T) {
			wrapped := goerr.Wrap(tt.err, "wrapped", goerr.V(config.ConfigPathKey, "x.toml"))
			gt.Bool(t, errors.Is(wrapped, tt.err)).True()
		})
	}

	t.Run("sentinels are distinct", func(t *testing.T) {
		for i, a := range sentinels {
			for j, b := range sentinels {
				if i == j {
					continue
				}
				gt.Bool(t, errors.Is(a.err, b.err)).False()
			}
		}
	})
}
