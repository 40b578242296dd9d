package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/healthbot/pkg/service/classifier"
	"github.com/urfave/cli/v3"
)

// Lexicon holds the path of an optional keyword list override
type Lexicon struct {
	path string
}

func (x *Lexicon) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "lexicon-file",
			Category:    "Classifier",
			Usage:       "TOML file overriding classifier keyword lists",
			Sources:     cli.EnvVars("HEALTHBOT_LEXICON_FILE"),
			Destination: &x.path,
		},
	}
}

// Path returns the configured file path
func (x *Lexicon) Path() string {
	return x.path
}

// Configure returns the default lexicon merged with the file, if any
func (x *Lexicon) Configure() (*classifier.Lexicon, error) {
	if x.path == "" {
		return classifier.DefaultLexicon(), nil
	}
	return LoadLexicon(x.path)
}

// LoadLexicon reads a TOML keyword list file. Lists missing from the file
// keep their defaults.
func LoadLexicon(path string) (*classifier.Lexicon, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "lexicon file not found", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read lexicon file", goerr.V(ConfigPathKey, path))
	}

	var override classifier.Lexicon
	if err := toml.Unmarshal(data, &override); err != nil {
		return nil, goerr.Wrap(ErrInvalidLexicon, "failed to parse lexicon TOML",
			goerr.V(ConfigPathKey, path),
			goerr.V("error", err.Error()))
	}

	lexicon := classifier.DefaultLexicon().Merge(&override)
	if err := lexicon.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidLexicon, err.Error(), goerr.V(ConfigPathKey, path))
	}
	return lexicon, nil
}
