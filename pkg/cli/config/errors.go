package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound     = goerr.New("configuration file not found")
	ErrInvalidLexicon     = goerr.New("invalid lexicon")
	ErrInvalidPatientFile = goerr.New("invalid patient file")
	ErrInvalidBackend     = goerr.New("invalid backend")
	ErrMissingFlag        = goerr.New("required flag is missing")
	ErrLLMNotConfigured   = goerr.New("LLM provider is not configured")
	ErrInvalidFlag        = goerr.New("invalid flag value")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	BackendKey    = "backend"
	FlagKey       = "flag"
)
