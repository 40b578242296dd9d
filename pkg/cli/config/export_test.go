package config

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, sqlitePath string) *Repository {
	return &Repository{backend: backend, sqlitePath: sqlitePath}
}

// NewLLMForTest creates an LLM config for testing purposes
func NewLLMForTest(provider, openaiAPIKey, openaiBaseURL string) *LLM {
	return &LLM{
		provider:      provider,
		openaiAPIKey:  openaiAPIKey,
		openaiBaseURL: openaiBaseURL,
		openaiModel:   "gpt-4o-mini",
		temperature:   0.6,
		wordBudget:    500,
	}
}

// WithSampling overrides temperature and word budget for testing purposes
func (x *LLM) WithSampling(temperature float64, wordBudget int) *LLM {
	x.temperature = temperature
	x.wordBudget = wordBudget
	return x
}

// NewExtractorForTest creates an Extractor config for testing purposes
func NewExtractorForTest(strategy string) *Extractor {
	return &Extractor{strategy: strategy}
}

// NewGraphForTest creates a Graph config for testing purposes
func NewGraphForTest(backend string) *Graph {
	return &Graph{backend: backend}
}

// RedactFilter is exported for testing
var RedactFilter = redactFilter
