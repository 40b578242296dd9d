package usecase

import (
	"time"

	"github.com/secmon-lab/healthbot/pkg/domain/interfaces"
	"github.com/secmon-lab/healthbot/pkg/service/classifier"
)

// DefaultLLMTimeout bounds each reply, extraction and summary call
const DefaultLLMTimeout = 30 * time.Second

type UseCases struct {
	repo       interfaces.Repository
	classifier *classifier.Classifier
	reply      interfaces.ReplyGenerator
	graph      interfaces.KnowledgeGraph
	summarizer interfaces.Summarizer
	llmTimeout time.Duration

	Chat    *ChatUseCase
	Patient *PatientUseCase
}

type Option func(*UseCases)

// WithClassifier replaces the default lexicon-only classifier
func WithClassifier(c *classifier.Classifier) Option {
	return func(uc *UseCases) {
		uc.classifier = c
	}
}

// WithReplyGenerator sets the LLM used for replies. Without one every allowed
// message gets the apology reply.
func WithReplyGenerator(g interfaces.ReplyGenerator) Option {
	return func(uc *UseCases) {
		uc.reply = g
	}
}

// WithKnowledgeGraph enables patient knowledge projection
func WithKnowledgeGraph(g interfaces.KnowledgeGraph) Option {
	return func(uc *UseCases) {
		uc.graph = g
	}
}

// WithSummarizer enables conversation summaries
func WithSummarizer(s interfaces.Summarizer) Option {
	return func(uc *UseCases) {
		uc.summarizer = s
	}
}

// WithLLMTimeout overrides DefaultLLMTimeout
func WithLLMTimeout(d time.Duration) Option {
	return func(uc *UseCases) {
		uc.llmTimeout = d
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:       repo,
		llmTimeout: DefaultLLMTimeout,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.classifier == nil {
		uc.classifier = classifier.New(nil)
	}

	uc.Chat = NewChatUseCase(repo, uc.classifier, uc.reply, uc.graph, uc.llmTimeout)
	uc.Patient = NewPatientUseCase(repo, uc.graph, uc.summarizer, uc.llmTimeout)

	return uc
}
