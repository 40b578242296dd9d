package interfaces

import (
	"context"

	"github.com/secmon-lab/healthbot/pkg/domain/model"
)

// EntityExtractor pulls structured entities out of a patient message
type EntityExtractor interface {
	Extract(ctx context.Context, text string) (model.Entities, error)
}

// ReplyGenerator produces the assistant reply for a conversation
type ReplyGenerator interface {
	Reply(ctx context.Context, conv *model.Conversation) (string, error)
}

// Summarizer produces a conversation summary and medical insights. turns are
// ordered oldest first.
type Summarizer interface {
	Summarize(ctx context.Context, turns []*model.Turn) (*model.Summary, error)
}

// LLM is a provider able to serve every language model task
type LLM interface {
	ReplyGenerator
	EntityExtractor
	Summarizer
}
