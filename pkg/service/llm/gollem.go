package llm

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/healthbot/pkg/domain/interfaces"
	"github.com/secmon-lab/healthbot/pkg/domain/model"
	"github.com/secmon-lab/healthbot/pkg/domain/types"
)

// Gollem generates replies, entities and summaries through a gollem LLM client
type Gollem struct {
	llmClient  gollem.LLMClient
	wordBudget int
}

var (
	_ interfaces.ReplyGenerator  = &Gollem{}
	_ interfaces.EntityExtractor = &Gollem{}
	_ interfaces.Summarizer      = &Gollem{}
)

// GollemOption is a functional option for Gollem
type GollemOption func(*Gollem)

// WithGollemWordBudget overrides the prompt word budget
func WithGollemWordBudget(n int) GollemOption {
	return func(g *Gollem) {
		g.wordBudget = n
	}
}

// NewGollem creates a Gollem backed service
func NewGollem(llmClient gollem.LLMClient, opts ...GollemOption) (*Gollem, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	g := &Gollem{
		llmClient:  llmClient,
		wordBudget: DefaultWordBudget,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Reply generates the assistant reply for conv
func (g *Gollem) Reply(ctx context.Context, conv *model.Conversation) (string, error) {
	messages := BuildMessages(conv, g.wordBudget)

	session, err := g.llmClient.NewSession(ctx,
		gollem.WithSessionSystemPrompt(messages[0].Content),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session")
	}

	text, err := generateText(ctx, session, renderTranscript(messages[1:]))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Extract asks the LLM for the entities mentioned in text
func (g *Gollem) Extract(ctx context.Context, text string) (model.Entities, error) {
	session, err := g.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(entitySchema()),
		gollem.WithSessionSystemPrompt(extractionPrompt),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := generateText(ctx, session, "Message: "+text)
	if err != nil {
		return nil, err
	}
	return parseEntities(resp)
}

// Summarize produces a summary and medical insights of turns
func (g *Gollem) Summarize(ctx context.Context, turns []*model.Turn) (*model.Summary, error) {
	session, err := g.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(summarySchema()),
		gollem.WithSessionSystemPrompt(summaryPrompt),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := generateText(ctx, session, "Conversation:\n"+renderConversation(turns))
	if err != nil {
		return nil, err
	}
	return parseSummary(resp)
}

func generateText(ctx context.Context, session gollem.Session, prompt string) (string, error) {
	resp, err := session.Generate(ctx, []gollem.Input{gollem.Text(prompt)})
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate content from LLM")
	}
	if resp == nil || len(resp.Texts) == 0 {
		return "", goerr.Wrap(ErrEmptyResponse, "no text in LLM response")
	}
	return strings.Join(resp.Texts, ""), nil
}

func entitySchema() *gollem.Parameter {
	properties := make(map[string]*gollem.Parameter, len(entityDescriptions))
	for _, kind := range types.KnownEntityKinds() {
		properties[kind.String()] = &gollem.Parameter{
			Type:        gollem.TypeArray,
			Description: entityDescriptions[kind],
			Items: &gollem.Parameter{
				Type: gollem.TypeString,
			},
		}
	}

	return &gollem.Parameter{
		Type:       gollem.TypeObject,
		Properties: properties,
	}
}

func summarySchema() *gollem.Parameter {
	return &gollem.Parameter{
		Type: gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"summary": {
				Type:        gollem.TypeString,
				Description: "A brief summary of the conversation",
				Required:    true,
			},
			"medical_insights": {
				Type:        gollem.TypeString,
				Description: "Any medical insights or important information mentioned",
				Required:    true,
			},
		},
	}
}
