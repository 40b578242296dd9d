package llm

import (
	"context"
	"slices"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	openai "github.com/sashabaranov/go-openai"
	"github.com/secmon-lab/healthbot/pkg/domain/interfaces"
	"github.com/secmon-lab/healthbot/pkg/domain/model"
)

// DefaultOpenAIModel is used when no model is configured
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAI generates replies, entities and summaries through the OpenAI chat API
type OpenAI struct {
	client      *openai.Client
	model       string
	temperature float32
	wordBudget  int
}

var (
	_ interfaces.ReplyGenerator  = &OpenAI{}
	_ interfaces.EntityExtractor = &OpenAI{}
	_ interfaces.Summarizer      = &OpenAI{}
)

type openAIConfig struct {
	baseURL     string
	model       string
	temperature float32
	wordBudget  int
}

// OpenAIOption is a functional option for OpenAI
type OpenAIOption func(*openAIConfig)

// WithOpenAIModel sets the chat model
func WithOpenAIModel(model string) OpenAIOption {
	return func(c *openAIConfig) {
		c.model = model
	}
}

// WithOpenAIBaseURL points the client at a compatible endpoint
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(c *openAIConfig) {
		c.baseURL = url
	}
}

// WithOpenAITemperature sets the sampling temperature of replies
func WithOpenAITemperature(t float32) OpenAIOption {
	return func(c *openAIConfig) {
		c.temperature = t
	}
}

// WithOpenAIWordBudget overrides the prompt word budget
func WithOpenAIWordBudget(n int) OpenAIOption {
	return func(c *openAIConfig) {
		c.wordBudget = n
	}
}

// NewOpenAI creates an OpenAI backed service
func NewOpenAI(apiKey string, opts ...OpenAIOption) (*OpenAI, error) {
	if apiKey == "" {
		return nil, goerr.New("OpenAI API key is required")
	}

	cfg := &openAIConfig{
		model:       DefaultOpenAIModel,
		temperature: DefaultTemperature,
		wordBudget:  DefaultWordBudget,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.baseURL != "" {
		clientCfg.BaseURL = cfg.baseURL
	}

	return &OpenAI{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.model,
		temperature: cfg.temperature,
		wordBudget:  cfg.wordBudget,
	}, nil
}

// Reply generates the assistant reply for conv
func (o *OpenAI) Reply(ctx context.Context, conv *model.Conversation) (string, error) {
	messages := BuildMessages(conv, o.wordBudget)

	oaMsgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content})
	}

	text, err := o.complete(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    oaMsgs,
		Temperature: o.temperature,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Extract asks the model for the entities mentioned in text
func (o *OpenAI) Extract(ctx context.Context, text string) (model.Entities, error) {
	resp, err := o.complete(ctx, o.jsonRequest(extractionPrompt+" Fields: "+entityFieldList(), "Message: "+text))
	if err != nil {
		return nil, err
	}
	return parseEntities(resp)
}

// Summarize produces a summary and medical insights of turns
func (o *OpenAI) Summarize(ctx context.Context, turns []*model.Turn) (*model.Summary, error) {
	resp, err := o.complete(ctx, o.jsonRequest(summaryPrompt, "Conversation:\n"+renderConversation(turns)))
	if err != nil {
		return nil, err
	}
	return parseSummary(resp)
}

func (o *OpenAI) jsonRequest(system, user string) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
}

func (o *OpenAI) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create chat completion", goerr.V("model", req.Model))
	}
	if len(resp.Choices) == 0 {
		return "", goerr.Wrap(ErrEmptyResponse, "no choices in chat completion", goerr.V("model", req.Model))
	}
	return resp.Choices[0].Message.Content, nil
}

func entityFieldList() string {
	var fields []string
	for kind, desc := range entityDescriptions {
		fields = append(fields, kind.String()+" ("+desc+")")
	}
	slices.Sort(fields)
	return strings.Join(fields, ", ")
}
