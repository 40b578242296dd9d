package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/healthbot/pkg/domain/model"
	"github.com/secmon-lab/healthbot/pkg/domain/types"
	"github.com/secmon-lab/healthbot/pkg/service/llm"
)

// mockLLMSession is a mock gollem Session for testing
type mockLLMSession struct {
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

func (s *mockLLMSession) Generate(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
	return s.generateContentFn(ctx, input...)
}

func (s *mockLLMSession) Stream(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	return s.generateContentFn(ctx, input...)
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) History() (*gollem.History, error) {
	return nil, nil
}

func (s *mockLLMSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

// mockLLMClient is a mock gollem LLMClient for testing
type mockLLMClient struct {
	sessions int
	prompts  []string
	schemas  []*gollem.Parameter
	systems  []string
	response string
	err      error
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	c.sessions++
	cfg := gollem.NewSessionConfig(options...)
	c.schemas = append(c.schemas, cfg.ResponseSchema())
	c.systems = append(c.systems, cfg.SystemPrompt())
	return &mockLLMSession{
		generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
			for _, in := range input {
				if text, ok := in.(gollem.Text); ok {
					c.prompts = append(c.prompts, string(text))
				}
			}
			if c.err != nil {
				return nil, c.err
			}
			return &gollem.Response{Texts: []string{c.response}}, nil
		},
	}, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	return nil, nil
}

func TestNewGollem(t *testing.T) {
	_, err := llm.NewGollem(nil)
	gt.Value(t, err).NotNil()
}

func TestGollem_Reply(t *testing.T) {
	client := &mockLLMClient{response: "  Drink plenty of water.\n"}
	svc, err := llm.NewGollem(client)
	gt.NoError(t, err).Required()

	reply, err := svc.Reply(context.Background(), &model.Conversation{
		Patient: newPatient(),
		History: []*model.Turn{
			turn(types.SenderPatient, "I have a headache"),
			turn(types.SenderBot, "I'm sorry to hear that."),
		},
		Message: "what should I do?",
	})
	gt.NoError(t, err).Required()
	gt.Value(t, reply).Equal("Drink plenty of water.")
	gt.Array(t, client.prompts).Length(1)
	gt.Value(t, client.prompts[0]).Equal(
		"Patient: I have a headache\nHealthBot: I'm sorry to hear that.\nPatient: what should I do?\nHealthBot:")
}

func TestGollem_ReplyWordBudget(t *testing.T) {
	client := &mockLLMClient{response: "ok"}
	svc, err := llm.NewGollem(client, llm.WithGollemWordBudget(1))
	gt.NoError(t, err).Required()

	_, err = svc.Reply(context.Background(), &model.Conversation{
		Patient: newPatient(),
		History: []*model.Turn{turn(types.SenderPatient, "I have a headache")},
		Message: "what should I do?",
	})
	gt.NoError(t, err).Required()
	gt.Value(t, client.prompts[0]).Equal("Patient: what should I do?\nHealthBot:")
}

func TestGollem_ReplyError(t *testing.T) {
	svc, err := llm.NewGollem(&mockLLMClient{err: errors.New("quota exceeded")})
	gt.NoError(t, err).Required()

	_, err = svc.Reply(context.Background(), &model.Conversation{Patient: newPatient(), Message: "hi doctor"})
	gt.Value(t, err).NotNil()
}

func TestGollem_Extract(t *testing.T) {
	t.Run("parses scalars and lists", func(t *testing.T) {
		client := &mockLLMClient{response: "```json\n" +
			`{"medication":["metformin"],"frequency":"twice a day","symptom":[],"date":"none","Bad Kind":"x"}` +
			"\n```"}
		svc, err := llm.NewGollem(client)
		gt.NoError(t, err).Required()

		entities, err := svc.Extract(context.Background(), "I take metformin twice a day")
		gt.NoError(t, err).Required()
		gt.Array(t, entities.Values(types.EntityMedication)).Equal([]string{"metformin"})
		gt.Array(t, entities.Values(types.EntityFrequency)).Equal([]string{"twice a day"})
		gt.Bool(t, entities.Has(types.EntitySymptom)).False()
		gt.Bool(t, entities.Has(types.EntityDate)).False()
		gt.Array(t, entities.Kinds()).Length(2)
		gt.Value(t, client.prompts[0]).Equal("Message: I take metformin twice a day")
	})

	t.Run("asks for lists in prompt and schema", func(t *testing.T) {
		client := &mockLLMClient{response: `{}`}
		svc, err := llm.NewGollem(client)
		gt.NoError(t, err).Required()

		_, err = svc.Extract(context.Background(), "I take metformin")
		gt.NoError(t, err).Required()

		gt.String(t, client.systems[0]).Contains("list of strings, even when only one value")
		schema := client.schemas[0]
		gt.NoError(t, schema.Validate()).Required()
		gt.Value(t, len(schema.Properties)).Equal(len(types.KnownEntityKinds()))
		for name, prop := range schema.Properties {
			gt.Value(t, prop.Type).Describef("property %s", name).Equal(gollem.TypeArray)
			gt.Value(t, prop.Items.Type).Equal(gollem.TypeString)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		svc, err := llm.NewGollem(&mockLLMClient{response: "not json"})
		gt.NoError(t, err).Required()
		_, err = svc.Extract(context.Background(), "metformin")
		gt.Value(t, err).NotNil()
	})
}

func TestGollem_Summarize(t *testing.T) {
	t.Run("parses summary", func(t *testing.T) {
		client := &mockLLMClient{response: `{"summary":"Talked about headaches","medical_insights":"Recurring headache"}`}
		svc, err := llm.NewGollem(client)
		gt.NoError(t, err).Required()

		summary, err := svc.Summarize(context.Background(), []*model.Turn{
			turn(types.SenderPatient, "I have a headache"),
			turn(types.SenderBot, "Since when?"),
		})
		gt.NoError(t, err).Required()
		gt.Value(t, summary.Summary).Equal("Talked about headaches")
		gt.Value(t, summary.MedicalInsights).Equal("Recurring headache")
		gt.String(t, client.prompts[0]).Contains("Patient: I have a headache\nBot: Since when?\n")
	})

	t.Run("response schema requires both fields", func(t *testing.T) {
		client := &mockLLMClient{response: `{"summary":"ok","medical_insights":"none"}`}
		svc, err := llm.NewGollem(client)
		gt.NoError(t, err).Required()

		_, err = svc.Summarize(context.Background(), nil)
		gt.NoError(t, err).Required()

		gt.Array(t, client.schemas).Length(1)
		schema := client.schemas[0]
		gt.Value(t, schema).NotNil()
		gt.NoError(t, schema.Validate()).Required()
		gt.Value(t, schema.Type).Equal(gollem.TypeObject)
		gt.Bool(t, schema.Properties["summary"].Required).True()
		gt.Bool(t, schema.Properties["medical_insights"].Required).True()
	})

	t.Run("missing fields get placeholders", func(t *testing.T) {
		svc, err := llm.NewGollem(&mockLLMClient{response: `{"summary":""}`})
		gt.NoError(t, err).Required()

		summary, err := svc.Summarize(context.Background(), nil)
		gt.NoError(t, err).Required()
		gt.Value(t, summary.Summary).Equal("Could not generate summary.")
		gt.Value(t, summary.MedicalInsights).Equal("Could not extract medical insights.")
	})
}
