package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	openai "github.com/sashabaranov/go-openai"
	"github.com/secmon-lab/healthbot/pkg/domain/model"
	"github.com/secmon-lab/healthbot/pkg/domain/types"
	"github.com/secmon-lab/healthbot/pkg/service/llm"
)

// newOpenAIServer serves chat completions with a fixed content and records requests
func newOpenAIServer(t *testing.T, content string, requests *[]openai.ChatCompletionRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		*requests = append(*requests, req)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:    "chatcmpl-test",
			Model: req.Model,
			Choices: []openai.ChatCompletionChoice{
				{
					Index:        0,
					Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
					FinishReason: openai.FinishReasonStop,
				},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewOpenAI(t *testing.T) {
	_, err := llm.NewOpenAI("")
	gt.Value(t, err).NotNil()
}

func TestOpenAI_Reply(t *testing.T) {
	var requests []openai.ChatCompletionRequest
	srv := newOpenAIServer(t, " Keep taking it with food. ", &requests)

	svc, err := llm.NewOpenAI("test-key",
		llm.WithOpenAIBaseURL(srv.URL+"/v1"),
		llm.WithOpenAIModel("gpt-test"),
	)
	gt.NoError(t, err).Required()

	reply, err := svc.Reply(context.Background(), &model.Conversation{
		Patient: newPatient(),
		History: []*model.Turn{turn(types.SenderPatient, "I started metformin")},
		Message: "should I take it with food?",
	})
	gt.NoError(t, err).Required()
	gt.Value(t, reply).Equal("Keep taking it with food.")

	gt.Array(t, requests).Length(1)
	req := requests[0]
	gt.Value(t, req.Model).Equal("gpt-test")
	gt.Array(t, req.Messages).Length(3)
	gt.Value(t, req.Messages[0].Role).Equal(openai.ChatMessageRoleSystem)
	gt.Value(t, req.Messages[1].Role).Equal(openai.ChatMessageRoleUser)
	gt.Value(t, req.Messages[2].Content).Equal("should I take it with food?")
}

func TestOpenAI_Extract(t *testing.T) {
	var requests []openai.ChatCompletionRequest
	srv := newOpenAIServer(t, `{"medication":"metformin","symptom":["nausea","dizziness"]}`, &requests)

	svc, err := llm.NewOpenAI("test-key", llm.WithOpenAIBaseURL(srv.URL+"/v1"))
	gt.NoError(t, err).Required()

	entities, err := svc.Extract(context.Background(), "metformin gives me nausea and dizziness")
	gt.NoError(t, err).Required()
	gt.Array(t, entities.Values(types.EntityMedication)).Equal([]string{"metformin"})
	gt.Array(t, entities.Values(types.EntitySymptom)).Equal([]string{"nausea", "dizziness"})

	gt.Value(t, requests[0].Model).Equal(llm.DefaultOpenAIModel)
	gt.Value(t, requests[0].ResponseFormat).NotNil()
	gt.Value(t, requests[0].ResponseFormat.Type).Equal(openai.ChatCompletionResponseFormatTypeJSONObject)
}

func TestOpenAI_Summarize(t *testing.T) {
	var requests []openai.ChatCompletionRequest
	srv := newOpenAIServer(t, `{"summary":"Asked about diet","medical_insights":"Diabetic diet"}`, &requests)

	svc, err := llm.NewOpenAI("test-key", llm.WithOpenAIBaseURL(srv.URL+"/v1"))
	gt.NoError(t, err).Required()

	summary, err := svc.Summarize(context.Background(), []*model.Turn{turn(types.SenderPatient, "what can I eat?")})
	gt.NoError(t, err).Required()
	gt.Value(t, summary).Equal(&model.Summary{Summary: "Asked about diet", MedicalInsights: "Diabetic diet"})
}

func TestOpenAI_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom","type":"server_error"}}`, http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	svc, err := llm.NewOpenAI("test-key", llm.WithOpenAIBaseURL(srv.URL+"/v1"))
	gt.NoError(t, err).Required()

	_, err = svc.Reply(context.Background(), &model.Conversation{Patient: newPatient(), Message: "hello doctor"})
	gt.Value(t, err).NotNil()
}
