package config_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	openai "github.com/sashabaranov/go-openai"
	"github.com/secmon-lab/healthbot/pkg/cli/config"
	"github.com/secmon-lab/healthbot/pkg/domain/model"
	"github.com/secmon-lab/healthbot/pkg/domain/types"
)

func TestLLM_ConfigureSampling(t *testing.T) {
	var requests []openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		requests = append(requests, req)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "ok"}},
			},
		})
	}))
	defer srv.Close()

	conv := &model.Conversation{
		Patient: &model.Patient{FirstName: "John", LastName: "Doe", DoctorName: "Smith"},
		History: []*model.Turn{{Sender: types.SenderPatient, Text: "I have back pain"}},
		Message: "what should I do?",
	}

	t.Run("temperature and word budget reach the provider", func(t *testing.T) {
		requests = nil
		svc, err := config.NewLLMForTest("openai", "sk-test", srv.URL+"/v1").
			WithSampling(0.2, 1).
			Configure(context.Background())
		gt.NoError(t, err).Required()

		_, err = svc.Reply(context.Background(), conv)
		gt.NoError(t, err).Required()

		gt.Array(t, requests).Length(1)
		gt.Value(t, requests[0].Temperature).Equal(float32(0.2))
		// history does not fit in a one word budget
		gt.Array(t, requests[0].Messages).Length(2)
	})

	t.Run("default budget keeps history", func(t *testing.T) {
		requests = nil
		svc, err := config.NewLLMForTest("openai", "sk-test", srv.URL+"/v1").Configure(context.Background())
		gt.NoError(t, err).Required()

		_, err = svc.Reply(context.Background(), conv)
		gt.NoError(t, err).Required()

		gt.Array(t, requests).Length(1)
		gt.Value(t, requests[0].Temperature).Equal(float32(0.6))
		gt.Array(t, requests[0].Messages).Length(3)
	})

	t.Run("non positive word budget", func(t *testing.T) {
		_, err := config.NewLLMForTest("openai", "sk-test", srv.URL+"/v1").
			WithSampling(0.6, 0).
			Configure(context.Background())
		gt.Error(t, err).Is(config.ErrInvalidFlag)
	})

	t.Run("temperature out of range", func(t *testing.T) {
		_, err := config.NewLLMForTest("gemini", "", "").
			WithSampling(3, 500).
			Configure(context.Background())
		gt.Error(t, err).Is(config.ErrInvalidFlag)
	})

	t.Run("none ignores sampling flags", func(t *testing.T) {
		svc, err := config.NewLLMForTest("none", "", "").
			WithSampling(3, 0).
			Configure(context.Background())
		gt.NoError(t, err)
		gt.Value(t, svc).Nil()
	})
}
