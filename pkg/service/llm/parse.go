package llm

import (
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/healthbot/pkg/domain/model"
)

// ErrEmptyResponse is returned when the provider answers without any text
var ErrEmptyResponse = goerr.New("LLM returned empty response")

// trimJSON removes a surrounding markdown code fence if present
func trimJSON(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// parseEntities decodes an extraction response. Kinds that are not
// lower_snake_case are dropped.
func parseEntities(text string) (model.Entities, error) {
	var raw model.Entities
	if err := json.Unmarshal([]byte(trimJSON(text)), &raw); err != nil {
		return nil, goerr.Wrap(err, "failed to parse entity response", goerr.V("response", text))
	}

	entities := model.Entities{}
	for _, kind := range raw.Kinds() {
		if err := kind.Validate(); err != nil {
			continue
		}
		entities.Add(kind, raw.Values(kind)...)
	}
	return entities, nil
}

type summaryResponse struct {
	Summary         string `json:"summary"`
	MedicalInsights string `json:"medical_insights"`
}

func parseSummary(text string) (*model.Summary, error) {
	var resp summaryResponse
	if err := json.Unmarshal([]byte(trimJSON(text)), &resp); err != nil {
		return nil, goerr.Wrap(err, "failed to parse summary response", goerr.V("response", text))
	}

	summary := &model.Summary{
		Summary:         resp.Summary,
		MedicalInsights: resp.MedicalInsights,
	}
	if summary.Summary == "" {
		summary.Summary = "Could not generate summary."
	}
	if summary.MedicalInsights == "" {
		summary.MedicalInsights = "Could not extract medical insights."
	}
	return summary, nil
}
