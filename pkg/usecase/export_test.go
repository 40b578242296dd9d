package usecase

import "github.com/secmon-lab/healthbot/pkg/domain/model"

// GenerateReply is exported for testing
var GenerateReply = (*ChatUseCase).generateReply

// FallbackSummary is exported for testing
func FallbackSummary() *model.Summary {
	return &model.Summary{Summary: SummaryFallback, MedicalInsights: InsightsFallback}
}
