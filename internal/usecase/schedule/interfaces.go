package schedule

import (
	"context"

	"github.com/futig/schedule-backend/internal/entity"
)

type LLMConnector interface {
	Complete(ctx context.Context, req *entity.LLMChatRequest) (string, error)
}

type DocumentAnalyzer interface {
	AnalyzeAll(ctx context.Context, sources []entity.DocumentSource, opts entity.ProcessingOptions, model string) []entity.DocumentAnalysis
	Materialize(ctx context.Context, analyses []entity.DocumentAnalysis, opts entity.ProcessingOptions, model string) (string, *entity.DocumentInsights)
}
