package document

import (
	"context"

	"github.com/futig/schedule-backend/internal/entity"
)

type DocumentUsecase interface {
	AnalyzeAll(ctx context.Context, sources []entity.DocumentSource, opts entity.ProcessingOptions, model string) []entity.DocumentAnalysis
	Materialize(ctx context.Context, analyses []entity.DocumentAnalysis, opts entity.ProcessingOptions, model string) (string, *entity.DocumentInsights)
}
