package schedule

import (
	"context"

	"github.com/futig/schedule-backend/internal/entity"
)

type ScheduleUsecase interface {
	Generate(ctx context.Context, req *entity.ScheduleRequest) (*entity.ScheduleResult, error)
}
