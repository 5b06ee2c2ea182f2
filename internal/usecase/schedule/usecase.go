package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/futig/schedule-backend/internal/entity"
	"github.com/futig/schedule-backend/internal/pkg/logger"
	"github.com/futig/schedule-backend/internal/pkg/validator"
	"github.com/futig/schedule-backend/internal/recovery"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const malformedRecommendation = "Retry the request; the generator answered but its output could not be read as a schedule."

// ScheduleUsecase runs the whole pipeline for one request: document triage,
// the generator call and recovery of the answer.
type ScheduleUsecase struct {
	documents    DocumentAnalyzer
	orchestrator *Orchestrator
	validator    *validator.Validator
	model        string
	logger       *zap.Logger
}

// NewUsecase creates a new schedule use case
func NewUsecase(
	documents DocumentAnalyzer,
	orchestrator *Orchestrator,
	validator *validator.Validator,
	model string,
	logger *zap.Logger,
) *ScheduleUsecase {
	return &ScheduleUsecase{
		documents:    documents,
		orchestrator: orchestrator,
		validator:    validator,
		model:        model,
		logger:       logger,
	}
}

// Generate returns an error only for a request that fails validation. Once
// work starts it always produces a result; degraded paths are reported
// through Outcome, Summary and Diagnostics.
func (uc *ScheduleUsecase) Generate(ctx context.Context, req *entity.ScheduleRequest) (*entity.ScheduleResult, error) {
	if err := uc.validator.ValidateScheduleRequest(req); err != nil {
		return nil, fmt.Errorf("validate schedule request: %w", err)
	}

	opts := req.Options
	if opts.Mode == "" {
		opts.Mode = entity.ModeStandard
	}
	model := req.Model
	if model == "" {
		model = uc.model
	}

	state := NewRequestState(req.Task)
	ctx = logger.WithPipeline(ctx, state.ID, string(req.Task))

	ctxzap.Info(ctx, "schedule generation started",
		zap.Int("document_count", len(req.Documents)),
		zap.Int("prior_activity_count", len(req.PriorActivities)),
		zap.String("mode", string(opts.Mode)),
	)

	genReq := entity.GenerationRequest{
		Task:            req.Task,
		Request:         req.Request,
		PriorActivities: req.PriorActivities,
		StartDate:       req.StartDate,
		Model:           model,
	}

	var (
		insights    *entity.DocumentInsights
		diagnostics []string
	)
	if len(req.PriorActivities) > 0 {
		prior, err := recovery.NormalizeActivities(req.PriorActivities, time.Time{})
		if err != nil {
			ctxzap.Warn(ctx, "prior activities sent as given", zap.Error(err))
		} else {
			genReq.PriorActivities = prior.Activities
		}
	}
	if len(req.Documents) > 0 {
		state.SetStage(ctx, StageTriage)

		analyses := uc.documents.AnalyzeAll(ctx, req.Documents, opts, model)
		content, ins := uc.documents.Materialize(ctx, analyses, opts, model)

		genReq.DocumentContent = content
		keyInfo := ins.KeyInfo
		genReq.KeyInfo = &keyInfo
		insights = ins

		for _, d := range ins.Documents {
			if d.Failed {
				diagnostics = append(diagnostics, d.Note)
			}
		}
		if ins.Truncated {
			diagnostics = append(diagnostics, fmt.Sprintf("document content was truncated to fit %d tokens", opts.MaxTokens))
		}
	}

	gen := uc.orchestrator.Generate(ctx, state, genReq)

	state.SetStage(ctx, StageRecovering)
	result := uc.recoverSchedule(ctx, state, gen, req.StartDate)
	result.DocumentInsights = insights
	result.Diagnostics = append(diagnostics, result.Diagnostics...)

	state.SetStage(ctx, StageDone)
	ctxzap.Info(ctx, "schedule generation finished",
		zap.String("outcome", string(result.Outcome)),
		zap.String("recovery_method", result.RecoveryMethod),
		zap.Int("activity_count", len(result.Activities)),
		zap.Duration("elapsed", time.Since(state.StartedAt)),
	)

	return result, nil
}

func (uc *ScheduleUsecase) recoverSchedule(
	ctx context.Context,
	state *RequestState,
	gen entity.Generation,
	start time.Time,
) *entity.ScheduleResult {
	result := &entity.ScheduleResult{
		RequestID:       state.ID,
		Activities:      []entity.Activity{},
		CriticalPath:    []string{},
		Recommendations: []string{},
		Outcome:         gen.Outcome,
	}
	if gen.Err != nil {
		result.Diagnostics = append(result.Diagnostics, gen.Err.Error())
	}

	rec, err := recovery.Recover(gen.Raw)
	result.RecoveryMethod = string(rec.Strategy)
	if err != nil {
		ctxzap.Warn(ctx, "model output could not be recovered",
			zap.Int("candidates_tried", rec.Candidates),
			zap.Error(err),
		)
		result.Outcome = entity.OutcomeMalformed
		result.Summary = rec.Diagnostic
		result.Recommendations = []string{malformedRecommendation}
		return result
	}

	sched := recovery.Normalize(rec.Payload, start)

	ctxzap.Info(ctx, "schedule recovered",
		zap.String("strategy", string(rec.Strategy)),
		zap.Int("candidates_tried", rec.Candidates),
		zap.Int("activity_count", len(sched.Activities)),
		zap.Int("dropped_predecessors", sched.DroppedPredecessors),
		zap.Int("dropped_successors", sched.DroppedSuccessors),
	)

	result.Activities = sched.Activities
	result.CriticalPath = sched.CriticalPath
	if sched.Recommendations != nil {
		result.Recommendations = sched.Recommendations
	}

	result.Summary = sched.Summary
	if result.Summary == "" {
		result.Summary = fmt.Sprintf("Schedule with %d activities, %d on the critical path.", len(sched.Activities), len(sched.CriticalPath))
	}
	if gen.Outcome == entity.OutcomeFallback && result.Summary != gen.Note {
		result.Summary = gen.Note + " " + result.Summary
	}

	if rec.Strategy == recovery.StrategyLineScan {
		result.Diagnostics = append(result.Diagnostics, "schedule was reconstructed line by line from unstructured output; links and dates may be incomplete")
	}
	if n := sched.DroppedPredecessors + sched.DroppedSuccessors; n > 0 {
		result.Diagnostics = append(result.Diagnostics, fmt.Errorf("%w: dropped %d predecessor and %d successor links", entity.ErrDanglingPredecessor, sched.DroppedPredecessors, sched.DroppedSuccessors).Error())
	}

	return result
}
