package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/futig/schedule-backend/internal/config"
	"github.com/futig/schedule-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Orchestrator makes the single generator call of a request. It never
// returns an error: a failed or late call yields the fallback schedule.
type Orchestrator struct {
	llm     LLMConnector
	prompts *Prompts
	cfg     config.GenerationConfig
}

func NewOrchestrator(llm LLMConnector, prompts *Prompts, cfg config.GenerationConfig) *Orchestrator {
	return &Orchestrator{
		llm:     llm,
		prompts: prompts,
		cfg:     cfg,
	}
}

type completion struct {
	text string
	err  error
}

// Generate races one generator call against the configured timeout. The
// reply channel is buffered so a call that loses the race can still deliver
// and exit; its result is dropped.
func (o *Orchestrator) Generate(ctx context.Context, state *RequestState, req entity.GenerationRequest) entity.Generation {
	started := time.Now()
	chatReq := &entity.LLMChatRequest{
		Model:           req.Model,
		Messages:        o.prompts.BuildPrompt(req),
		Temperature:     o.cfg.Temperature,
		MaxOutputTokens: o.cfg.MaxOutputTokens,
	}

	state.SetStage(ctx, StageGenerating)
	state.StartHeartbeat(ctx, o.cfg.HeartbeatInterval)
	defer state.StopHeartbeat()

	ctxzap.Info(ctx, "calling generator",
		zap.String("model", req.Model),
		zap.Int("prompt_chars", promptSize(chatReq.Messages)),
		zap.Duration("timeout", o.cfg.Timeout),
	)

	callCtx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	replies := make(chan completion, 1)
	go func() {
		text, err := o.llm.Complete(callCtx, chatReq)
		replies <- completion{text: text, err: err}
	}()

	var err error
	select {
	case r := <-replies:
		if r.err == nil {
			ctxzap.Info(ctx, "generator answered",
				zap.Int("response_bytes", len(r.text)),
				zap.Duration("elapsed", time.Since(started)),
			)
			return entity.Generation{
				Raw:     r.text,
				Outcome: entity.OutcomeGenerated,
				Elapsed: time.Since(started),
			}
		}
		err = fmt.Errorf("%w: %w", entity.ErrModelInvocation, r.err)
	case <-callCtx.Done():
		err = fmt.Errorf("%w: no answer within %s: %w", entity.ErrModelInvocation, o.cfg.Timeout, callCtx.Err())
	}

	ctxzap.Warn(ctx, "generator unavailable, using fallback schedule",
		zap.Error(err),
		zap.Duration("elapsed", time.Since(started)),
	)

	return entity.Generation{
		Raw:     FallbackSchedule(req.StartDate),
		Outcome: entity.OutcomeFallback,
		Note:    DegradedNote,
		Err:     err,
		Elapsed: time.Since(started),
	}
}

func promptSize(messages []entity.ChatMessage) int {
	n := 0
	for _, m := range messages {
		n += len(m.Content)
	}
	return n
}
