package logger

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// AddFields adds fields to the logger in context and returns new context
func AddFields(ctx context.Context, fields ...zap.Field) context.Context {
	logger := ctxzap.Extract(ctx)
	return ctxzap.ToContext(ctx, logger.With(fields...))
}

// WithAction adds "action" field to context logger to describe the flow
func WithAction(ctx context.Context, action string) context.Context {
	return AddFields(ctx, zap.String("action", action))
}

// WithPipeline tags every log line of one schedule generation with its
// pipeline id and task. The HTTP request id is set separately by middleware.
func WithPipeline(ctx context.Context, pipelineID, task string) context.Context {
	return AddFields(ctx,
		zap.String("pipeline_id", pipelineID),
		zap.String("task", task),
	)
}
