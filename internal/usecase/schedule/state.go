package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/futig/schedule-backend/internal/entity"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Stage string

const (
	StageReceived   Stage = "received"
	StageTriage     Stage = "triage"
	StageGenerating Stage = "generating"
	StageRecovering Stage = "recovering"
	StageDone       Stage = "done"
)

// RequestState tracks one generation request. It is owned by that request
// and never shared with another one.
type RequestState struct {
	ID        string
	Task      entity.TaskType
	StartedAt time.Time

	mu        sync.Mutex
	stage     Stage
	heartbeat *time.Timer
	beats     int
}

func NewRequestState(task entity.TaskType) *RequestState {
	return &RequestState{
		ID:        uuid.New().String(),
		Task:      task,
		StartedAt: time.Now(),
		stage:     StageReceived,
	}
}

func (s *RequestState) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

func (s *RequestState) SetStage(ctx context.Context, stage Stage) {
	s.mu.Lock()
	prev := s.stage
	s.stage = stage
	s.mu.Unlock()

	ctxzap.Debug(ctx, "request stage changed",
		zap.String("from", string(prev)),
		zap.String("to", string(stage)),
		zap.Duration("elapsed", time.Since(s.StartedAt)),
	)
}

// StartHeartbeat logs a progress line every interval while the request is in
// the generating stage. It does nothing for a non-positive interval or when a
// heartbeat is already running.
func (s *RequestState) StartHeartbeat(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.heartbeat != nil {
		return
	}

	s.heartbeat = time.AfterFunc(interval, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.heartbeat == nil || s.stage != StageGenerating {
			return
		}
		s.beats++
		ctxzap.Info(ctx, "generation still running",
			zap.Int("heartbeat", s.beats),
			zap.Duration("elapsed", time.Since(s.StartedAt)),
		)
		s.heartbeat.Reset(interval)
	})
}

// StopHeartbeat cancels the heartbeat. A callback already waiting on the lock
// sees the cleared timer and returns without logging.
func (s *RequestState) StopHeartbeat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.heartbeat != nil {
		s.heartbeat.Stop()
		s.heartbeat = nil
	}
}

// Heartbeats reports how many progress lines have been logged.
func (s *RequestState) Heartbeats() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.beats
}
