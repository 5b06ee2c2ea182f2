package contentstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/futig/schedule-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector keeps objects in memory.
type MockConnector struct {
	mu      sync.RWMutex
	objects map[string][]byte
	logger  *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		objects: make(map[string][]byte),
		logger:  logger,
	}
}

// Put stores content under path, replacing any previous object.
func (m *MockConnector) Put(path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = append([]byte(nil), content...)
}

func (m *MockConnector) ReadObject(ctx context.Context, path string) ([]byte, error) {
	ctxzap.Info(ctx, "[MOCK] reading object", zap.String("path", path))

	m.mu.RLock()
	defer m.mu.RUnlock()

	content, ok := m.objects[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrObjectNotFound, path)
	}
	return append([]byte(nil), content...), nil
}
