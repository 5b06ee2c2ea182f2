package llm

import (
	"context"

	"github.com/futig/schedule-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// mockCompletion mimics a chatty model: prose around a labelled fence.
const mockCompletion = "Here is a schedule based on the information provided.\n\n```json\n" + `{
  "activities": [
    {"activityId": "A001", "name": "Mobilization", "duration": 3, "predecessors": [], "status": "Not Started", "totalFloat": 0, "wbs": "1.1"},
    {"activityId": "A002", "name": "Site Clearing and Grading", "duration": 7, "predecessors": ["A001"], "status": "Not Started", "totalFloat": 0, "wbs": "1.2"},
    {"activityId": "A003", "name": "Underground Utilities", "duration": 10, "predecessors": ["A002"], "status": "Not Started", "totalFloat": 4, "wbs": "1.3"},
    {"activityId": "A004", "name": "Foundations", "duration": 12, "predecessors": ["A002"], "status": "Not Started", "totalFloat": 0, "wbs": "1.4"},
    {"activityId": "A005", "name": "Structural Frame", "duration": 20, "predecessors": ["A004"], "status": "Not Started", "totalFloat": 0, "wbs": "1.5"}
  ],
  "summary": "Five activity baseline covering mobilization through structural frame.",
  "recommendations": ["Confirm utility locates before grading starts.", "Order structural steel early to protect the frame start."]
}` + "\n```\n\nLet me know if you want a lookahead view."

// MockConnector returns a fixed schedule without calling any service.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Complete(ctx context.Context, req *entity.LLMChatRequest) (string, error) {
	ctxzap.Info(ctx, "[MOCK] requesting chat completion",
		zap.String("model", req.Model),
		zap.Int("message_count", len(req.Messages)),
	)

	ctxzap.Info(ctx, "[MOCK] chat completion received", zap.Int("result_length", len(mockCompletion)))
	return mockCompletion, nil
}
