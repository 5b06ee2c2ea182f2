package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/futig/schedule-backend/internal/config"
	"github.com/futig/schedule-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(url string) config.LLMConnectorConfig {
	return config.LLMConnectorConfig{
		HTTPClientConfig: config.HTTPClientConfig{Url: url},
		Provider:         "http",
		Model:            "default-model",
		APIKey:           "key-123",
		ChatEndpoint:     "/chat/completions",
	}
}

func TestConnector_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key-123", r.Header.Get("Authorization"))

		var req entity.LLMChatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "default-model", req.Model)
		assert.Equal(t, 0.3, req.Temperature)
		assert.Equal(t, 8000, req.MaxOutputTokens)
		assert.Len(t, req.Messages, 2)

		_ = json.NewEncoder(w).Encode(entity.LLMChatResponse{Choices: []entity.LLMChatChoice{{
			Message:      entity.ChatMessage{Role: entity.RoleAssistant, Content: `{"activities":[]}`},
			FinishReason: "stop",
		}}})
	}))
	defer srv.Close()

	c := NewConnector(testConfig(srv.URL), zap.NewNop())

	text, err := c.Complete(context.Background(), &entity.LLMChatRequest{
		Messages: []entity.ChatMessage{
			{Role: entity.RoleSystem, Content: "system"},
			{Role: entity.RoleUser, Content: "user"},
		},
		Temperature:     0.3,
		MaxOutputTokens: 8000,
	})

	require.NoError(t, err)
	assert.Equal(t, `{"activities":[]}`, text)
}

func TestConnector_Complete_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "bad key", http.StatusUnauthorized)
			},
		},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"choices":[]}`))
			},
		},
		{
			name: "blank content",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  "}}]}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewConnector(testConfig(srv.URL), zap.NewNop())
			_, err := c.Complete(context.Background(), &entity.LLMChatRequest{})

			assert.Error(t, err)
		})
	}
}

func TestMockConnector_Complete(t *testing.T) {
	m := NewMockConnector(zap.NewNop())

	text, err := m.Complete(context.Background(), &entity.LLMChatRequest{Model: "any"})

	require.NoError(t, err)
	assert.Contains(t, text, "```json")
	assert.Contains(t, text, `"activities"`)
}
