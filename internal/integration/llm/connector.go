package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/futig/schedule-backend/internal/config"
	"github.com/futig/schedule-backend/internal/entity"
	"github.com/futig/schedule-backend/internal/integration/common"
	pkghttp "github.com/futig/schedule-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

var errEmptyCompletion = errors.New("completion contains no text")

// Connector talks to any OpenAI-compatible chat completions endpoint over the
// shared HTTP connector.
type Connector struct {
	config    config.LLMConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.LLMConnectorConfig,
	logger *zap.Logger,
) *Connector {
	httpCfg := cfg.HTTPClientConfig
	if httpCfg.Token == "" {
		httpCfg.Token = cfg.APIKey
	}
	return &Connector{
		connector: common.NewBaseConnector(httpCfg, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Complete sends one chat completion request and returns the first choice's text.
func (c *Connector) Complete(ctx context.Context, req *entity.LLMChatRequest) (string, error) {
	if req.Model == "" {
		req.Model = c.config.Model
	}

	ctxzap.Info(ctx, "requesting chat completion",
		zap.String("model", req.Model),
		zap.Int("message_count", len(req.Messages)),
	)

	var resp entity.LLMChatResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, c.config.ChatEndpoint, req, &resp); err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", errEmptyCompletion
	}

	text := resp.Choices[0].Message.Content
	ctxzap.Info(ctx, "chat completion received",
		zap.Int("result_length", len(text)),
		zap.String("finish_reason", resp.Choices[0].FinishReason),
	)
	return text, nil
}
