package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/futig/schedule-backend/internal/config"
	"github.com/futig/schedule-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiConnector uses Google's GenAI SDK. System messages become the system
// instruction; the rest are sent as conversation turns.
type GeminiConnector struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

func NewGeminiConnector(ctx context.Context, cfg config.LLMConnectorConfig, logger *zap.Logger) (*GeminiConnector, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key missing; set LLM_API_KEY")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiConnector{client: client, model: cfg.Model, logger: logger}, nil
}

func (g *GeminiConnector) Complete(ctx context.Context, req *entity.LLMChatRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = g.model
	}

	var (
		system   []string
		contents []*genai.Content
	)
	for _, m := range req.Messages {
		switch m.Role {
		case entity.RoleSystem:
			system = append(system, m.Content)
		case entity.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.MaxOutputTokens > 0 {
		genCfg.MaxOutputTokens = int32(req.MaxOutputTokens)
	}
	if len(system) > 0 {
		genCfg.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}

	ctxzap.Info(ctx, "requesting gemini completion", zap.String("model", model))

	resp, err := g.client.Models.GenerateContent(ctx, model, contents, genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content failed: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", errEmptyCompletion
	}

	ctxzap.Info(ctx, "gemini completion received", zap.Int("result_length", len(text)))
	return text, nil
}
