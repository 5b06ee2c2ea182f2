package builder

import (
	"context"
	"fmt"

	"github.com/futig/schedule-backend/internal/config"
	"github.com/futig/schedule-backend/internal/integration/contentstore"
	"github.com/futig/schedule-backend/internal/integration/llm"
	"github.com/futig/schedule-backend/internal/pkg/extractor"
	"github.com/futig/schedule-backend/internal/pkg/validator"
	"github.com/futig/schedule-backend/internal/triage"
	"github.com/futig/schedule-backend/internal/usecase/document"
	"github.com/futig/schedule-backend/internal/usecase/schedule"
	"go.uber.org/zap"
)

// Pipeline holds the use cases shared by the HTTP service and the CLI.
type Pipeline struct {
	Validator *validator.Validator
	Documents *document.DocumentUsecase
	Schedules *schedule.ScheduleUsecase
}

// BuildPipeline wires connectors, triage and use cases from cfg.
func BuildPipeline(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Pipeline, error) {
	llmConnector, err := setupLLMConnector(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup llm connector: %w", err)
	}
	store := setupContentStore(cfg, logger)

	prompts, err := schedule.LoadPrompts(nil)
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}

	extractors, err := setupExtractor(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup extractor: %w", err)
	}

	fileValidator := validator.NewValidator(cfg.FileUploadCfg, extractors.Extensions())
	engine := triage.NewEngine(cfg.TriageCfg, cfg.Prices)

	documentUC := document.NewUsecase(
		store,
		extractors,
		engine,
		cfg.TriageCfg.ReadConcurrency,
		cfg.LLMConnectorCfg.Model,
		logger,
	)

	scheduleUC := schedule.NewUsecase(
		documentUC,
		schedule.NewOrchestrator(llmConnector, prompts, cfg.GenerationCfg),
		fileValidator,
		cfg.LLMConnectorCfg.Model,
		logger,
	)
	logger.Info("Use cases initialized")

	return &Pipeline{
		Validator: fileValidator,
		Documents: documentUC,
		Schedules: scheduleUC,
	}, nil
}

func setupExtractor(cfg *config.Config, logger *zap.Logger) (*extractor.Factory, error) {
	if cfg.DocxLicenseKey == "" {
		logger.Warn(".docx documents are disabled: UNIDOC_LICENSE_API_KEY is not set")
		return extractor.NewFactory(), nil
	}

	if err := extractor.ActivateDOCX(cfg.DocxLicenseKey); err != nil {
		return nil, err
	}
	logger.Info("unioffice license activated, .docx documents enabled")
	return extractor.NewFactory(extractor.WithDOCX()), nil
}

func setupLLMConnector(ctx context.Context, cfg *config.Config, logger *zap.Logger) (schedule.LLMConnector, error) {
	if cfg.EnableMocks {
		logger.Info("Using mock generator connector")
		return llm.NewMockConnector(logger), nil
	}

	logger.Info("Using generator connector",
		zap.String("provider", cfg.LLMConnectorCfg.Provider),
		zap.String("model", cfg.LLMConnectorCfg.Model),
	)

	switch cfg.LLMConnectorCfg.Provider {
	case "openai":
		c, err := llm.NewOpenAIConnector(cfg.LLMConnectorCfg, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "gemini":
		c, err := llm.NewGeminiConnector(ctx, cfg.LLMConnectorCfg, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return llm.NewConnector(cfg.LLMConnectorCfg, logger), nil
	}
}

func setupContentStore(cfg *config.Config, logger *zap.Logger) document.ContentStore {
	if cfg.EnableMocks {
		logger.Info("Using in-memory content store")
		return contentstore.NewMockConnector(logger)
	}

	maxBytes := cfg.FileUploadCfg.MaxFileSize
	if cfg.ContentStoreCfg.Kind == "http" {
		logger.Info("Using HTTP content store", zap.String("url", cfg.ContentStoreCfg.Url))
		return contentstore.NewConnector(cfg.ContentStoreCfg, maxBytes, logger)
	}

	logger.Info("Using filesystem content store", zap.String("root", cfg.ContentStoreCfg.RootDir))
	return contentstore.NewFileStore(cfg.ContentStoreCfg.RootDir, maxBytes, logger)
}
