package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/schedule-backend/internal/api"
	documentapi "github.com/futig/schedule-backend/internal/api/document"
	scheduleapi "github.com/futig/schedule-backend/internal/api/schedule"
	"github.com/futig/schedule-backend/internal/config"
	"go.uber.org/zap"
)

// responseGrace is added to the generator timeout to get the whole-request deadline.
const responseGrace = 30 * time.Second

func Build(environment string) (*App, error) {
	ctx := context.Background()

	cfg, logger, err := LoadConfigAndLogger(environment)
	if err != nil {
		return nil, err
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	pipeline, err := BuildPipeline(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	// Setup API handlers
	scheduleHandler := scheduleapi.NewHandler(pipeline.Schedules, cfg.FileUploadCfg, pipeline.Validator)
	documentHandler := documentapi.NewHandler(pipeline.Documents, cfg.FileUploadCfg, pipeline.Validator)
	logger.Info("API handlers initialized")

	requestTimeout := cfg.GenerationCfg.Timeout + responseGrace
	router := api.SetupRouter(scheduleHandler, documentHandler, cfg.RateLimitCfg, requestTimeout, logger)
	logger.Info("HTTP router configured")

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: requestTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		logger: logger,
	}, nil
}

// LoadConfigAndLogger loads configuration for environment and a logger at its level.
func LoadConfigAndLogger(environment string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(environment)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	return cfg, logger, nil
}
