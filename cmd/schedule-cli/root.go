package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/futig/schedule-backend/internal/builder"
	"github.com/futig/schedule-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	env      string
	mock     bool
	logLevel string

	pipeline *builder.Pipeline
	logger   *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "schedule-cli",
		Short:        "Triage project documents and generate construction schedules",
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd.Context())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.env, "env", "local", "environment name, selects the .env.<env> file")
	cmd.PersistentFlags().BoolVar(&opts.mock, "mock", false, "use the mock generator and in-memory store")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override LOG_LEVEL")

	cmd.AddCommand(newTriageCmd(opts))
	cmd.AddCommand(newGenerateCmd(opts))
	return cmd
}

func (o *rootOptions) setup(ctx context.Context) error {
	if o.logLevel != "" {
		if err := os.Setenv("LOG_LEVEL", o.logLevel); err != nil {
			return fmt.Errorf("set log level: %w", err)
		}
	}
	if o.mock {
		if err := os.Setenv("ENABLE_MOCKS", "true"); err != nil {
			return fmt.Errorf("enable mocks: %w", err)
		}
	}

	cfg, logger, err := builder.LoadConfigAndLogger(o.env)
	if err != nil {
		return err
	}

	pipeline, err := builder.BuildPipeline(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	o.pipeline = pipeline
	o.logger = logger
	return nil
}

func (o *rootOptions) context(cmd *cobra.Command, action string) context.Context {
	return ctxzap.ToContext(cmd.Context(), o.logger.With(zap.String("action", action)))
}

// readDocuments loads local files; the extension picks the extractor later.
func readDocuments(paths []string) ([]entity.DocumentSource, error) {
	sources := make([]entity.DocumentSource, 0, len(paths))
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		sources = append(sources, entity.DocumentSource{
			Name:    filepath.Base(p),
			Path:    p,
			Content: content,
		})
	}
	return sources, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
