package main

import (
	"github.com/futig/schedule-backend/internal/entity"
	"github.com/spf13/cobra"
)

func newTriageCmd(root *rootOptions) *cobra.Command {
	var (
		mode       string
		sectionIDs []string
		maxTokens  int
		model      string
	)

	cmd := &cobra.Command{
		Use:   "triage <file...>",
		Short: "Split documents into scored sections and print the analysis",
		Long: `Reads .txt, .md and .docx files, scores their sections for scheduling
relevance and prints one analysis per file with the budget of every processing mode.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := entity.ProcessingOptions{
				Mode:               entity.ProcessingMode(mode),
				SelectedSectionIDs: sectionIDs,
				MaxTokens:          maxTokens,
			}
			if err := root.pipeline.Validator.ValidateProcessingOptions(opts); err != nil {
				return err
			}

			sources, err := readDocuments(args)
			if err != nil {
				return err
			}

			ctx := root.context(cmd, "triage")
			analyses := root.pipeline.Documents.AnalyzeAll(ctx, sources, opts, model)
			_, insights := root.pipeline.Documents.Materialize(ctx, analyses, opts, model)

			return printJSON(cmd.OutOrStdout(), &entity.AnalyzeDocumentsResponse{
				Documents: analyses,
				Insights:  insights,
			})
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(entity.ModeStandard), "processing mode: quick, standard, deep or custom")
	cmd.Flags().StringSliceVar(&sectionIDs, "sections", nil, "section ids for custom mode")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "token ceiling for the materialized content")
	cmd.Flags().StringVar(&model, "model", "", "model used for cost estimates")
	return cmd
}
