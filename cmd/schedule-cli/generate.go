package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/futig/schedule-backend/internal/api/form"
	"github.com/futig/schedule-backend/internal/entity"
	"github.com/spf13/cobra"
)

func newGenerateCmd(root *rootOptions) *cobra.Command {
	var (
		task       string
		request    string
		start      string
		docs       []string
		prior      string
		mode       string
		sectionIDs []string
		maxTokens  int
		model      string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a schedule and print the result as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			startDate, err := form.Date("--start", start)
			if err != nil {
				return err
			}

			sources, err := readDocuments(docs)
			if err != nil {
				return err
			}

			var priorActivities []entity.Activity
			if prior != "" {
				data, err := os.ReadFile(prior)
				if err != nil {
					return fmt.Errorf("read prior activities: %w", err)
				}
				if err := json.Unmarshal(data, &priorActivities); err != nil {
					return fmt.Errorf("%w: prior activities file must hold a JSON array: %v", entity.ErrInvalidFormat, err)
				}
			}

			result, err := root.pipeline.Schedules.Generate(root.context(cmd, "generate"), &entity.ScheduleRequest{
				Task:            entity.TaskType(task),
				Request:         request,
				PriorActivities: priorActivities,
				StartDate:       startDate,
				Model:           model,
				Documents:       sources,
				Options: entity.ProcessingOptions{
					Mode:               entity.ProcessingMode(mode),
					SelectedSectionIDs: sectionIDs,
					MaxTokens:          maxTokens,
				},
			})
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&task, "task", string(entity.TaskCreate), "create, update, lookahead or analyze")
	cmd.Flags().StringVar(&request, "request", "", "project description or change request")
	cmd.Flags().StringVar(&start, "start", "", "project start or data date, YYYY-MM-DD")
	cmd.Flags().StringSliceVar(&docs, "docs", nil, "project documents (.txt, .md, .docx)")
	cmd.Flags().StringVar(&prior, "prior", "", "JSON file with the current activities")
	cmd.Flags().StringVar(&mode, "mode", string(entity.ModeStandard), "processing mode: quick, standard, deep or custom")
	cmd.Flags().StringSliceVar(&sectionIDs, "sections", nil, "section ids for custom mode")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "token ceiling for document content")
	cmd.Flags().StringVar(&model, "model", "", "model identifier; empty uses LLM_MODEL")
	return cmd
}
