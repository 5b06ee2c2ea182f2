package schedule

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/futig/schedule-backend/internal/api/form"
	"github.com/futig/schedule-backend/internal/entity"
)

// scheduleRequestBody is the JSON form of POST /schedules.
type scheduleRequestBody struct {
	Task            string                   `json:"task"`
	Request         string                   `json:"request"`
	StartDate       string                   `json:"start_date"`
	Model           string                   `json:"model"`
	Options         entity.ProcessingOptions `json:"options"`
	PriorActivities []entity.Activity        `json:"prior_activities"`
	DocumentPaths   []string                 `json:"document_paths"`
}

func toScheduleRequest(body *scheduleRequestBody) (*entity.ScheduleRequest, error) {
	start, err := form.Date("start_date", body.StartDate)
	if err != nil {
		return nil, err
	}

	docs, err := form.Documents(nil, form.List(body.DocumentPaths))
	if err != nil {
		return nil, err
	}

	return &entity.ScheduleRequest{
		Task:            entity.TaskType(strings.TrimSpace(body.Task)),
		Request:         body.Request,
		PriorActivities: body.PriorActivities,
		StartDate:       start,
		Options:         body.Options,
		Model:           strings.TrimSpace(body.Model),
		Documents:       docs,
	}, nil
}

func parsePriorActivities(raw string) ([]entity.Activity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var activities []entity.Activity
	if err := json.Unmarshal([]byte(raw), &activities); err != nil {
		return nil, fmt.Errorf("%w: prior_activities must be a JSON array of activities: %v", entity.ErrInvalidFormat, err)
	}
	return activities, nil
}
