package schedule

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/futig/schedule-backend/internal/entity"
)

// DegradedNote is the summary carried by the fallback schedule.
const DegradedNote = "The schedule generator is temporarily unavailable, so a generic three-activity baseline was returned instead of a project-specific schedule. Retry the request once the service recovers."

var fallbackRecommendations = []string{
	"Regenerate the schedule when the generator is available again.",
	"Treat this baseline as a placeholder; durations are not derived from your project.",
}

type fallbackStep struct {
	id       string
	name     string
	duration int
}

var fallbackSteps = []fallbackStep{
	{id: "A001", name: "Site Preparation", duration: 5},
	{id: "A002", name: "Foundation Work", duration: 10},
	{id: "A003", name: "Structure Assembly", duration: 15},
}

// FallbackActivities returns the fixed finish-to-start chain used when the
// generator cannot answer. Dates are left empty for a zero start.
func FallbackActivities(start time.Time) []entity.Activity {
	activities := make([]entity.Activity, 0, len(fallbackSteps))
	offset := 0
	for i, step := range fallbackSteps {
		a := entity.Activity{
			ActivityID:   step.id,
			Name:         step.name,
			DurationDays: step.duration,
			Predecessors: []string{},
			Successors:   []string{},
			Status:       entity.ActivityStatusNotStarted,
			IsCritical:   true,
			WBS:          fallbackWBS(i),
		}
		if i > 0 {
			a.Predecessors = []string{fallbackSteps[i-1].id}
		}
		if i+1 < len(fallbackSteps) {
			a.Successors = []string{fallbackSteps[i+1].id}
		}
		if !start.IsZero() {
			a.StartDate = start.AddDate(0, 0, offset).Format(entity.DateLayout)
			a.FinishDate = start.AddDate(0, 0, offset+step.duration).Format(entity.DateLayout)
		}
		offset += step.duration
		activities = append(activities, a)
	}
	return activities
}

// FallbackSchedule renders the fallback as model-shaped JSON so it flows
// through the same recovery and normalization as a real answer.
func FallbackSchedule(start time.Time) string {
	activities := FallbackActivities(start)
	payload := struct {
		Activities      []entity.Activity `json:"activities"`
		Summary         string            `json:"summary"`
		CriticalPath    []string          `json:"criticalPath"`
		Recommendations []string          `json:"recommendations"`
	}{
		Activities:      activities,
		Summary:         DegradedNote,
		CriticalPath:    entity.ActivityIDs(activities),
		Recommendations: fallbackRecommendations,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		// Static content; marshaling cannot fail.
		panic(err)
	}
	return string(data)
}

func fallbackWBS(i int) string {
	return fmt.Sprintf("1.%d", i+1)
}
