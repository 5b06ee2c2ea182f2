package entity

import "fmt"

// DateLayout is the canonical calendar date format used in activity records.
const DateLayout = "2006-01-02"

type ActivityStatus string

const (
	ActivityStatusNotStarted ActivityStatus = "NotStarted"
	ActivityStatusInProgress ActivityStatus = "InProgress"
	ActivityStatusCompleted  ActivityStatus = "Completed"
)

func (s ActivityStatus) Validate() error {
	switch s {
	case ActivityStatusNotStarted, ActivityStatusInProgress, ActivityStatusCompleted:
		return nil
	default:
		return fmt.Errorf("unknown activity status: %s", s)
	}
}

// Activity is the canonical scheduling activity handed to callers.
type Activity struct {
	ActivityID      string         `json:"activityId"`
	Name            string         `json:"name"`
	DurationDays    int            `json:"durationDays"`
	StartDate       string         `json:"startDate"`
	FinishDate      string         `json:"finishDate"`
	Predecessors    []string       `json:"predecessors"`
	Successors      []string       `json:"successors"`
	Status          ActivityStatus `json:"status"`
	PercentComplete float64        `json:"percentComplete"`
	TotalFloatDays  int            `json:"totalFloatDays"`
	FreeFloatDays   int            `json:"freeFloatDays"`
	IsCritical      bool           `json:"isCritical"`
	WBS             string         `json:"wbs"`
}

// ActivityIDs returns the ids of the given activities in order.
func ActivityIDs(activities []Activity) []string {
	ids := make([]string, 0, len(activities))
	for _, a := range activities {
		ids = append(ids, a.ActivityID)
	}
	return ids
}
