package entity

import (
	"fmt"
	"time"
)

type TaskType string

const (
	TaskCreate    TaskType = "create"
	TaskUpdate    TaskType = "update"
	TaskLookahead TaskType = "lookahead"
	TaskAnalyze   TaskType = "analyze"
)

func (t TaskType) Validate() error {
	switch t {
	case TaskCreate, TaskUpdate, TaskLookahead, TaskAnalyze:
		return nil
	default:
		return fmt.Errorf("unknown task type: %s", t)
	}
}

// UsesPriorActivities reports whether the prompt for this task carries a snapshot
// of the caller's current activities.
func (t TaskType) UsesPriorActivities() bool {
	return t == TaskUpdate || t == TaskLookahead || t == TaskAnalyze
}

// Outcome tags how a generation request resolved.
type Outcome string

const (
	// OutcomeGenerated: the generator answered and its output was recovered.
	OutcomeGenerated Outcome = "generated"
	// OutcomeFallback: the generator failed or timed out; the fixed fallback schedule was used.
	OutcomeFallback Outcome = "fallback"
	// OutcomeMalformed: the generator answered but no strategy recovered a schedule.
	OutcomeMalformed Outcome = "malformed"
)

// ScheduleRequest is one self-contained generation request.
type ScheduleRequest struct {
	Task            TaskType          `json:"task"`
	Request         string            `json:"request"`
	PriorActivities []Activity        `json:"prior_activities,omitempty"`
	StartDate       time.Time         `json:"start_date"`
	Options         ProcessingOptions `json:"options"`
	Model           string            `json:"model,omitempty"`
	Documents       []DocumentSource  `json:"-"`
}

// GenerationRequest is what the orchestrator needs once documents have been triaged.
type GenerationRequest struct {
	Task            TaskType
	Request         string
	PriorActivities []Activity
	StartDate       time.Time
	Model           string
	DocumentContent string
	KeyInfo         *KeyInformation
}

// Generation is the raw text produced by the orchestrator, from the generator or the fallback.
type Generation struct {
	Raw     string
	Outcome Outcome
	Note    string
	Err     error
	Elapsed time.Duration
}

type DocumentSummary struct {
	Name             string   `json:"name"`
	SectionCount     int      `json:"section_count"`
	SelectedSections []string `json:"selected_sections"`
	TokenEstimate    int      `json:"token_estimate"`
	Note             string   `json:"note,omitempty"`
	Failed           bool     `json:"failed"`
}

type DocumentInsights struct {
	Mode          ProcessingMode    `json:"mode"`
	Documents     []DocumentSummary `json:"documents"`
	KeyInfo       KeyInformation    `json:"key_information"`
	TokensUsed    int               `json:"tokens_used"`
	EstimatedCost float64           `json:"estimated_cost"`
	Truncated     bool              `json:"truncated"`
}

// ScheduleResult is the produced contract. Activities is never nil.
type ScheduleResult struct {
	RequestID        string            `json:"requestId"`
	Activities       []Activity        `json:"activities"`
	Summary          string            `json:"summary"`
	CriticalPath     []string          `json:"criticalPath"`
	Recommendations  []string          `json:"recommendations"`
	DocumentInsights *DocumentInsights `json:"documentInsights,omitempty"`
	Outcome          Outcome           `json:"outcome"`
	RecoveryMethod   string            `json:"recoveryMethod,omitempty"`
	Diagnostics      []string          `json:"diagnostics,omitempty"`
}
