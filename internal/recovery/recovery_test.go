package recovery

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/futig/schedule-backend/internal/entity"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fencedPayload = `{"activities":[{"activityId":"A001","name":"Mobilize","duration":3,"predecessors":[]},{"activityId":"A002","name":"Excavate","duration":"4","predecessors":["A001"]}],"summary":"two step plan"}`

var projectStart = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func TestRecover_Strategies(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		strategy Strategy
		payload  string
	}{
		{
			name:     "whole text is the object",
			raw:      "  \n" + fencedPayload + "\n",
			strategy: StrategyDirect,
			payload:  fencedPayload,
		},
		{
			name:     "labelled fence",
			raw:      "Here is the schedule you asked for.\n```json\n" + fencedPayload + "\n```\nLet me know if anything changes.",
			strategy: StrategyStructuredFence,
			payload:  fencedPayload,
		},
		{
			name:     "generic fence",
			raw:      "text-before ...\n```\n" + fencedPayload + "\n```\n...text-after",
			strategy: StrategyGenericFence,
			payload:  fencedPayload,
		},
		{
			name:     "embedded object",
			raw:      "Sure! {not json} The plan is " + fencedPayload + " and {\"other\": {\"a\": 1}} hope it helps.",
			strategy: StrategyBraceScan,
			payload:  fencedPayload,
		},
		{
			name:     "nested schedule key",
			raw:      `{"schedule":{"activities":[{"name":"Only"}]}}`,
			strategy: StrategyDirect,
			payload:  `{"schedule":{"activities":[{"name":"Only"}]}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Recover(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.strategy, res.Strategy)
			assert.Equal(t, tt.payload, res.Payload)
		})
	}
}

func TestRecover_FencedObjectWithoutActivitiesFallsThrough(t *testing.T) {
	raw := "```json\n{\"note\": \"nothing here\"}\n```\n" + fencedPayload

	res, err := Recover(raw)

	require.NoError(t, err)
	assert.Equal(t, StrategyBraceScan, res.Strategy)
	assert.Equal(t, fencedPayload, res.Payload)
}

func TestRecover_BracesInsideStrings(t *testing.T) {
	raw := `Result: {"activities":[{"activityId":"A1","name":"Pour {slab}"}]} done`

	res, err := Recover(raw)

	require.NoError(t, err)
	assert.Equal(t, StrategyBraceScan, res.Strategy)
	assert.Equal(t, `{"activities":[{"activityId":"A1","name":"Pour {slab}"}]}`, res.Payload)
}

func TestRecover_LineScan(t *testing.T) {
	raw := `I could not format this properly, sorry.
Activity ID: X10
Name: Clear site
Duration: 4 days

Activity ID: X20
Name: Set forms
Duration: 6

Name: Pour concrete
Duration: 2

Name: loose note without any other field`

	res, err := Recover(raw)
	require.NoError(t, err)
	assert.Equal(t, StrategyLineScan, res.Strategy)
	assert.Equal(t, 3, res.Candidates)

	schedule := Normalize(res.Payload, projectStart)
	require.Len(t, schedule.Activities, 3)

	assert.Equal(t, []string{"X10", "X20", "A002"}, entity.ActivityIDs(schedule.Activities))
	assert.Equal(t, "Pour concrete", schedule.Activities[2].Name)
	assert.Equal(t, 4, schedule.Activities[0].DurationDays)
	assert.Equal(t, 6, schedule.Activities[1].DurationDays)
	assert.Equal(t, 2, schedule.Activities[2].DurationDays)

	assert.Empty(t, schedule.Activities[0].Predecessors)
	assert.Equal(t, []string{"X10"}, schedule.Activities[1].Predecessors)
	assert.Equal(t, []string{"X20"}, schedule.Activities[2].Predecessors)
}

func TestRecover_LineScanExplicitLinks(t *testing.T) {
	raw := `- id: T1, name: Survey
- id: T2, name: Grade, predecessors: T1
- id: T3, name: Fence`

	res, err := Recover(raw)
	require.NoError(t, err)
	assert.Equal(t, StrategyLineScan, res.Strategy)

	schedule := Normalize(res.Payload, projectStart)
	require.Len(t, schedule.Activities, 3)
	assert.Equal(t, []string{"T1"}, schedule.Activities[1].Predecessors)
	assert.Empty(t, schedule.Activities[2].Predecessors)
}

func TestRecover_Prose(t *testing.T) {
	raw := "I'm sorry, I cannot produce a schedule for this project without more details."

	res, err := Recover(raw)

	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrMalformedOutput))
	assert.Equal(t, StrategyNone, res.Strategy)
	assert.NotEmpty(t, res.Diagnostic)
	assert.Contains(t, res.Diagnostic, "77 bytes")
	assert.Empty(t, res.Payload)

	schedule := Normalize(res.Payload, projectStart)
	assert.NotNil(t, schedule.Activities)
	assert.Empty(t, schedule.Activities)
}

func TestRecover_ProseWithSingleMarker(t *testing.T) {
	for _, raw := range []string{
		"Sorry, the request id: 42 failed, try again later.",
		"Please provide the project name: and a title: for the work.",
		"Duration: 12 weeks is too long for this scope.",
	} {
		t.Run(raw, func(t *testing.T) {
			res, err := Recover(raw)

			require.ErrorIs(t, err, entity.ErrMalformedOutput)
			assert.Equal(t, StrategyNone, res.Strategy)
			assert.Empty(t, res.Payload)
		})
	}
}

func TestLineMarkers_ValueStopsAtNextKey(t *testing.T) {
	found := lineMarkers("name: Set forms id: B7 duration: 3")

	values := map[markerKind]string{}
	for _, m := range found {
		values[m.kind] = m.value
	}
	assert.Equal(t, map[markerKind]string{
		markerName:     "Set forms",
		markerID:       "B7",
		markerDuration: "3",
	}, values)
}

func TestRecover_Empty(t *testing.T) {
	res, err := Recover("")

	require.ErrorIs(t, err, entity.ErrMalformedOutput)
	assert.Contains(t, res.Diagnostic, "0 bytes")
}

func TestBraceCandidates(t *testing.T) {
	candidates := BraceCandidates(`a {"x": {"y": 1}} b {"z": "}"} c {unclosed`)

	assert.Equal(t, []string{`{"x": {"y": 1}}`, `{"z": "}"}`, `{"y": 1}`}, candidates)
}

func TestNormalize_Durations(t *testing.T) {
	payload := `{"activities":[
		{"activityId":"A1","duration":"5"},
		{"activityId":"A2","duration":5},
		{"activityId":"A3","duration":null},
		{"activityId":"A4","duration":"five"},
		{"activityId":"A5"},
		{"activityId":"A6","originalDuration":"10 days"},
		{"activityId":"A7","durationDays":-3},
		{"activityId":"A8","durationDays":0},
		{"activityId":"A9","duration":1e19},
		{"activityId":"A10","duration":1e300},
		{"activityId":"A11","duration":"99999999999999999999"},
		{"activityId":"A12","duration":36500},
		{"activityId":"A13","duration":"0 days"}
	]}`

	schedule := Normalize(payload, projectStart)

	got := make([]int, 0, len(schedule.Activities))
	for _, a := range schedule.Activities {
		got = append(got, a.DurationDays)
	}
	assert.Equal(t, []int{5, 5, 5, 5, 5, 10, 5, 0, 5, 5, 5, 36500, 0}, got)

	for _, a := range schedule.Activities {
		start, err := time.Parse(entity.DateLayout, a.StartDate)
		require.NoError(t, err, a.ActivityID)
		finish, err := time.Parse(entity.DateLayout, a.FinishDate)
		require.NoError(t, err, a.ActivityID)
		assert.Equal(t, start.AddDate(0, 0, a.DurationDays), finish, a.ActivityID)
	}
}

func TestNormalize_FloatIsClamped(t *testing.T) {
	payload := `{"activities":[
		{"activityId":"A1","totalFloat":1e19,"freeFloat":-1e300},
		{"activityId":"A2","totalFloat":"99999999999999999999"}
	]}`

	schedule := Normalize(payload, projectStart)

	require.Len(t, schedule.Activities, 2)
	assert.Equal(t, MaxDurationDays, schedule.Activities[0].TotalFloatDays)
	assert.Equal(t, -MaxDurationDays, schedule.Activities[0].FreeFloatDays)
	assert.Equal(t, MaxDurationDays, schedule.Activities[1].TotalFloatDays)
	assert.False(t, schedule.Activities[0].IsCritical)
	assert.Empty(t, schedule.CriticalPath)
}

func TestNormalize_Synonyms(t *testing.T) {
	payload := `{"tasks":[{
		"id":"B1",
		"activityName":"Frame walls",
		"originalDuration":4,
		"earlyStart":"2025-04-01",
		"status":"In Progress",
		"percent_complete":"40%",
		"totalFloat":2,
		"freeFloat":1,
		"wbsCode":"2.1"
	}]}`

	schedule := Normalize(payload, projectStart)
	require.Len(t, schedule.Activities, 1)

	assert.Equal(t, entity.Activity{
		ActivityID:      "B1",
		Name:            "Frame walls",
		DurationDays:    4,
		StartDate:       "2025-04-01",
		FinishDate:      "2025-04-05",
		Predecessors:    []string{},
		Successors:      []string{},
		Status:          entity.ActivityStatusInProgress,
		PercentComplete: 40,
		TotalFloatDays:  2,
		FreeFloatDays:   1,
		IsCritical:      false,
		WBS:             "2.1",
	}, schedule.Activities[0])
}

func TestNormalize_StatusSynonyms(t *testing.T) {
	tests := map[string]entity.ActivityStatus{
		"Not Started": entity.ActivityStatusNotStarted,
		"not_started": entity.ActivityStatusNotStarted,
		"in-progress": entity.ActivityStatusInProgress,
		"INPROGRESS":  entity.ActivityStatusInProgress,
		"Complete":    entity.ActivityStatusCompleted,
		"Done":        entity.ActivityStatusCompleted,
		"whatever":    entity.ActivityStatusNotStarted,
		"InProgress":  entity.ActivityStatusInProgress,
		"Completed":   entity.ActivityStatusCompleted,
	}

	for raw, want := range tests {
		t.Run(raw, func(t *testing.T) {
			schedule := Normalize(`{"activities":[{"status":"`+raw+`"}]}`, projectStart)
			assert.Equal(t, want, schedule.Activities[0].Status)
		})
	}
}

func TestNormalize_Dates(t *testing.T) {
	payload := `{"activities":[
		{"activityId":"A1","duration":3},
		{"activityId":"A2","duration":3,"startDate":"2025-05-01","finishDate":"2025-05-10"},
		{"activityId":"A3","duration":3,"startDate":"2025-05-01","finishDate":"2025-04-01"},
		{"activityId":"A4","duration":2,"start":"June 2, 2025"}
	]}`

	schedule := Normalize(payload, projectStart)
	acts := schedule.Activities

	assert.Equal(t, "2025-03-03", acts[0].StartDate)
	assert.Equal(t, "2025-03-06", acts[0].FinishDate)
	assert.Equal(t, "2025-05-10", acts[1].FinishDate)
	assert.Equal(t, "2025-05-04", acts[2].FinishDate)
	assert.Equal(t, "2025-06-02", acts[3].StartDate)
	assert.Equal(t, "2025-06-04", acts[3].FinishDate)

	undated := Normalize(`{"activities":[{"activityId":"A1"}]}`, time.Time{})
	assert.Empty(t, undated.Activities[0].StartDate)
	assert.Empty(t, undated.Activities[0].FinishDate)
}

func TestNormalize_IDsAndWBS(t *testing.T) {
	payload := `{"activities":[
		{"name":"first"},
		{"activityId":"A000","name":"second"},
		{"activityId":"A000","name":"duplicate"},
		{"name":"fourth","wbs":"3.2"}
	]}`

	schedule := Normalize(payload, projectStart)

	assert.Equal(t, []string{"A001", "A000", "A002", "A003"}, entity.ActivityIDs(schedule.Activities))
	assert.Equal(t, "1.1", schedule.Activities[0].WBS)
	assert.Equal(t, "3.2", schedule.Activities[3].WBS)
}

func TestNormalize_DanglingLinks(t *testing.T) {
	payload := `{"activities":[
		{"activityId":"A001","successors":["A002","A404"]},
		{"activityId":"A002","predecessors":["A001","A999",{"activityId":"A001"}]},
		{"activityId":"A003","predecessors":"A002","successors":null}
	]}`

	schedule := Normalize(payload, projectStart)
	acts := schedule.Activities

	assert.Equal(t, []string{"A001"}, acts[1].Predecessors)
	assert.NotContains(t, acts[1].Predecessors, "A999")
	assert.Equal(t, []string{"A002"}, acts[0].Successors)
	assert.Equal(t, []string{}, acts[2].Predecessors)
	assert.Equal(t, []string{}, acts[2].Successors)
	assert.Equal(t, 1, schedule.DroppedPredecessors)
	assert.Equal(t, 1, schedule.DroppedSuccessors)
}

func TestNormalize_CriticalPath(t *testing.T) {
	payload := `{"activities":[
		{"activityId":"A1","totalFloatDays":0,"isCritical":false},
		{"activityId":"A2","totalFloatDays":3,"isCritical":true},
		{"activityId":"A3"},
		{"activityId":"A4","totalFloat":"-2"}
	],"summary":"  mixed  ","recommendations":["crash A2", ""]}`

	schedule := Normalize(payload, projectStart)

	critical := map[string]bool{}
	zeroFloat := map[string]bool{}
	for _, a := range schedule.Activities {
		if a.IsCritical {
			critical[a.ActivityID] = true
		}
		if a.TotalFloatDays == 0 {
			zeroFloat[a.ActivityID] = true
		}
	}
	assert.Equal(t, zeroFloat, critical)
	assert.Equal(t, []string{"A1", "A3"}, schedule.CriticalPath)
	assert.Equal(t, "mixed", schedule.Summary)
	assert.Equal(t, []string{"crash A2"}, schedule.Recommendations)
}

func TestNormalize_Idempotent(t *testing.T) {
	raw := `{"activities":[
		{"name":"Mobilize","duration":"3","status":"done"},
		{"activityId":"A009","activityName":"Excavate","originalDuration":7,"predecessors":["A000","A999"],"totalFloat":4},
		{"activityId":"A010","name":"Foundations","earlyStart":"2025-03-20","predecessors":[{"id":"A009"}],"status":"in progress","progress":55},
		{"name":"Backfill","duration":"two","successors":"A010"}
	]}`

	first := Normalize(raw, projectStart)
	second, err := NormalizeActivities(first.Activities, projectStart)
	require.NoError(t, err)

	if diff := cmp.Diff(first.Activities, second.Activities); diff != "" {
		t.Errorf("re-normalizing changed activities (-first +second):\n%s", diff)
	}
	assert.Equal(t, first.CriticalPath, second.CriticalPath)
	assert.Zero(t, second.DroppedPredecessors)
	assert.Zero(t, second.DroppedSuccessors)
}

func TestNormalize_NoActivitiesField(t *testing.T) {
	schedule := Normalize(`{"plan":"none"}`, projectStart)

	assert.NotNil(t, schedule.Activities)
	assert.Empty(t, schedule.Activities)
	assert.NotNil(t, schedule.CriticalPath)
	assert.NotNil(t, schedule.Recommendations)
	assert.True(t, strings.TrimSpace(schedule.Summary) == "")
}
