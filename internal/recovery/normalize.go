package recovery

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/futig/schedule-backend/internal/entity"
	"github.com/tidwall/gjson"
)

const (
	// DefaultDurationDays replaces a missing or unusable duration.
	DefaultDurationDays = 5
	// MaxDurationDays bounds durations and float values, one hundred years.
	MaxDurationDays = 36500
)

// Field synonyms, in lookup order.
var (
	idFields          = []string{"activityId", "activityID", "activity_id", "id", "taskId", "task_id"}
	nameFields        = []string{"name", "activityName", "activity_name", "taskName", "task_name", "title"}
	durationFields    = []string{"durationDays", "duration", "originalDuration", "original_duration", "duration_days"}
	startFields       = []string{"startDate", "earlyStart", "start", "start_date", "early_start"}
	finishFields      = []string{"finishDate", "earlyFinish", "finish", "finish_date", "early_finish", "endDate", "end"}
	predecessorFields = []string{"predecessors", "predecessor", "dependencies"}
	successorFields   = []string{"successors", "successor"}
	statusFields      = []string{"status", "activityStatus", "activity_status"}
	percentFields     = []string{"percentComplete", "percent_complete", "progress"}
	totalFloatFields  = []string{"totalFloatDays", "totalFloat", "total_float"}
	freeFloatFields   = []string{"freeFloatDays", "freeFloat", "free_float"}
	wbsFields         = []string{"wbs", "wbsCode", "wbs_code"}
)

var statusSynonyms = map[string]entity.ActivityStatus{
	"notstarted": entity.ActivityStatusNotStarted,
	"planned":    entity.ActivityStatusNotStarted,
	"pending":    entity.ActivityStatusNotStarted,
	"todo":       entity.ActivityStatusNotStarted,
	"new":        entity.ActivityStatusNotStarted,
	"inprogress": entity.ActivityStatusInProgress,
	"started":    entity.ActivityStatusInProgress,
	"active":     entity.ActivityStatusInProgress,
	"ongoing":    entity.ActivityStatusInProgress,
	"underway":   entity.ActivityStatusInProgress,
	"wip":        entity.ActivityStatusInProgress,
	"completed":  entity.ActivityStatusCompleted,
	"complete":   entity.ActivityStatusCompleted,
	"done":       entity.ActivityStatusCompleted,
	"finished":   entity.ActivityStatusCompleted,
	"closed":     entity.ActivityStatusCompleted,
}

var dateLayouts = []string{
	entity.DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

var leadingIntPattern = regexp.MustCompile(`^\s*([+-]?\d+(?:\.\d+)?)`)

// Schedule is a normalized activity network.
type Schedule struct {
	Activities      []entity.Activity
	Summary         string
	CriticalPath    []string
	Recommendations []string

	// DroppedPredecessors and DroppedSuccessors count link references that did
	// not resolve to an activity in the same batch.
	DroppedPredecessors int
	DroppedSuccessors   int
}

// Normalize maps a recovered payload onto the canonical schema. start is used
// for activities without a usable start date; a zero start leaves such dates
// empty. A payload without an activities-like field yields an empty schedule.
func Normalize(payload string, start time.Time) Schedule {
	obj := gjson.Parse(payload)

	var items []gjson.Result
	if field := activitiesField(obj); field.Exists() {
		items = field.Array()
	}

	activities := make([]entity.Activity, 0, len(items))
	for i, item := range items {
		activities = append(activities, normalizeActivity(item, i, start))
	}

	assignIDs(activities)
	dropPred, dropSucc := resolveLinks(activities)

	return Schedule{
		Activities:          activities,
		Summary:             strings.TrimSpace(obj.Get("summary").String()),
		CriticalPath:        CriticalPath(activities),
		Recommendations:     stringList(obj.Get("recommendations")),
		DroppedPredecessors: dropPred,
		DroppedSuccessors:   dropSucc,
	}
}

// NormalizeActivities re-runs normalization over already structured activities.
// For a canonical list it returns the same activities unchanged.
func NormalizeActivities(activities []entity.Activity, start time.Time) (Schedule, error) {
	payload, err := json.Marshal(map[string][]entity.Activity{"activities": activities})
	if err != nil {
		return Schedule{}, fmt.Errorf("marshal activities: %w", err)
	}
	return Normalize(string(payload), start), nil
}

// CriticalPath returns the ids of critical activities in list order.
func CriticalPath(activities []entity.Activity) []string {
	path := make([]string, 0, len(activities))
	for _, a := range activities {
		if a.IsCritical {
			path = append(path, a.ActivityID)
		}
	}
	return path
}

func normalizeActivity(item gjson.Result, index int, start time.Time) entity.Activity {
	a := entity.Activity{
		ActivityID:      strings.TrimSpace(first(item, idFields).String()),
		Name:            strings.TrimSpace(first(item, nameFields).String()),
		DurationDays:    coerceDuration(first(item, durationFields)),
		Predecessors:    linkList(first(item, predecessorFields)),
		Successors:      linkList(first(item, successorFields)),
		PercentComplete: coercePercent(first(item, percentFields)),
		TotalFloatDays:  coerceInt(first(item, totalFloatFields)),
		FreeFloatDays:   coerceInt(first(item, freeFloatFields)),
		WBS:             strings.TrimSpace(first(item, wbsFields).String()),
	}

	if a.Name == "" {
		a.Name = fmt.Sprintf("Activity %d", index+1)
	}
	if a.WBS == "" {
		a.WBS = fmt.Sprintf("1.%d", index+1)
	}

	a.Status = coerceStatus(first(item, statusFields), a.PercentComplete)
	if a.Status == entity.ActivityStatusCompleted && !first(item, percentFields).Exists() {
		a.PercentComplete = 100
	}

	startDate, ok := parseDate(first(item, startFields).String())
	if !ok {
		startDate, ok = start, !start.IsZero()
	}
	if ok {
		a.StartDate = startDate.Format(entity.DateLayout)
		finish := startDate.AddDate(0, 0, a.DurationDays)
		if explicit, ok := parseDate(first(item, finishFields).String()); ok && !explicit.Before(startDate) {
			finish = explicit
		}
		a.FinishDate = finish.Format(entity.DateLayout)
	}

	a.IsCritical = a.TotalFloatDays == 0
	return a
}

// assignIDs gives every activity without an id, or with an id already used
// earlier in the batch, the first free positional id.
func assignIDs(activities []entity.Activity) {
	taken := make(map[string]bool, len(activities))
	for _, a := range activities {
		if a.ActivityID != "" {
			taken[a.ActivityID] = true
		}
	}

	used := make(map[string]bool, len(activities))
	for i := range activities {
		id := activities[i].ActivityID
		if id != "" && !used[id] {
			used[id] = true
			continue
		}
		next := i
		for taken[positionalID(next)] || used[positionalID(next)] {
			next++
		}
		activities[i].ActivityID = positionalID(next)
		used[activities[i].ActivityID] = true
	}
}

// resolveLinks drops self references, repeated entries and references to
// unknown ids from every link list.
func resolveLinks(activities []entity.Activity) (droppedPred, droppedSucc int) {
	known := make(map[string]bool, len(activities))
	for _, a := range activities {
		known[a.ActivityID] = true
	}

	filter := func(self string, links []string) ([]string, int) {
		kept := make([]string, 0, len(links))
		seen := make(map[string]bool, len(links))
		dropped := 0
		for _, id := range links {
			switch {
			case !known[id]:
				dropped++
			case id == self || seen[id]:
			default:
				seen[id] = true
				kept = append(kept, id)
			}
		}
		return kept, dropped
	}

	for i := range activities {
		var n int
		activities[i].Predecessors, n = filter(activities[i].ActivityID, activities[i].Predecessors)
		droppedPred += n
		activities[i].Successors, n = filter(activities[i].ActivityID, activities[i].Successors)
		droppedSucc += n
	}
	return droppedPred, droppedSucc
}

func positionalID(i int) string {
	return fmt.Sprintf("A%03d", i)
}

func first(item gjson.Result, fields []string) gjson.Result {
	for _, f := range fields {
		if v := item.Get(f); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

// coerceDuration accepts numbers and numeric strings ("5", "10 days").
// Anything else, including negative values and values above
// MaxDurationDays, becomes DefaultDurationDays.
func coerceDuration(v gjson.Result) int {
	n, ok := number(v)
	if !ok || n < 0 || n > MaxDurationDays {
		return DefaultDurationDays
	}
	return int(math.Round(n))
}

// coerceInt clamps float values to ±MaxDurationDays.
func coerceInt(v gjson.Result) int {
	n, _ := number(v)
	return int(math.Round(math.Max(-MaxDurationDays, math.Min(MaxDurationDays, n))))
}

func coercePercent(v gjson.Result) float64 {
	n, _ := number(v)
	return math.Max(0, math.Min(100, n))
}

func number(v gjson.Result) (float64, bool) {
	switch v.Type {
	case gjson.Number:
		return v.Num, true
	case gjson.String:
		m := leadingIntPattern.FindStringSubmatch(v.Str)
		if m == nil {
			return 0, false
		}
		n, err := strconv.ParseFloat(m[1], 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func coerceStatus(v gjson.Result, percent float64) entity.ActivityStatus {
	if status := entity.ActivityStatus(strings.TrimSpace(v.String())); status.Validate() == nil {
		return status
	}
	key := strings.ToLower(strings.NewReplacer(" ", "", "_", "", "-", "").Replace(v.String()))
	if status, ok := statusSynonyms[key]; ok {
		return status
	}
	switch {
	case percent >= 100:
		return entity.ActivityStatusCompleted
	case percent > 0:
		return entity.ActivityStatusInProgress
	default:
		return entity.ActivityStatusNotStarted
	}
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// linkList coerces an array of ids, numbers or objects carrying an id into
// strings. Anything that is not an array yields an empty list.
func linkList(v gjson.Result) []string {
	links := []string{}
	if !v.IsArray() {
		return links
	}
	for _, el := range v.Array() {
		var id string
		switch {
		case el.IsObject():
			id = first(el, idFields).String()
		case el.Type == gjson.String:
			id = el.Str
		case el.Type == gjson.Number:
			id = el.Raw
		}
		if id = strings.TrimSpace(id); id != "" {
			links = append(links, id)
		}
	}
	return links
}

func stringList(v gjson.Result) []string {
	out := []string{}
	if !v.IsArray() {
		if s := strings.TrimSpace(v.String()); s != "" {
			out = append(out, s)
		}
		return out
	}
	for _, el := range v.Array() {
		if s := strings.TrimSpace(el.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}
