package recovery

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

type markerKind int

const (
	markerID markerKind = iota
	markerName
	markerDuration
	markerPredecessors
)

var markers = map[markerKind]*regexp.Regexp{
	markerID:           regexp.MustCompile(`(?i)\b(?:activity[ _]?id|task[ _]?id|id)["']?\s*[:=]\s*["']?([A-Za-z0-9][A-Za-z0-9._\-]*)`),
	markerName:         regexp.MustCompile(`(?i)\b(?:activity[ _]?name|task[ _]?name|name|title)["']?\s*[:=]\s*["']?([^"',}\n]*[^"',}\s])`),
	markerDuration:     regexp.MustCompile(`(?i)\b(?:original[ _]?duration|duration(?:[ _]?days)?)["']?\s*[:=]\s*["']?(\d+)`),
	markerPredecessors: regexp.MustCompile(`(?i)\bpredecessors?["']?\s*[:=]\s*(\[[^\]\n]*\]?|[^\n]*)`),
}

var markerKeyPattern = regexp.MustCompile(`(?i)\b(?:activity[ _]?id|task[ _]?id|id|activity[ _]?name|task[ _]?name|name|title|original[ _]?duration|duration(?:[ _]?days)?|predecessors?)["']?\s*[:=]`)

var linkTokenPattern = regexp.MustCompile(`[A-Za-z0-9][A-Za-z0-9._\-]*`)

type marker struct {
	pos        int
	valueStart int
	valueEnd   int
	kind       markerKind
	value      string
}

type scannedActivity struct {
	ActivityID   string   `json:"activityId"`
	Name         string   `json:"name,omitempty"`
	DurationDays *int     `json:"durationDays,omitempty"`
	Predecessors []string `json:"predecessors"`

	hasLinks bool
}

func (a *scannedActivity) empty() bool {
	return a.fields() == 0
}

// fields counts how many of id, name and duration are set.
func (a *scannedActivity) fields() int {
	n := 0
	for _, set := range []bool{a.ActivityID != "", a.Name != "", a.DurationDays != nil} {
		if set {
			n++
		}
	}
	return n
}

// scanLines rebuilds minimal activity records from id, name, duration and
// predecessor markers. A repeated marker starts a new record, and a record is
// kept only when at least two of id, name and duration are present. Records
// without an id get a positional one; when no record carries explicit links
// the records are chained in order.
func scanLines(text string) (string, int, bool) {
	var (
		records []*scannedActivity
		current = &scannedActivity{}
	)
	flush := func() {
		if current.fields() >= 2 {
			records = append(records, current)
		}
		current = &scannedActivity{}
	}

	for _, line := range strings.Split(normalizeLineEndings(text), "\n") {
		for _, m := range lineMarkers(line) {
			switch m.kind {
			case markerID:
				if current.ActivityID != "" {
					flush()
				}
				current.ActivityID = m.value
			case markerName:
				if current.Name != "" {
					flush()
				}
				current.Name = m.value
			case markerDuration:
				if current.DurationDays != nil {
					flush()
				}
				if d, err := strconv.Atoi(m.value); err == nil {
					current.DurationDays = &d
				}
			case markerPredecessors:
				if current.empty() {
					continue
				}
				current.hasLinks = true
				current.Predecessors = append(current.Predecessors, linkTokens(m.value)...)
			}
		}
	}
	flush()

	if len(records) == 0 {
		return "", 0, false
	}

	explicitLinks := false
	for _, r := range records {
		explicitLinks = explicitLinks || r.hasLinks
	}

	for i, r := range records {
		if r.ActivityID == "" {
			r.ActivityID = positionalID(i)
		}
		if r.Predecessors == nil {
			r.Predecessors = []string{}
		}
		if !explicitLinks && i > 0 {
			r.Predecessors = []string{records[i-1].ActivityID}
		}
	}

	payload, err := json.Marshal(struct {
		Activities []*scannedActivity `json:"activities"`
		Summary    string             `json:"summary"`
	}{
		Activities: records,
		Summary:    "Schedule reconstructed from unstructured model output; links and dates may be incomplete.",
	})
	if err != nil {
		return "", len(records), false
	}
	return string(payload), len(records), true
}

func lineMarkers(line string) []marker {
	var found []marker
	for kind, re := range markers {
		for _, loc := range re.FindAllStringSubmatchIndex(line, -1) {
			found = append(found, marker{
				pos:        loc[0],
				valueStart: loc[2],
				valueEnd:   loc[3],
				kind:       kind,
			})
		}
	}
	sort.Slice(found, func(i, j int) bool {
		return found[i].pos < found[j].pos
	})

	kept := found[:0]
	for _, m := range found {
		value := line[m.valueStart:m.valueEnd]
		// A value never runs into the next marker key.
		if loc := markerKeyPattern.FindStringIndex(value); loc != nil {
			value = value[:loc[0]]
		}
		m.value = strings.Trim(strings.TrimSpace(value), `"',;`)
		if m.value != "" {
			kept = append(kept, m)
		}
	}
	return kept
}

func linkTokens(s string) []string {
	var ids []string
	for _, token := range linkTokenPattern.FindAllString(s, -1) {
		if strings.ContainsAny(token, "0123456789") {
			ids = append(ids, token)
		}
	}
	return ids
}

func normalizeLineEndings(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\r", "\n")
}
