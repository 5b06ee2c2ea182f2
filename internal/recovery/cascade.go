// Package recovery turns untrusted generator output into a canonical activity
// network. Recover locates a usable payload with an ordered cascade of
// extraction strategies; Normalize maps it onto the canonical schema.
package recovery

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/futig/schedule-backend/internal/entity"
	"github.com/tidwall/gjson"
)

// Strategy names the cascade step that produced a payload.
type Strategy string

const (
	StrategyDirect          Strategy = "direct"
	StrategyStructuredFence Strategy = "json_fence"
	StrategyGenericFence    Strategy = "fence"
	StrategyBraceScan       Strategy = "brace_scan"
	StrategyLineScan        Strategy = "line_scan"
	StrategyNone            Strategy = "none"
)

const (
	maxBraceStarts = 256
	previewLength  = 120
)

// activitiesPaths are the gjson paths accepted as an activities-like field, in
// lookup order.
var activitiesPaths = []string{"activities", "schedule.activities", "schedule", "tasks", "items"}

var (
	structuredFencePattern = regexp.MustCompile("(?s)```[ \\t]*(?i:json)[ \\t]*\\n?(.*?)```")
	genericFencePattern    = regexp.MustCompile("(?s)```[^\\n`]*\\n?(.*?)```")
)

// Result is a recovered payload. Payload is the JSON text of an object that
// exposes an activities-like array.
type Result struct {
	Payload    string
	Strategy   Strategy
	Candidates int
	Diagnostic string
}

// Recover runs the extraction cascade over raw and returns the first payload
// that parses into a recognizable object. When every strategy fails the error
// wraps entity.ErrMalformedOutput and Result.Diagnostic describes the input.
func Recover(raw string) (Result, error) {
	text := strings.TrimPrefix(raw, "\ufeff")

	if candidate := strings.TrimSpace(text); isActivityObject(candidate) {
		return Result{Payload: candidate, Strategy: StrategyDirect, Candidates: 1}, nil
	}

	if payload, n, ok := fromFences(text, structuredFencePattern); ok {
		return Result{Payload: payload, Strategy: StrategyStructuredFence, Candidates: n}, nil
	}

	if payload, n, ok := fromFences(text, genericFencePattern); ok {
		return Result{Payload: payload, Strategy: StrategyGenericFence, Candidates: n}, nil
	}

	candidates := BraceCandidates(text)
	for _, candidate := range candidates {
		if isActivityObject(candidate) {
			return Result{Payload: candidate, Strategy: StrategyBraceScan, Candidates: len(candidates)}, nil
		}
	}

	if payload, n, ok := scanLines(text); ok {
		return Result{Payload: payload, Strategy: StrategyLineScan, Candidates: n}, nil
	}

	diagnostic := fmt.Sprintf(
		"no schedule could be recovered from %d bytes of model output (%d brace candidates rejected, no activity markers found); output starts with %q",
		len(raw), len(candidates), preview(raw),
	)
	return Result{Strategy: StrategyNone, Candidates: len(candidates), Diagnostic: diagnostic},
		fmt.Errorf("%w: %s", entity.ErrMalformedOutput, diagnostic)
}

func fromFences(text string, re *regexp.Regexp) (string, int, bool) {
	matches := re.FindAllStringSubmatch(text, -1)
	for _, m := range matches {
		if candidate := strings.TrimSpace(m[1]); isActivityObject(candidate) {
			return candidate, len(matches), true
		}
	}
	return "", len(matches), false
}

// BraceCandidates returns every balanced brace-delimited substring of text,
// longest first. Braces inside JSON strings are ignored.
func BraceCandidates(text string) []string {
	seen := make(map[string]bool)
	var candidates []string

	starts := 0
	for i := 0; i < len(text) && starts < maxBraceStarts; i++ {
		if text[i] != '{' {
			continue
		}
		starts++
		if end, ok := balancedEnd(text, i); ok {
			candidate := text[i : end+1]
			if !seen[candidate] {
				seen[candidate] = true
				candidates = append(candidates, candidate)
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return len(candidates[i]) > len(candidates[j])
	})
	return candidates
}

func balancedEnd(text string, start int) (int, bool) {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func isActivityObject(candidate string) bool {
	if candidate == "" || candidate[0] != '{' || !gjson.Valid(candidate) {
		return false
	}
	return activitiesField(gjson.Parse(candidate)).Exists()
}

// activitiesField returns the first activities-like array of obj.
func activitiesField(obj gjson.Result) gjson.Result {
	if !obj.IsObject() {
		return gjson.Result{}
	}
	for _, path := range activitiesPaths {
		if field := obj.Get(path); field.IsArray() {
			return field
		}
	}
	return gjson.Result{}
}

func preview(raw string) string {
	raw = strings.Join(strings.Fields(raw), " ")
	if utf8.RuneCountInString(raw) <= previewLength {
		return raw
	}
	return string([]rune(raw)[:previewLength]) + "..."
}
