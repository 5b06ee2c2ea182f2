package triage

import (
	"regexp"
	"strings"

	"github.com/futig/schedule-backend/internal/entity"
)

const (
	maxKeyFacts   = 20
	maxFactLength = 240
)

const dateExpr = `(\d{4}-\d{1,2}-\d{1,2}|\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}|(?:January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4})`

var (
	contractDurationPattern = regexp.MustCompile(`(?i)(?:contract\s+(?:time|duration|period)|project\s+duration|duration\s+of\s+(?:the\s+)?(?:contract|project|work)|completed?\s+within)[^.\n]{0,40}?(\d+\s*(?:calendar\s+|working\s+|business\s+)?(?:days|weeks|months|years))`)

	projectTypePattern = regexp.MustCompile(`(?i)\b(?:residential|commercial|industrial|infrastructure|institutional|healthcare|hospital|school|educational|office|retail|warehouse|highway|road|bridge|utility|pipeline|renovation|mixed-use|multi-family|data\s+center)\s+(?:building|project|construction|facility|development|complex|works?)\b`)

	startDatePattern = regexp.MustCompile(`(?i)\b(?:start|starts|starting|begin|begins|beginning|commence|commences|commencement)\b[^.\n]{0,40}?` + dateExpr)
	endDatePattern   = regexp.MustCompile(`(?i)\b(?:complete|completed|completion|finish|finished|end|ends|ending)\b[^.\n]{0,40}?` + dateExpr)
	ntpDatePattern   = regexp.MustCompile(`(?i)\bnotice\s+to\s+proceed\b[^.\n]{0,40}?` + dateExpr)

	milestonePattern  = regexp.MustCompile(`(?i)\bmilestones?\b`)
	constraintPattern = regexp.MustCompile(`(?i)\b(?:must\s+not|shall\s+not|may\s+not|not\s+permitted|prohibited|restricted|restrictions?|no\s+work|liquidated\s+damages|constraints?)\b`)

	sentencePattern = regexp.MustCompile(`[^.!?\n]+[.!?]?`)
)

// ExtractKeyInformation scans the whole document once per field. Scalar fields
// keep the first match; milestones and constraints accumulate.
func ExtractKeyInformation(text string) entity.KeyInformation {
	info := entity.KeyInformation{
		Milestones:  []string{},
		Constraints: []string{},
	}

	if m := contractDurationPattern.FindStringSubmatch(text); m != nil {
		info.ContractDuration = strings.TrimSpace(m[1])
	}
	if m := projectTypePattern.FindString(text); m != "" {
		info.ProjectType = strings.ToLower(strings.Join(strings.Fields(m), " "))
	}
	if m := startDatePattern.FindStringSubmatch(text); m != nil {
		info.StartDate = strings.TrimSpace(m[1])
	} else if m := ntpDatePattern.FindStringSubmatch(text); m != nil {
		info.StartDate = strings.TrimSpace(m[1])
	}
	if m := endDatePattern.FindStringSubmatch(text); m != nil {
		info.EndDate = strings.TrimSpace(m[1])
	}

	seen := make(map[string]bool)
	for _, sentence := range sentencePattern.FindAllString(text, -1) {
		sentence = compact(sentence)
		if sentence == "" || seen[sentence] {
			continue
		}
		if milestonePattern.MatchString(sentence) && len(info.Milestones) < maxKeyFacts {
			info.Milestones = append(info.Milestones, sentence)
			seen[sentence] = true
		}
		if constraintPattern.MatchString(sentence) && len(info.Constraints) < maxKeyFacts {
			info.Constraints = append(info.Constraints, sentence)
			seen[sentence] = true
		}
	}

	return info
}

// MergeKeyInformation folds b into a: scalar fields keep a's value when set.
func MergeKeyInformation(a, b entity.KeyInformation) entity.KeyInformation {
	if a.ContractDuration == "" {
		a.ContractDuration = b.ContractDuration
	}
	if a.ProjectType == "" {
		a.ProjectType = b.ProjectType
	}
	if a.StartDate == "" {
		a.StartDate = b.StartDate
	}
	if a.EndDate == "" {
		a.EndDate = b.EndDate
	}
	a.Milestones = appendUnique(a.Milestones, b.Milestones)
	a.Constraints = appendUnique(a.Constraints, b.Constraints)
	return a
}

func appendUnique(dst, src []string) []string {
	if dst == nil {
		dst = []string{}
	}
	seen := make(map[string]bool, len(dst))
	for _, s := range dst {
		seen[s] = true
	}
	for _, s := range src {
		if !seen[s] {
			dst = append(dst, s)
			seen[s] = true
		}
	}
	return dst
}

func compact(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > maxFactLength {
		s = strings.TrimSpace(string(r[:maxFactLength])) + "..."
	}
	return s
}
