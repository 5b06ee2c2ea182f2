package triage

import (
	"regexp"
	"strings"

	"github.com/futig/schedule-backend/internal/entity"
)

const (
	highValueWeight = 3
	mediumWeight    = 1
	dateWeight      = 2
	quantityWeight  = 2
	maxScore        = 100
)

// Scheduling vocabulary.
var highValueKeywords = []string{
	"duration", "milestone", "critical path", "schedule", "deadline",
	"substantial completion", "completion date", "precedence", "predecessor",
	"successor", "sequence", "activity", "activities", "float", "baseline",
	"notice to proceed", "calendar days", "working days", "liquidated damages",
	"gantt", "start date", "finish date", "lookahead",
}

// Generic project vocabulary.
var mediumValueKeywords = []string{
	"scope", "phase", "contract", "project", "deliverable", "requirement",
	"contractor", "owner", "subcontractor", "installation", "construction",
	"inspection", "submittal", "procurement", "work", "task",
}

var categoryKeywords = map[entity.SectionCategory][]string{
	entity.CategoryProjectDetails: {"project name", "owner", "client", "location", "contractor", "architect", "engineer", "project description", "address"},
	entity.CategorySchedule:       {"schedule", "milestone", "duration", "sequence", "critical path", "activity", "phase", "gantt", "float"},
	entity.CategorySpecifications: {"specification", "material", "standard", "shall", "install", "equipment", "product", "astm", "quality"},
	entity.CategoryConstraints:    {"constraint", "restriction", "restricted", "limit", "penalty", "liquidated damages", "permit", "must not", "shall not", "prohibited"},
	entity.CategoryDates:          {"date", "deadline", "notice to proceed", "commence", "substantial completion", "calendar"},
	entity.CategoryScope:          {"scope", "deliverable", "include", "exclude", "work", "task", "objective"},
}

// categoryOrder fixes iteration order over categoryKeywords.
var categoryOrder = []entity.SectionCategory{
	entity.CategoryProjectDetails,
	entity.CategorySchedule,
	entity.CategorySpecifications,
	entity.CategoryConstraints,
	entity.CategoryDates,
	entity.CategoryScope,
}

var (
	datePattern = regexp.MustCompile(`(?i)\b(?:\d{4}-\d{1,2}-\d{1,2}|\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}|(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4})\b`)

	quantityPattern = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s*(?:(?:calendar\s+|working\s+|business\s+)?(?:days?|weeks?|months?|years?|hours?)|percent|sq\.?\s*ft|square\s+(?:feet|meters)|cubic\s+yards|linear\s+feet|tons?|units?)\b|\b\d+(?:\.\d+)?\s*%`)

	keywordPatterns = compileKeywords(highValueKeywords, mediumValueKeywords, flatten(categoryKeywords))
)

// ScoreResult is the relevance breakdown for one piece of text.
type ScoreResult struct {
	Score    int
	Keywords []string
}

// Score rates text for scheduling relevance, clamped to [0, 100].
func Score(text string) ScoreResult {
	var (
		score    int
		keywords []string
	)

	for _, kw := range highValueKeywords {
		if n := countKeyword(text, kw); n > 0 {
			score += n * highValueWeight
			keywords = append(keywords, kw)
		}
	}
	for _, kw := range mediumValueKeywords {
		if n := countKeyword(text, kw); n > 0 {
			score += n * mediumWeight
			keywords = append(keywords, kw)
		}
	}

	score += len(datePattern.FindAllStringIndex(text, -1)) * dateWeight
	score += len(quantityPattern.FindAllStringIndex(text, -1)) * quantityWeight

	if score > maxScore {
		score = maxScore
	}
	if keywords == nil {
		keywords = []string{}
	}
	return ScoreResult{Score: score, Keywords: keywords}
}

// Categorize picks the category whose keyword set has the most hits.
// No hits or a tie for first place yields "other".
func Categorize(text string) entity.SectionCategory {
	best := entity.CategoryOther
	bestHits, tied := 0, false

	for _, category := range categoryOrder {
		hits := 0
		for _, kw := range categoryKeywords[category] {
			hits += countKeyword(text, kw)
		}
		switch {
		case hits > bestHits:
			best, bestHits, tied = category, hits, false
		case hits == bestHits && hits > 0:
			tied = true
		}
	}

	if bestHits == 0 || tied {
		return entity.CategoryOther
	}
	return best
}

func countKeyword(text, keyword string) int {
	re, ok := keywordPatterns[keyword]
	if !ok {
		re = keywordRegexp(keyword)
	}
	return len(re.FindAllStringIndex(text, -1))
}

func compileKeywords(lists ...[]string) map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp)
	for _, list := range lists {
		for _, kw := range list {
			if _, ok := patterns[kw]; !ok {
				patterns[kw] = keywordRegexp(kw)
			}
		}
	}
	return patterns
}

func keywordRegexp(keyword string) *regexp.Regexp {
	words := strings.Fields(regexp.QuoteMeta(keyword))
	return regexp.MustCompile(`(?i)\b` + strings.Join(words, `\s+`) + `\b`)
}

func flatten(m map[entity.SectionCategory][]string) []string {
	var out []string
	for _, category := range categoryOrder {
		out = append(out, m[category]...)
	}
	return out
}
