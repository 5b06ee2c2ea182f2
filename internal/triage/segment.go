package triage

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// headingPatterns are tried in order; the first one that splits the text into
// more than two segments wins.
var headingPatterns = []*regexp.Regexp{
	// 1. General Requirements / 2.3 Site Work
	regexp.MustCompile(`(?m)^[ \t]*\d+(?:\.\d+)*\.?[ \t]+[A-Z][^\n]{2,100}$`),
	// SCOPE OF WORK
	regexp.MustCompile(`(?m)^[ \t]*[A-Z][A-Z0-9 ,&/()'\-]{3,80}$`),
	regexp.MustCompile(`(?m)^[ \t]*(?:SECTION|Section)[ \t]+\d+[^\n]*$`),
	regexp.MustCompile(`(?m)^[ \t]*(?:PART|Part)[ \t]+(?:\d+|[IVXLC]+)\b[^\n]*$`),
	regexp.MustCompile(`(?m)^[ \t]*(?:CHAPTER|Chapter)[ \t]+(?:\d+|[IVXLC]+)\b[^\n]*$`),
}

const preambleTitle = "Preamble"

// Segment is a titled slice of document text before scoring.
type Segment struct {
	Title   string
	Content string
}

// Split splits text into titled segments. Structural headings are preferred;
// when no pattern yields more than two segments the text is cut into fixed
// windows of chunkSize characters. Segments shorter than minLength are dropped.
func Split(text string, chunkSize, minLength int) []Segment {
	text = normalizeNewlines(text)

	var segments []Segment
	for _, re := range headingPatterns {
		if candidate := splitByHeadings(text, re); len(candidate) > 2 {
			segments = candidate
			break
		}
	}
	if segments == nil {
		segments = chunk(text, chunkSize)
	}

	kept := segments[:0]
	for _, s := range segments {
		if utf8.RuneCountInString(s.Content) < minLength {
			continue
		}
		kept = append(kept, s)
	}
	return kept
}

func splitByHeadings(text string, re *regexp.Regexp) []Segment {
	locs := re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	segments := make([]Segment, 0, len(locs)+1)
	if pre := strings.TrimSpace(text[:locs[0][0]]); pre != "" {
		segments = append(segments, Segment{Title: preambleTitle, Content: pre})
	}

	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		segments = append(segments, Segment{
			Title:   strings.TrimSpace(text[loc[0]:loc[1]]),
			Content: strings.TrimSpace(text[loc[0]:end]),
		})
	}
	return segments
}

func chunk(text string, size int) []Segment {
	if size <= 0 {
		size = 2000
	}

	runes := []rune(text)
	segments := make([]Segment, 0, len(runes)/size+1)
	for start, n := 0, 1; start < len(runes); start, n = start+size, n+1 {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		content := strings.TrimSpace(string(runes[start:end]))
		if content == "" {
			continue
		}
		segments = append(segments, Segment{Title: fmt.Sprintf("Part %d", n), Content: content})
	}
	return segments
}

func normalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
