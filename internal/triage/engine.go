// Package triage splits raw document text into scored, categorized sections,
// pulls coarse key facts out of it, and materializes a token-bounded subset of
// it for a processing mode.
package triage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/futig/schedule-backend/internal/config"
	"github.com/futig/schedule-backend/internal/entity"
)

const sectionSeparator = "\n\n"

// Engine is stateless apart from its configuration and is safe for concurrent use.
type Engine struct {
	cfg    config.TriageConfig
	prices config.PriceTable
}

func NewEngine(cfg config.TriageConfig, prices config.PriceTable) *Engine {
	return &Engine{cfg: cfg, prices: prices}
}

// Analyze triages one document. It never fails: a document without usable text
// comes back as a zero-section analysis carrying a note.
func (e *Engine) Analyze(doc entity.Document, opts entity.ProcessingOptions, model string) entity.DocumentAnalysis {
	text := normalizeNewlines(doc.RawText)
	if strings.TrimSpace(text) == "" {
		return e.Unreadable(doc, fmt.Errorf("%w: no readable text", entity.ErrDocumentUnreadable))
	}

	segments := Split(text, e.cfg.ChunkSize, e.cfg.MinSectionLength)
	sections := make([]entity.Section, 0, len(segments))
	for i, seg := range segments {
		score := Score(seg.Content)
		sections = append(sections, entity.Section{
			ID:             fmt.Sprintf("section-%d", i+1),
			Title:          seg.Title,
			Content:        seg.Content,
			RelevanceScore: score.Score,
			Category:       Categorize(seg.Content),
			TokenEstimate:  EstimateTokens(seg.Content, e.cfg.CharsPerToken),
			Keywords:       score.Keywords,
			IsSelected:     score.Score > e.cfg.AutoSelectThreshold,
		})
	}

	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].RelevanceScore > sections[j].RelevanceScore
	})

	analysis := entity.DocumentAnalysis{
		Document: doc,
		Sections: sections,
		KeyInfo:  ExtractKeyInformation(text),
		Budgets:  e.Budgets(doc.Name, sections, opts, model),
	}
	if len(sections) == 0 {
		analysis.Note = fmt.Sprintf("document %q produced no sections of at least %d characters", doc.Name, e.cfg.MinSectionLength)
	}
	return analysis
}

// Unreadable builds the zero-section analysis for a document that could not be read.
func (e *Engine) Unreadable(doc entity.Document, err error) entity.DocumentAnalysis {
	return entity.DocumentAnalysis{
		Document: doc,
		Sections: []entity.Section{},
		KeyInfo:  entity.KeyInformation{Milestones: []string{}, Constraints: []string{}},
		Budgets:  e.Budgets(doc.Name, nil, entity.ProcessingOptions{}, ""),
		Note:     fmt.Sprintf("document %q could not be processed: %v", doc.Name, err),
		Failed:   true,
	}
}

// Content concatenates the sections chosen by opts in score order and applies
// the optional token ceiling. The bool reports whether truncation happened.
func (e *Engine) Content(analysis entity.DocumentAnalysis, opts entity.ProcessingOptions) (string, bool) {
	joined := JoinSections(e.SelectSections(analysis.Document.Name, analysis.Sections, opts))
	return e.Truncate(joined, opts.MaxTokens)
}

// Truncate applies the configured truncation ratio to text over maxTokens.
func (e *Engine) Truncate(text string, maxTokens int) (string, bool) {
	return Truncate(text, maxTokens, e.cfg.CharsPerToken, e.cfg.TruncationRatio)
}

// EstimateTokens uses the configured characters-per-token ratio.
func (e *Engine) EstimateTokens(text string) int {
	return EstimateTokens(text, e.cfg.CharsPerToken)
}

// Cost prices tokens for model.
func (e *Engine) Cost(model string, tokens int) float64 {
	return Cost(e.prices, model, tokens)
}

func JoinSections(sections []entity.Section) string {
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		parts = append(parts, s.Content)
	}
	return strings.Join(parts, sectionSeparator)
}
