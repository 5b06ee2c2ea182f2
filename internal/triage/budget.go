package triage

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/futig/schedule-backend/internal/config"
	"github.com/futig/schedule-backend/internal/entity"
)

// TruncationMarker is appended to content cut down to a token ceiling.
const TruncationMarker = "\n\n[... content truncated to fit the token budget ...]"

// EstimateTokens approximates the token count of text as characters / charsPerToken.
func EstimateTokens(text string, charsPerToken int) int {
	if charsPerToken <= 0 {
		charsPerToken = 4
	}
	n := utf8.RuneCountInString(text)
	return (n + charsPerToken - 1) / charsPerToken
}

// Cost estimates the prompt cost of tokens for model using the price table.
func Cost(prices config.PriceTable, model string, tokens int) float64 {
	rate, ok := prices.Models[model]
	if !ok {
		rate = prices.DefaultPer1K
	}
	cost := float64(tokens) / 1000 * rate
	return math.Round(cost*1e6) / 1e6
}

// Truncate cuts text that exceeds maxTokens down to ratio of the budget, at a
// word boundary, and appends TruncationMarker. A non-positive ceiling disables it.
func Truncate(text string, maxTokens, charsPerToken int, ratio float64) (string, bool) {
	if maxTokens <= 0 || EstimateTokens(text, charsPerToken) <= maxTokens {
		return text, false
	}

	limit := int(float64(maxTokens*charsPerToken) * ratio)
	runes := []rune(text)
	if limit >= len(runes) {
		return text, false
	}

	cut := runes[:limit]
	if !unicode.IsSpace(runes[limit]) {
		for i := len(cut) - 1; i > 0; i-- {
			if unicode.IsSpace(cut[i]) {
				cut = cut[:i]
				break
			}
		}
	}

	return strings.TrimRightFunc(string(cut), unicode.IsSpace) + TruncationMarker, true
}

// SelectSections returns the sections a processing mode sends, keeping score order.
// Custom ids match either "section-N" or "<document name>:section-N".
func (e *Engine) SelectSections(documentName string, sections []entity.Section, opts entity.ProcessingOptions) []entity.Section {
	var wanted map[string]bool
	if opts.Mode == entity.ModeCustom {
		wanted = make(map[string]bool, len(opts.SelectedSectionIDs))
		for _, id := range opts.SelectedSectionIDs {
			wanted[id] = true
		}
	}

	selected := make([]entity.Section, 0, len(sections))
	for _, s := range sections {
		var keep bool
		switch opts.Mode {
		case entity.ModeQuick:
			keep = s.RelevanceScore > e.cfg.HighRelevanceThreshold
		case entity.ModeDeep:
			keep = true
		case entity.ModeCustom:
			keep = wanted[s.ID] || wanted[documentName+":"+s.ID]
		default:
			keep = s.IsSelected
		}
		if keep {
			selected = append(selected, s)
		}
	}
	return selected
}

// Budgets computes every processing mode's section set, token estimate and cost.
func (e *Engine) Budgets(documentName string, sections []entity.Section, opts entity.ProcessingOptions, model string) map[entity.ProcessingMode]entity.Budget {
	budgets := make(map[entity.ProcessingMode]entity.Budget, len(entity.ProcessingModes))

	for _, mode := range entity.ProcessingModes {
		modeOpts := entity.ProcessingOptions{Mode: mode, SelectedSectionIDs: opts.SelectedSectionIDs}
		selected := e.SelectSections(documentName, sections, modeOpts)

		ids := make([]string, 0, len(selected))
		tokens := 0
		for _, s := range selected {
			ids = append(ids, s.ID)
			tokens += s.TokenEstimate
		}

		budgets[mode] = entity.Budget{
			Mode:          mode,
			Label:         e.budgetLabel(mode, len(selected)),
			SectionIDs:    ids,
			TokenEstimate: tokens,
			EstimatedCost: Cost(e.prices, model, tokens),
		}
	}
	return budgets
}

func (e *Engine) budgetLabel(mode entity.ProcessingMode, count int) string {
	switch mode {
	case entity.ModeQuick:
		return fmt.Sprintf("Quick: %d high-relevance sections (score > %d)", count, e.cfg.HighRelevanceThreshold)
	case entity.ModeStandard:
		return fmt.Sprintf("Standard: %d auto-selected sections (score > %d)", count, e.cfg.AutoSelectThreshold)
	case entity.ModeDeep:
		return fmt.Sprintf("Deep: all %d sections", count)
	default:
		return fmt.Sprintf("Custom: %d caller-selected sections", count)
	}
}
