package entity

import "fmt"

type SectionCategory string

const (
	CategoryProjectDetails SectionCategory = "project_details"
	CategorySchedule       SectionCategory = "schedule"
	CategorySpecifications SectionCategory = "specifications"
	CategoryConstraints    SectionCategory = "constraints"
	CategoryDates          SectionCategory = "dates"
	CategoryScope          SectionCategory = "scope"
	CategoryOther          SectionCategory = "other"
)

type ProcessingMode string

const (
	ModeQuick    ProcessingMode = "quick"
	ModeStandard ProcessingMode = "standard"
	ModeDeep     ProcessingMode = "deep"
	ModeCustom   ProcessingMode = "custom"
)

// ProcessingModes lists the budgets computed for every analysis, in display order.
var ProcessingModes = []ProcessingMode{ModeQuick, ModeStandard, ModeDeep, ModeCustom}

func (m ProcessingMode) Validate() error {
	switch m {
	case ModeQuick, ModeStandard, ModeDeep, ModeCustom:
		return nil
	default:
		return fmt.Errorf("unknown processing mode: %s", m)
	}
}

// DocumentSource points at a document to triage. Content wins over Path when both are set.
type DocumentSource struct {
	Name    string
	Path    string
	Content []byte
}

type Document struct {
	Name           string `json:"name"`
	Path           string `json:"path,omitempty"`
	RawText        string `json:"-"`
	TotalSizeChars int    `json:"total_size_chars"`
}

type Section struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Content        string          `json:"content"`
	RelevanceScore int             `json:"relevance_score"`
	Category       SectionCategory `json:"category"`
	TokenEstimate  int             `json:"token_estimate"`
	Keywords       []string        `json:"keywords"`
	IsSelected     bool            `json:"is_selected"`
}

type KeyInformation struct {
	ContractDuration string   `json:"contract_duration,omitempty"`
	ProjectType      string   `json:"project_type,omitempty"`
	StartDate        string   `json:"start_date,omitempty"`
	EndDate          string   `json:"end_date,omitempty"`
	Milestones       []string `json:"milestones"`
	Constraints      []string `json:"constraints"`
}

type ProcessingOptions struct {
	Mode               ProcessingMode `json:"mode"`
	SelectedSectionIDs []string       `json:"selected_section_ids,omitempty"`
	MaxTokens          int            `json:"max_tokens,omitempty"`
}

// Budget describes what one processing mode would send to the generator.
type Budget struct {
	Mode          ProcessingMode `json:"mode"`
	Label         string         `json:"label"`
	SectionIDs    []string       `json:"section_ids"`
	TokenEstimate int            `json:"token_estimate"`
	EstimatedCost float64        `json:"estimated_cost"`
}

type DocumentAnalysis struct {
	Document Document                  `json:"document"`
	Sections []Section                 `json:"sections"`
	KeyInfo  KeyInformation            `json:"key_information"`
	Budgets  map[ProcessingMode]Budget `json:"budgets"`
	Note     string                    `json:"note,omitempty"`
	Failed   bool                      `json:"failed"`
}

type AnalyzeDocumentsResponse struct {
	Documents []DocumentAnalysis `json:"documents"`
	Insights  *DocumentInsights  `json:"insights"`
}
