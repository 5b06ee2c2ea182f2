package schedule

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/futig/schedule-backend/internal/entity"
	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPromptsYAML []byte

const (
	placeholderRequest   = "{{request}}"
	placeholderStartDate = "{{start_date}}"
	notSpecified         = "not specified"
)

// Prompts holds the system instruction and the per-task instruction blocks.
type Prompts struct {
	System          string                     `yaml:"system"`
	Tasks           map[entity.TaskType]string `yaml:"tasks"`
	KeyInformation  string                     `yaml:"key_information"`
	Documents       string                     `yaml:"documents"`
	PriorActivities string                     `yaml:"prior_activities"`
}

// LoadPrompts parses prompt templates. Nil or empty data loads the embedded defaults.
func LoadPrompts(data []byte) (*Prompts, error) {
	if len(data) == 0 {
		data = defaultPromptsYAML
	}

	var p Prompts
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse prompts YAML: %w", err)
	}

	if strings.TrimSpace(p.System) == "" {
		return nil, fmt.Errorf("%w: system prompt", entity.ErrMissingField)
	}
	for _, task := range []entity.TaskType{entity.TaskCreate, entity.TaskUpdate, entity.TaskLookahead, entity.TaskAnalyze} {
		if strings.TrimSpace(p.Tasks[task]) == "" {
			return nil, fmt.Errorf("%w: prompt for task %s", entity.ErrMissingField, task)
		}
	}

	return &p, nil
}

// BuildPrompt assembles the system message and one user message made of the
// task block, key facts, document excerpts and, for tasks working on an
// existing schedule, a JSON snapshot of the prior activities.
func (p *Prompts) BuildPrompt(req entity.GenerationRequest) []entity.ChatMessage {
	start := notSpecified
	if !req.StartDate.IsZero() {
		start = req.StartDate.Format(entity.DateLayout)
	}
	request := strings.TrimSpace(req.Request)
	if request == "" {
		request = notSpecified
	}

	r := strings.NewReplacer(placeholderRequest, request, placeholderStartDate, start)
	blocks := []string{strings.TrimSpace(r.Replace(p.Tasks[req.Task]))}

	if facts := keyFacts(req.KeyInfo); facts != "" {
		blocks = append(blocks, strings.TrimSpace(p.KeyInformation)+"\n"+facts)
	}

	if content := strings.TrimSpace(req.DocumentContent); content != "" {
		blocks = append(blocks, strings.TrimSpace(p.Documents)+"\n"+content)
	}

	if req.Task.UsesPriorActivities() {
		blocks = append(blocks, strings.TrimSpace(p.PriorActivities)+"\n"+activitySnapshot(req.PriorActivities))
	}

	return []entity.ChatMessage{
		{Role: entity.RoleSystem, Content: strings.TrimSpace(p.System)},
		{Role: entity.RoleUser, Content: strings.Join(blocks, "\n\n")},
	}
}

func keyFacts(info *entity.KeyInformation) string {
	if info == nil {
		return ""
	}

	var lines []string
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, fmt.Sprintf("- %s: %s", label, value))
		}
	}
	add("Project type", info.ProjectType)
	add("Contract duration", info.ContractDuration)
	add("Start date", info.StartDate)
	add("End date", info.EndDate)
	for _, m := range info.Milestones {
		add("Milestone", m)
	}
	for _, c := range info.Constraints {
		add("Constraint", c)
	}
	return strings.Join(lines, "\n")
}

func activitySnapshot(activities []entity.Activity) string {
	if len(activities) == 0 {
		return "[]"
	}
	data, err := json.MarshalIndent(activities, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(data)
}
