package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/futig/schedule-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ENABLE_MOCKS", "")
	t.Setenv("LOG_LEVEL", "")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--mock", "--log-level", "error", "--env", "test"}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestGenerateCommand(t *testing.T) {
	out, err := runCLI(t, "generate", "--request", "Tilt-up warehouse", "--start", "2025-03-03")
	require.NoError(t, err)

	var result entity.ScheduleResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, entity.OutcomeGenerated, result.Outcome)
	assert.Len(t, result.Activities, 5)
	assert.Equal(t, "2025-03-03", result.Activities[0].StartDate)
}

func TestGenerateCommand_BadStart(t *testing.T) {
	_, err := runCLI(t, "generate", "--request", "x", "--start", "next monday")

	assert.ErrorIs(t, err, entity.ErrInvalidFormat)
}

func TestTriageCommand(t *testing.T) {
	doc := "1. Schedule\n" + strings.Repeat("The schedule milestone duration and critical path are reviewed weekly. ", 6)
	path := writeFile(t, "spec.txt", doc)

	out, err := runCLI(t, "triage", "--mode", "quick", path)
	require.NoError(t, err)

	var resp entity.AnalyzeDocumentsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Documents, 1)
	assert.Equal(t, "spec.txt", resp.Documents[0].Document.Name)
	assert.Equal(t, []string{"section-1"}, resp.Documents[0].Budgets[entity.ModeQuick].SectionIDs)
	assert.Equal(t, entity.ModeQuick, resp.Insights.Mode)
}

func TestTriageCommand_MissingFile(t *testing.T) {
	_, err := runCLI(t, "triage", filepath.Join(t.TempDir(), "nope.txt"))

	assert.ErrorIs(t, err, os.ErrNotExist)
}
