package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	documentapi "github.com/futig/schedule-backend/internal/api/document"
	scheduleapi "github.com/futig/schedule-backend/internal/api/schedule"
	"github.com/futig/schedule-backend/internal/config"
	"github.com/futig/schedule-backend/internal/entity"
	"github.com/futig/schedule-backend/internal/integration/contentstore"
	"github.com/futig/schedule-backend/internal/integration/llm"
	"github.com/futig/schedule-backend/internal/pkg/extractor"
	"github.com/futig/schedule-backend/internal/pkg/response"
	"github.com/futig/schedule-backend/internal/pkg/validator"
	"github.com/futig/schedule-backend/internal/triage"
	"github.com/futig/schedule-backend/internal/usecase/document"
	"github.com/futig/schedule-backend/internal/usecase/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const specText = "1. Schedule\nThe schedule milestone duration and critical path are reviewed weekly. " +
	"The schedule milestone duration and critical path are reviewed weekly. " +
	"The schedule milestone duration and critical path are reviewed weekly. " +
	"The schedule milestone duration and critical path are reviewed weekly. " +
	"The schedule milestone duration and critical path are reviewed weekly. " +
	"The schedule milestone duration and critical path are reviewed weekly."

func newTestRouter(t *testing.T, rateLimit config.RateLimitConfig) (http.Handler, *contentstore.MockConnector) {
	t.Helper()
	logger := zap.NewNop()

	uploadCfg := config.FileUploadConfig{
		MaxFileSize:   1 << 20,
		MaxTotalSize:  4 << 20,
		MaxFileCount:  4,
		MaxUploadSize: 8 << 20,
	}
	extractors := extractor.NewFactory()
	v := validator.NewValidator(uploadCfg, extractors.Extensions())

	engine := triage.NewEngine(config.TriageConfig{
		ChunkSize:              2000,
		MinSectionLength:       100,
		AutoSelectThreshold:    20,
		HighRelevanceThreshold: 50,
		CharsPerToken:          4,
		TruncationRatio:        0.75,
	}, config.PriceTable{DefaultPer1K: 0.003, Models: map[string]float64{}})

	store := contentstore.NewMockConnector(logger)
	documentUC := document.NewUsecase(store, extractors, engine, 2, "gpt-4o-mini", logger)

	prompts, err := schedule.LoadPrompts(nil)
	require.NoError(t, err)
	orchestrator := schedule.NewOrchestrator(llm.NewMockConnector(logger), prompts, config.GenerationConfig{
		Temperature:     0.3,
		MaxOutputTokens: 8000,
		Timeout:         5 * time.Second,
	})
	scheduleUC := schedule.NewUsecase(documentUC, orchestrator, v, "gpt-4o-mini", logger)

	router := SetupRouter(
		scheduleapi.NewHandler(scheduleUC, uploadCfg, v),
		documentapi.NewHandler(documentUC, uploadCfg, v),
		rateLimit,
		10*time.Second,
		logger,
	)
	return router, store
}

func defaultRateLimit() config.RateLimitConfig {
	return config.RateLimitConfig{RequestsPerMinute: 600, Burst: 100}
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t, defaultRateLimit())
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestSwaggerYAML(t *testing.T) {
	router, _ := newTestRouter(t, defaultRateLimit())
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs/swagger.yaml", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/schedules:")
}

func TestCreateSchedule_JSON(t *testing.T) {
	router, store := newTestRouter(t, defaultRateLimit())
	store.Put("projects/7/spec.txt", []byte(specText))

	rec := postJSON(t, router, "/schedules", map[string]any{
		"task":           "create",
		"request":        "Two storey office with steel frame",
		"start_date":     "2025-03-03",
		"options":        map[string]any{"mode": "quick"},
		"document_paths": []string{"projects/7/spec.txt"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result entity.ScheduleResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, entity.OutcomeGenerated, result.Outcome)
	assert.Len(t, result.Activities, 5)
	assert.Equal(t, "2025-03-03", result.Activities[0].StartDate)
	require.NotNil(t, result.DocumentInsights)
	assert.Equal(t, []string{"section-1"}, result.DocumentInsights.Documents[0].SelectedSections)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	for _, key := range []string{"requestId", "criticalPath", "documentInsights", "recoveryMethod"} {
		assert.Contains(t, raw, key)
	}
	assert.NotContains(t, raw, "request_id")
	assert.NotContains(t, raw, "recovery_method")
}

func TestCreateSchedule_Multipart(t *testing.T) {
	router, _ := newTestRouter(t, defaultRateLimit())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("task", "update"))
	require.NoError(t, mw.WriteField("request", "Add roofing after the frame"))
	require.NoError(t, mw.WriteField("prior_activities", `[{"activityId":"A001","name":"Mobilization","durationDays":3}]`))
	fw, err := mw.CreateFormFile("files", "spec.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte(specText))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/schedules", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result entity.ScheduleResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotEmpty(t, result.RequestID)
	require.NotNil(t, result.DocumentInsights)
	assert.Equal(t, "spec.txt", result.DocumentInsights.Documents[0].Name)
}

func TestCreateSchedule_Rejected(t *testing.T) {
	router, _ := newTestRouter(t, defaultRateLimit())

	tests := []struct {
		name string
		body any
		want int
	}{
		{"unknown task", map[string]any{"task": "replan", "request": "x"}, http.StatusBadRequest},
		{"bad date", map[string]any{"task": "create", "request": "x", "start_date": "03/03/2025"}, http.StatusBadRequest},
		{"custom without ids", map[string]any{"task": "create", "request": "x", "options": map[string]any{"mode": "custom"}}, http.StatusBadRequest},
		{"not an object", []int{1, 2}, http.StatusBadRequest},
		{"docx without reader", map[string]any{"task": "create", "document_paths": []string{"projects/7/plan.docx"}}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, router, "/schedules", tt.body)

			assert.Equal(t, tt.want, rec.Code)
			var body response.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Detail)
		})
	}
}

func TestCreateSchedule_RateLimited(t *testing.T) {
	router, _ := newTestRouter(t, config.RateLimitConfig{RequestsPerMinute: 1, Burst: 1})
	body := map[string]any{"task": "create", "request": "warehouse"}

	assert.Equal(t, http.StatusOK, postJSON(t, router, "/schedules", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, postJSON(t, router, "/schedules", body).Code)
}

func TestAnalyzeDocuments(t *testing.T) {
	router, _ := newTestRouter(t, defaultRateLimit())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("mode", "deep"))
	for name, content := range map[string]string{"spec.txt": specText, "notes.md": "# Notes\n\nshort"} {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents/analyze", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp entity.AnalyzeDocumentsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Documents, 2)
	require.NotNil(t, resp.Insights)
	assert.Equal(t, entity.ModeDeep, resp.Insights.Mode)

	for _, d := range resp.Documents {
		assert.Len(t, d.Budgets, len(entity.ProcessingModes), d.Document.Name)
		if strings.HasSuffix(d.Document.Name, ".md") {
			assert.Empty(t, d.Sections)
			assert.NotEmpty(t, d.Note)
		}
	}
}

func TestAnalyzeDocuments_NoInput(t *testing.T) {
	router, _ := newTestRouter(t, defaultRateLimit())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("mode", "quick"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents/analyze", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeDocuments_DocxWithoutReader(t *testing.T) {
	router, _ := newTestRouter(t, defaultRateLimit())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("files", "plan.docx")
	require.NoError(t, err)
	_, err = fw.Write([]byte("PK"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents/analyze", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp response.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Detail, ".docx")
}
