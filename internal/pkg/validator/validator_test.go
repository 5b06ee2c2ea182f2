package validator

import (
	"mime/multipart"
	"testing"

	"github.com/futig/schedule-backend/internal/config"
	"github.com/futig/schedule-backend/internal/entity"
	"github.com/stretchr/testify/assert"
)

func testValidator() *Validator {
	return NewValidator(config.FileUploadConfig{
		MaxFileSize:  100,
		MaxTotalSize: 150,
		MaxFileCount: 2,
	}, []string{".txt", ".md"})
}

func TestValidateScheduleRequest(t *testing.T) {
	v := testValidator()
	prior := []entity.Activity{{ActivityID: "A001", Name: "Mobilize"}}

	tests := []struct {
		name string
		req  *entity.ScheduleRequest
		want error
	}{
		{"nil", nil, entity.ErrMissingField},
		{"ok create", &entity.ScheduleRequest{Task: entity.TaskCreate, Request: "warehouse"}, nil},
		{"create from documents only", &entity.ScheduleRequest{Task: entity.TaskCreate, Documents: []entity.DocumentSource{{Path: "specs/a.txt"}}}, nil},
		{"unknown task", &entity.ScheduleRequest{Task: "rebuild", Request: "x"}, entity.ErrInvalidParameter},
		{"create without input", &entity.ScheduleRequest{Task: entity.TaskCreate, Request: "  "}, entity.ErrMissingField},
		{"analyze without activities", &entity.ScheduleRequest{Task: entity.TaskAnalyze, Request: "x"}, entity.ErrMissingField},
		{"analyze", &entity.ScheduleRequest{Task: entity.TaskAnalyze, PriorActivities: prior}, nil},
		{"update without request", &entity.ScheduleRequest{Task: entity.TaskUpdate, PriorActivities: prior}, nil},
		{"unknown mode", &entity.ScheduleRequest{Task: entity.TaskCreate, Request: "x", Options: entity.ProcessingOptions{Mode: "turbo"}}, entity.ErrInvalidParameter},
		{"custom without ids", &entity.ScheduleRequest{Task: entity.TaskCreate, Request: "x", Options: entity.ProcessingOptions{Mode: entity.ModeCustom}}, entity.ErrMissingField},
		{"negative max tokens", &entity.ScheduleRequest{Task: entity.TaskCreate, Request: "x", Options: entity.ProcessingOptions{MaxTokens: -1}}, entity.ErrInvalidParameter},
		{"too many documents", &entity.ScheduleRequest{Task: entity.TaskCreate, Documents: []entity.DocumentSource{{Path: "a"}, {Path: "b"}, {Path: "c"}}}, entity.ErrTooManyFiles},
		{"document without source", &entity.ScheduleRequest{Task: entity.TaskCreate, Documents: []entity.DocumentSource{{Name: "a.txt"}}}, entity.ErrMissingField},
		{"inline pdf", &entity.ScheduleRequest{Task: entity.TaskCreate, Documents: []entity.DocumentSource{{Name: "a.pdf", Content: []byte("x")}}}, entity.ErrInvalidExtension},
		{"stored pdf", &entity.ScheduleRequest{Task: entity.TaskCreate, Documents: []entity.DocumentSource{{Path: "specs/a.pdf"}}}, entity.ErrInvalidExtension},
		{"stored docx without reader", &entity.ScheduleRequest{Task: entity.TaskCreate, Documents: []entity.DocumentSource{{Path: "specs/a.docx"}}}, entity.ErrInvalidExtension},
		{"inline too large", &entity.ScheduleRequest{Task: entity.TaskCreate, Documents: []entity.DocumentSource{{Name: "a.txt", Content: make([]byte, 101)}}}, entity.ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateScheduleRequest(tt.req)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidateUpload(t *testing.T) {
	v := testValidator()

	file := func(name string, size int64) *multipart.FileHeader {
		return &multipart.FileHeader{Filename: name, Size: size}
	}

	assert.NoError(t, v.ValidateUpload([]*multipart.FileHeader{file("a.txt", 50), file("b.MD", 50)}))
	assert.ErrorIs(t, v.ValidateUpload(nil), entity.ErrMissingField)
	assert.ErrorIs(t, v.ValidateUpload([]*multipart.FileHeader{file("a.txt", 1), file("b.txt", 1), file("c.txt", 1)}), entity.ErrTooManyFiles)
	assert.ErrorIs(t, v.ValidateUpload([]*multipart.FileHeader{file("a.exe", 1)}), entity.ErrInvalidExtension)
	assert.ErrorIs(t, v.ValidateUpload([]*multipart.FileHeader{file("plan.docx", 1)}), entity.ErrInvalidExtension)
	assert.NoError(t, NewValidator(config.FileUploadConfig{MaxFileSize: 100, MaxTotalSize: 150, MaxFileCount: 2}, []string{".docx"}).
		ValidateUpload([]*multipart.FileHeader{file("plan.DOCX", 1)}))
	assert.ErrorIs(t, v.ValidateUpload([]*multipart.FileHeader{file("a.txt", 101)}), entity.ErrFileTooLarge)
	assert.ErrorIs(t, v.ValidateUpload([]*multipart.FileHeader{file("a.txt", 90), file("b.txt", 90)}), entity.ErrTotalSizeTooLarge)
}

func TestValidateDocumentPath(t *testing.T) {
	v := testValidator()

	assert.NoError(t, v.ValidateDocumentPath("projects/7/notes.MD"))
	assert.ErrorIs(t, v.ValidateDocumentPath("projects/7/plan.docx"), entity.ErrInvalidExtension)
	assert.ErrorIs(t, v.ValidateDocumentPath("projects/7/README"), entity.ErrInvalidExtension)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "site_plan_v2.docx", SanitizeFilename("../uploads/site plan (v2).docx"))
}
