package form

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/futig/schedule-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList(t *testing.T) {
	assert.Equal(t, []string{"section-1", "spec.txt:section-4", "section-9"},
		List([]string{"section-1, spec.txt:section-4", " ", "section-9,"}))
	assert.Nil(t, List(nil))
}

func TestDate(t *testing.T) {
	d, err := Date("start_date", "2025-03-03")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), d)

	d, err = Date("start_date", "")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = Date("start_date", "03/03/2025")
	assert.ErrorIs(t, err, entity.ErrInvalidFormat)
}

func TestMultipartFields(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("mode", "custom"))
	require.NoError(t, mw.WriteField("section_ids", "section-2,section-5"))
	require.NoError(t, mw.WriteField("max_tokens", "4000"))
	fw, err := mw.CreateFormFile("files", "site plan (rev 2).txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("1. SCHEDULE\nstart work"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/documents/analyze", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, r.ParseMultipartForm(1<<20))

	opts, err := ProcessingOptions(r)
	require.NoError(t, err)
	assert.Equal(t, entity.ProcessingOptions{
		Mode:               entity.ModeCustom,
		SelectedSectionIDs: []string{"section-2", "section-5"},
		MaxTokens:          4000,
	}, opts)

	sources, err := Documents(Files(r), []string{"projects/1/spec.md"})
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "site_plan_rev_2.txt", sources[0].Name)
	assert.Equal(t, "1. SCHEDULE\nstart work", string(sources[0].Content))
	assert.Equal(t, entity.DocumentSource{Path: "projects/1/spec.md"}, sources[1])
}

func TestProcessingOptions_BadMaxTokens(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/?max_tokens=lots", nil)

	_, err := ProcessingOptions(r)

	assert.ErrorIs(t, err, entity.ErrInvalidFormat)
}
