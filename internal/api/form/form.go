// Package form parses the multipart fields shared by the schedule and
// document endpoints.
package form

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/futig/schedule-backend/internal/entity"
	"github.com/futig/schedule-backend/internal/pkg/validator"
)

// List collects a repeated field, splitting comma-separated values and
// dropping blanks.
func List(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// ProcessingOptions reads mode, section_ids and max_tokens.
func ProcessingOptions(r *http.Request) (entity.ProcessingOptions, error) {
	mode := strings.TrimSpace(r.FormValue("mode"))
	opts := entity.ProcessingOptions{
		Mode:               entity.ProcessingMode(mode),
		SelectedSectionIDs: List(r.Form["section_ids"]),
	}

	if raw := strings.TrimSpace(r.FormValue("max_tokens")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return opts, fmt.Errorf("%w: max_tokens %q is not an integer", entity.ErrInvalidFormat, raw)
		}
		opts.MaxTokens = n
	}

	return opts, nil
}

// Date parses an optional YYYY-MM-DD value.
func Date(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(entity.DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD, got %q", entity.ErrInvalidFormat, field, raw)
	}
	return t, nil
}

// Documents turns uploaded files and store paths into document sources.
// Uploads come first, in form order.
func Documents(files []*multipart.FileHeader, paths []string) ([]entity.DocumentSource, error) {
	sources := make([]entity.DocumentSource, 0, len(files)+len(paths))

	for _, fh := range files {
		content, err := readFile(fh)
		if err != nil {
			return nil, fmt.Errorf("read upload %s: %w", fh.Filename, err)
		}
		sources = append(sources, entity.DocumentSource{
			Name:    validator.SanitizeFilename(fh.Filename),
			Content: content,
		})
	}

	for _, p := range paths {
		sources = append(sources, entity.DocumentSource{Path: p})
	}

	return sources, nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

// Files returns the uploads under the "files" field, if any.
func Files(r *http.Request) []*multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	return r.MultipartForm.File["files"]
}
