// Package extractor turns uploaded document bytes into plain text for triage.
// Headings are kept as standalone lines so structural segmentation can find them.
package extractor

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/futig/schedule-backend/internal/entity"
)

type Extractor interface {
	Extract(content []byte) (string, error)
	FileExtension() string
}

type Factory struct {
	byExt map[string]Extractor
}

type FactoryOption func(*Factory)

// WithDOCX enables .docx reading. The unioffice license must be activated
// first, see ActivateDOCX.
func WithDOCX() FactoryOption {
	return func(f *Factory) {
		e := NewDOCXExtractor()
		f.byExt[e.FileExtension()] = e
	}
}

func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{byExt: make(map[string]Extractor)}
	for _, e := range []Extractor{NewTextExtractor(), NewMarkdownExtractor()} {
		f.byExt[e.FileExtension()] = e
	}
	f.byExt[".text"] = f.byExt[textFileExtension]
	f.byExt[".markdown"] = f.byExt[markdownFileExtension]
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Extensions lists the readable file extensions in sorted order.
func (f *Factory) Extensions() []string {
	exts := make([]string, 0, len(f.byExt))
	for ext := range f.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ForFile picks the extractor matching the file name's extension.
func (f *Factory) ForFile(name string) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(name))
	e, ok := f.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", entity.ErrInvalidExtension, ext)
	}
	return e, nil
}

// Extract converts content according to name's extension.
func (f *Factory) Extract(name string, content []byte) (string, error) {
	e, err := f.ForFile(name)
	if err != nil {
		return "", err
	}
	text, err := e.Extract(content)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", name, err)
	}
	return text, nil
}
