package validator

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/futig/schedule-backend/internal/config"
	"github.com/futig/schedule-backend/internal/entity"
)

// Validator validates schedule requests and document uploads
type Validator struct {
	cfg        config.FileUploadConfig
	extensions []string
	allowed    map[string]bool
}

// NewValidator accepts documents whose extension is one of extensions,
// normally the ones the configured extractor can read.
func NewValidator(cfg config.FileUploadConfig, extensions []string) *Validator {
	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = true
	}
	return &Validator{cfg: cfg, extensions: extensions, allowed: allowed}
}

// ValidateUpload validates multiple file uploads
func (v *Validator) ValidateUpload(files []*multipart.FileHeader) error {
	if len(files) == 0 {
		return fmt.Errorf("%w: files", entity.ErrMissingField)
	}

	if len(files) > v.cfg.MaxFileCount {
		return fmt.Errorf("%w: maximum %d files allowed, got %d", entity.ErrTooManyFiles, v.cfg.MaxFileCount, len(files))
	}

	var totalSize int64
	for _, fh := range files {
		if err := v.validateFile(fh.Filename, fh.Size); err != nil {
			return err
		}
		totalSize += fh.Size
	}

	if totalSize > v.cfg.MaxTotalSize {
		return fmt.Errorf("%w: total size is %d bytes (max %d)", entity.ErrTotalSizeTooLarge, totalSize, v.cfg.MaxTotalSize)
	}

	return nil
}

func (v *Validator) validateFile(name string, size int64) error {
	if err := v.validateExtension(name); err != nil {
		return err
	}

	if size > v.cfg.MaxFileSize {
		return fmt.Errorf("%w: file '%s' is %d bytes (max %d)", entity.ErrFileTooLarge, name, size, v.cfg.MaxFileSize)
	}

	return nil
}

func (v *Validator) validateExtension(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if !v.allowed[ext] {
		return fmt.Errorf("%w: %q in %s (allowed: %s)", entity.ErrInvalidExtension, ext, name, strings.Join(v.extensions, ", "))
	}
	return nil
}

// SanitizeFilename strips directories and shell-hostile characters from an uploaded name.
func SanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	replacer := strings.NewReplacer(
		" ", "_",
		"(", "",
		")", "",
		"[", "",
		"]", "",
		"{", "",
		"}", "",
	)
	return replacer.Replace(filename)
}
