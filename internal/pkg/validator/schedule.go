package validator

import (
	"fmt"
	"path"
	"strings"

	"github.com/futig/schedule-backend/internal/entity"
)

// ValidateScheduleRequest rejects requests the pipeline cannot start on.
// Everything that can go wrong after this point degrades instead of failing.
func (v *Validator) ValidateScheduleRequest(req *entity.ScheduleRequest) error {
	if req == nil {
		return fmt.Errorf("%w: request body", entity.ErrMissingField)
	}

	if err := req.Task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrInvalidParameter, err)
	}

	switch req.Task {
	case entity.TaskCreate:
		if strings.TrimSpace(req.Request) == "" && len(req.Documents) == 0 {
			return fmt.Errorf("%w: request (or at least one document)", entity.ErrMissingField)
		}
	case entity.TaskAnalyze:
		if len(req.PriorActivities) == 0 {
			return fmt.Errorf("%w: prior_activities", entity.ErrMissingField)
		}
	}

	if err := v.ValidateProcessingOptions(req.Options); err != nil {
		return err
	}

	if len(req.Documents) > v.cfg.MaxFileCount {
		return fmt.Errorf("%w: maximum %d documents allowed, got %d", entity.ErrTooManyFiles, v.cfg.MaxFileCount, len(req.Documents))
	}
	for _, doc := range req.Documents {
		if doc.Content == nil && doc.Path == "" {
			return fmt.Errorf("%w: document content or path", entity.ErrMissingField)
		}
		if doc.Content != nil {
			if err := v.validateFile(doc.Name, int64(len(doc.Content))); err != nil {
				return err
			}
			continue
		}
		if err := v.ValidateDocumentPath(doc.Path); err != nil {
			return err
		}
	}

	return nil
}

// ValidateProcessingOptions checks the mode and its companions. An empty mode is allowed
// and means standard.
func (v *Validator) ValidateProcessingOptions(opts entity.ProcessingOptions) error {
	if opts.Mode != "" {
		if err := opts.Mode.Validate(); err != nil {
			return fmt.Errorf("%w: %v", entity.ErrInvalidParameter, err)
		}
	}
	if opts.Mode == entity.ModeCustom && len(opts.SelectedSectionIDs) == 0 {
		return fmt.Errorf("%w: selected_section_ids (required for custom mode)", entity.ErrMissingField)
	}
	if opts.MaxTokens < 0 {
		return fmt.Errorf("%w: max_tokens must not be negative, got %d", entity.ErrInvalidParameter, opts.MaxTokens)
	}
	return nil
}

// ValidateDocumentPath checks that a content store object has a readable extension.
func (v *Validator) ValidateDocumentPath(p string) error {
	return v.validateExtension(path.Base(p))
}
