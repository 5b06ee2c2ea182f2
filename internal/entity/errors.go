package entity

import "errors"

// Domain errors
var (
	// Pipeline errors. None of these cross the pipeline boundary as a returned error;
	// they are recorded on the result and in logs.
	ErrDocumentUnreadable  = errors.New("document unreadable")
	ErrModelInvocation     = errors.New("model invocation failed")
	ErrMalformedOutput     = errors.New("malformed model output")
	ErrDanglingPredecessor = errors.New("predecessor does not resolve to a known activity")

	// Content store errors
	ErrObjectNotFound = errors.New("object not found")

	// File errors
	ErrInvalidFile       = errors.New("invalid file")
	ErrFileTooLarge      = errors.New("file too large")
	ErrTooManyFiles      = errors.New("too many files")
	ErrInvalidExtension  = errors.New("invalid file extension")
	ErrTotalSizeTooLarge = errors.New("total file size too large")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidParameter = errors.New("invalid parameter")
)
