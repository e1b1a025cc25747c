package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Guest errors
	ErrGuestNotFound = errors.New("guest not found")
	ErrNameTaken     = errors.New("normalized name already claimed")
	ErrEmptyName     = errors.New("name is empty after normalization")

	// Photo errors
	ErrPhotoNotFound = errors.New("photo not found")
	ErrNotPhotoOwner = errors.New("only the uploader may delete a photo")

	// Upload errors
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// Upload task errors
	ErrUploadTaskNotFound = errors.New("upload task not found")
)

// AmbiguousNameError is returned when a sign-in name is close to one or more
// existing guests. The caller must have the user pick a suggestion (via
// ConfirmSuggestion) or retry; it must never silently pick one.
type AmbiguousNameError struct {
	Suggestions []*Guest
}

func (e *AmbiguousNameError) Error() string {
	return fmt.Sprintf("name matches %d existing guest(s); confirmation required", len(e.Suggestions))
}

// UploadError wraps a transport failure during one file's upload. Failures
// are per-file: sibling uploads in the same batch are unaffected.
type UploadError struct {
	FileName string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload of %q failed: %v", e.FileName, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
