package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/snapfest/snapfest/internal/model"
	"github.com/snapfest/snapfest/internal/services/identity"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Suggestion is an existing guest offered as a sign-in alternative.
type Suggestion struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Nickname    string `json:"nickname,omitempty"`
	PhotoCount  int    `json:"photo_count"`
}

// ErrorResponse wraps an APIError. Suggestions is populated only for
// ambiguous-name errors.
type ErrorResponse struct {
	Error       APIError     `json:"error"`
	Suggestions []Suggestion `json:"suggestions,omitempty"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeEmptyName           = "EMPTY_NAME"
	CodeAmbiguousName       = "AMBIGUOUS_NAME"
	CodeNameTaken           = "NAME_TAKEN"
	CodeGuestNotFound       = "GUEST_NOT_FOUND"
	CodePhotoNotFound       = "PHOTO_NOT_FOUND"
	CodeNotPhotoOwner       = "NOT_PHOTO_OWNER"
	CodeUnsupportedFileType = "UNSUPPORTED_FILE_TYPE"
	CodeUploadTaskNotFound  = "UPLOAD_TASK_NOT_FOUND"
	CodeUploadFailed        = "UPLOAD_FAILED"
	CodeInvalidAccessCode   = "INVALID_ACCESS_CODE"
	CodeRoleNotGrantable    = "ROLE_NOT_GRANTABLE"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an error response body
type httpError struct {
	status   int
	response ErrorResponse
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.response.Error.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(he.response)
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var ambiguous *model.AmbiguousNameError
	if errors.As(err, &ambiguous) {
		return ambiguousNameError(ambiguous)
	}

	switch {
	case errors.Is(err, model.ErrEmptyName):
		return simple(http.StatusBadRequest, CodeEmptyName, "Name must not be empty")
	case errors.Is(err, model.ErrNameTaken):
		return simple(http.StatusConflict, CodeNameTaken, "Name is already claimed")
	case errors.Is(err, model.ErrGuestNotFound):
		return simple(http.StatusNotFound, CodeGuestNotFound, "Guest not found")
	case errors.Is(err, model.ErrPhotoNotFound):
		return simple(http.StatusNotFound, CodePhotoNotFound, "Photo not found")
	case errors.Is(err, model.ErrNotPhotoOwner):
		return simple(http.StatusForbidden, CodeNotPhotoOwner, "Only the uploader can delete a photo")
	case errors.Is(err, model.ErrUnsupportedFileType):
		return simple(http.StatusUnsupportedMediaType, CodeUnsupportedFileType, "File type is not supported")
	case errors.Is(err, model.ErrUploadTaskNotFound):
		return simple(http.StatusNotFound, CodeUploadTaskNotFound, "Upload task not found")

	case errors.Is(err, identity.ErrInvalidAccessCode):
		return simple(http.StatusUnauthorized, CodeInvalidAccessCode, "Invalid access code")
	case errors.Is(err, identity.ErrUnknownRole):
		return simple(http.StatusBadRequest, CodeRoleNotGrantable, "Role cannot be granted by access code")
	}

	var uploadErr *model.UploadError
	if errors.As(err, &uploadErr) {
		return simple(http.StatusBadGateway, CodeUploadFailed, "Upload failed: "+uploadErr.FileName)
	}

	return simple(http.StatusInternalServerError, CodeInternalError, "Internal server error")
}

func simple(status int, code, message string) *httpError {
	return &httpError{status, ErrorResponse{Error: APIError{code, message}}}
}

func ambiguousNameError(err *model.AmbiguousNameError) *httpError {
	suggestions := make([]Suggestion, len(err.Suggestions))
	for i, g := range err.Suggestions {
		suggestions[i] = Suggestion{
			ID:          string(g.ID),
			DisplayName: g.DisplayName,
			Nickname:    g.Nickname,
			PhotoCount:  g.PhotoCount,
		}
	}
	return &httpError{
		status: http.StatusConflict,
		response: ErrorResponse{
			Error:       APIError{CodeAmbiguousName, "A similar name already exists; confirm a suggestion or pick another name"},
			Suggestions: suggestions,
		},
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return simple(http.StatusBadRequest, CodeInvalidRequest, message)
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return simple(http.StatusUnauthorized, CodeUnauthorized, "Guest identification required")
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return simple(http.StatusInternalServerError, CodeInternalError, "Internal server error")
}
