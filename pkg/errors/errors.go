package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "validation"
	ErrorTypeUnknownSession  ErrorType = "unknown_session"
	ErrorTypeUnknownColor    ErrorType = "unknown_color"
	ErrorTypeRenderCancelled ErrorType = "render_cancelled"
	ErrorTypeExport          ErrorType = "export"
	ErrorTypeInternal        ErrorType = "internal"
)

// Sentinels for errors.Is. Any AppError of the same type matches.
var (
	ErrValidation      = &AppError{Type: ErrorTypeValidation, Message: "invalid request"}
	ErrUnknownSession  = &AppError{Type: ErrorTypeUnknownSession, Message: "unknown session"}
	ErrUnknownColor    = &AppError{Type: ErrorTypeUnknownColor, Message: "unknown color"}
	ErrRenderCancelled = &AppError{Type: ErrorTypeRenderCancelled, Message: "render cancelled"}
	ErrExport          = &AppError{Type: ErrorTypeExport, Message: "export failed"}

	// ErrOutOfRange and ErrDegenerateRect are validation errors with a
	// narrower meaning; match them with errors.Is against the exact value.
	ErrOutOfRange     = stderrors.New("out of range")
	ErrDegenerateRect = stderrors.New("rectangle below minimum size")
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Details != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Details)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AppError of the same type.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error, details ...string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		Details:    firstDetail(details),
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewOutOfRangeError creates a validation error wrapping ErrOutOfRange
func NewOutOfRangeError(message string, details ...string) *AppError {
	return NewValidationError(message, ErrOutOfRange, details...)
}

// NewUnknownSessionError creates an error for a session id that is not registered
func NewUnknownSessionError(id int64) *AppError {
	return &AppError{
		Type:       ErrorTypeUnknownSession,
		Message:    "unknown session",
		Details:    fmt.Sprintf("id=%d", id),
		StatusCode: http.StatusNotFound,
	}
}

// NewNoActiveSessionError is returned when a document command arrives with no tab open
func NewNoActiveSessionError() *AppError {
	return &AppError{
		Type:       ErrorTypeUnknownSession,
		Message:    "no active session",
		StatusCode: http.StatusNotFound,
	}
}

// NewUnknownColorError creates an error for a color name missing from the registry
func NewUnknownColorError(name string) *AppError {
	return &AppError{
		Type:       ErrorTypeUnknownColor,
		Message:    "unknown color",
		Details:    name,
		StatusCode: http.StatusBadRequest,
	}
}

// NewRenderCancelledError marks a render superseded by a newer one
func NewRenderCancelledError(page int, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeRenderCancelled,
		Message:    "render cancelled",
		Details:    fmt.Sprintf("page=%d", page),
		StatusCode: http.StatusNoContent,
		Cause:      cause,
	}
}

// NewExportError wraps a composer or renderer failure with the page it happened on.
// page is 0 when the failure is not tied to a single page.
func NewExportError(page int, cause error) *AppError {
	details := ""
	if page > 0 {
		details = fmt.Sprintf("page=%d", page)
	}
	return &AppError{
		Type:       ErrorTypeExport,
		Message:    "export failed",
		Details:    details,
		StatusCode: http.StatusUnprocessableEntity,
		Cause:      cause,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// IsType checks if the error chain carries an AppError of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode returns the HTTP status code for an error
func GetStatusCode(err error) int {
	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr.StatusCode != 0 {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

func firstDetail(details []string) string {
	if len(details) > 0 {
		return details[0]
	}
	return ""
}
