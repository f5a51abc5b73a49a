package utils

import (
	"errors"
	"net/http"
)

// Error kinds carried in response bodies so callers can branch on them.
const (
	CodeValidation = "validation_error"
	CodeNotFound   = "not_found"
	CodeUpstream   = "upstream_error"
	CodeInternal   = "internal_error"
)

type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewBadRequestError(message string) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Code: CodeValidation, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{StatusCode: http.StatusNotFound, Code: CodeNotFound, Message: message}
}

func NewInternalError(message string) *AppError {
	return &AppError{StatusCode: http.StatusInternalServerError, Code: CodeInternal, Message: message}
}

// NewUpstreamError reports a failed call to an external dependency (LLM,
// search provider). The cause is kept for logging but not sent to clients.
func NewUpstreamError(message string, err error) *AppError {
	return &AppError{StatusCode: http.StatusBadGateway, Code: CodeUpstream, Message: message, Err: err}
}

// AsAppError unwraps err into an *AppError, mapping anything else to a
// generic internal error.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{StatusCode: http.StatusInternalServerError, Code: CodeInternal, Message: "Internal server error", Err: err}
}
