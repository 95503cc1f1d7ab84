package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation       Code = "VALIDATION_ERROR"
	CodeLocationNotFound Code = "LOCATION_NOT_FOUND"
	CodeRoute            Code = "ROUTE_ERROR"
	CodeVectorSearch     Code = "VECTOR_SEARCH_ERROR"
	CodeAIService        Code = "AI_SERVICE_ERROR"
	CodeDatabase         Code = "DATABASE_ERROR"
	CodeInternal         Code = "INTERNAL_ERROR"
)

// AppError carries a machine readable code next to the user facing message.
type AppError struct {
	Code    Code
	Message string
	Status  int
	Details map[string]interface{}
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on code so callers can test against the sentinel values below.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

var (
	ErrValidation       = &AppError{Code: CodeValidation, Status: http.StatusBadRequest}
	ErrLocationNotFound = &AppError{Code: CodeLocationNotFound, Status: http.StatusNotFound}
	ErrRoute            = &AppError{Code: CodeRoute, Status: http.StatusInternalServerError}
	ErrVectorSearch     = &AppError{Code: CodeVectorSearch, Status: http.StatusInternalServerError}
	ErrAIService        = &AppError{Code: CodeAIService, Status: http.StatusServiceUnavailable}
	ErrDatabase         = &AppError{Code: CodeDatabase, Status: http.StatusInternalServerError}
	ErrInternal         = &AppError{Code: CodeInternal, Status: http.StatusInternalServerError}
)

func newError(base *AppError, message string, err error) *AppError {
	return &AppError{Code: base.Code, Status: base.Status, Message: message, Err: err}
}

func Validation(message string) *AppError {
	return newError(ErrValidation, message, nil)
}

func LocationNotFound(location string) *AppError {
	return newError(ErrLocationNotFound, fmt.Sprintf("Location not found: %s", location), nil)
}

func Route(message string, err error) *AppError {
	return newError(ErrRoute, message, err)
}

func VectorSearch(err error) *AppError {
	return newError(ErrVectorSearch, "Vector search failed", err)
}

func AIService(service string, err error) *AppError {
	return newError(ErrAIService, fmt.Sprintf("%s service unavailable", service), err)
}

func Database(operation string, err error) *AppError {
	return newError(ErrDatabase, fmt.Sprintf("Database %s failed", operation), err)
}

func Internal(err error) *AppError {
	return newError(ErrInternal, "An unexpected error occurred", err)
}

// From converts any error into an AppError, keeping existing codes.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
