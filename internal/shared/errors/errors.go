// Package errors is the error taxonomy surfaced to API callers. Use cases turn
// domain sentinels into AppErrors; anything else renders as an internal error.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeInvalidArgument ErrorType = "invalid_argument"
	ErrorTypeNotFound        ErrorType = "not_found"
	ErrorTypeConflict        ErrorType = "conflict"
	ErrorTypeUnauthorized    ErrorType = "unauthorized"
	ErrorTypeForbidden       ErrorType = "forbidden"
	ErrorTypeInternal        ErrorType = "internal_error"
)

var statusByType = map[ErrorType]int{
	ErrorTypeInvalidArgument: http.StatusBadRequest,
	ErrorTypeNotFound:        http.StatusNotFound,
	ErrorTypeConflict:        http.StatusConflict,
	ErrorTypeUnauthorized:    http.StatusUnauthorized,
	ErrorTypeForbidden:       http.StatusForbidden,
	ErrorTypeInternal:        http.StatusInternalServerError,
}

// AppError carries the type, the HTTP status it renders with and an optional
// detail line.
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    int       `json:"code"`
	Details string    `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// New builds an AppError of the given type. Only the first detail is kept.
func New(errType ErrorType, message string, details ...string) *AppError {
	code, ok := statusByType[errType]
	if !ok {
		errType, code = ErrorTypeInternal, http.StatusInternalServerError
	}
	e := &AppError{Type: errType, Message: message, Code: code}
	if len(details) > 0 {
		e.Details = details[0]
	}
	return e
}

// NewInvalidArgumentError is for malformed caller input. It is never retried.
func NewInvalidArgumentError(message string, details ...string) *AppError {
	return New(ErrorTypeInvalidArgument, message, details...)
}

func NewNotFoundError(message string, details ...string) *AppError {
	return New(ErrorTypeNotFound, message, details...)
}

func NewConflictError(message string, details ...string) *AppError {
	return New(ErrorTypeConflict, message, details...)
}

// NewForbiddenError is for eligibility and restriction violations.
func NewForbiddenError(message string, details ...string) *AppError {
	return New(ErrorTypeForbidden, message, details...)
}

func IsAppError(err error) bool {
	return GetAppError(err) != nil
}

// GetAppError returns the first AppError in err's chain, or nil.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

func isType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

func IsInvalidArgumentError(err error) bool { return isType(err, ErrorTypeInvalidArgument) }
func IsNotFoundError(err error) bool        { return isType(err, ErrorTypeNotFound) }
func IsConflictError(err error) bool        { return isType(err, ErrorTypeConflict) }
func IsForbiddenError(err error) bool       { return isType(err, ErrorTypeForbidden) }

var duplicateMarkers = []string{
	"Duplicate entry",          // mysql
	"UNIQUE constraint failed", // sqlite
	"duplicate key",
}

// IsDuplicateError reports a unique key violation from either SQL driver.
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, m := range duplicateMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
