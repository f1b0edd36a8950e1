// Package services holds the forecast engine, training and history
// browsing logic behind the HTTP handlers and the CLI.
package services

import (
	"errors"
	"fmt"

	"github.com/pricecast/pricecast/internal/prices"
)

// Error codes carried by ServiceError
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeInsufficientData    = "INSUFFICIENT_DATA"
	CodeForecastUnavailable = "FORECAST_UNAVAILABLE"
	CodeRateLimited         = "RATE_LIMITED"
)

var (
	// ErrValidation marks out-of-range request parameters
	ErrValidation = errors.New("validation failed")

	// ErrForecastUnavailable means every method of a fallback chain failed
	ErrForecastUnavailable = errors.New("forecast unavailable")

	// ErrRateLimited is returned when training is requested too often
	ErrRateLimited = errors.New("rate limited")
)

// ServiceError represents a service layer error. Message is shown to
// clients verbatim.
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`

	cause error
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Unwrap exposes the sentinel (or data error) behind the code
func (e *ServiceError) Unwrap() error {
	return e.cause
}

// NewServiceError creates a new ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		cause:   sentinelFor(code),
	}
}

// NewServiceErrorWithDetails creates a new ServiceError with details
func NewServiceErrorWithDetails(code, message string, details map[string]interface{}) *ServiceError {
	err := NewServiceError(code, message)
	err.Details = details
	return err
}

func validationError(format string, args ...interface{}) *ServiceError {
	return NewServiceError(CodeValidation, fmt.Sprintf(format, args...))
}

func sentinelFor(code string) error {
	switch code {
	case CodeValidation:
		return ErrValidation
	case CodeNotFound:
		return prices.ErrNotFound
	case CodeInsufficientData:
		return prices.ErrInsufficientData
	case CodeForecastUnavailable:
		return ErrForecastUnavailable
	case CodeRateLimited:
		return ErrRateLimited
	}
	return nil
}

// fromDataError turns a not-found or insufficient-data error into a
// ServiceError. Anything else is returned unchanged.
func fromDataError(err error) error {
	var de *prices.DataError
	if !errors.As(err, &de) {
		return err
	}
	code := CodeInsufficientData
	if errors.Is(de, prices.ErrNotFound) {
		code = CodeNotFound
	}
	return &ServiceError{Code: code, Message: de.Message, cause: de}
}

// UserMessage renders err for clients. Service errors are shown as is;
// anything else is prefixed with the failed operation, e.g.
// "Failed to generate forecast: <cause>".
func UserMessage(err error, operation string) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Message
	}
	return operation + ": " + err.Error()
}
