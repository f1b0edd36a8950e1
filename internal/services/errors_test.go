package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/pricecast/pricecast/internal/prices"
)

func TestServiceError_Error(t *testing.T) {
	err := &ServiceError{
		Code:    "TEST_ERROR",
		Message: "Test error message",
	}

	if err.Error() != "Test error message" {
		t.Errorf("Expected 'Test error message', got '%s'", err.Error())
	}
}

func TestNewServiceError(t *testing.T) {
	err := NewServiceError(CodeValidation, "Days must be a positive integer")

	if err.Code != CodeValidation {
		t.Errorf("Expected code '%s', got '%s'", CodeValidation, err.Code)
	}
	if err.Message != "Days must be a positive integer" {
		t.Errorf("Expected message, got '%s'", err.Message)
	}
	if err.Details != nil {
		t.Errorf("Expected nil details, got %v", err.Details)
	}
	if !errors.Is(err, ErrValidation) {
		t.Error("Expected validation error to wrap ErrValidation")
	}
}

func TestNewServiceErrorWithDetails(t *testing.T) {
	details := map[string]interface{}{
		"max_days": 365,
	}

	err := NewServiceErrorWithDetails(CodeValidation, "Validation failed", details)

	if err.Details == nil {
		t.Fatal("Expected non-nil details")
	}
	if err.Details["max_days"] != 365 {
		t.Errorf("Expected max_days 365, got '%v'", err.Details["max_days"])
	}
}

func TestServiceError_Sentinels(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{CodeValidation, ErrValidation},
		{CodeNotFound, prices.ErrNotFound},
		{CodeInsufficientData, prices.ErrInsufficientData},
		{CodeForecastUnavailable, ErrForecastUnavailable},
		{CodeRateLimited, ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", NewServiceError(tt.code, "msg"))
			if !errors.Is(wrapped, tt.want) {
				t.Errorf("Expected %s to unwrap to %v", tt.code, tt.want)
			}
		})
	}

	if errors.Unwrap(NewServiceError("UNKNOWN", "msg")) != nil {
		t.Error("Expected unknown code to have no cause")
	}
}

func TestServiceError_JSONHidesCause(t *testing.T) {
	data, err := json.Marshal(NewServiceError(CodeNotFound, "No data found for 'x'"))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Contains(string(data), "cause") {
		t.Errorf("Expected cause to stay unexported, got %s", data)
	}
}

func TestFromDataError(t *testing.T) {
	notFound := prices.NewDataError(prices.ErrNotFound, "No data found for '%s'", "gold")
	err := fromDataError(notFound)

	var se *ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("Expected *ServiceError, got %T", err)
	}
	if se.Code != CodeNotFound {
		t.Errorf("Expected code '%s', got '%s'", CodeNotFound, se.Code)
	}
	if se.Message != "No data found for 'gold'" {
		t.Errorf("Unexpected message '%s'", se.Message)
	}
	if !errors.Is(err, prices.ErrNotFound) {
		t.Error("Expected ErrNotFound in chain")
	}

	short := prices.NewDataError(prices.ErrInsufficientData, "too short")
	if !errors.As(fromDataError(short), &se) || se.Code != CodeInsufficientData {
		t.Errorf("Expected insufficient data code, got %v", se)
	}

	plain := errors.New("disk on fire")
	if fromDataError(plain) != plain {
		t.Error("Expected other errors to pass through")
	}
}

func TestUserMessage(t *testing.T) {
	se := NewServiceError(CodeValidation, "Months must be a positive integer")
	if got := UserMessage(fmt.Errorf("wrapped: %w", se), "Failed to generate extended forecast"); got != se.Message {
		t.Errorf("Expected raw service message, got '%s'", got)
	}

	got := UserMessage(errors.New("boom"), "Failed to generate forecast")
	if got != "Failed to generate forecast: boom" {
		t.Errorf("Expected prefixed message, got '%s'", got)
	}
}
