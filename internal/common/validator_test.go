package common

import (
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
)

type validatedPayload struct {
	Name  string `validate:"required"`
	Count int    `validate:"min=0,max=10"`
}

func TestGenericEchoValidator_Valid(t *testing.T) {
	validator := &GenericEchoValidator{}

	err := validator.Validate(validatedPayload{Name: "ok", Count: 5})
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestGenericEchoValidator_Invalid(t *testing.T) {
	validator := &GenericEchoValidator{}

	tests := []struct {
		name    string
		payload validatedPayload
	}{
		{name: "missing required field", payload: validatedPayload{Count: 5}},
		{name: "count out of range", payload: validatedPayload{Name: "ok", Count: 11}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.Validate(tt.payload)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}

			var httpErr *echo.HTTPError
			if !errors.As(err, &httpErr) {
				t.Fatalf("Expected *echo.HTTPError, got %T", err)
			}
			if httpErr.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", httpErr.Code)
			}
		})
	}
}

func TestValidateStruct(t *testing.T) {
	if err := ValidateStruct(validatedPayload{Name: "ok"}); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if err := ValidateStruct(validatedPayload{}); err == nil {
		t.Error("Expected error for missing required field, got nil")
	}
}
