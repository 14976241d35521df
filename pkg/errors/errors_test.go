package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestError_Error(t *testing.T) {
	err := New("TEST_ERROR", "Test error message", http.StatusBadRequest)
	expected := "TEST_ERROR: Test error message"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}

	wrapped := err.WithError(errors.New("boom"))
	if wrapped.Error() != "TEST_ERROR: Test error message: boom" {
		t.Errorf("Error() = %v", wrapped.Error())
	}
}

func TestError_DerivedCopiesLeaveTemplateUntouched(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	derived := ErrUpstream.WithError(cause).WithMessage("Movie provider unavailable")

	if ErrUpstream.Err != nil {
		t.Error("template was mutated by WithError")
	}
	if ErrUpstream.Message != "Upstream service error" {
		t.Errorf("template message mutated: %q", ErrUpstream.Message)
	}
	if derived.Err != cause {
		t.Error("derived error lost its cause")
	}
	if !errors.Is(derived, cause) {
		t.Error("errors.Is should reach the wrapped cause")
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("add favorite: %w", ErrConflict.WithMessage("already a favorite"))

	if !errors.Is(err, ErrConflict) {
		t.Error("conflict should match ErrConflict")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("conflict should not match ErrNotFound")
	}
	if errors.Is(errors.New("plain"), ErrConflict) {
		t.Error("plain errors should not match")
	}
}

func TestWrap(t *testing.T) {
	baseErr := errors.New("database connection failed")
	wrapped := Wrap(baseErr, ErrCodeDatabaseError, "Failed to connect", http.StatusInternalServerError)

	if wrapped.Err != baseErr {
		t.Error("Should wrap the original error")
	}
	if wrapped.Code != ErrCodeDatabaseError {
		t.Errorf("Code = %v, want %v", wrapped.Code, ErrCodeDatabaseError)
	}
}

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", ErrValidation, http.StatusUnprocessableEntity},
		{"conflict", ErrConflict, http.StatusConflict},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"upstream", ErrUpstream, http.StatusInternalServerError},
		{"storage", ErrStorage, http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("ctx: %w", ErrNotFound), http.StatusNotFound},
		{"standard", errors.New("standard error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetHTTPStatus(tt.err); got != tt.want {
				t.Errorf("GetHTTPStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if code := GetCode(ErrValidation); code != ErrCodeValidationFailed {
		t.Errorf("GetCode() = %v, want %v", code, ErrCodeValidationFailed)
	}
	if code := GetCode(errors.New("x")); code != ErrCodeInternal {
		t.Errorf("GetCode() = %v, want %v", code, ErrCodeInternal)
	}
	if code := GetCode(nil); code != "" {
		t.Errorf("GetCode(nil) = %v, want empty", code)
	}
}
