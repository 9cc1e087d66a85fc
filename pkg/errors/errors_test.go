package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{New(ErrCodeInvalidConfig, "interval must be >= 1, got %d", 0), "INVALID_CONFIG: interval must be >= 1, got 0"},
		{Wrap(ErrCodeWorkerFailure, errors.New("panic"), "line %d", 7), "WORKER_FAILURE: line 7: panic"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("worker panicked")
	err := fmt.Errorf("sort: %w", Wrap(ErrCodeWorkerFailure, cause, "line %d", 7))

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	var e *Error
	if !errors.As(err, &e) || e.Cause != cause {
		t.Errorf("errors.As() = %v, want an *Error caused by %v", e, cause)
	}
}

func TestClassification(t *testing.T) {
	plain := errors.New("plain error")
	tests := []struct {
		name       string
		err        error
		code       Code
		message    string
		validation bool
	}{
		{"config", New(ErrCodeInvalidConfig, "bad interval"), ErrCodeInvalidConfig, "bad interval", true},
		{"format", New(ErrCodeInvalidFormat, "webp"), ErrCodeInvalidFormat, "webp", true},
		{"traversal", New(ErrCodeUnsupportedTraversal, "concentric"), ErrCodeUnsupportedTraversal, "concentric", true},
		{"worker", New(ErrCodeWorkerFailure, "boom"), ErrCodeWorkerFailure, "boom", false},
		{"wrapped by fmt", fmt.Errorf("decode: %w", New(ErrCodeInvalidInput, "truncated")), ErrCodeInvalidInput, "truncated", true},
		{"outermost wins", Wrap(ErrCodeInvalidPath, New(ErrCodeInternal, "inner"), "outer"), ErrCodeInvalidPath, "outer", true},
		{"plain", plain, "", "plain error", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if tt.code != "" && !Is(tt.err, tt.code) {
				t.Errorf("Is(err, %q) = false", tt.code)
			}
			if Is(tt.err, ErrCodeInternal) {
				t.Error("Is(err, INTERNAL_ERROR) = true")
			}
			if got := UserMessage(tt.err); got != tt.message {
				t.Errorf("UserMessage() = %q, want %q", got, tt.message)
			}
			if got := IsValidation(tt.err); got != tt.validation {
				t.Errorf("IsValidation() = %v, want %v", got, tt.validation)
			}
		})
	}
}

func TestNilError(t *testing.T) {
	if GetCode(nil) != "" || Is(nil, ErrCodeInvalidInput) || IsValidation(nil) {
		t.Error("nil errors have no code")
	}
	if Is(errors.New("x"), "") {
		t.Error("the empty code never matches")
	}
}
