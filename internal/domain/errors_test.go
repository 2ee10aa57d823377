package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_SingleField(t *testing.T) {
	t.Parallel()

	err := NewValidationError("word", "required")

	if got := err.Error(); got != "validation: word: required" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
}

func TestValidationError_MultipleFields(t *testing.T) {
	t.Parallel()

	err := NewValidationErrors([]FieldError{
		{Field: "word", Message: "required"},
		{Field: "languages.target_language", Message: "required"},
	})

	if got := err.Error(); got != "validation: 2 errors" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
	if len(err.Errors) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(err.Errors))
	}
}

func TestRemoteError_MatchesSentinelAndCause(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("resolve lemma: %w", &RemoteError{Provider: "deepseek", Err: context.DeadlineExceeded})

	if !errors.Is(err, ErrRemoteCallFailed) {
		t.Error("errors.Is(err, ErrRemoteCallFailed) = false")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("errors.Is(err, context.DeadlineExceeded) = false")
	}
	if errors.Is(err, ErrSchemaViolation) {
		t.Error("remote error must not match ErrSchemaViolation")
	}
}

func TestResponseError_UnwrapsToKind(t *testing.T) {
	t.Parallel()

	kinds := []error{ErrMalformedResponse, ErrInvalidLemma, ErrSchemaViolation}
	for _, kind := range kinds {
		err := NewResponseError(kind, "raw text", "field %q missing", "meanings")
		if !errors.Is(err, kind) {
			t.Errorf("errors.Is(%v) = false", kind)
		}
		if err.Raw != "raw text" {
			t.Errorf("Raw = %q", err.Raw)
		}

		var re *ResponseError
		if !errors.As(fmt.Errorf("wrapped: %w", err), &re) {
			t.Fatal("errors.As should find *ResponseError")
		}
		if re.Reason != `field "meanings" missing` {
			t.Errorf("Reason = %q", re.Reason)
		}
	}
}

func TestSentinelErrors_AreDistinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		ErrNotFound, ErrAlreadyExists, ErrValidation, ErrUnauthorized,
		ErrRemoteCallFailed, ErrMalformedResponse, ErrInvalidLemma, ErrSchemaViolation,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel errors %d and %d should not match", i, j)
			}
		}
	}
}
