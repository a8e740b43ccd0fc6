package application

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	var err *ValidationError
	if got := err.Error(); got != "validation failed" {
		t.Fatalf("expected generic message for nil error, got %q", got)
	}

	withFields := &ValidationError{FieldErrors: map[string]string{"reason": "required", "end_date": "invalid"}}
	if got := withFields.Error(); got != "validation failed: end_date, reason" {
		t.Fatalf("expected sorted field list, got %q", got)
	}
}

func TestValidationError_HasErrors(t *testing.T) {
	t.Parallel()

	if (&ValidationError{}).HasErrors() {
		t.Fatalf("expected HasErrors to report false for empty error")
	}
	if !(&ValidationError{FieldErrors: map[string]string{"field": "bad"}}).HasErrors() {
		t.Fatalf("expected HasErrors to report true when fields are present")
	}
}

func TestValidationError_AddKeepsFirstMessage(t *testing.T) {
	t.Parallel()

	v := &ValidationError{}
	v.add("start_date", "date is required")
	v.add("start_date", "enter a valid date")
	if got := v.FieldErrors["start_date"]; got != "date is required" {
		t.Fatalf("expected first message to win, got %q", got)
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrNotFound, "not_found"},
		{fmt.Errorf("wrap: %w", ErrUnauthorized), "unauthorized"},
		{ErrAlreadyDecided, "already_decided"},
		{ErrSessionExpired, "session_expired"},
		{&ValidationError{}, "validation"},
		{errors.New("disk"), "unexpected"},
	}
	for _, tc := range cases {
		if got := ErrorKind(tc.err); got != tc.want {
			t.Fatalf("ErrorKind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
