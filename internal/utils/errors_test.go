package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus_ByCode(t *testing.T) {
	cases := []struct {
		code Code
		want int
	}{
		{CodeInvalidArgument, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusBadRequest}, // duplicate transitions are 400s in the public contract
		{CodeUnavailable, http.StatusServiceUnavailable},
		{CodeInternal, http.StatusInternalServerError},
	}
	for _, c := range cases {
		got := HTTPStatus(E(c.code, "Op", "msg", nil))
		if got != c.want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", c.code, got, c.want)
		}
	}
}

func TestHTTPStatus_Fallbacks(t *testing.T) {
	if got := HTTPStatus(errors.New("boom")); got != http.StatusInternalServerError {
		t.Errorf("plain error = %d, want 500", got)
	}
	if got := HTTPStatus(fmt.Errorf("lookup: %w", ErrNotFound)); got != http.StatusNotFound {
		t.Errorf("wrapped ErrNotFound = %d, want 404", got)
	}
}

func TestIsCode(t *testing.T) {
	err := E(CodeForbidden, "JobService.Apply", "Only jobseekers can apply for jobs", nil)
	if !IsCode(err, CodeForbidden) {
		t.Error("IsCode should match the error's own code")
	}
	if IsCode(err, CodeNotFound) {
		t.Error("IsCode should not match a different code")
	}
	if IsCode(errors.New("boom"), CodeInternal) {
		t.Error("IsCode should be false for non-AppError values")
	}

	wrapped := fmt.Errorf("outer: %w", err)
	if !IsCode(wrapped, CodeForbidden) {
		t.Error("IsCode should see through wrapping")
	}
}

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	inner := errors.New("socket closed")
	err := E(CodeInternal, "JobService.Create", "failed to create job", inner)

	if got := err.Error(); got != "JobService.Create: failed to create job: socket closed" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, inner) {
		t.Error("Unwrap should expose the inner error")
	}

	bare := E(CodeNotFound, "", "Job not found", nil)
	if got := bare.Error(); got != "Job not found" {
		t.Errorf("Error() = %q, want bare message", got)
	}
}
