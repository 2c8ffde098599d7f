package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"not found", ErrKeyNotFound, http.StatusNotFound},
		{"invalid transition", InvalidTransition("Job cannot be started from status: %s", "completed"), http.StatusBadRequest},
		{"wrapped taxonomy error", fmt.Errorf("load job: %w", ErrJobNotFound), http.StatusNotFound},
		{"unexpected error", errors.New("pq: connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusOf(tt.err); got != tt.want {
				t.Errorf("StatusOf() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMessageOfHidesInternals(t *testing.T) {
	err := errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")
	if got := MessageOf(err); got != "internal server error" {
		t.Errorf("MessageOf() = %q, leaked internals", got)
	}

	if got := MessageOf(fmt.Errorf("wrapped: %w", ErrNotAvailable)); got != "Key not available" {
		t.Errorf("MessageOf() = %q, want %q", got, "Key not available")
	}
}

func TestInvalidTransitionNamesStatus(t *testing.T) {
	err := InvalidTransition("Job cannot be started from status: %s", "completed")
	if err.Message != "Job cannot be started from status: completed" {
		t.Errorf("message = %q", err.Message)
	}
}
