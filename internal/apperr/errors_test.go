package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{"without cause", New(ErrValidation, "agent_id is required"), "[VALIDATION_ERROR] agent_id is required"},
		{"with cause", Wrap(ErrExternalService, "list sources", errors.New("timeout")), "[EXTERNAL_SERVICE_ERROR] list sources: timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIs_throughWrapping(t *testing.T) {
	base := New(ErrAuth, "credentials not found")
	wrapped := fmt.Errorf("resolve: %w", base)

	if !Is(wrapped, ErrAuth) {
		t.Error("Is() should find AUTH_ERROR through fmt.Errorf wrapping")
	}
	if Is(wrapped, ErrNotFound) {
		t.Error("Is() matched the wrong code")
	}
	if Is(errors.New("plain"), ErrAuth) {
		t.Error("Is() matched a plain error")
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrExternalService, "retrain", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is() should reach the wrapped cause")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(ErrValidation, "x"), http.StatusBadRequest},
		{New(ErrAuth, "x"), http.StatusUnauthorized},
		{New(ErrNotFound, "x"), http.StatusNotFound},
		{New(ErrExternalService, "x"), http.StatusBadGateway},
		{New(ErrInternal, "x"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestMessage_hidesPlainErrors(t *testing.T) {
	if got := Message(errors.New("pq: password authentication failed")); strings.Contains(got, "pq") {
		t.Errorf("Message() leaked internal error: %q", got)
	}
	if got := Message(Wrap(ErrValidation, "folder_id is required", nil)); got != "folder_id is required" {
		t.Errorf("Message() = %q", got)
	}
}
