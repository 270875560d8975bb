package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/dataqna/backend/internal/apperr"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperr.InvalidArgument("bad body"), http.StatusBadRequest},
		{apperr.Unauthorized("bad token"), http.StatusUnauthorized},
		{apperr.NotFound("no such agent"), http.StatusNotFound},
		{apperr.Unavailable(errors.New("refused"), "dial failed"), http.StatusBadGateway},
		{apperr.Upstream(errors.New("boom"), "api error"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := apperr.Status(tt.err); got != tt.want {
			t.Errorf("Status(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", apperr.NotFound("agent missing"))
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("Is(wrapped, KindNotFound) = false, want true")
	}
	if apperr.Status(err) != http.StatusNotFound {
		t.Errorf("Status(wrapped) = %d, want %d", apperr.Status(err), http.StatusNotFound)
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := apperr.Unavailable(cause, "failed to verify token")
	if err.Error() != "failed to verify token: connection reset" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}
