package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("title is required"), KindValidation},
		{"auth", Auth("Invalid credentials"), KindAuth},
		{"not found", NotFound("Task not found"), KindNotFound},
		{"server", Server("boom", errors.New("db down")), KindServer},
		{"wrapped", fmt.Errorf("create: %w", Validation("bad")), KindValidation},
		{"plain", errors.New("plain"), KindServer},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := KindOf(tc.err); got != tc.want {
				t.Errorf("KindOf = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestErrorsIs_Sentinel(t *testing.T) {
	sentinel := NotFound("Task not found")
	err := fmt.Errorf("get: %w", NotFound("Task not found"))
	if !errors.Is(err, sentinel) {
		t.Error("errors.Is should match same kind and message")
	}
	if errors.Is(err, NotFound("User not found")) {
		t.Error("errors.Is should not match a different message")
	}
}

func TestMessage(t *testing.T) {
	if got := Message(Auth("Invalid credentials"), "fallback"); got != "Invalid credentials" {
		t.Errorf("Message = %q", got)
	}
	if got := Message(errors.New("pq: connection refused"), "Something went wrong"); got != "Something went wrong" {
		t.Errorf("Message for plain error = %q, want fallback", got)
	}
}

func TestServer_Unwrap(t *testing.T) {
	cause := errors.New("db down")
	err := Server("failed to list tasks", cause)
	if !errors.Is(err, cause) {
		t.Error("Server error should unwrap to its cause")
	}
	if err.Error() != "failed to list tasks: db down" {
		t.Errorf("Error() = %q", err.Error())
	}
}
