package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNewServerErrorPrefersDetail(t *testing.T) {
	err := NewServerError(http.StatusNotFound, "No active session", "fallback")
	if got := UserMessage(err); got != "No active session" {
		t.Fatalf("UserMessage = %q, want %q", got, "No active session")
	}
	if got := KindOf(err); got != KindServer {
		t.Fatalf("KindOf = %q, want %q", got, KindServer)
	}
	if got := StatusOf(err); got != http.StatusNotFound {
		t.Fatalf("StatusOf = %d, want %d", got, http.StatusNotFound)
	}

	err = NewServerError(http.StatusInternalServerError, "", "Failed to assign duty")
	if got := UserMessage(err); got != "Failed to assign duty" {
		t.Fatalf("UserMessage = %q, want fallback", got)
	}
}

func TestSessionInvalidatedMatchesWrapped(t *testing.T) {
	wrapped := fmt.Errorf("load teachers: %w", ErrSessionInvalidated)
	if !errors.Is(wrapped, ErrSessionInvalidated) {
		t.Fatal("wrapped sentinel should match ErrSessionInvalidated")
	}
	if KindOf(wrapped) != KindAuth {
		t.Fatalf("KindOf = %q, want auth", KindOf(wrapped))
	}
	if errors.Is(NewAuthError("bad credentials", nil), ErrSessionInvalidated) {
		t.Fatal("a plain auth error must not match the invalidation sentinel")
	}
}

func TestUnclassifiedErrorsAreInternal(t *testing.T) {
	err := errors.New("boom")
	if KindOf(err) != KindInternal {
		t.Fatalf("KindOf = %q, want internal", KindOf(err))
	}
	if UserMessage(err) != "internal error" {
		t.Fatalf("UserMessage = %q", UserMessage(err))
	}
	if UserMessage(nil) != "" || KindOf(nil) != "" {
		t.Fatal("nil error should have no message and no kind")
	}
}

func TestToDomainErrorKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	de := ToDomainError(fmt.Errorf("save report: %w", cause))
	if de.Kind != KindInternal || de.Code != "INTERNAL_ERROR" || de.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("ToDomainError = %+v, want an internal error", de)
	}
	if !errors.Is(de, cause) {
		t.Fatal("the original error should stay reachable through Unwrap")
	}

	existing := NewDomainError(KindValidation, "VALIDATION_FAILED", "bad date", http.StatusBadRequest, nil)
	if got := ToDomainError(fmt.Errorf("wrap: %w", existing)); got != existing {
		t.Fatalf("ToDomainError = %p, want the wrapped DomainError %p", got, existing)
	}
}
