package apperr

import (
	"fmt"
	"net/http"
	"testing"
)

func TestUnavailableMapsToServiceUnavailable(t *testing.T) {
	err := Unavailable("database busy")
	if err.HTTPStatus() != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", err.HTTPStatus())
	}
	if err.ResponseCode() != CodeTransientFailure {
		t.Fatalf("expected %s, got %s", CodeTransientFailure, err.ResponseCode())
	}
}

func TestExplicitCodeOverridesKindDefault(t *testing.T) {
	err := Conflict("already submitted").WithCode("DUPLICATE_FEEDBACK")
	if err.ResponseCode() != "DUPLICATE_FEEDBACK" {
		t.Fatalf("expected explicit code, got %s", err.ResponseCode())
	}
	if err.HTTPStatus() != http.StatusConflict {
		t.Fatalf("expected 409, got %d", err.HTTPStatus())
	}
}

func TestKindAndCodeSurviveWrapping(t *testing.T) {
	inner := NotFound("lead not found")
	wrapped := fmt.Errorf("load lead: %w", inner)

	if !Is(wrapped, KindNotFound) {
		t.Fatalf("expected wrapped error to keep NotFound kind")
	}
	if !HasCode(wrapped, CodeNotFound) {
		t.Fatalf("expected wrapped error to keep NOT_FOUND code, got %q", GetCode(wrapped))
	}
}

func TestUntypedErrorHasNoKind(t *testing.T) {
	err := fmt.Errorf("plain")
	if GetKind(err) != KindUnknown {
		t.Fatalf("expected KindUnknown")
	}
	if GetCode(err) != "" {
		t.Fatalf("expected empty code")
	}
}

func TestErrorMessageIncludesOp(t *testing.T) {
	err := Internal("commit failed").WithOp("feedback.Submit")
	if err.Error() != "feedback.Submit: commit failed" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
