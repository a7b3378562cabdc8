package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	cases := []struct {
		code   Code
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeForbidden, http.StatusForbidden},
		{CodeStateConflict, http.StatusUnprocessableEntity},
		{CodeLocationUnresolved, http.StatusUnprocessableEntity},
		{CodeConflict, http.StatusConflict},
	}
	for _, tc := range cases {
		if got := MetadataFor(tc.code).HTTPStatus; got != tc.status {
			t.Fatalf("%s: expected status %d, got %d", tc.code, tc.status, got)
		}
	}
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestConflictIsRetryable(t *testing.T) {
	if !MetadataFor(CodeConflict).Retryable {
		t.Fatal("expected conflict to be retryable")
	}
	if MetadataFor(CodeStateConflict).Retryable {
		t.Fatal("state conflict must not be retryable")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("boom")
	err := Wrap(CodeDependency, cause, "load donation")
	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to satisfy errors.Is")
	}
	if As(fmt.Errorf("outer: %w", err)).Code() != CodeDependency {
		t.Fatal("expected As to find typed error through wrapping")
	}
}

func TestAsOnUntypedError(t *testing.T) {
	if As(stdErrors.New("plain")) != nil {
		t.Fatal("expected nil for untyped errors")
	}
}
