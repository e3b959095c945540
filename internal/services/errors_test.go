package services_test

import (
	"errors"
	"testing"

	"scribe/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	inner := errors.New("boom")
	err := services.Wrap(services.ErrNotFound, "meeting", "resolve id", "no entries", inner)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound marker, got %v", err)
	}
	if !errors.Is(err, inner) {
		t.Fatalf("expected wrapped inner error, got %v", err)
	}
	want := "not found: meeting: resolve id: no entries: boom"
	if err.Error() != want {
		t.Fatalf("unexpected message %q, want %q", err.Error(), want)
	}
}

func TestWrapDefaultsToRemoteCall(t *testing.T) {
	err := services.Wrap(nil, "minutes", "transcript", "", nil)
	if !errors.Is(err, services.ErrRemoteCall) {
		t.Fatalf("expected ErrRemoteCall default, got %v", err)
	}
}

func TestWrapWithoutDetailParts(t *testing.T) {
	err := services.Wrap(services.ErrValidation, "", "", "", nil)
	if err.Error() != "validation error: service failure" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
