package services

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("boom")
	err := Wrap(ErrAttachment, "handler", "save file", "disk full", base)

	if !errors.Is(err, ErrAttachment) {
		t.Fatalf("expected ErrAttachment marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped base error, got %v", err)
	}
	for _, want := range []string{"handler", "save file", "disk full"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestWrapNilMarkerDefaultsToExternal(t *testing.T) {
	err := Wrap(nil, "llm", "generate", "", errors.New("x"))
	if !errors.Is(err, ErrExternal) {
		t.Fatalf("expected ErrExternal default, got %v", err)
	}
}

func TestWrapEmptyDetail(t *testing.T) {
	err := Wrap(ErrResolution, "", "", "", nil)
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err)
	}
}

func TestFatal(t *testing.T) {
	if !Fatal(Wrap(ErrConfiguration, "workflow", "load", "unknown handler", nil)) {
		t.Fatal("configuration errors must be fatal")
	}
	if Fatal(Wrap(ErrResolution, "engine", "resolve", "no number", nil)) {
		t.Fatal("resolution errors must not be fatal")
	}
}
