package services_test

import (
	"errors"
	"strings"
	"testing"

	"clipforge/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "render", "compose", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"render", "compose", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "upload", "insert", "no marker", nil)
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport marker fallback, got %v", err)
	}
}

func TestRetriableClassification(t *testing.T) {
	retriable := services.Wrap(services.ErrRetriable, "upload", "insert", "rate limited", nil)
	if !services.IsRetriable(retriable) {
		t.Fatalf("expected retriable classification for %v", retriable)
	}

	config := services.Wrap(services.ErrConfiguration, "upload", "credentials", "missing refresh token", nil)
	if services.IsRetriable(config) {
		t.Fatalf("configuration error misclassified as retriable: %v", config)
	}
	if !services.IsConfiguration(config) {
		t.Fatalf("expected configuration classification for %v", config)
	}
}
