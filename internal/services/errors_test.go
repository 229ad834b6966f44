package services_test

import (
	"errors"
	"strings"
	"testing"

	"subextract/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "executor", "ass", "ffmpeg failed", base)
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
	for _, fragment := range []string{"executor", "ass", "ffmpeg failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarkerAndDetail(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected default detail, got %q", err.Error())
	}
}

func TestIsSetupFailure(t *testing.T) {
	setup := services.Wrap(services.ErrConfiguration, "watch", "subscribe", "inotify unavailable", nil)
	if !services.IsSetupFailure(setup) {
		t.Fatal("expected configuration error to be a setup failure")
	}
	task := services.Wrap(services.ErrExternalTool, "executor", "srt", "failed", nil)
	if services.IsSetupFailure(task) {
		t.Fatal("expected external tool error not to be a setup failure")
	}
	if services.IsSetupFailure(nil) {
		t.Fatal("nil is not a setup failure")
	}
}
