package services_test

import (
	"errors"
	"strings"
	"testing"

	"voxmemo/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("disk full")
	err := services.Wrap(services.ErrStorageWrite, "catalog", "append", "persist entries", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrStorageWrite) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"catalog", "append", "persist entries"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutMarkerDefaultsToExternalTool(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestKindAndUserMessage(t *testing.T) {
	tests := []struct {
		err     error
		kind    string
		message string
	}{
		{services.Wrap(services.ErrPermissionDenied, "capture", "start", "", nil), "permission_denied", "Permission to access microphone was denied"},
		{services.Wrap(services.ErrStorageRead, "catalog", "load", "", nil), "storage_read", "Failed to load recordings"},
		{services.Wrap(services.ErrStorageWrite, "catalog", "append", "", nil), "storage_write", "Failed to save recording"},
		{services.Wrap(services.ErrPlaybackLoad, "playback", "load", "", nil), "playback_load", "Failed to play recording"},
		{errors.New("mystery"), "unexpected", "An unknown error occurred"},
		{nil, "", ""},
	}
	for _, tt := range tests {
		if got := services.Kind(tt.err); got != tt.kind {
			t.Errorf("Kind(%v) = %q, want %q", tt.err, got, tt.kind)
		}
		if got := services.UserMessage(tt.err); got != tt.message {
			t.Errorf("UserMessage(%v) = %q, want %q", tt.err, got, tt.message)
		}
	}
}
