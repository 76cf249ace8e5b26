package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"adconvert/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "convert", "exec", "ffmpeg exited", base)
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
	for _, fragment := range []string{"convert", "exec", "ffmpeg exited"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{services.Wrap(services.ErrValidation, "selection", "", "not a video", nil), "validation"},
		{services.Wrap(services.ErrExternalTool, "engine", "load", "", nil), "external_tool"},
		{services.Wrap(services.ErrNotFound, "engine", "lookup", "", nil), "not_found"},
		{fmt.Errorf("exec: %w", context.DeadlineExceeded), "timeout"},
		{context.Canceled, "canceled"},
		{errors.New("other"), "transient"},
	}
	for _, tt := range tests {
		if got := services.Category(tt.err); got != tt.want {
			t.Errorf("Category(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestErrorExposesFields(t *testing.T) {
	err := services.Wrap(services.ErrValidation, "selection", "load", "not a video", nil)
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected *services.Error, got %T", err)
	}
	if svcErr.Stage != "selection" || svcErr.Op != "load" {
		t.Fatalf("unexpected fields %+v", svcErr)
	}
	if got := err.Error(); got != "validation error: selection: load: not a video" {
		t.Fatalf("unexpected message %q", got)
	}
}
