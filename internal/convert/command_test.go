package convert

import (
	"slices"
	"testing"
)

func TestBuildCommand(t *testing.T) {
	got := BuildCommand("input.mov", "output_1.mp4", 12000)
	want := []string{
		"-i", "input.mov",
		"-c:v", "libx264",
		"-profile:v", "high",
		"-level", "4.2",
		"-b:v", "12000k",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "192k",
		"output_1.mp4",
	}
	if !slices.Equal(got, want) {
		t.Fatalf("BuildCommand = %v, want %v", got, want)
	}
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to Status
		ok       bool
	}{
		{StatusIdle, StatusLoadingEngine, true},
		{StatusLoadingEngine, StatusIdle, true},
		{StatusIdle, StatusConverting, true},
		{StatusConverting, StatusDone, true},
		{StatusConverting, StatusError, true},
		{StatusDone, StatusConverting, true},
		{StatusError, StatusIdle, true},
		{StatusIdle, StatusDone, false},
		{StatusLoadingEngine, StatusConverting, false},
		{StatusConverting, StatusIdle, false},
	}
	for _, tt := range tests {
		if got := validTransition(tt.from, tt.to); got != tt.ok {
			t.Errorf("validTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.ok)
		}
	}
	if text, _ := StatusLoadingEngine.MarshalText(); string(text) != "loading_engine" {
		t.Fatalf("unexpected text %q", text)
	}
	var parsed Status
	if err := parsed.UnmarshalText([]byte("done")); err != nil || parsed != StatusDone {
		t.Fatalf("UnmarshalText(done) = %v, %v", parsed, err)
	}
	if err := parsed.UnmarshalText([]byte("paused")); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestClampPercent(t *testing.T) {
	for in, want := range map[float64]int{-1: 0, 0: 0, 0.004: 0, 0.005: 1, 0.5: 50, 1: 100, 3: 100} {
		if got := clampPercent(in); got != want {
			t.Errorf("clampPercent(%v) = %d, want %d", in, got, want)
		}
	}
}
