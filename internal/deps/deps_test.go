package deps

import (
	"context"
	"path/filepath"
	"testing"

	"adconvert/internal/testsupport"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := testsupport.WriteExecutable(t, binDir, "present", "#!/bin/sh\nexit 0\n")
	ffmpeg := testsupport.WriteExecutable(t, binDir, "ffmpeg", testsupport.FFmpegStub)
	broken := testsupport.WriteExecutable(t, binDir, "broken", "#!/bin/sh\nexit 3\n")
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "FFmpeg", Command: ffmpeg, VersionArgs: []string{"-version"}},
		{Name: "Broken", Command: broken, VersionArgs: []string{"-version"}},
		{Name: "Empty", Command: "  ", Optional: true},
	}

	results := CheckBinaries(context.Background(), reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" || results[0].Path != filepath.Join(binDir, "present") {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" || results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected missing result %#v", results[1])
	}
	if !results[2].Available || results[2].Version != "ffmpeg version 6.1-stub Copyright (c) the FFmpeg developers" {
		t.Fatalf("unexpected ffmpeg result %#v", results[2])
	}
	if results[3].Available || results[3].Detail == "" {
		t.Fatalf("expected failing version probe to mark unavailable, got %#v", results[3])
	}
	if results[4].Available || results[4].Detail != "command not configured" || !results[4].Optional {
		t.Fatalf("unexpected empty result %#v", results[4])
	}
}
