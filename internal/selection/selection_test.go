package selection

import (
	"errors"
	"path/filepath"
	"testing"

	"adconvert/internal/services"
	"adconvert/internal/testsupport"
)

func TestSelectRejectsNonVideo(t *testing.T) {
	var session Session
	if _, err := session.Select("clip.mov", "video/quicktime", []byte("first")); err != nil {
		t.Fatalf("select video: %v", err)
	}
	for _, declared := range []string{"", "image/png", "audio/mpeg", "application/octet-stream", "text/video"} {
		_, err := session.Select("other.bin", declared, []byte("x"))
		if !errors.Is(err, ErrNotVideo) || !errors.Is(err, services.ErrValidation) {
			t.Fatalf("Select(%q) error = %v, want ErrNotVideo", declared, err)
		}
		if cur := session.Current(); cur == nil || cur.Name != "clip.mov" {
			t.Fatalf("rejected selection changed state: %+v", cur)
		}
	}
}

func TestSelectAcceptsVideo(t *testing.T) {
	data := testsupport.VideoBytes(5 * 1024 * 1024)
	file, err := Select("/tmp/clip.mov", "Video/QuickTime; codecs=x", data)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if file.Name != "clip.mov" || file.Type != "video/quicktime" || file.Size != int64(len(data)) {
		t.Fatalf("unexpected file %+v", file)
	}
	if file.HumanSize() != "5.2 MB" {
		t.Fatalf("unexpected human size %q", file.HumanSize())
	}
}

func TestSessionReset(t *testing.T) {
	var session Session
	_, _ = session.Select("a.mp4", "video/mp4", []byte("a"))
	session.Reset()
	if session.Current() != nil {
		t.Fatal("expected empty session after reset")
	}
}

func TestDownloadName(t *testing.T) {
	tests := []struct {
		original string
		bitrate  int
		want     string
	}{
		{"clip.mov", 12000, "clip_12000kbps.mp4"},
		{"my.holiday.clip.mov", 8000, "my_8000kbps.mp4"},
		{"/home/user/ad.mxf", 25000, "ad_25000kbps.mp4"},
		{".hidden", 5000, "video_5000kbps.mp4"},
		{"noext", 5500, "noext_5500kbps.mp4"},
	}
	for _, tt := range tests {
		if got := DownloadName(tt.original, tt.bitrate); got != tt.want {
			t.Errorf("DownloadName(%q, %d) = %q, want %q", tt.original, tt.bitrate, got, tt.want)
		}
	}
}

func TestDetectType(t *testing.T) {
	if got := DetectType("clip.bin", testsupport.VideoBytes(64)); got != "video/quicktime" {
		t.Fatalf("sniffed type = %q", got)
	}
	if got := DetectType("notes.txt", []byte("hello world")); got == "" || got[:5] == "video" {
		t.Fatalf("text should not be detected as video, got %q", got)
	}
}

func TestLoadFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spot.mov")
	testsupport.WriteFile(t, path, testsupport.VideoBytes(1024))
	file, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if file.Name != "spot.mov" || file.Type != "video/quicktime" {
		t.Fatalf("unexpected file %+v", file)
	}

	textPath := filepath.Join(dir, "readme.txt")
	testsupport.WriteFile(t, textPath, []byte("plain text"))
	if _, err := Load(textPath); !errors.Is(err, ErrNotVideo) {
		t.Fatalf("expected ErrNotVideo, got %v", err)
	}
	if _, err := Load(filepath.Join(dir, "missing.mov")); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
