package ffmpeg

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"adconvert/internal/engine"
	"adconvert/internal/services"
	"adconvert/internal/testsupport"
)

func newLoadedEngine(t *testing.T, ffmpegScript string) *Engine {
	t.Helper()
	binDir := filepath.Join(t.TempDir(), "bin")
	testsupport.WriteExecutable(t, binDir, "ffmpeg", ffmpegScript)
	testsupport.WriteExecutable(t, binDir, "ffprobe", testsupport.FFprobeStub(4))

	eng := New(Options{WorkDir: filepath.Join(t.TempDir(), "work")})
	res := engine.Resources{FFmpeg: filepath.Join(binDir, "ffmpeg"), FFprobe: filepath.Join(binDir, "ffprobe")}
	if err := eng.Load(context.Background(), res); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

func collect(t *testing.T, eng *Engine, args []string) ([]engine.Event, error) {
	t.Helper()
	events := make(chan engine.Event)
	var got []engine.Event
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			got = append(got, ev)
		}
	}()
	err := eng.Exec(context.Background(), args, events)
	close(events)
	<-done
	return got, err
}

func TestLoadLocalAndExecStreamsEvents(t *testing.T) {
	eng := newLoadedEngine(t, testsupport.FFmpegStub)
	if !strings.Contains(eng.Version(), "ffmpeg version") {
		t.Fatalf("unexpected version %q", eng.Version())
	}
	if filepath.Base(eng.ProbePath()) != "ffprobe" {
		t.Fatalf("unexpected ffprobe path %q", eng.ProbePath())
	}
	ctx := context.Background()
	if err := eng.WriteFile(ctx, "input.mov", []byte("source")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	events, err := collect(t, eng, []string{"-i", "input.mov", "-c:v", "libx264", "output_1.mp4"})
	if err != nil {
		t.Fatalf("Exec returned error: %v", err)
	}

	var progress []float64
	var logs []string
	for _, ev := range events {
		switch ev.Kind {
		case engine.EventProgress:
			progress = append(progress, ev.Progress)
		case engine.EventLog:
			logs = append(logs, ev.Message)
		}
	}
	if len(progress) != 2 || progress[0] != 0.25 || progress[1] != 1 {
		t.Fatalf("unexpected progress events %v", progress)
	}
	if len(logs) != 2 || !strings.HasPrefix(logs[0], "Input #0") {
		t.Fatalf("unexpected log events %v", logs)
	}

	out, err := eng.ReadFile(ctx, "output_1.mp4")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	for _, want := range []string{"-hide_banner", "-progress pipe:1", "-i input.mov"} {
		if !strings.Contains(string(out), want) {
			t.Fatalf("expected %q in ffmpeg args, got %q", want, out)
		}
	}
	if err := eng.DeleteFile(ctx, "output_1.mp4"); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	if _, err := eng.ReadFile(ctx, "output_1.mp4"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestExecFailureCarriesLastLogLine(t *testing.T) {
	eng := newLoadedEngine(t, testsupport.FFmpegFailStub)
	_ = eng.WriteFile(context.Background(), "input.mov", []byte("source"))

	events, err := collect(t, eng, []string{"-i", "input.mov", "out.mp4"})
	if err == nil {
		t.Fatal("expected exec error")
	}
	if !errors.Is(err, services.ErrExternalTool) || !strings.Contains(err.Error(), "Conversion failed!") {
		t.Fatalf("unexpected error %v", err)
	}
	var partial bool
	for _, ev := range events {
		if ev.Kind == engine.EventProgress && ev.Progress == 0.5 {
			partial = true
		}
	}
	if !partial {
		t.Fatalf("expected partial progress before failure, got %+v", events)
	}
}

func TestOperationsRequireLoad(t *testing.T) {
	eng := New(Options{WorkDir: t.TempDir()})
	ctx := context.Background()
	if err := eng.WriteFile(ctx, "input.mov", nil); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
	if err := eng.Exec(ctx, []string{"-i", "x"}, nil); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
	if err := eng.Close(); err != nil {
		t.Fatalf("Close on unloaded engine: %v", err)
	}
}

func TestScratchRejectsPathNames(t *testing.T) {
	eng := newLoadedEngine(t, testsupport.FFmpegStub)
	for _, name := range []string{"", "..", "../escape.mov", "dir/file.mov"} {
		if err := eng.WriteFile(context.Background(), name, []byte("x")); !errors.Is(err, services.ErrValidation) {
			t.Errorf("WriteFile(%q) = %v, want validation error", name, err)
		}
	}
}

func TestLoadRejectsSecondEngineOnSameWorkspace(t *testing.T) {
	binDir := testsupport.StubEngine(t, filepath.Join(t.TempDir(), "bin"), 4)
	res := engine.Resources{FFmpeg: filepath.Join(binDir, "ffmpeg"), FFprobe: filepath.Join(binDir, "ffprobe")}
	work := t.TempDir()

	first := New(Options{WorkDir: work})
	if err := first.Load(context.Background(), res); err != nil {
		t.Fatalf("first Load: %v", err)
	}
	second := New(Options{WorkDir: work})
	if err := second.Load(context.Background(), res); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected workspace lock error, got %v", err)
	}
	scratch := first.ScratchDir()
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(scratch); !os.IsNotExist(err) {
		t.Fatalf("expected scratch dir removed, stat err=%v", err)
	}
	if err := second.Load(context.Background(), res); err != nil {
		t.Fatalf("Load after release: %v", err)
	}
	_ = second.Close()
}

func TestLoadMissingBinary(t *testing.T) {
	eng := New(Options{WorkDir: t.TempDir()})
	err := eng.Load(context.Background(), engine.Resources{FFmpeg: filepath.Join(t.TempDir(), "nope")})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLoadRemoteFetchesOnce(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/0.12.6/ffmpeg":
			_, _ = w.Write([]byte(testsupport.FFmpegStub))
		case "/0.12.6/ffprobe":
			_, _ = w.Write([]byte(testsupport.FFprobeStub(2)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	cache := t.TempDir()
	res := engine.Resources{BaseURL: server.URL, CoreVersion: "0.12.6"}
	for i := 0; i < 2; i++ {
		eng := New(Options{WorkDir: t.TempDir(), CacheDir: cache})
		if err := eng.Load(context.Background(), res); err != nil {
			t.Fatalf("Load #%d: %v", i, err)
		}
		if err := eng.Load(context.Background(), res); err != nil {
			t.Fatalf("repeat Load #%d: %v", i, err)
		}
		_ = eng.Close()
	}
	if hits.Load() != 2 {
		t.Fatalf("expected 2 downloads total, got %d", hits.Load())
	}
	info, err := os.Stat(filepath.Join(cache, "0.12.6", "ffmpeg"))
	if err != nil || info.Mode().Perm()&0o100 == 0 {
		t.Fatalf("expected executable cached ffmpeg, info=%v err=%v", info, err)
	}
}

func TestLoadRemoteFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	eng := New(Options{WorkDir: t.TempDir(), CacheDir: t.TempDir()})
	err := eng.Load(context.Background(), engine.Resources{BaseURL: server.URL})
	if !errors.Is(err, services.ErrExternalTool) || !strings.Contains(err.Error(), "http 404") {
		t.Fatalf("expected fetch failure, got %v", err)
	}
}

func TestProgressTracker(t *testing.T) {
	tracker := progressTracker{durationUs: 10e6}
	lines := []string{"frame=1", "out_time_us=2500000", "progress=continue", "out_time_us=20000000", "progress=continue", "progress=end"}
	var got []float64
	for _, line := range lines {
		if f, ok := tracker.consume(line); ok {
			got = append(got, f)
		}
	}
	want := []float64{0.25, 1, 1}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	unknown := progressTracker{}
	if _, ok := unknown.consume("out_time_us=1"); ok {
		t.Fatal("key lines should not emit")
	}
	if _, ok := unknown.consume("progress=continue"); ok {
		t.Fatal("unknown duration should not emit fractions")
	}
}

func TestInputName(t *testing.T) {
	if got := inputName([]string{"-y", "-i", "input.mov", "out.mp4"}); got != "input.mov" {
		t.Fatalf("inputName = %q", got)
	}
	if got := inputName([]string{"-i"}); got != "" {
		t.Fatalf("inputName with dangling flag = %q", got)
	}
}
