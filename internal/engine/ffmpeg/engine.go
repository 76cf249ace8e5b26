package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"adconvert/internal/engine"
	"adconvert/internal/logging"
	"adconvert/internal/services"
)

const lockFileName = "engine.lock"

// ErrNotLoaded is returned by file and exec operations before Load succeeds.
var ErrNotLoaded = errors.New("engine not loaded")

// Options configures where the engine keeps its scratch files and cached binaries.
type Options struct {
	// WorkDir holds the lock file and per-engine scratch directories.
	WorkDir string
	// CacheDir receives downloaded binaries, keyed by core version.
	CacheDir   string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Engine drives the ffmpeg executable against a private scratch directory.
type Engine struct {
	opts   Options
	logger *slog.Logger

	mu          sync.Mutex
	loaded      bool
	ffmpegPath  string
	ffprobePath string
	version     string
	scratch     string
	lock        *flock.Flock
}

var _ engine.Engine = (*Engine)(nil)

// New constructs an unloaded engine.
func New(opts Options) *Engine {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	return &Engine{
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, "engine"),
	}
}

// Load resolves the binaries, verifies ffmpeg runs, locks the workspace and
// creates the scratch directory. Calling Load on a loaded engine is a no-op.
func (e *Engine) Load(ctx context.Context, res engine.Resources) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loaded {
		return nil
	}

	ffmpegPath, ffprobePath, err := e.resolve(ctx, res)
	if err != nil {
		return err
	}
	version, err := probeVersion(ctx, ffmpegPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "engine", "verify", "ffmpeg -version failed", err)
	}

	workDir := strings.TrimSpace(e.opts.WorkDir)
	if workDir == "" {
		workDir = os.TempDir()
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "engine", "workspace", "create work dir", err)
	}
	lock := flock.New(filepath.Join(workDir, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "engine", "workspace", "acquire lock", err)
	}
	if !ok {
		return services.Wrap(services.ErrConfiguration, "engine", "workspace", fmt.Sprintf("work dir %s is in use by another engine", workDir), nil)
	}
	scratch, err := os.MkdirTemp(workDir, "scratch-")
	if err != nil {
		_ = lock.Unlock()
		return services.Wrap(services.ErrConfiguration, "engine", "workspace", "create scratch dir", err)
	}

	e.ffmpegPath = ffmpegPath
	e.ffprobePath = ffprobePath
	e.version = version
	e.scratch = scratch
	e.lock = lock
	e.loaded = true
	e.logger.Info("engine loaded",
		logging.String("ffmpeg", ffmpegPath),
		logging.String("version", version),
		logging.String("scratch", scratch),
	)
	return nil
}

func (e *Engine) resolve(ctx context.Context, res engine.Resources) (string, string, error) {
	if res.Remote() {
		dir := filepath.Join(e.opts.CacheDir, coreVersion(res))
		ffmpegPath, err := e.fetch(ctx, res.Locator("ffmpeg"), filepath.Join(dir, "ffmpeg"))
		if err != nil {
			return "", "", err
		}
		ffprobePath, err := e.fetch(ctx, res.Locator("ffprobe"), filepath.Join(dir, "ffprobe"))
		if err != nil {
			return "", "", err
		}
		return ffmpegPath, ffprobePath, nil
	}
	ffmpegPath, err := lookup(res.FFmpeg, "ffmpeg")
	if err != nil {
		return "", "", err
	}
	// ffprobe is optional locally; without it progress is only reported at the end.
	ffprobePath, err := lookup(res.FFprobe, "ffprobe")
	if err != nil {
		e.logger.Warn("ffprobe not found; progress will only be reported on completion",
			logging.String(logging.FieldEventType, "ffprobe_missing"),
			logging.Error(err),
		)
		ffprobePath = ""
	}
	return ffmpegPath, ffprobePath, nil
}

func lookup(name, fallback string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fallback
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", services.Wrap(services.ErrNotFound, "engine", "resolve", fmt.Sprintf("%s not found", name), err)
	}
	return path, nil
}

func coreVersion(res engine.Resources) string {
	if v := strings.TrimSpace(res.CoreVersion); v != "" {
		return v
	}
	return engine.DefaultCoreVersion
}

func probeVersion(ctx context.Context, binary string) (string, error) {
	out, err := exec.CommandContext(ctx, binary, "-version").Output()
	if err != nil {
		return "", err
	}
	first, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(first), nil
}

// Version returns the first line of `ffmpeg -version` once loaded.
func (e *Engine) Version() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.version
}

// ProbePath returns the resolved ffprobe executable, empty when none was found.
func (e *Engine) ProbePath() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ffprobePath
}

// ScratchDir exposes the scratch directory, empty until loaded.
func (e *Engine) ScratchDir() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scratch
}

// Close removes the scratch directory and releases the workspace lock.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		return nil
	}
	var errs []error
	if err := os.RemoveAll(e.scratch); err != nil {
		errs = append(errs, fmt.Errorf("remove scratch: %w", err))
	}
	if e.lock != nil {
		if err := e.lock.Unlock(); err != nil {
			errs = append(errs, fmt.Errorf("release lock: %w", err))
		}
	}
	e.loaded = false
	e.scratch = ""
	e.lock = nil
	return errors.Join(errs...)
}

func (e *Engine) paths() (ffmpegPath, ffprobePath, scratch string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		return "", "", "", ErrNotLoaded
	}
	return e.ffmpegPath, e.ffprobePath, e.scratch, nil
}
