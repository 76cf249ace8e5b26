package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"adconvert/internal/config"
)

// ConfigOption adjusts a config built by NewConfig. base is the temp
// directory that holds the config's work, cache, output and log dirs.
type ConfigOption func(t testing.TB, base string, cfg *config.Config)

// NewConfig returns defaults rooted in a fresh temp directory, with the UI
// on an ephemeral port and no advisory key.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	for field, name := range map[*string]string{
		&cfg.Paths.WorkDir:   "work",
		&cfg.Paths.CacheDir:  "cache",
		&cfg.Paths.OutputDir: "out",
		&cfg.Paths.LogDir:    "logs",
	} {
		*field = filepath.Join(base, name)
	}
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.LLM.APIKey = ""

	for _, opt := range opts {
		opt(t, base, &cfg)
	}
	return &cfg
}

func WithLLMKey(key string) ConfigOption {
	return func(_ testing.TB, _ string, cfg *config.Config) { cfg.LLM.APIKey = key }
}

func WithLLMBaseURL(url string) ConfigOption {
	return func(_ testing.TB, _ string, cfg *config.Config) { cfg.LLM.BaseURL = url }
}

// WithStubbedBinaries installs ffmpeg/ffprobe stubs reporting a 4 second
// input, points the engine at them and puts them first on PATH for the
// rest of the test.
func WithStubbedBinaries() ConfigOption {
	return func(t testing.TB, base string, cfg *config.Config) {
		bin := StubEngine(t, filepath.Join(base, "bin"), 4)
		cfg.Engine.Binary = filepath.Join(bin, "ffmpeg")
		cfg.Engine.ProbeBinary = filepath.Join(bin, "ffprobe")
		t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// BaseDir is the temp directory NewConfig rooted cfg in.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
