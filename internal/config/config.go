package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Paths contains directory and bind address configuration.
type Paths struct {
	WorkDir   string `toml:"work_dir"`
	CacheDir  string `toml:"cache_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	APIBind   string `toml:"api_bind"`
}

// Engine contains settings for locating and loading the transcoding engine.
type Engine struct {
	// Binary is the ffmpeg executable used when BaseURL is empty.
	Binary string `toml:"binary"`
	// ProbeBinary is the ffprobe executable used when BaseURL is empty.
	ProbeBinary string `toml:"probe_binary"`
	// BaseURL, when set, is the download root for pinned engine builds.
	// Locators resolve to <base_url>/<core_version>/{ffmpeg,ffprobe}.
	BaseURL            string `toml:"base_url"`
	CoreVersion        string `toml:"core_version"`
	LoadTimeoutSeconds int    `toml:"load_timeout_seconds"`
}

// Convert contains the bitrate bounds and conversion behaviour.
type Convert struct {
	DefaultBitrateKbps int `toml:"default_bitrate_kbps"`
	MinBitrateKbps     int `toml:"min_bitrate_kbps"`
	MaxBitrateKbps     int `toml:"max_bitrate_kbps"`
	StepKbps           int `toml:"step_kbps"`
	LogWindow          int `toml:"log_window"`
	// TimeoutSeconds bounds a single conversion. Zero leaves it unbounded.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// LLM contains the advisory model connection settings.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for adconvert.
//
// Configuration sections by subsystem:
//   - Paths: scratch, cache, output and log directories plus the UI bind address
//   - Engine: ffmpeg/ffprobe locators and the pinned core version
//   - Convert: bitrate bounds, log window and the optional conversion timeout
//   - LLM: advisory chat-completion settings
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Engine  Engine  `toml:"engine"`
	Convert Convert `toml:"convert"`
	LLM     LLM     `toml:"llm"`
	Logging Logging `toml:"logging"`
}

// EnsureDirectories creates the work, cache and log directories. The output
// directory is attempted too, but failures there surface when a result is
// saved.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.CacheDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.OutputDir) != "" {
		_ = os.MkdirAll(c.Paths.OutputDir, 0o755)
	}
	return nil
}

// ConversionTimeout bounds one conversion. Zero means unbounded.
func (c *Config) ConversionTimeout() time.Duration { return seconds(c.Convert.TimeoutSeconds) }

// EngineLoadTimeout bounds engine loading. Zero means unbounded.
func (c *Config) EngineLoadTimeout() time.Duration { return seconds(c.Engine.LoadTimeoutSeconds) }

func seconds(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

// BitrateAllowed reports whether kbps is a slider position: inside
// [min, max] and a whole number of steps above min.
func (c *Config) BitrateAllowed(kbps int) bool {
	bounds := c.Convert
	if kbps < bounds.MinBitrateKbps || kbps > bounds.MaxBitrateKbps {
		return false
	}
	return bounds.StepKbps <= 0 || (kbps-bounds.MinBitrateKbps)%bounds.StepKbps == 0
}

// LLMConfig contains the advisory LLM settings after trimming.
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// GetLLM returns the advisory LLM connection settings.
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		APIKey:         strings.TrimSpace(c.LLM.APIKey),
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		Model:          strings.TrimSpace(c.LLM.Model),
		Referer:        strings.TrimSpace(c.LLM.Referer),
		Title:          strings.TrimSpace(c.LLM.Title),
		TimeoutSeconds: c.LLM.TimeoutSeconds,
	}
}
