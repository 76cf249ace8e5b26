package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"adconvert/internal/config"
	"adconvert/internal/convert"
	"adconvert/internal/engine"
	"adconvert/internal/engine/ffmpeg"
	"adconvert/internal/logging"
)

type commandContext struct {
	configFlag *string
	verbose    *bool
	sessionID  string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
		sessionID:  uuid.NewString(),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

// logger writes to the log file, and to stderr as well when console is set
// or --verbose was given.
func (c *commandContext) logger(console bool) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg, c.sessionID, console || (c.verbose != nil && *c.verbose))
}

// newController wires an ffmpeg engine into a controller. The engine is not
// loaded yet.
func newController(cfg *config.Config, logger *slog.Logger) (*convert.Controller, *ffmpeg.Engine) {
	eng := ffmpeg.New(ffmpeg.Options{
		WorkDir:  cfg.Paths.WorkDir,
		CacheDir: cfg.Paths.CacheDir,
		Logger:   logger,
	})
	controller := convert.New(convert.Options{
		Engine: eng,
		Resources: engine.Resources{
			BaseURL:     cfg.Engine.BaseURL,
			CoreVersion: cfg.Engine.CoreVersion,
			FFmpeg:      cfg.Engine.Binary,
			FFprobe:     cfg.Engine.ProbeBinary,
		},
		LoadTimeout:    cfg.EngineLoadTimeout(),
		ConvertTimeout: cfg.ConversionTimeout(),
		LogWindow:      cfg.Convert.LogWindow,
		Logger:         logger,
	})
	return controller, eng
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
