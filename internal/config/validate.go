package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateConvert(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateEngine() error {
	if c.Engine.BaseURL != "" {
		parsed, err := url.Parse(c.Engine.BaseURL)
		if err != nil {
			return fmt.Errorf("engine.base_url: %w", err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("engine.base_url must use http or https, got %q", parsed.Scheme)
		}
	}
	if strings.ContainsAny(c.Engine.CoreVersion, `/\`) {
		return errors.New("engine.core_version must not contain path separators")
	}
	if c.Engine.LoadTimeoutSeconds < 0 {
		return errors.New("engine.load_timeout_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateConvert() error {
	if c.Convert.MinBitrateKbps <= 0 {
		return errors.New("convert.min_bitrate_kbps must be positive")
	}
	if c.Convert.MaxBitrateKbps < c.Convert.MinBitrateKbps {
		return errors.New("convert.max_bitrate_kbps must be >= convert.min_bitrate_kbps")
	}
	if c.Convert.StepKbps < 0 {
		return errors.New("convert.step_kbps must be >= 0")
	}
	if !c.BitrateAllowed(c.Convert.DefaultBitrateKbps) {
		return fmt.Errorf("convert.default_bitrate_kbps %d is outside %d-%d step %d",
			c.Convert.DefaultBitrateKbps, c.Convert.MinBitrateKbps, c.Convert.MaxBitrateKbps, c.Convert.StepKbps)
	}
	if c.Convert.TimeoutSeconds < 0 {
		return errors.New("convert.timeout_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateLLM() error {
	if _, err := url.Parse(c.LLM.BaseURL); err != nil {
		return fmt.Errorf("llm.base_url: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
