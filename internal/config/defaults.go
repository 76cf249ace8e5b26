package config

const (
	defaultConfigPath         = "~/.config/adconvert/config.toml"
	defaultWorkDir            = "~/.local/share/adconvert/work"
	defaultCacheDir           = "~/.cache/adconvert/engine"
	defaultOutputDir          = "."
	defaultLogDir             = "~/.local/share/adconvert/logs"
	defaultAPIBind            = "127.0.0.1:7490"
	defaultEngineBinary       = "ffmpeg"
	defaultEngineProbeBinary  = "ffprobe"
	defaultEngineCoreVersion  = "0.12.6"
	defaultBitrateKbps        = 12000
	defaultMinBitrateKbps     = 5000
	defaultMaxBitrateKbps     = 25000
	defaultStepKbps           = 500
	defaultLogWindow          = 100
	defaultLLMBaseURL         = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel           = "google/gemini-2.5-flash"
	defaultLLMReferer         = "https://github.com/adconvert/adconvert"
	defaultLLMTitle           = "adconvert Spec Advisor"
	defaultLLMTimeoutSeconds  = 60
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLLMAPIKeyEnv       = "OPENROUTER_API_KEY"
	defaultEngineBaseURLEnv   = "ADCONVERT_ENGINE_BASE_URL"
	fallbackLLMAPIKeyEnvAlias = "ADCONVERT_LLM_API_KEY"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			CacheDir:  defaultCacheDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			APIBind:   defaultAPIBind,
		},
		Engine: Engine{
			Binary:      defaultEngineBinary,
			ProbeBinary: defaultEngineProbeBinary,
			CoreVersion: defaultEngineCoreVersion,
		},
		Convert: Convert{
			DefaultBitrateKbps: defaultBitrateKbps,
			MinBitrateKbps:     defaultMinBitrateKbps,
			MaxBitrateKbps:     defaultMaxBitrateKbps,
			StepKbps:           defaultStepKbps,
			LogWindow:          defaultLogWindow,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
