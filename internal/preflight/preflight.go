package preflight

import (
	"context"

	"adconvert/internal/config"
	"adconvert/internal/engine"
)

// Result reports the outcome of a single preflight check. Optional checks
// degrade a feature instead of blocking conversions.
type Result struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Optional bool   `json:"optional"`
	Detail   string `json:"detail"`
}

// Options selects the checks that touch the network.
type Options struct {
	// ProbeLLM issues a live health request instead of checking key presence.
	ProbeLLM bool
}

// RunAll executes the checks that apply to cfg.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	if cfg.Engine.BaseURL != "" {
		results = append(results, CheckEngineSource(ctx, nil, engine.Resources{
			BaseURL:     cfg.Engine.BaseURL,
			CoreVersion: cfg.Engine.CoreVersion,
		}))
	} else {
		results = append(results, CheckEngineBinaries(ctx, cfg)...)
	}

	results = append(results,
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
	)
	if cfg.Engine.BaseURL != "" {
		results = append(results, CheckDirectoryAccess("Engine cache", cfg.Paths.CacheDir))
	}

	if opts.ProbeLLM {
		results = append(results, CheckLLM(ctx, "Advisory LLM", cfg.GetLLM()))
	} else {
		results = append(results, CheckLLMKey("Advisory LLM", cfg.GetLLM()))
	}
	return results
}

// Blocking reports whether any required check failed.
func Blocking(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Optional {
			return true
		}
	}
	return false
}
