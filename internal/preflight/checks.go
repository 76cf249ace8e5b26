package preflight

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"adconvert/internal/config"
	"adconvert/internal/deps"
	"adconvert/internal/engine"
	"adconvert/internal/services/llm"
)

const (
	llmCheckTimeout    = 30 * time.Second
	sourceCheckTimeout = 10 * time.Second
	missingKeyDetail   = "API key missing (fallback advice only)"
)

// CheckLLM sends one health-check completion. The result is always optional:
// without the model the advisor answers with fallback text.
func CheckLLM(ctx context.Context, name string, cfg config.LLMConfig) Result {
	result := Result{Name: name, Optional: true}
	if cfg.APIKey == "" {
		result.Detail = missingKeyDetail
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, llmCheckTimeout)
	defer cancel()
	client := llm.NewClient(llm.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Referer: cfg.Referer,
		Title:   cfg.Title,
	}, llm.WithRetryMaxAttempts(1))
	if err := client.HealthCheck(ctx); err != nil {
		result.Detail = summarizeLLMError(err)
		return result
	}
	result.Passed, result.Detail = true, "API reachable"
	return result
}

// CheckLLMKey reports key presence without contacting the API.
func CheckLLMKey(name string, cfg config.LLMConfig) Result {
	if cfg.APIKey == "" {
		return Result{Name: name, Optional: true, Detail: missingKeyDetail}
	}
	return Result{Name: name, Optional: true, Passed: true, Detail: "key configured (model " + cfg.Model + ")"}
}

// CheckDirectoryAccess requires path to be a directory the process can list
// and write into.
func CheckDirectoryAccess(name, path string) Result {
	problem := func(format string, args ...any) Result {
		return Result{Name: name, Detail: path + " (error: " + fmt.Sprintf(format, args...) + ")"}
	}
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return problem("does not exist")
	case err != nil:
		return problem("stat: %v", err)
	case !info.IsDir():
		return problem("is not a directory")
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return problem("insufficient permissions: %v", err)
	}
	return Result{Name: name, Passed: true, Detail: path + " (read/write ok)"}
}

// CheckEngineBinaries reports whether ffmpeg and ffprobe can run locally.
func CheckEngineBinaries(ctx context.Context, cfg *config.Config) []Result {
	statuses := deps.CheckBinaries(ctx, []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Engine.Binary,
			Description: "Required for conversion",
			VersionArgs: []string{"-version"},
		},
		{
			Name:        "FFprobe",
			Command:     cfg.Engine.ProbeBinary,
			Description: "Progress reporting and output verification",
			Optional:    true,
		},
	})
	results := make([]Result, len(statuses))
	for i, st := range statuses {
		detail := st.Detail
		if st.Available {
			detail = cmp.Or(st.Version, st.Path)
		}
		results[i] = Result{Name: st.Name, Passed: st.Available, Optional: st.Optional, Detail: detail}
	}
	return results
}

// CheckEngineSource sends a HEAD for the pinned ffmpeg build. Only 200
// counts as reachable.
func CheckEngineSource(ctx context.Context, client *http.Client, res engine.Resources) Result {
	locator := res.Locator("ffmpeg")
	result := Result{Name: "Engine source", Detail: locator}
	if client == nil {
		client = &http.Client{Timeout: sourceCheckTimeout}
	}

	ctx, cancel := context.WithTimeout(ctx, sourceCheckTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, locator, nil)
	if err == nil {
		var resp *http.Response
		if resp, err = client.Do(req); err == nil {
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				result.Detail = fmt.Sprintf("%s (http %d)", locator, resp.StatusCode)
				return result
			}
		}
	}
	if err != nil {
		result.Detail = fmt.Sprintf("%s (error: %v)", locator, err)
		return result
	}
	result.Passed = true
	return result
}

// summarizeLLMError produces a human-readable summary for LLM health check failures.
func summarizeLLMError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (LLM API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (LLM API unreachable)"
	}
	return err.Error()
}
