package preflight

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"adconvert/internal/config"
	"adconvert/internal/engine"
	"adconvert/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("Test", dir)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if result.Name != "Test" {
		t.Fatalf("expected name 'Test', got %q", result.Name)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("Test", "/nonexistent/path/xyz")
	if result.Passed {
		t.Fatal("expected failure for nonexistent path")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "file")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	result := CheckDirectoryAccess("Test", f.Name())
	if result.Passed {
		t.Fatal("expected failure for non-directory")
	}
	if !strings.Contains(result.Detail, "not a directory") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func llmServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": content}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckLLM_OK(t *testing.T) {
	srv := llmServer(t, http.StatusOK, "OK")
	result := CheckLLM(context.Background(), "LLM", config.LLMConfig{APIKey: "k", BaseURL: srv.URL, Model: "m"})
	if !result.Passed || !result.Optional {
		t.Fatalf("expected optional pass, got %+v", result)
	}
}

func TestCheckLLM_Unauthorized(t *testing.T) {
	srv := llmServer(t, http.StatusUnauthorized, "")
	result := CheckLLM(context.Background(), "LLM", config.LLMConfig{APIKey: "bad", BaseURL: srv.URL, Model: "m"})
	if result.Passed {
		t.Fatal("expected failure for rejected key")
	}
	if result.Detail == "" {
		t.Fatal("expected failure detail")
	}
}

func TestCheckLLM_MissingKey(t *testing.T) {
	result := CheckLLM(context.Background(), "LLM", config.LLMConfig{})
	if result.Passed {
		t.Fatal("expected failure without key")
	}
	if !strings.Contains(result.Detail, "fallback") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckEngineBinaries_Stubbed(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	results := CheckEngineBinaries(context.Background(), cfg)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !results[0].Passed || !strings.Contains(results[0].Detail, "ffmpeg version") {
		t.Fatalf("unexpected ffmpeg result %+v", results[0])
	}
	if !results[1].Passed || !results[1].Optional {
		t.Fatalf("unexpected ffprobe result %+v", results[1])
	}
}

func TestCheckEngineBinaries_Missing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Engine.Binary = filepath.Join(t.TempDir(), "no-ffmpeg")
	cfg.Engine.ProbeBinary = filepath.Join(t.TempDir(), "no-ffprobe")
	results := CheckEngineBinaries(context.Background(), cfg)
	if results[0].Passed {
		t.Fatal("expected ffmpeg check to fail")
	}
	if !Blocking(results) {
		t.Fatal("missing ffmpeg should block")
	}
}

func TestCheckEngineSource(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		if r.URL.Path != "/0.12.6/ffmpeg" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ok := CheckEngineSource(context.Background(), srv.Client(), engine.Resources{BaseURL: srv.URL, CoreVersion: "0.12.6"})
	if !ok.Passed {
		t.Fatalf("expected pass, got %+v (path %s)", ok, path)
	}
	missing := CheckEngineSource(context.Background(), srv.Client(), engine.Resources{BaseURL: srv.URL, CoreVersion: "9.9.9"})
	if missing.Passed || !strings.Contains(missing.Detail, "http 404") {
		t.Fatalf("expected 404 failure, got %+v", missing)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, Options{}); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_LocalEngine(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}

	results := RunAll(context.Background(), cfg, Options{})
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
	}
	want := []string{"FFmpeg", "FFprobe", "Work directory", "Output directory", "Advisory LLM"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("checks = %v, want %v", names, want)
	}
	if Blocking(results) {
		t.Fatalf("expected no blocking failures: %+v", results)
	}
	if results[len(results)-1].Passed {
		t.Fatal("LLM check should fail without a key")
	}
}

func TestRunAll_ProbesLLM(t *testing.T) {
	srv := llmServer(t, http.StatusOK, "OK")
	cfg := testsupport.NewConfig(t,
		testsupport.WithStubbedBinaries(),
		testsupport.WithLLMKey("k"),
		testsupport.WithLLMBaseURL(srv.URL),
	)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}

	results := RunAll(context.Background(), cfg, Options{ProbeLLM: true})
	last := results[len(results)-1]
	if last.Name != "Advisory LLM" || !last.Passed || last.Detail != "API reachable" {
		t.Fatalf("unexpected LLM result %+v", last)
	}
}
