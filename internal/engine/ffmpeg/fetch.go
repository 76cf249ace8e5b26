package ffmpeg

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"adconvert/internal/fileutil"
	"adconvert/internal/logging"
	"adconvert/internal/services"
)

// fetch downloads url into dest unless dest already exists. Partial downloads
// never land at dest.
func (e *Engine) fetch(ctx context.Context, url, dest string) (string, error) {
	if info, err := os.Stat(dest); err == nil && !info.IsDir() {
		e.logger.Debug("engine resource cached", logging.String("path", dest))
		return dest, nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "engine", "fetch", "create cache dir", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "engine", "fetch", "build request", err)
	}
	resp, err := e.opts.HTTPClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "engine", "fetch", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", services.Wrap(services.ErrExternalTool, "engine", "fetch", fmt.Sprintf("%s: http %d", url, resp.StatusCode), nil)
	}

	written, err := fileutil.WriteAtomic(dest, resp.Body, 0o755, resp.ContentLength)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "engine", "fetch", "download "+url, err)
	}
	e.logger.Info("engine resource fetched",
		logging.String("url", url),
		logging.String("path", dest),
		logging.Int64("bytes", written.Bytes),
		logging.String("sha256", written.SHA256),
	)
	return dest, nil
}
