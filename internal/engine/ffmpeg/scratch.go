package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"adconvert/internal/services"
)

// validName accepts flat identifiers only; the scratch namespace has no
// directories.
func validName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return services.Wrap(services.ErrValidation, "engine", "file", "empty file name", nil)
	case name == "." || name == "..",
		strings.ContainsAny(name, `/\`),
		strings.ContainsRune(name, 0):
		return services.Wrap(services.ErrValidation, "engine", "file", fmt.Sprintf("invalid file name %q", name), nil)
	}
	return nil
}

func (e *Engine) scratchPath(name string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	_, _, scratch, err := e.paths()
	if err != nil {
		return "", err
	}
	return filepath.Join(scratch, name), nil
}

// WriteFile stores data under name, replacing any previous content.
func (e *Engine) WriteFile(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := e.scratchPath(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return services.Wrap(services.ErrExternalTool, "engine", "write", name, err)
	}
	return nil
}

// ReadFile returns the bytes stored under name.
func (e *Engine) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := e.scratchPath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrNotFound, "engine", "read", name, err)
		}
		return nil, services.Wrap(services.ErrExternalTool, "engine", "read", name, err)
	}
	return data, nil
}

// DeleteFile removes name; deleting a missing file is not an error.
func (e *Engine) DeleteFile(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := e.scratchPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return services.Wrap(services.ErrExternalTool, "engine", "delete", name, err)
	}
	return nil
}
