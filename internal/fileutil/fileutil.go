package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrSizeMismatch reports a stream that ended before (or after) the expected
// number of bytes.
var ErrSizeMismatch = errors.New("size mismatch")

// Written describes a completed WriteAtomic.
type Written struct {
	Bytes  int64
	SHA256 string
}

// WriteAtomic streams r into a temporary file beside dst, checks the byte
// count when expected is non-negative, applies mode and renames the file into
// place. dst is never left partially written.
func WriteAtomic(dst string, r io.Reader, mode os.FileMode, expected int64) (Written, error) {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Written{}, fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(dst)+".part-*")
	if err != nil {
		return Written{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(tmp, hasher), r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return Written{}, fmt.Errorf("write %s: %w", filepath.Base(dst), err)
	}
	if expected >= 0 && written != expected {
		return Written{}, fmt.Errorf("%w: expected %d bytes, wrote %d", ErrSizeMismatch, expected, written)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return Written{}, fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return Written{}, fmt.Errorf("install %s: %w", filepath.Base(dst), err)
	}
	return Written{Bytes: written, SHA256: hex.EncodeToString(hasher.Sum(nil))}, nil
}
