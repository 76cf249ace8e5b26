package selection

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	"adconvert/internal/services"
)

// ErrNotVideo rejects files whose type is not video/*.
var ErrNotVideo = fmt.Errorf("%w: please select a valid video file", services.ErrValidation)

// File is a selected source video held in memory.
type File struct {
	Name string
	Type string
	Size int64
	Data []byte
}

// HumanSize renders the file size for display.
func (f *File) HumanSize() string {
	return HumanSize(f.Size)
}

// Select validates the declared type and wraps the bytes.
func Select(name, declaredType string, data []byte) (*File, error) {
	mediaType := normalizeType(declaredType)
	if !strings.HasPrefix(mediaType, "video/") {
		return nil, fmt.Errorf("%w (got %q)", ErrNotVideo, declaredType)
	}
	return &File{
		Name: filepath.Base(strings.TrimSpace(name)),
		Type: mediaType,
		Size: int64(len(data)),
		Data: data,
	}, nil
}

// Load reads path from disk, detects its type and selects it.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "selection", "read", path, err)
		}
		return nil, services.Wrap(services.ErrValidation, "selection", "read", path, err)
	}
	return Select(filepath.Base(path), DetectType(path, data), data)
}

// DetectType sniffs the content. When the content is not recognized the file
// extension decides.
func DetectType(name string, data []byte) string {
	detected := normalizeType(mimetype.Detect(data).String())
	if detected != "" && detected != "application/octet-stream" && detected != "text/plain" {
		return detected
	}
	if byExt := normalizeType(mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))); byExt != "" {
		return byExt
	}
	return detected
}

func normalizeType(value string) string {
	mediaType, _, _ := strings.Cut(value, ";")
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// DownloadName derives the result name from the original: everything before
// the first "." plus _<N>kbps.mp4.
func DownloadName(original string, bitrateKbps int) string {
	base, _, _ := strings.Cut(filepath.Base(strings.TrimSpace(original)), ".")
	if base == "" {
		base = "video"
	}
	return fmt.Sprintf("%s_%dkbps.mp4", base, bitrateKbps)
}

// HumanSize renders a byte count the way the UI shows it (e.g. "5.2 MB").
func HumanSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// Session holds at most one selected file.
type Session struct {
	mu   sync.RWMutex
	file *File
}

// Select replaces the current file when the candidate is a video. A rejected
// candidate leaves the session untouched.
func (s *Session) Select(name, declaredType string, data []byte) (*File, error) {
	file, err := Select(name, declaredType, data)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.file = file
	s.mu.Unlock()
	return file, nil
}

// Current returns the selected file, or nil.
func (s *Session) Current() *File {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.file
}

// Reset clears the selection.
func (s *Session) Reset() {
	s.mu.Lock()
	s.file = nil
	s.mu.Unlock()
}
