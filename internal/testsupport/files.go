package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// VideoBytes returns size bytes that begin with an ISO-BMFF QuickTime header so
// content sniffing classifies them as video/quicktime.
func VideoBytes(size int) []byte {
	header := []byte{0x00, 0x00, 0x00, 0x14, 'f', 't', 'y', 'p', 'q', 't', ' ', ' ', 0x00, 0x00, 0x00, 0x00, 'q', 't', ' ', ' '}
	if size < len(header) {
		size = len(header)
	}
	buf := make([]byte, size)
	copy(buf, header)
	for i := len(header); i < size; i++ {
		buf[i] = 0x42
	}
	return buf
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
