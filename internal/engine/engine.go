package engine

import (
	"context"
	"strings"
)

// DefaultCoreVersion is the engine build that remote locators are pinned to.
const DefaultCoreVersion = "0.12.6"

// EventKind distinguishes the two notifications an engine emits while running.
type EventKind int

const (
	// EventProgress carries a completion fraction in [0,1].
	EventProgress EventKind = iota
	// EventLog carries one line of engine diagnostics.
	EventLog
)

func (k EventKind) String() string {
	switch k {
	case EventProgress:
		return "progress"
	case EventLog:
		return "log"
	default:
		return "unknown"
	}
}

// Event is a single progress or log notification produced during Exec.
type Event struct {
	Kind     EventKind
	Progress float64
	Message  string
}

// Resources locates the engine binaries. When BaseURL is set the binaries are
// downloaded from <BaseURL>/<CoreVersion>/<name>; otherwise FFmpeg and FFprobe
// are resolved as local executables.
type Resources struct {
	BaseURL     string
	CoreVersion string
	FFmpeg      string
	FFprobe     string
}

// Remote reports whether the resources point at a download location.
func (r Resources) Remote() bool {
	return strings.TrimSpace(r.BaseURL) != ""
}

// Locator returns the download URL for the named binary.
func (r Resources) Locator(name string) string {
	version := strings.TrimSpace(r.CoreVersion)
	if version == "" {
		version = DefaultCoreVersion
	}
	return strings.TrimRight(strings.TrimSpace(r.BaseURL), "/") + "/" + version + "/" + name
}

// Engine is the external transcoder driven by the conversion controller.
//
// Files live in a private namespace addressed by flat names. Exec blocks until
// the command finishes and sends events on the supplied channel; it never
// closes the channel. Implementations need not be safe for concurrent Exec
// calls; the controller serializes access.
type Engine interface {
	Load(ctx context.Context, res Resources) error
	WriteFile(ctx context.Context, name string, data []byte) error
	Exec(ctx context.Context, args []string, events chan<- Event) error
	ReadFile(ctx context.Context, name string) ([]byte, error)
	DeleteFile(ctx context.Context, name string) error
	Close() error
}
