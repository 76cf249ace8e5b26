package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const versionTimeout = 5 * time.Second

// Requirement names an external binary and how to probe it.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	// VersionArgs, when set, are run and the first output line kept.
	VersionArgs []string
}

// Status is the outcome of checking one Requirement.
type Status struct {
	Requirement
	Available bool
	Path      string
	Version   string
	Detail    string
}

// CheckBinaries resolves each requirement on PATH, in order.
func CheckBinaries(ctx context.Context, requirements []Requirement) []Status {
	out := make([]Status, len(requirements))
	for i, req := range requirements {
		req.Command = strings.TrimSpace(req.Command)
		req.Description = strings.TrimSpace(req.Description)
		out[i] = Status{Requirement: req}
		out[i].resolve(ctx)
	}
	return out
}

func (s *Status) resolve(ctx context.Context) {
	if s.Command == "" {
		s.Detail = "command not configured"
		return
	}
	path, err := exec.LookPath(s.Command)
	if err != nil {
		s.Detail = fmt.Sprintf("binary %q not found", s.Command)
		return
	}
	s.Path = path
	if len(s.VersionArgs) == 0 {
		s.Available = true
		return
	}

	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, path, s.VersionArgs...).Output()
	if err != nil {
		s.Detail = fmt.Sprintf("%s %s failed: %v", s.Command, strings.Join(s.VersionArgs, " "), err)
		return
	}
	s.Available = true
	line, _, _ := strings.Cut(string(out), "\n")
	s.Version = strings.TrimSpace(line)
}
