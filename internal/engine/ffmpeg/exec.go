package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"adconvert/internal/engine"
	"adconvert/internal/logging"
	"adconvert/internal/media/ffprobe"
	"adconvert/internal/services"
)

var baseArgs = []string{"-hide_banner", "-nostdin", "-y", "-progress", "pipe:1", "-nostats"}

const maxScannerBuffer = 1024 * 1024

// Exec runs ffmpeg with args inside the scratch directory. Progress lines from
// stdout become EventProgress and stderr lines become EventLog. Exec is the
// only sender on events and returns once ffmpeg exits.
func (e *Engine) Exec(ctx context.Context, args []string, events chan<- engine.Event) error {
	ffmpegPath, ffprobePath, scratch, err := e.paths()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return services.Wrap(services.ErrValidation, "engine", "exec", "no arguments", nil)
	}

	duration := e.inputDuration(ctx, ffprobePath, scratch, args)

	cmd := exec.CommandContext(ctx, ffmpegPath, append(append([]string{}, baseArgs...), args...)...)
	cmd.Dir = scratch
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "engine", "exec", "stdout pipe", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "engine", "exec", "stderr pipe", err)
	}
	if err := cmd.Start(); err != nil {
		return services.Wrap(services.ErrExternalTool, "engine", "exec", "start ffmpeg", err)
	}

	progressLines := scanLines(stdout)
	logLines := scanLines(stderr)
	tracker := progressTracker{durationUs: duration * 1e6}
	var lastLog string
	for progressLines != nil || logLines != nil {
		select {
		case line, ok := <-progressLines:
			if !ok {
				progressLines = nil
				continue
			}
			if fraction, ok := tracker.consume(line); ok {
				emit(ctx, events, engine.Event{Kind: engine.EventProgress, Progress: fraction})
			}
		case line, ok := <-logLines:
			if !ok {
				logLines = nil
				continue
			}
			if line = strings.TrimRight(line, "\r"); strings.TrimSpace(line) == "" {
				continue
			}
			lastLog = line
			emit(ctx, events, engine.Event{Kind: engine.EventLog, Message: line})
		}
	}

	if err := cmd.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("ffmpeg interrupted: %w", ctxErr)
		}
		detail := "ffmpeg exited with error"
		if lastLog != "" {
			detail = fmt.Sprintf("%s: %s", detail, lastLog)
		}
		return services.Wrap(services.ErrExternalTool, "engine", "exec", detail, err)
	}
	return nil
}

func (e *Engine) inputDuration(ctx context.Context, ffprobePath, scratch string, args []string) float64 {
	input := inputName(args)
	if input == "" || ffprobePath == "" {
		return 0
	}
	result, err := ffprobe.Inspect(ctx, ffprobePath, filepath.Join(scratch, input))
	if err != nil {
		logging.WarnWithContext(e.logger, "could not probe input duration", "probe_failed",
			logging.String("input", input),
			logging.Error(err),
			logging.String(logging.FieldImpact, "progress is reported only on completion"),
		)
		return 0
	}
	d := result.DurationSeconds()
	if math.IsNaN(d) || d < 0 {
		return 0
	}
	return d
}

// inputName returns the argument following the first -i flag.
func inputName(args []string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == "-i" {
			return args[i+1]
		}
	}
	return ""
}

func emit(ctx context.Context, events chan<- engine.Event, ev engine.Event) {
	if events == nil {
		return
	}
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}

func scanLines(r io.Reader) chan string {
	out := make(chan string, 16)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxScannerBuffer)
		for scanner.Scan() {
			out <- scanner.Text()
		}
		// Drain so the child never blocks on a full pipe after a scanner error.
		_, _ = io.Copy(io.Discard, r)
	}()
	return out
}

// progressTracker turns ffmpeg's -progress key=value stream into fractions.
// A batch ends at a progress=continue or progress=end line.
type progressTracker struct {
	durationUs float64
	outTimeUs  int64
	outTimeSet bool
}

func (p *progressTracker) consume(line string) (float64, bool) {
	key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
	if !ok {
		return 0, false
	}
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	switch key {
	case "out_time_us":
		if us, err := strconv.ParseInt(value, 10, 64); err == nil && us >= 0 {
			p.outTimeUs, p.outTimeSet = us, true
		}
	case "out_time_ms":
		// Despite the name, ffmpeg reports microseconds here as well.
		if us, err := strconv.ParseInt(value, 10, 64); err == nil && us >= 0 && !p.outTimeSet {
			p.outTimeUs, p.outTimeSet = us, true
		}
	case "progress":
		defer func() { p.outTimeSet = false }()
		if value == "end" {
			return 1, true
		}
		if !p.outTimeSet || p.durationUs <= 0 {
			return 0, false
		}
		return min(max(float64(p.outTimeUs)/p.durationUs, 0), 1), true
	}
	return 0, false
}
