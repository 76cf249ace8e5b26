package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// FFmpegStub imitates the parts of ffmpeg the engine relies on: -version,
// -progress output on stdout, a stderr banner and an output file written to
// the last argument.
const FFmpegStub = `#!/bin/sh
if [ "$1" = "-version" ]; then
  echo "ffmpeg version 6.1-stub Copyright (c) the FFmpeg developers"
  exit 0
fi
for arg in "$@"; do last="$arg"; done
echo "Input #0, mov,mp4,m4a,3gp,3g2,mj2, from 'input.mov':" >&2
printf 'frame=10\nout_time_us=1000000\nout_time_ms=1000000\nprogress=continue\n'
printf 'frame=40\nout_time_us=4000000\nprogress=end\n'
printf 'encoded:%s' "$*" > "$last"
echo "video:100kB audio:10kB" >&2
exit 0
`

// FFmpegFailStub exits non-zero after a partial progress report.
const FFmpegFailStub = `#!/bin/sh
if [ "$1" = "-version" ]; then
  echo "ffmpeg version 6.1-stub"
  exit 0
fi
printf 'out_time_us=2000000\nprogress=continue\n'
echo "Conversion failed!" >&2
exit 1
`

// FFprobeStub returns a fixed-duration ffprobe JSON document.
func FFprobeStub(durationSeconds float64) string {
	return fmt.Sprintf(`#!/bin/sh
cat <<'JSON'
{"streams":[{"index":0,"codec_type":"video","codec_name":"h264","profile":"High","level":42,"pix_fmt":"yuv420p","bit_rate":"12000000"}],
 "format":{"filename":"probe","duration":"%.3f","size":"1000","bit_rate":"12192000"}}
JSON
`, durationSeconds)
}

// WriteExecutable writes an executable script to dir/name and returns its path.
func WriteExecutable(t testing.TB, dir, name, script string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}

// StubEngine writes ffmpeg and ffprobe stubs into dir and returns dir.
func StubEngine(t testing.TB, dir string, durationSeconds float64) string {
	t.Helper()
	WriteExecutable(t, dir, "ffmpeg", FFmpegStub)
	WriteExecutable(t, dir, "ffprobe", FFprobeStub(durationSeconds))
	return dir
}
