package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Number is a decimal that ffprobe reports as a JSON string, such as
// "12.500000" or "N/A".
type Number string

// Float parses n. Missing values ("" and "N/A") are 0; malformed ones NaN.
func (n Number) Float() float64 {
	s := strings.TrimSpace(string(n))
	if s == "" || s == "N/A" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Int truncates n, mapping negative and malformed values to 0.
func (n Number) Int() int64 {
	v := n.Float()
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return int64(v)
}

type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Profile    string `json:"profile"`
	Level      int    `json:"level"`
	PixFmt     string `json:"pix_fmt"`
	BitRate    Number `json:"bit_rate"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	SampleRate Number `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

type Format struct {
	Filename   string `json:"filename"`
	FormatName string `json:"format_name"`
	Duration   Number `json:"duration"`
	Size       Number `json:"size"`
	BitRate    Number `json:"bit_rate"`
}

var probeArgs = []string{"-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json"}

// Inspect runs binary (ffprobe when empty) on path and decodes its report.
func Inspect(ctx context.Context, binary, path string) (Result, error) {
	if binary = strings.TrimSpace(binary); binary == "" {
		binary = "ffprobe"
	}
	if path = strings.TrimSpace(path); path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	args := append(append([]string{}, probeArgs...), "--", path)
	out, err := exec.CommandContext(ctx, binary, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			err = fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Result{}, fmt.Errorf("ffprobe inspect: %w", err)
	}
	return Parse(out)
}

func Parse(data []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// FirstStream returns the first stream whose codec_type is kind.
func (r Result) FirstStream(kind string) (Stream, bool) {
	for _, s := range r.Streams {
		if strings.EqualFold(s.CodecType, kind) {
			return s, true
		}
	}
	return Stream{}, false
}

func (r Result) VideoStream() (Stream, bool) { return r.FirstStream("video") }

// DurationSeconds is 0 when ffprobe gave no duration and NaN when it gave
// an unreadable one.
func (r Result) DurationSeconds() float64 { return r.Format.Duration.Float() }

func (r Result) SizeBytes() int64 { return r.Format.Size.Int() }

// BitRate is the container bitrate in bits per second.
func (r Result) BitRate() int64 { return r.Format.BitRate.Int() }

func (s Stream) BitRateKbps() int64 { return s.BitRate.Int() / 1000 }

// LevelString renders an H.264 level as encoders spell it: 42 is "4.2".
func (s Stream) LevelString() string {
	if s.Level <= 0 {
		return ""
	}
	return strconv.Itoa(s.Level/10) + "." + strconv.Itoa(s.Level%10)
}
