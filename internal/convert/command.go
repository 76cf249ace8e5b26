package convert

import (
	"fmt"
	"strconv"
)

const (
	// InputName is the single slot the source bytes are written to.
	InputName = "input.mov"
	// OutputContentType is the media type of every result.
	OutputContentType = "video/mp4"
	// AudioBitrate is fixed regardless of the requested video bitrate.
	AudioBitrate = "192k"
)

// BuildCommand returns the fixed H.264 High@4.2 / AAC argument list.
func BuildCommand(input, output string, bitrateKbps int) []string {
	return []string{
		"-i", input,
		"-c:v", "libx264",
		"-profile:v", "high",
		"-level", "4.2",
		"-b:v", strconv.Itoa(bitrateKbps) + "k",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", AudioBitrate,
		output,
	}
}

func outputName(nanos int64) string {
	return fmt.Sprintf("output_%d.mp4", nanos)
}
