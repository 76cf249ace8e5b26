// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// The conversion engine uses it to learn the source duration so progress can
// be reported as a fraction, and the CLI uses it to summarize the encoded
// output (codec, profile, level, pixel format, bitrate).
package ffprobe
