// Package convert owns the conversion lifecycle: it loads the transcoding
// engine once, runs one conversion at a time with the fixed H.264/AAC
// command, and exposes status, progress and log for the CLI and web UI.
//
// The engine is injected, so tests substitute a fake. Engine progress and log
// events arrive on a channel that the controller drains on the goroutine that
// called Convert.
package convert
