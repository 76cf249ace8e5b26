// Package main hosts the adconvert CLI entrypoint and command graph.
//
// The Cobra command tree converts a single video to the fixed H.264/AAC
// delivery profile (convert), asks the advisory model about a bitrate
// (advise), runs the local web surface (serve), reports readiness (status)
// and scaffolds configuration (config). Configuration resolution, the
// per-process session id and logger construction live in commandContext so
// subcommands only deal with presentation.
package main
