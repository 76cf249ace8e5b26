// Package ffmpeg implements engine.Engine on top of the ffmpeg executable.
//
// Binaries come from PATH or are downloaded once per core version into the
// cache directory. Each loaded engine holds an exclusive lock on the work
// directory and a private scratch directory that backs its file namespace.
// Progress is read from ffmpeg's -progress stream and scaled by the input
// duration reported by ffprobe.
package ffmpeg
