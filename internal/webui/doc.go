// Package webui serves the local conversion surface over HTTP.
//
// The server binds to the configured loopback address, loads the engine in
// the background on Start and exposes JSON endpoints for selecting a file,
// starting a conversion, downloading the result and requesting bitrate
// advice. Snapshot changes stream on /api/events as server-sent events and
// Prometheus metrics are published on /metrics.
package webui
