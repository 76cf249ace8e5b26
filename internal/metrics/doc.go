// Package metrics registers the Prometheus instruments for engine readiness,
// conversions, advisory requests and the local HTTP surface. The web UI
// exposes them on /metrics.
package metrics
