package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine metrics
var (
	EngineReady = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "adconvert_engine_ready",
			Help: "1 when the transcoding engine is loaded and accepting commands",
		},
	)

	EngineLoadTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adconvert_engine_load_total",
			Help: "Total number of engine load attempts",
		},
		[]string{"result"},
	)
)

// Conversion metrics
var (
	ConversionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adconvert_conversions_total",
			Help: "Total number of conversions by outcome",
		},
		[]string{"result"},
	)

	ConversionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "adconvert_conversion_duration_seconds",
			Help:    "Wall-clock duration of conversions in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200, 3600},
		},
	)

	ConversionsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "adconvert_conversions_in_flight",
			Help: "Number of conversions currently running",
		},
	)
)

// Advisory metrics
var (
	AdvisoryRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adconvert_advisory_requests_total",
			Help: "Total number of advisory requests by outcome",
		},
		[]string{"result"},
	)
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adconvert_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
)

// SetEngineReady records engine readiness as a 0/1 gauge.
func SetEngineReady(ready bool) {
	if ready {
		EngineReady.Set(1)
		return
	}
	EngineReady.Set(0)
}
