package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ImportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "autopark_imports_total",
		Help: "Import operations by format and outcome.",
	}, []string{"format", "status"})

	ImportRecordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "autopark_import_records_total",
		Help: "Per-record import outcomes by entity.",
	}, []string{"entity", "outcome"})

	ExportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "autopark_exports_total",
		Help: "Snapshot exports by format.",
	}, []string{"format"})

	GeocodeRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "autopark_geocode_requests_total",
		Help: "Reverse geocoding lookups by result.",
	}, []string{"result"})

	GeocodeDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "autopark_geocode_duration_seconds",
		Help:    "Reverse geocoding call latency.",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		ImportsTotal,
		ImportRecordsTotal,
		ExportsTotal,
		GeocodeRequestsTotal,
		GeocodeDurationSeconds,
	)
}
