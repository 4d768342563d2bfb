// Package telemetry provides Prometheus metrics for the sync subsystem.
// Metrics are exposed on the local HTTP surface only; nothing is pushed.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CyclesRun = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_sync_cycles_total",
		Help: "The total number of sync cycles run, by outcome.",
	}, []string{"outcome"}) // outcome: success, retryable_failure, fatal_failure

	ItemsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_sync_items_total",
		Help: "The total number of submissions processed, by result.",
	}, []string{"result"}) // result: synced, failed

	CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_sync_cycle_duration_seconds",
		Help:    "Duration of sync cycles.",
		Buckets: prometheus.DefBuckets,
	})

	SubmissionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_submissions_created_total",
		Help: "The total number of pending submissions created locally.",
	})
)

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
