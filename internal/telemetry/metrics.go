// Package telemetry registers the service's Prometheus collectors against
// the default registry. Metrics are served on GET /metrics in the text
// exposition format.
//
// HTTP metrics are labelled by method, path, and status code; the service
// only routes a handful of fixed paths, so label cardinality stays bounded.
// Code operation metrics count registry-level outcomes per action.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, path, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and path.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "path"},
	)

	CodeOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_code_operations_total",
			Help: "Total number of access code operations, by action and result.",
		},
		[]string{"action", "result"},
	)
)
