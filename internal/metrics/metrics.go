// Package metrics records Prometheus metrics for Secret Manager API calls.
//
// Metrics are opt-in: nothing is registered until InitMetrics is called, so
// library consumers that embed their own registry pay nothing by default.
package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API call metrics
	apiCallsTotal   *prometheus.CounterVec
	apiCallDuration *prometheus.HistogramVec

	// Registration guard
	metricsOnce       sync.Once
	metricsRegistered bool
)

// InitMetrics initializes all Prometheus metrics.
// This should be called once at startup if Prometheus metrics are enabled.
func InitMetrics() {
	metricsOnce.Do(func() {
		apiCallsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gsecret_api_calls_total",
				Help: "Total number of Secret Manager API calls by operation and HTTP status",
			},
			[]string{"op", "status"},
		)

		apiCallDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gsecret_api_call_duration_seconds",
				Help:    "Duration of Secret Manager API calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"op"},
		)

		metricsRegistered = true
	})
}

// ObserveAPICall records a single Secret Manager round trip.
// A status of 0 means the request never produced a response
// (transport error, token failure, context cancellation).
func ObserveAPICall(op string, status int, durationSeconds float64) {
	if !metricsRegistered {
		return
	}

	if apiCallsTotal != nil {
		apiCallsTotal.WithLabelValues(op, strconv.Itoa(status)).Inc()
	}

	if apiCallDuration != nil {
		apiCallDuration.WithLabelValues(op).Observe(durationSeconds)
	}
}

// GetAPICallsTotal returns the API call counter for testing.
func GetAPICallsTotal() *prometheus.CounterVec {
	return apiCallsTotal
}

// GetAPICallDuration returns the API call duration histogram for testing.
func GetAPICallDuration() *prometheus.HistogramVec {
	return apiCallDuration
}

// IsMetricsRegistered returns whether metrics have been initialized.
func IsMetricsRegistered() bool {
	return metricsRegistered
}
