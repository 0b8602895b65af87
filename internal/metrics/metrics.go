// Package metrics holds the Prometheus collectors exposed on the ops API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Console command metrics
var (
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reject_console_commands_total",
			Help: "Total number of chat commands handled",
		},
		[]string{"command", "status"},
	)

	AccessDeniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reject_console_access_denied_total",
			Help: "Total number of messages denied by the access policy",
		},
		[]string{"mode"},
	)
)

// Provider metrics
var (
	ProviderRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reject_console_provider_requests_total",
			Help: "Total number of email provider API calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reject_console_provider_request_duration_seconds",
			Help:    "Duration of email provider API calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
		},
		[]string{"operation"},
	)
)

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)
