package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess         = "success"
	OutcomeTransportError  = "transport_error"
	OutcomeAPIError        = "api_error"
	OutcomeParseError      = "parse_error"
	OutcomeValidationError = "validation_error"
	OutcomeInternalError   = "internal_error"
)

var (
	ClientRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eduvision_client_requests_total",
			Help: "Total number of backend calls made by the API client",
		},
		[]string{"capability", "outcome"},
	)

	ClientRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eduvision_client_request_duration_seconds",
			Help:    "Duration of backend calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"capability"},
	)

	ClientRequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "eduvision_client_requests_in_flight",
			Help: "Number of backend calls currently in flight",
		},
		[]string{"capability"},
	)

	StaleResultsDiscarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eduvision_stale_results_discarded_total",
			Help: "Results dropped because a newer request for the same capability was issued",
		},
		[]string{"capability"},
	)
)

// ObserveClientRequest records a completed backend call
func ObserveClientRequest(capability, outcome string, duration time.Duration) {
	ClientRequests.WithLabelValues(capability, outcome).Inc()
	ClientRequestDuration.WithLabelValues(capability).Observe(duration.Seconds())
}
