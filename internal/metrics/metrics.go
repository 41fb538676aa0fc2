package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "washbay",
			Name:      "http_requests_total",
			Help:      "Count of HTTP API requests by operation.",
		},
		[]string{"op"},
	)

	availabilityOutcome = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "washbay",
			Name:      "availability_requests_total",
			Help:      "Count of availability calculations by outcome.",
		},
		[]string{"outcome"},
	)

	expansionRuns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "washbay",
			Name:      "expansion_runs_total",
			Help:      "Count of template expansion runs.",
		},
	)

	expansionCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "washbay",
			Name:      "expansion_reservations_created_total",
			Help:      "Count of reservations materialized by template expansion.",
		},
	)

	expansionSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "washbay",
			Name:      "expansion_candidates_skipped_total",
			Help:      "Count of expansion candidates skipped by reason.",
		},
		[]string{"reason"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, availabilityOutcome, expansionRuns, expansionCreated, expansionSkipped)
	})
}

func IncHTTP(op string) {
	httpRequests.WithLabelValues(op).Inc()
}

// IncAvailability records one availability calculation outcome:
// "open", "closed", "rejected" or "empty".
func IncAvailability(outcome string) {
	availabilityOutcome.WithLabelValues(outcome).Inc()
}

func IncExpansionRun() {
	expansionRuns.Inc()
}

func AddExpansionCreated(n int) {
	expansionCreated.Add(float64(n))
}

func IncExpansionSkipped(reason string) {
	expansionSkipped.WithLabelValues(reason).Inc()
}
