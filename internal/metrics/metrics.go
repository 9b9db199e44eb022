package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	availabilityFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "worknow",
			Name:      "availability_fetch_total",
			Help:      "Availability snapshot fetches by outcome.",
		},
		[]string{"outcome"},
	)

	overlapChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "worknow",
			Name:      "overlap_check_total",
			Help:      "Backend overlap checks by outcome.",
		},
		[]string{"outcome"},
	)

	checkouts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "worknow",
			Name:      "checkout_total",
			Help:      "Checkout attempts by outcome.",
		},
		[]string{"outcome"},
	)
)

const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeConflict = "conflict"
	OutcomeRejected = "rejected"
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(availabilityFetches, overlapChecks, checkouts)
	})
}

// IncAvailabilityFetch counts one snapshot fetch.
func IncAvailabilityFetch(outcome string) {
	availabilityFetches.WithLabelValues(outcome).Inc()
}

// IncOverlapCheck counts one backend overlap check.
func IncOverlapCheck(outcome string) {
	overlapChecks.WithLabelValues(outcome).Inc()
}

// IncCheckout counts one checkout attempt.
func IncCheckout(outcome string) {
	checkouts.WithLabelValues(outcome).Inc()
}
