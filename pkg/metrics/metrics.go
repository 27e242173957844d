package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the counters exported by the feed core.
type Metrics struct {
	CacheLookups   *prometheus.CounterVec
	Fetches        *prometheus.CounterVec
	Mutations      *prometheus.CounterVec
	Rollbacks      prometheus.Counter
	DiscardedFetch prometheus.Counter
	BreakerState   *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tint",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Query cache reads by result (hit, miss).",
		}, []string{"result"}),
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tint",
			Subsystem: "cache",
			Name:      "fetches_total",
			Help:      "Background and blocking fetches by outcome.",
		}, []string{"outcome"}),
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tint",
			Subsystem: "cache",
			Name:      "mutations_total",
			Help:      "Optimistic mutations by outcome.",
		}, []string{"outcome"}),
		Rollbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tint",
			Subsystem: "cache",
			Name:      "rollbacks_total",
			Help:      "Optimistic updates restored after a failed remote write.",
		}),
		DiscardedFetch: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tint",
			Subsystem: "cache",
			Name:      "discarded_fetches_total",
			Help:      "Fetch results dropped because the fetch was cancelled.",
		}),
		BreakerState: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tint",
			Subsystem: "backend",
			Name:      "breaker_transitions_total",
			Help:      "Circuit breaker state changes by breaker and target state.",
		}, []string{"breaker", "to"}),
	}

	reg.MustRegister(m.CacheLookups, m.Fetches, m.Mutations, m.Rollbacks, m.DiscardedFetch, m.BreakerState)

	return m
}

// NewNop returns metrics registered on a throwaway registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
