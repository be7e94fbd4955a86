// Package monitoring exposes prometheus metrics for the placement engine.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's prometheus collectors.
type Metrics struct {
	RunsStarted   prometheus.Counter
	RunsCompleted prometheus.Counter
	RunsFailed    prometheus.Counter

	CandidatesScored prometheus.Counter
	ScoringDuration  prometheus.Histogram

	// CollaboratorCalls counts outbound port lookups.
	// Labels: provider={soil,climate,demographics,vulnerability,transit,outlets}, outcome={success,error}.
	CollaboratorCalls *prometheus.CounterVec

	// CacheLookups counts response-cache results. Labels: result={hit,miss}.
	CacheLookups *prometheus.CounterVec

	GenerationsRun prometheus.Counter
}

const namespace = "foodaccess"

// NewMetrics creates the engine metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(
		m.RunsStarted,
		m.RunsCompleted,
		m.RunsFailed,
		m.CandidatesScored,
		m.ScoringDuration,
		m.CollaboratorCalls,
		m.CacheLookups,
		m.GenerationsRun,
	)
	return m
}

// NewNopMetrics creates unregistered metrics for tests and library use.
func NewNopMetrics() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RunsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_started_total",
			Help:      "Plan runs started.",
		}),
		RunsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_completed_total",
			Help:      "Plan runs completed successfully.",
		}),
		RunsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_failed_total",
			Help:      "Plan runs that returned an error.",
		}),
		CandidatesScored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_scored_total",
			Help:      "Candidate locations scored.",
		}),
		ScoringDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scoring_duration_seconds",
			Help:      "Wall time of the scoring stage per run.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		CollaboratorCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collaborator_calls_total",
			Help:      "Outbound collaborator lookups by provider and outcome.",
		}, []string{"provider", "outcome"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by result.",
		}, []string{"result"}),
		GenerationsRun: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "optimizer_generations_total",
			Help:      "Genetic algorithm generations evaluated.",
		}),
	}
}
