// Package metrics exposes Prometheus collectors for planning and the daemon.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/theirongolddev/debtburn/internal/payoff"
)

// PlansTotal counts strategy runs by outcome.
var PlansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "debtburn",
	Subsystem: "planner",
	Name:      "runs_total",
	Help:      "Strategy runs by strategy and outcome (converged, non_convergent).",
}, []string{"strategy", "outcome"})

// PlanMonths tracks months to debt-free for converged runs.
var PlanMonths = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "debtburn",
	Subsystem: "planner",
	Name:      "months_to_debt_free",
	Help:      "Months to debt-free for converged runs.",
	Buckets:   []float64{6, 12, 24, 36, 60, 120, 240, 600, 1200},
}, []string{"strategy"})

// PlanDuration tracks wall time of a full comparison.
var PlanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "debtburn",
	Subsystem: "planner",
	Name:      "duration_seconds",
	Help:      "Wall time of one snowball/avalanche comparison.",
	Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
})

// InvalidInputs counts comparisons rejected before simulation.
var InvalidInputs = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "debtburn",
	Subsystem: "planner",
	Name:      "invalid_input_total",
	Help:      "Planning requests rejected by validation.",
})

// CacheLookups counts analysis cache lookups by result (hit, miss, error).
var CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "debtburn",
	Subsystem: "cache",
	Name:      "lookups_total",
	Help:      "Analysis cache lookups by result.",
}, []string{"result"})

// HTTPRequests counts daemon requests by route and status code.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "debtburn",
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "HTTP requests by route pattern, method and status.",
}, []string{"route", "method", "status"})

// HTTPDuration tracks daemon request latency.
var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "debtburn",
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency by route pattern.",
	Buckets:   prometheus.DefBuckets,
}, []string{"route"})

// ObserveAnalysis records one finished comparison.
func ObserveAnalysis(a payoff.Analysis, elapsed time.Duration) {
	PlanDuration.Observe(elapsed.Seconds())
	for _, p := range []payoff.PlanResult{a.Snowball, a.Avalanche} {
		outcome := "converged"
		if !p.Converged {
			outcome = "non_convergent"
		}
		PlansTotal.WithLabelValues(string(p.Strategy), outcome).Inc()
		if p.Converged {
			PlanMonths.WithLabelValues(string(p.Strategy)).Observe(float64(p.TotalMonths))
		}
	}
}
