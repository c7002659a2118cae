package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	QuotesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "venus_quotes_total",
		Help: "Router invocations by winning venue and outcome",
	}, []string{"venue", "outcome"})

	CandidateFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "venus_candidate_failures_total",
		Help: "Per-candidate quote failures absorbed as zero output",
	}, []string{"venue"})

	QuoteDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "venus_quote_duration_seconds",
		Help:    "Wall time of one full router invocation",
		Buckets: prometheus.DefBuckets,
	}, []string{"venue"})

	RouteCandidates = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "venus_route_candidates",
		Help: "Candidate route/fee-tier combinations evaluated by the last invocation",
	})

	SplitImprovementBps = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "venus_split_improvement_bps",
		Help: "Output gain of the chosen split over the best single route, in bps (0 when unsplit)",
	})
)

func init() {
	prometheus.MustRegister(
		QuotesTotal,
		CandidateFailures,
		QuoteDuration,
		RouteCandidates,
		SplitImprovementBps,
	)
}
