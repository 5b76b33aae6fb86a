package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ConflictReportsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "odysai_conflict_reports_total",
		Help: "Conflict reports built",
	})
	PlansScoredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "odysai_plans_scored_total",
		Help: "Plan packages scored against a group",
	})
	GroupFitScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "odysai_group_fit_score",
		Help:    "Distribution of plan group scores",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})
	VotesCastTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odysai_votes_cast_total",
		Help: "Votes cast, by outcome",
	}, []string{"status"})
	TripsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odysai_trips_total",
		Help: "Trip lifecycle events",
	}, []string{"event"})

	StoreOperationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "odysai_store_operation_duration_seconds",
		Help:    "Store call latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend", "operation", "status"})
)

// MustRegister registers the metrics
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		ConflictReportsTotal,
		PlansScoredTotal,
		GroupFitScore,
		VotesCastTotal,
		TripsTotal,
		StoreOperationDuration,
	)
}

// ObserveStore records a store call; use with defer and a named error
func ObserveStore(backend, operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	StoreOperationDuration.WithLabelValues(backend, operation, status).Observe(time.Since(start).Seconds())
}
