package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"echoscribe/internal/app/model"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "echoscribe_runs_total",
		Help: "Pipeline runs by final status.",
	}, []string{"status"})

	stageFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "echoscribe_stage_failures_total",
		Help: "Failed runs by the stage that caused the failure.",
	}, []string{"stage"})

	runDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "echoscribe_run_duration_seconds",
		Help:    "Wall-clock duration of one pipeline run.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})
)

// ObserveRun records one finished pipeline run.
func ObserveRun(result model.ProcessingResult) {
	runsTotal.WithLabelValues(string(result.Status)).Inc()
	if result.FailedStage != "" {
		stageFailuresTotal.WithLabelValues(string(result.FailedStage)).Inc()
	}
	runDurationSeconds.Observe(result.Elapsed.Seconds())
}
