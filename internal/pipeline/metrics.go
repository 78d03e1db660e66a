package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for pipeline runs.
type Metrics struct {
	RunsTotal    *prometheus.CounterVec
	RecordsTotal *prometheus.CounterVec
	StepDuration *prometheus.HistogramVec
	StepFailures *prometheus.CounterVec
}

// NewMetrics registers the pipeline collectors on reg. Pass
// prometheus.DefaultRegisterer for the process-wide registry, or a
// fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trendcli_pipeline_runs_total",
			Help: "Pipeline runs by dataset and outcome.",
		}, []string{"dataset", "status"}),
		RecordsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trendcli_pipeline_records_total",
			Help: "Records ingested per dataset.",
		}, []string{"dataset"}),
		StepDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trendcli_pipeline_step_duration_seconds",
			Help:    "Duration of pipeline steps.",
			Buckets: prometheus.DefBuckets,
		}, []string{"dataset", "step"}),
		StepFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trendcli_pipeline_step_failures_total",
			Help: "Step failures by dataset and step.",
		}, []string{"dataset", "step"}),
	}
}
