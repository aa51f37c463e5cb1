package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ImportJobMetrics records metadata for product import runs.
type ImportJobMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	rows     *prometheus.CounterVec
}

// NewImportJobMetrics registers the import job metrics on the provided registerer.
func NewImportJobMetrics(reg prometheus.Registerer) *ImportJobMetrics {
	if reg == nil {
		return &ImportJobMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "import_duration_seconds",
		Help:    "Duration of import runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_success",
		Help: "Import files processed without errors.",
	}, []string{"job"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_failure",
		Help: "Import files rejected or failed.",
	}, []string{"job"})
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_rows_total",
		Help: "Seller listings written by import runs.",
	}, []string{"job"})
	reg.MustRegister(duration, success, failure, rows)
	return &ImportJobMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		rows:     rows,
	}
}

// ObserveDuration records the duration for the named job.
func (i *ImportJobMetrics) ObserveDuration(job string, duration time.Duration) {
	if i == nil || i.duration == nil {
		return
	}
	i.duration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named job.
func (i *ImportJobMetrics) IncSuccess(job string) {
	if i == nil || i.success == nil {
		return
	}
	i.success.WithLabelValues(normalizeLabel(job)).Inc()
}

// IncFailure increments the failure counter for the named job.
func (i *ImportJobMetrics) IncFailure(job string) {
	if i == nil || i.failure == nil {
		return
	}
	i.failure.WithLabelValues(normalizeLabel(job)).Inc()
}

// AddRows adds the number of listings written by a run.
func (i *ImportJobMetrics) AddRows(job string, count int) {
	if i == nil || i.rows == nil || count <= 0 {
		return
	}
	i.rows.WithLabelValues(normalizeLabel(job)).Add(float64(count))
}

func normalizeLabel(job string) string {
	if job == "" {
		return "unknown"
	}
	return job
}
