package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SourceMetrics records upstream collaborator call outcomes.
type SourceMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	build    prometheus.Histogram
}

// NewSourceMetrics registers the gateway metrics on the provided registerer.
func NewSourceMetrics(reg prometheus.Registerer) *SourceMetrics {
	if reg == nil {
		return &SourceMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "source_call_duration_seconds",
		Help:    "Duration of upstream collaborator calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "source_call_success",
		Help: "Successful upstream collaborator calls.",
	}, []string{"source"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "source_call_failure",
		Help: "Failed upstream collaborator calls.",
	}, []string{"source"})
	build := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "report_build_duration_seconds",
		Help:    "End-to-end executive report build duration in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(duration, success, failure, build)
	return &SourceMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		build:    build,
	}
}

// ObserveCall records the duration for the named collaborator.
func (m *SourceMetrics) ObserveCall(source string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(source)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named collaborator.
func (m *SourceMetrics) IncSuccess(source string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(source)).Inc()
}

// IncFailure increments the failure counter for the named collaborator.
func (m *SourceMetrics) IncFailure(source string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(source)).Inc()
}

// ObserveBuild records one report assembly duration.
func (m *SourceMetrics) ObserveBuild(duration time.Duration) {
	if m == nil || m.build == nil {
		return
	}
	m.build.Observe(duration.Seconds())
}

func normalizeLabel(source string) string {
	if source == "" {
		return "unknown"
	}
	return source
}
