package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LifecycleMetrics records outcomes of donation lifecycle transitions.
type LifecycleMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewLifecycleMetrics registers the transition metrics on the provided registerer.
func NewLifecycleMetrics(reg prometheus.Registerer) *LifecycleMetrics {
	if reg == nil {
		return &LifecycleMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "donation_transition_duration_seconds",
		Help:    "Duration of donation lifecycle transitions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"transition"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "donation_transition_success",
		Help: "Successful donation lifecycle transitions.",
	}, []string{"transition"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "donation_transition_failure",
		Help: "Rejected or failed donation lifecycle transitions.",
	}, []string{"transition", "reason"})
	reg.MustRegister(duration, success, failure)
	return &LifecycleMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the duration for the named transition.
func (m *LifecycleMetrics) ObserveDuration(transition string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(transition)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named transition.
func (m *LifecycleMetrics) IncSuccess(transition string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(transition)).Inc()
}

// IncFailure increments the failure counter for the named transition.
func (m *LifecycleMetrics) IncFailure(transition, reason string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(transition), normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
