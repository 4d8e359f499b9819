package metrics

import "github.com/prometheus/client_golang/prometheus"

// WorkflowMetrics exposes counters/histograms for workflow activity.
type WorkflowMetrics struct {
	stepTransitions     *prometheus.CounterVec
	submissionsTotal    *prometheus.CounterVec
	submitLatency       *prometheus.HistogramVec
	classifierFallbacks prometheus.Counter
}

func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	m := &WorkflowMetrics{
		stepTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medialert",
			Subsystem: "workflow",
			Name:      "step_transitions_total",
			Help:      "Total step transitions by workflow and direction",
		}, []string{"workflow", "direction"}),
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medialert",
			Subsystem: "workflow",
			Name:      "submissions_total",
			Help:      "Total workflow submissions by outcome",
		}, []string{"workflow", "status"}),
		submitLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "medialert",
			Subsystem: "workflow",
			Name:      "submit_latency_seconds",
			Help:      "Latency of remote submission calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"workflow"}),
		classifierFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "medialert",
			Subsystem: "workflow",
			Name:      "classifier_fallbacks_total",
			Help:      "Total detail payloads replaced with safe defaults",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.stepTransitions, m.submissionsTotal, m.submitLatency, m.classifierFallbacks)
	return m
}

func (m *WorkflowMetrics) ObserveStep(workflow, direction string) {
	if m == nil {
		return
	}
	m.stepTransitions.WithLabelValues(workflow, direction).Inc()
}

func (m *WorkflowMetrics) ObserveSubmission(workflow, status string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(workflow, status).Inc()
}

func (m *WorkflowMetrics) ObserveSubmitLatency(workflow string, seconds float64) {
	if m == nil {
		return
	}
	m.submitLatency.WithLabelValues(workflow).Observe(seconds)
}

func (m *WorkflowMetrics) ObserveClassifierFallback() {
	if m == nil {
		return
	}
	m.classifierFallbacks.Inc()
}
