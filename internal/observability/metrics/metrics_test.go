package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilReceiverIsSafe(t *testing.T) {
	var m *WorkflowMetrics
	m.ObserveStep("assessment", "advance")
	m.ObserveSubmission("assessment", "success")
	m.ObserveSubmitLatency("booking", 0.25)
	m.ObserveClassifierFallback()
}

func TestObserveSubmissionCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWorkflowMetrics(reg)

	m.ObserveSubmission("assessment", "success")
	m.ObserveSubmission("assessment", "success")
	m.ObserveSubmission("booking", "failed")

	if got := testutil.ToFloat64(m.submissionsTotal.WithLabelValues("assessment", "success")); got != 2 {
		t.Fatalf("assessment success count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.submissionsTotal.WithLabelValues("booking", "failed")); got != 1 {
		t.Fatalf("booking failed count = %v, want 1", got)
	}
}

func TestObserveClassifierFallbackCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWorkflowMetrics(reg)

	m.ObserveClassifierFallback()
	if got := testutil.ToFloat64(m.classifierFallbacks); got != 1 {
		t.Fatalf("fallback count = %v, want 1", got)
	}
}
