package assessment

import (
	"encoding/json"
	"testing"

	"github.com/medialert/medialert-client/internal/triageapi"
)

func classify(t *testing.T, resp *triageapi.AssessmentResponse) *Outcome {
	t.Helper()
	return NewClassifier(nil, nil).Classify(resp)
}

func TestClassifyObjectDetail(t *testing.T) {
	out := classify(t, &triageapi.AssessmentResponse{
		ID:            7,
		SeverityLevel: "RED",
		AssessmentResult: json.RawMessage(`{
			"recommendation": "Call emergency services now",
			"action": "Go to the nearest ER",
			"estimated_response": "Immediate",
			"phone": "112"
		}`),
	})

	if out.Severity != SeverityRed {
		t.Fatalf("Severity = %s, want RED", out.Severity)
	}
	if out.Label != "CRITICAL - EMERGENCY" {
		t.Fatalf("Label = %q", out.Label)
	}
	if out.Recommendation != "Call emergency services now" {
		t.Fatalf("Recommendation = %q", out.Recommendation)
	}
	if out.EmergencyPhone != "112" {
		t.Fatalf("EmergencyPhone = %q, want 112", out.EmergencyPhone)
	}
	if out.DetailDefaulted {
		t.Fatal("DetailDefaulted set for a parseable payload")
	}
}

func TestClassifyStringEncodedDetail(t *testing.T) {
	inner := `{"recommendation":"Rest and hydrate","action":"Monitor at home","estimated_response":"24h"}`
	raw, _ := json.Marshal(inner)

	out := classify(t, &triageapi.AssessmentResponse{
		SeverityLevel:    "green",
		AssessmentResult: raw,
	})
	if out.Severity != SeverityGreen {
		t.Fatalf("Severity = %s, want GREEN", out.Severity)
	}
	if out.Recommendation != "Rest and hydrate" {
		t.Fatalf("Recommendation = %q", out.Recommendation)
	}
	if out.EmergencyPhone != "" {
		t.Fatalf("EmergencyPhone = %q for non-RED outcome", out.EmergencyPhone)
	}
}

func TestClassifyPythonReprDetail(t *testing.T) {
	inner := `{'recommendation': 'See a doctor today', 'action': 'Book an urgent slot', 'estimated_response': '2-4 hours'}`
	raw, _ := json.Marshal(inner)

	out := classify(t, &triageapi.AssessmentResponse{
		SeverityLevel:    "YELLOW",
		AssessmentResult: raw,
	})
	if out.DetailDefaulted {
		t.Fatal("single-quoted payload should normalize, not default")
	}
	if out.Action != "Book an urgent slot" {
		t.Fatalf("Action = %q", out.Action)
	}
}

func TestClassifyUnparseableDetailUsesSafeDefaults(t *testing.T) {
	raw, _ := json.Marshal("definitely not a dict")

	out := classify(t, &triageapi.AssessmentResponse{
		SeverityLevel:    "RED",
		AssessmentResult: raw,
	})
	if !out.DetailDefaulted {
		t.Fatal("DetailDefaulted not set")
	}
	if out.Recommendation != "Please consult with a healthcare professional" {
		t.Fatalf("Recommendation = %q", out.Recommendation)
	}
	if out.Action != "Contact your doctor" {
		t.Fatalf("Action = %q", out.Action)
	}
	if out.EstimatedResponse != "ASAP" {
		t.Fatalf("EstimatedResponse = %q", out.EstimatedResponse)
	}
	if out.EmergencyPhone != "112" {
		t.Fatalf("EmergencyPhone = %q", out.EmergencyPhone)
	}
}

func TestClassifyMissingDetailUsesSafeDefaults(t *testing.T) {
	out := classify(t, &triageapi.AssessmentResponse{SeverityLevel: "GREEN"})
	if !out.DetailDefaulted {
		t.Fatal("DetailDefaulted not set for absent payload")
	}
}

func TestClassifyUnknownSeverityFallsBackToYellow(t *testing.T) {
	for _, tag := range []string{"", "ORANGE", "severe", "  "} {
		out := classify(t, &triageapi.AssessmentResponse{SeverityLevel: tag})
		if out.Severity != SeverityYellow {
			t.Fatalf("Severity(%q) = %s, want YELLOW", tag, out.Severity)
		}
		if out.Label != "URGENT - See Doctor Within Hours" {
			t.Fatalf("Label(%q) = %q", tag, out.Label)
		}
	}
}

func TestClassifyFillsEmptyDetailFields(t *testing.T) {
	out := classify(t, &triageapi.AssessmentResponse{
		SeverityLevel:    "GREEN",
		AssessmentResult: json.RawMessage(`{"recommendation":"Rest"}`),
	})
	if out.DetailDefaulted {
		t.Fatal("partial payload is not a fallback")
	}
	if out.Recommendation != "Rest" {
		t.Fatalf("Recommendation = %q", out.Recommendation)
	}
	if out.Action != "Consult a healthcare professional" {
		t.Fatalf("Action = %q", out.Action)
	}
	if out.EstimatedResponse != "Contact local services" {
		t.Fatalf("EstimatedResponse = %q", out.EstimatedResponse)
	}
}
