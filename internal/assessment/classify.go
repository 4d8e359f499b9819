package assessment

import (
	"encoding/json"
	"strings"

	"github.com/medialert/medialert-client/internal/observability/metrics"
	"github.com/medialert/medialert-client/internal/triageapi"
	"github.com/medialert/medialert-client/pkg/logging"
)

// Severity is the closed set of triage categories.
type Severity string

const (
	SeverityRed    Severity = "RED"
	SeverityYellow Severity = "YELLOW"
	SeverityGreen  Severity = "GREEN"
)

// Display labels per severity category.
var severityLabels = map[Severity]string{
	SeverityRed:    "CRITICAL - EMERGENCY",
	SeverityYellow: "URGENT - See Doctor Within Hours",
	SeverityGreen:  "Low Risk - Monitor at Home",
}

// Label returns the fixed display label for the category.
func (s Severity) Label() string { return severityLabels[s] }

// Outcome is the terminal classification of a completed assessment.
type Outcome struct {
	AssessmentID      int64
	Severity          Severity
	Label             string
	Recommendation    string
	Action            string
	EstimatedResponse string
	// EmergencyPhone is set only for RED outcomes.
	EmergencyPhone string
	// DetailDefaulted records that the server's detail payload was
	// unusable and the fixed safe defaults were substituted. Never
	// surfaced to the user.
	DetailDefaulted bool
	CreatedAt       string
}

// detailPayload is the structured assessment detail. The server may send it
// as a JSON object or as a serialized string.
type detailPayload struct {
	Recommendation    string `json:"recommendation"`
	Action            string `json:"action"`
	EstimatedResponse string `json:"estimated_response"`
	Phone             string `json:"phone"`
}

// Fixed safe-default guidance used when the detail payload cannot be
// parsed. Showing generic guidance beats withholding triage guidance.
var safeDefaultDetail = detailPayload{
	Recommendation:    "Please consult with a healthcare professional",
	Action:            "Contact your doctor",
	EstimatedResponse: "ASAP",
	Phone:             "112",
}

// Classifier maps raw server responses into outcomes. Classification is
// total: every input, including unrecognized severity tags and malformed
// detail payloads, yields a valid outcome.
type Classifier struct {
	logger  *logging.Logger
	metrics *metrics.WorkflowMetrics
}

// NewClassifier builds a classifier. Both collaborators are optional.
func NewClassifier(logger *logging.Logger, m *metrics.WorkflowMetrics) *Classifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &Classifier{logger: logger, metrics: m}
}

// Classify interprets the server's assessment reply. An unrecognized or
// missing severity tag falls back to YELLOW: a deliberate fail-safe bias
// toward caution, not toward silence.
func (c *Classifier) Classify(resp *triageapi.AssessmentResponse) *Outcome {
	severity := parseSeverity(resp.SeverityLevel)
	if severity != Severity(strings.ToUpper(strings.TrimSpace(resp.SeverityLevel))) {
		c.logger.Warn("unrecognized severity tag, defaulting to YELLOW",
			"severity_level", resp.SeverityLevel,
			"assessment_id", resp.ID,
		)
	}

	detail, defaulted := c.parseDetail(resp.AssessmentResult)
	if defaulted {
		c.logger.Warn("assessment detail payload unusable, substituting safe defaults",
			"assessment_id", resp.ID,
		)
		c.metrics.ObserveClassifierFallback()
	}

	out := &Outcome{
		AssessmentID:      resp.ID,
		Severity:          severity,
		Label:             severity.Label(),
		Recommendation:    detail.Recommendation,
		Action:            detail.Action,
		EstimatedResponse: detail.EstimatedResponse,
		DetailDefaulted:   defaulted,
		CreatedAt:         resp.CreatedAt,
	}
	if severity == SeverityRed {
		out.EmergencyPhone = detail.Phone
		if out.EmergencyPhone == "" {
			out.EmergencyPhone = safeDefaultDetail.Phone
		}
	}
	return out
}

func parseSeverity(tag string) Severity {
	switch Severity(strings.ToUpper(strings.TrimSpace(tag))) {
	case SeverityRed:
		return SeverityRed
	case SeverityYellow:
		return SeverityYellow
	case SeverityGreen:
		return SeverityGreen
	}
	return SeverityYellow
}

// parseDetail accepts the detail payload as a JSON object, a JSON string
// containing JSON, or a JSON string containing a Python-repr dict (the
// backend stores str(result)). On failure it substitutes the safe defaults
// rather than propagating a parse error; the second return reports the
// substitution.
func (c *Classifier) parseDetail(raw json.RawMessage) (detailPayload, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return safeDefaultDetail, true
	}

	var detail detailPayload
	if err := json.Unmarshal(raw, &detail); err == nil {
		return withFieldDefaults(detail), false
	}

	var serialized string
	if err := json.Unmarshal(raw, &serialized); err != nil {
		return safeDefaultDetail, true
	}
	if err := json.Unmarshal([]byte(serialized), &detail); err == nil {
		return withFieldDefaults(detail), false
	}
	// Python dict repr uses single quotes.
	normalized := strings.ReplaceAll(serialized, "'", `"`)
	if err := json.Unmarshal([]byte(normalized), &detail); err == nil {
		return withFieldDefaults(detail), false
	}
	return safeDefaultDetail, true
}

// withFieldDefaults fills individually missing detail fields with generic
// guidance so the outcome never renders blank sections.
func withFieldDefaults(d detailPayload) detailPayload {
	if d.Recommendation == "" {
		d.Recommendation = "Please follow medical guidance"
	}
	if d.Action == "" {
		d.Action = "Consult a healthcare professional"
	}
	if d.EstimatedResponse == "" {
		d.EstimatedResponse = "Contact local services"
	}
	return d
}
