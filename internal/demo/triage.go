package demo

import (
	"math"
	"strings"
)

// triageResult is the scored outcome of one assessment.
type triageResult struct {
	Severity          string `json:"severity"`
	Action            string `json:"action"`
	Recommendation    string `json:"recommendation"`
	EstimatedResponse string `json:"estimated_response"`
	Phone             string `json:"phone"`
}

var criticalSymptoms = []string{
	"chest pain", "difficulty breathing", "severe bleeding",
	"loss of consciousness", "choking", "severe allergic reaction",
	"unconscious", "difficulty breath",
}

var warningSymptoms = []string{
	"fever", "cough", "severe headache", "dizziness", "severe nausea",
	"fracture", "burns", "vomiting", "seizure", "head injury",
}

// assessSymptoms scores a symptom set into a severity tier. Any critical
// symptom short-circuits to RED; otherwise the score combines symptom
// count weighted by age, pain, and warning-sign hits.
func assessSymptoms(symptoms []string, age, painRating int) triageResult {
	lowered := make([]string, len(symptoms))
	for i, s := range symptoms {
		lowered[i] = strings.ToLower(s)
	}

	for _, symptom := range lowered {
		for _, critical := range criticalSymptoms {
			if strings.Contains(symptom, critical) {
				return triageResult{
					Severity:          "RED",
					Action:            "CALL AMBULANCE NOW",
					Recommendation:    "This is a medical emergency. Call 112 immediately.",
					EstimatedResponse: "5-8 minutes",
					Phone:             "112",
				}
			}
		}
	}

	ageRisk := 1.0
	switch {
	case age > 65:
		ageRisk = 1.5
	case age > 45:
		ageRisk = 1.3
	}

	warningCount := 0
	for _, symptom := range lowered {
		for _, warning := range warningSymptoms {
			if strings.Contains(symptom, warning) {
				warningCount++
				break
			}
		}
	}

	score := float64(len(symptoms))*ageRisk + float64(painRating)/10 + float64(warningCount)*2

	switch {
	case score >= 6 || painRating >= 8:
		return triageResult{
			Severity:          "RED",
			Action:            "Go to nearest hospital urgently",
			Recommendation:    "Visit emergency room immediately. Your symptoms require urgent evaluation.",
			EstimatedResponse: "10-15 minutes",
			Phone:             "112",
		}
	case score >= 3 || painRating >= 5:
		return triageResult{
			Severity:          "YELLOW",
			Action:            "See doctor within hours",
			Recommendation:    "Schedule a consultation with a doctor today. Monitor your symptoms carefully.",
			EstimatedResponse: "Book within 2-4 hours",
			Phone:             "Call hospital",
		}
	}
	return triageResult{
		Severity:          "GREEN",
		Action:            "Monitor at home",
		Recommendation:    "Get rest, stay hydrated, and monitor symptoms. Most conditions improve within 24-48 hours.",
		EstimatedResponse: "Continue observation",
		Phone:             "Call if worsens",
	}
}

// haversineKM returns the great-circle distance between two coordinates.
func haversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKM = 6371
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	lat1, lon1, lat2, lon2 = toRad(lat1), toRad(lon1), toRad(lat2), toRad(lon2)
	dlat := lat2 - lat1
	dlon := lon2 - lon1
	a := math.Pow(math.Sin(dlat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2)
	return 2 * earthRadiusKM * math.Asin(math.Sqrt(a))
}
