// Package assessment implements the emergency symptom-intake workflow:
// three intake steps accumulate a draft, submission goes through the
// single-flight invoker, and the server's reply is classified into a
// severity outcome.
package assessment

import (
	"fmt"
	"strings"

	"github.com/medialert/medialert-client/internal/triageapi"
)

// Location is the fixed geolocation pair the workflow submits with the
// assessment. It is configuration passed in at construction, not acquired
// by this package.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

// defaultPainRating matches the intake form's initial slider position.
const defaultPainRating = 5

// Draft is the mutable aggregate collected across the intake steps. Fields
// merge in monotonically: a partial update never clears values it omits,
// and moving backward through steps never drops what was entered.
type Draft struct {
	Symptoms       []string `json:"symptoms"`
	OtherSymptoms  string   `json:"other_symptoms"`
	Age            int      `json:"age"`
	PainRating     int      `json:"pain_rating"`
	MedicalHistory string   `json:"medical_history"`
	Medications    string   `json:"medications"`
	Allergies      string   `json:"allergies"`
	Location       Location `json:"location"`
}

// NewDraft creates an empty draft anchored at the given location.
func NewDraft(loc Location) *Draft {
	return &Draft{
		PainRating: defaultPainRating,
		Location:   loc,
	}
}

// Partial carries newly provided fields for a shallow merge. Nil fields are
// "not provided" and leave the draft untouched.
type Partial struct {
	OtherSymptoms  *string
	Age            *int
	PainRating     *int
	MedicalHistory *string
	Medications    *string
	Allergies      *string
}

// Merge applies the provided fields onto the draft.
func (d *Draft) Merge(p Partial) {
	if p.OtherSymptoms != nil {
		d.OtherSymptoms = *p.OtherSymptoms
	}
	if p.Age != nil {
		d.Age = *p.Age
	}
	if p.PainRating != nil {
		d.PainRating = *p.PainRating
	}
	if p.MedicalHistory != nil {
		d.MedicalHistory = *p.MedicalHistory
	}
	if p.Medications != nil {
		d.Medications = *p.Medications
	}
	if p.Allergies != nil {
		d.Allergies = *p.Allergies
	}
}

// ToggleSymptom adds label to the selection, or removes it when already
// selected. Selection is a set with stable insertion order.
func (d *Draft) ToggleSymptom(label string) {
	for i, s := range d.Symptoms {
		if s == label {
			d.Symptoms = append(d.Symptoms[:i], d.Symptoms[i+1:]...)
			return
		}
	}
	d.Symptoms = append(d.Symptoms, label)
}

// HasSymptom reports whether label is currently selected.
func (d *Draft) HasSymptom(label string) bool {
	for _, s := range d.Symptoms {
		if s == label {
			return true
		}
	}
	return false
}

// Finalize produces the immutable request payload. The free-text "other
// symptoms" note, when non-empty, is appended as one synthetic symptom
// entry here, not merged into the selection eagerly. The step gates make a
// failed Finalize unreachable in a driven workflow.
func (d *Draft) Finalize() (triageapi.AssessmentRequest, error) {
	if len(d.Symptoms) == 0 {
		return triageapi.AssessmentRequest{}, fmt.Errorf("finalize: no symptoms selected")
	}
	if d.Age <= 0 {
		return triageapi.AssessmentRequest{}, fmt.Errorf("finalize: age not populated")
	}
	if d.PainRating < 1 || d.PainRating > 10 {
		return triageapi.AssessmentRequest{}, fmt.Errorf("finalize: pain rating %d out of range", d.PainRating)
	}

	symptoms := make([]string, len(d.Symptoms))
	copy(symptoms, d.Symptoms)
	if note := strings.TrimSpace(d.OtherSymptoms); note != "" {
		symptoms = append(symptoms, note)
	}

	return triageapi.AssessmentRequest{
		Symptoms:           symptoms,
		Age:                d.Age,
		PainRating:         d.PainRating,
		MedicalHistory:     d.MedicalHistory,
		CurrentMedications: d.Medications,
		Allergies:          d.Allergies,
		Latitude:           d.Location.Latitude,
		Longitude:          d.Location.Longitude,
		LocationAddress:    d.Location.Address,
	}, nil
}
