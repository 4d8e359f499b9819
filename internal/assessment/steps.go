package assessment

import "github.com/medialert/medialert-client/internal/workflow"

// Step identifies one stage of the intake. Ordering is strictly linear.
type Step int

const (
	StepSymptoms Step = iota
	StepPersonalInfo
	StepAdditionalInfo
)

func (s Step) String() string {
	switch s {
	case StepSymptoms:
		return "symptoms"
	case StepPersonalInfo:
		return "personal_info"
	case StepAdditionalInfo:
		return "additional_info"
	}
	return "unknown"
}

var stepOrder = []Step{StepSymptoms, StepPersonalInfo, StepAdditionalInfo}

// gateFor returns the validation gate for the intake steps. Gates are pure
// functions of the current draft.
func gateFor(d *Draft) func(Step) error {
	return func(s Step) error {
		switch s {
		case StepSymptoms:
			if len(d.Symptoms) == 0 {
				return &workflow.ValidationError{Step: s.String(), Reason: "select at least one symptom"}
			}
		case StepPersonalInfo:
			if d.Age <= 0 {
				return &workflow.ValidationError{Step: s.String(), Reason: "enter your age"}
			}
			if d.PainRating < 1 || d.PainRating > 10 {
				return &workflow.ValidationError{Step: s.String(), Reason: "pain rating must be between 1 and 10"}
			}
		case StepAdditionalInfo:
			// Medications and allergies are optional; the final step always
			// passes and advancing from it submits.
		}
		return nil
	}
}
