package booking

import "github.com/medialert/medialert-client/internal/workflow"

// Step identifies one stage of the booking flow.
type Step int

const (
	StepBrowse Step = iota
	StepSchedule
	StepConfirm
)

func (s Step) String() string {
	switch s {
	case StepBrowse:
		return "browse"
	case StepSchedule:
		return "schedule"
	case StepConfirm:
		return "confirm"
	}
	return "unknown"
}

var stepOrder = []Step{StepBrowse, StepSchedule, StepConfirm}

func gateFor(d *Draft) func(Step) error {
	return func(s Step) error {
		switch s {
		case StepBrowse:
			if d.Doctor == nil {
				return &workflow.ValidationError{Step: s.String(), Reason: "select a doctor"}
			}
		case StepSchedule:
			if d.Date == "" {
				return &workflow.ValidationError{Step: s.String(), Reason: "pick a date"}
			}
			if d.Time == "" {
				return &workflow.ValidationError{Step: s.String(), Reason: "pick a time slot"}
			}
		case StepConfirm:
			// Confirmation has nothing new to validate; advancing submits.
		}
		return nil
	}
}
