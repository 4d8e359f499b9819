// Package booking implements the consultation-booking workflow: browse
// providers, schedule a date and time slot, confirm, and submit through the
// single-flight invoker. It typically follows a completed assessment and
// carries that assessment's symptoms into the booking notes.
package booking

import (
	"fmt"

	"github.com/medialert/medialert-client/internal/triageapi"
)

// Draft accumulates the booking selections across the steps. Like the
// assessment draft it merges monotonically, with one deliberate exception:
// changing or clearing the date invalidates the chosen time slot, because
// slots are only meaningful for the date they were fetched for.
type Draft struct {
	Doctor   *triageapi.Doctor `json:"doctor"`
	Date     string            `json:"date"`
	Time     string            `json:"time"`
	Symptoms []string          `json:"symptoms"`
	Notes    string            `json:"notes"`
}

// NewDraft creates a booking draft, optionally seeded with symptoms from a
// completed assessment.
func NewDraft(symptoms []string) *Draft {
	d := &Draft{}
	if len(symptoms) > 0 {
		d.Symptoms = make([]string, len(symptoms))
		copy(d.Symptoms, symptoms)
	}
	return d
}

// SelectDoctor records the chosen provider. Switching providers clears the
// date and time; their availability does not transfer.
func (d *Draft) SelectDoctor(doc triageapi.Doctor) {
	if d.Doctor != nil && d.Doctor.ID == doc.ID {
		return
	}
	d.Doctor = &doc
	d.Date = ""
	d.Time = ""
}

// SetDate records the visit date (YYYY-MM-DD). Changing the date clears a
// previously chosen time slot; re-setting the same date is a no-op.
func (d *Draft) SetDate(date string) {
	if d.Date == date {
		return
	}
	d.Date = date
	d.Time = ""
}

// SetTime records the chosen slot for the current date.
func (d *Draft) SetTime(slot string) { d.Time = slot }

// SetNotes records free-text notes for the provider.
func (d *Draft) SetNotes(notes string) { d.Notes = notes }

// Finalize produces the immutable request payload.
func (d *Draft) Finalize() (triageapi.BookingRequest, error) {
	if d.Doctor == nil {
		return triageapi.BookingRequest{}, fmt.Errorf("finalize: no doctor selected")
	}
	if d.Date == "" || d.Time == "" {
		return triageapi.BookingRequest{}, fmt.Errorf("finalize: date and time not selected")
	}
	symptoms := make([]string, len(d.Symptoms))
	copy(symptoms, d.Symptoms)
	return triageapi.BookingRequest{
		DoctorID:    d.Doctor.ID,
		BookingDate: d.Date,
		BookingTime: d.Time,
		Symptoms:    symptoms,
		Notes:       d.Notes,
	}, nil
}
