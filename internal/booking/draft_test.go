package booking

import (
	"testing"

	"github.com/medialert/medialert-client/internal/triageapi"
)

func TestSetDateClearsChosenTime(t *testing.T) {
	d := NewDraft(nil)
	d.SelectDoctor(triageapi.Doctor{ID: "doc_001", Name: "Dr. Weber"})
	d.SetDate("2026-09-01")
	d.SetTime("10:30")

	d.SetDate("2026-09-02")
	if d.Time != "" {
		t.Fatalf("Time = %q after date change, want cleared", d.Time)
	}

	// Re-setting the same date keeps the slot.
	d.SetTime("11:00")
	d.SetDate("2026-09-02")
	if d.Time != "11:00" {
		t.Fatalf("Time = %q after same-date set, want 11:00", d.Time)
	}
}

func TestSelectDoctorClearsSchedule(t *testing.T) {
	d := NewDraft(nil)
	d.SelectDoctor(triageapi.Doctor{ID: "doc_001"})
	d.SetDate("2026-09-01")
	d.SetTime("10:30")

	d.SelectDoctor(triageapi.Doctor{ID: "doc_002"})
	if d.Date != "" || d.Time != "" {
		t.Fatalf("schedule survived doctor switch: date=%q time=%q", d.Date, d.Time)
	}

	// Re-selecting the same doctor is a no-op.
	d.SetDate("2026-09-03")
	d.SelectDoctor(triageapi.Doctor{ID: "doc_002"})
	if d.Date != "2026-09-03" {
		t.Fatalf("Date = %q after same-doctor select", d.Date)
	}
}

func TestDraftFinalize(t *testing.T) {
	d := NewDraft([]string{"Fever"})
	if _, err := d.Finalize(); err == nil {
		t.Fatal("Finalize accepted draft without doctor")
	}

	d.SelectDoctor(triageapi.Doctor{ID: "doc_001", Name: "Dr. Weber"})
	if _, err := d.Finalize(); err == nil {
		t.Fatal("Finalize accepted draft without schedule")
	}

	d.SetDate("2026-09-01")
	d.SetTime("10:30")
	d.SetNotes("follow-up")
	req, err := d.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if req.DoctorID != "doc_001" || req.BookingDate != "2026-09-01" || req.BookingTime != "10:30" {
		t.Fatalf("request = %+v", req)
	}
	if len(req.Symptoms) != 1 || req.Symptoms[0] != "Fever" {
		t.Fatalf("Symptoms = %v", req.Symptoms)
	}
	if req.Notes != "follow-up" {
		t.Fatalf("Notes = %q", req.Notes)
	}
}
