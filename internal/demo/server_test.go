package demo

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/medialert/medialert-client/internal/assessment"
	"github.com/medialert/medialert-client/internal/booking"
	"github.com/medialert/medialert-client/internal/triageapi"
)

func newTestClient(t *testing.T) *triageapi.Client {
	t.Helper()
	srv := httptest.NewServer(NewServer(ServerConfig{}).Routes())
	t.Cleanup(srv.Close)
	return triageapi.NewClient(triageapi.Config{BaseURL: srv.URL})
}

func TestLoginAndBook(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	if _, err := client.Login(ctx, "demo@medialert.app", "wrong"); err == nil {
		t.Fatal("login accepted wrong password")
	}

	tokens := triageapi.NewClientCredentials(client, "demo@medialert.app", "medialert123")
	resp, err := client.BookConsultation(ctx, triageapi.BookingRequest{
		DoctorID:    "doc_001",
		BookingDate: "2026-09-01",
		BookingTime: "09:30 AM",
		Symptoms:    []string{"Fever"},
	}, tokens)
	if err != nil {
		t.Fatalf("BookConsultation: %v", err)
	}
	if resp.ResolveConsultationID() == "" {
		t.Fatalf("no consultation id in %+v", resp)
	}
	if resp.Consultation.DoctorName != "Dr. Chioma Okafor" {
		t.Fatalf("DoctorName = %q", resp.Consultation.DoctorName)
	}
}

func TestAssessCriticalSymptomIsRed(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	resp, err := client.Assess(ctx, triageapi.AssessmentRequest{
		Symptoms:   []string{"Chest Pain"},
		Age:        30,
		PainRating: 2,
	})
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	if resp.SeverityLevel != "RED" {
		t.Fatalf("SeverityLevel = %q, want RED", resp.SeverityLevel)
	}
	if resp.ID == 0 {
		t.Fatal("assessment id not assigned")
	}

	// The record is retrievable afterwards.
	again, err := client.Assessment(ctx, resp.ID)
	if err != nil {
		t.Fatalf("Assessment: %v", err)
	}
	if again.SeverityLevel != "RED" {
		t.Fatalf("stored SeverityLevel = %q", again.SeverityLevel)
	}
}

func TestAssessScoring(t *testing.T) {
	cases := []struct {
		name     string
		symptoms []string
		age      int
		pain     int
		want     string
	}{
		{"mild single symptom", []string{"Sore Throat"}, 25, 2, "GREEN"},
		{"warning symptom", []string{"Fever"}, 25, 3, "YELLOW"},
		{"elderly with warnings", []string{"Fever", "Cough"}, 70, 4, "RED"},
		{"high pain alone", []string{"Back Pain"}, 30, 8, "RED"},
		{"moderate pain", []string{"Back Pain"}, 30, 5, "YELLOW"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := assessSymptoms(tc.symptoms, tc.age, tc.pain)
			if got.Severity != tc.want {
				t.Fatalf("assessSymptoms(%v, %d, %d) = %s, want %s",
					tc.symptoms, tc.age, tc.pain, got.Severity, tc.want)
			}
		})
	}
}

func TestDoctorsAndSlots(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	doctors, err := client.AvailableDoctors(ctx, "")
	if err != nil {
		t.Fatalf("AvailableDoctors: %v", err)
	}
	// doc_004 is unavailable in the fixtures.
	if len(doctors) != 3 {
		t.Fatalf("got %d doctors, want 3", len(doctors))
	}

	cardio, err := client.AvailableDoctors(ctx, "cardio")
	if err != nil {
		t.Fatal(err)
	}
	if len(cardio) != 1 || cardio[0].ID != "doc_002" {
		t.Fatalf("cardiology filter = %+v", cardio)
	}

	results, err := client.SearchDoctors(ctx, "eze")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ID != "doc_003" {
		t.Fatalf("search = %+v", results)
	}

	slots, err := client.DoctorSlots(ctx, "doc_001", "2026-09-01")
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) == 0 || slots[0] != "09:00 AM" {
		t.Fatalf("slots = %v", slots)
	}
}

func TestNearbyHospitalsSortedByDistance(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	hospitals, err := client.NearbyHospitals(ctx, 4.9, 6.92, 50)
	if err != nil {
		t.Fatalf("NearbyHospitals: %v", err)
	}
	if len(hospitals) != 2 {
		t.Fatalf("got %d hospitals, want 2", len(hospitals))
	}
	if hospitals[0].DistanceKM > hospitals[1].DistanceKM {
		t.Fatalf("not sorted by distance: %v then %v", hospitals[0].DistanceKM, hospitals[1].DistanceKM)
	}

	none, err := client.NearbyHospitals(ctx, 52.52, 13.405, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Fatalf("Berlin should be out of range, got %+v", none)
	}
}

// End-to-end: the assessment workflow against the stub backend, including
// the stringified-dict detail payload the classifier has to normalize.
func TestAssessmentWorkflowEndToEnd(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	w, err := assessment.New(assessment.Config{
		Assessor: client,
		Location: assessment.Location{Latitude: 4.82, Longitude: 6.92, Address: "Port Harcourt"},
	})
	if err != nil {
		t.Fatal(err)
	}

	w.ToggleSymptom(ctx, "Severe Bleeding")
	if err := w.Advance(ctx); err != nil {
		t.Fatalf("advance: %v", err)
	}
	w.Apply(ctx, assessment.Partial{Age: intptr(40), PainRating: intptr(6)})
	if err := w.Advance(ctx); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if err := w.Advance(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}

	out := w.Outcome()
	if out == nil {
		t.Fatal("no outcome")
	}
	if out.Severity != assessment.SeverityRed {
		t.Fatalf("Severity = %s, want RED", out.Severity)
	}
	if out.DetailDefaulted {
		t.Fatal("stub detail payload should parse, not default")
	}
	if out.Recommendation != "This is a medical emergency. Call 112 immediately." {
		t.Fatalf("Recommendation = %q", out.Recommendation)
	}
	if out.EmergencyPhone != "112" {
		t.Fatalf("EmergencyPhone = %q", out.EmergencyPhone)
	}
}

// End-to-end: the booking workflow against the stub backend with a real
// login for the bearer credential.
func TestBookingWorkflowEndToEnd(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	w, err := booking.New(booking.Config{
		Directory: client,
		Booker:    client,
		Tokens:    triageapi.NewClientCredentials(client, "demo@medialert.app", "medialert123"),
		Symptoms:  []string{"Fever"},
	})
	if err != nil {
		t.Fatal(err)
	}

	doctors, err := w.LoadDoctors(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	w.SelectDoctor(ctx, doctors[0])
	if err := w.Advance(ctx); err != nil {
		t.Fatalf("advance: %v", err)
	}
	slots, err := w.SetDate(ctx, "2026-09-01")
	if err != nil {
		t.Fatal(err)
	}
	w.SelectTime(ctx, slots[0])
	if err := w.Advance(ctx); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if err := w.Advance(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}

	conf := w.Confirmation()
	if conf == nil || conf.ConsultationID == "" {
		t.Fatalf("Confirmation = %+v", conf)
	}
	if conf.Time != "09:00 AM" {
		t.Fatalf("Time = %q", conf.Time)
	}
}

func intptr(n int) *int { return &n }
