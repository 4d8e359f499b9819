package triageapi

import "encoding/json"

// AssessmentRequest is the finalized symptom-intake payload sent to
// POST /api/emergency/assess. It is built once by the assessment workflow
// and never mutated afterwards.
type AssessmentRequest struct {
	Symptoms           []string `json:"symptoms"`
	Age                int      `json:"age"`
	PainRating         int      `json:"pain_rating"`
	MedicalHistory     string   `json:"medical_history"`
	CurrentMedications string   `json:"current_medications"`
	Allergies          string   `json:"allergies"`
	Latitude           float64  `json:"latitude"`
	Longitude          float64  `json:"longitude"`
	LocationAddress    string   `json:"location_address"`
}

// AssessmentResponse is the raw server reply to an assessment submission.
// AssessmentResult may arrive as a JSON object or as a serialized string;
// interpretation is the classifier's job, so it stays raw here.
type AssessmentResponse struct {
	ID               int64           `json:"id"`
	SeverityLevel    string          `json:"severity_level"`
	AssessmentResult json.RawMessage `json:"assessment_result"`
	Age              int             `json:"age"`
	PainRating       int             `json:"pain_rating"`
	Symptoms         string          `json:"symptoms"`
	CreatedAt        string          `json:"created_at"`
}

// Doctor describes a bookable provider.
type Doctor struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Specialty       string  `json:"specialty"`
	Rating          float64 `json:"rating"`
	Available       bool    `json:"available"`
	Phone           string  `json:"phone,omitempty"`
	ExperienceYears int     `json:"experience_years"`
}

// BookingRequest is the finalized consultation-booking payload for
// POST /api/doctors/book. Requires a bearer credential.
type BookingRequest struct {
	DoctorID    string   `json:"doctor_id"`
	BookingDate string   `json:"booking_date"`
	BookingTime string   `json:"booking_time"`
	Symptoms    []string `json:"symptoms"`
	Notes       string   `json:"notes"`
}

// Consultation is the booked-consultation record embedded in a booking reply.
type Consultation struct {
	ConsultationID string `json:"consultation_id"`
	DoctorID       string `json:"doctor_id"`
	DoctorName     string `json:"doctor_name"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Status         string `json:"status"`
	BookedAt       string `json:"booked_at"`
}

// BookingResponse is the raw server reply to a booking submission. The
// consultation id may appear at the top level or nested in Consultation;
// ConsultationID returns whichever is present.
type BookingResponse struct {
	Status         string        `json:"status"`
	Message        string        `json:"message"`
	ConsultationID string        `json:"consultation_id"`
	Consultation   *Consultation `json:"consultation"`
}

// ResolveConsultationID returns the consultation identifier from either
// location, or "" when the server omitted it.
func (r *BookingResponse) ResolveConsultationID() string {
	if r == nil {
		return ""
	}
	if r.ConsultationID != "" {
		return r.ConsultationID
	}
	if r.Consultation != nil {
		return r.Consultation.ConsultationID
	}
	return ""
}

// Hospital is a nearby-hospital entry from GET /api/hospitals/nearby.
type Hospital struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Address    string   `json:"address"`
	Phone      string   `json:"phone"`
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	Services   []string `json:"services"`
	DistanceKM float64  `json:"distance_km"`
}

type doctorsResponse struct {
	Status  string   `json:"status"`
	Count   int      `json:"count"`
	Doctors []Doctor `json:"doctors"`
}

type searchResponse struct {
	Query   string   `json:"query"`
	Results []Doctor `json:"results"`
	Count   int      `json:"count"`
}

type slotsResponse struct {
	DoctorID       string   `json:"doctor_id"`
	Date           string   `json:"date"`
	AvailableSlots []string `json:"available_slots"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
