// Package demo provides an in-memory stand-in for the MediAlert backend.
// It serves the same routes with the same wire shapes, including the
// backend's habit of storing assessment details as a stringified dict, so
// the workflows can be driven end to end without the real service.
package demo

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"

	"github.com/medialert/medialert-client/internal/triageapi"
	"github.com/medialert/medialert-client/pkg/logging"
)

const tokenTTL = 30 * time.Minute

// ServerConfig configures the stub backend.
type ServerConfig struct {
	JWTSecret string
	Users     map[string]string
	Logger    *logging.Logger
}

// Server holds the stub backend's in-memory state.
type Server struct {
	logger *logging.Logger
	secret []byte
	users  map[string]string

	mu            sync.Mutex
	nextID        int64
	assessments   map[int64]assessmentRecord
	consultations []triageapi.Consultation

	doctors   []triageapi.Doctor
	hospitals []triageapi.Hospital
}

type assessmentRecord struct {
	ID               int64  `json:"id"`
	SeverityLevel    string `json:"severity_level"`
	AssessmentResult string `json:"assessment_result"`
	Age              int    `json:"age"`
	PainRating       int    `json:"pain_rating"`
	Symptoms         string `json:"symptoms"`
	CreatedAt        string `json:"created_at"`
}

// NewServer creates a stub backend with fixture doctors and hospitals.
func NewServer(cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	secret := cfg.JWTSecret
	if secret == "" {
		secret = "medialert-dev-secret"
	}
	users := cfg.Users
	if len(users) == 0 {
		users = map[string]string{"demo@medialert.app": "medialert123"}
	}

	return &Server{
		logger:      logger.With("component", "stub_backend"),
		secret:      []byte(secret),
		users:       users,
		assessments: make(map[int64]assessmentRecord),
		doctors: []triageapi.Doctor{
			{ID: "doc_001", Name: "Dr. Chioma Okafor", Specialty: "General Practitioner", Rating: 4.8, Available: true, ExperienceYears: 8},
			{ID: "doc_002", Name: "Dr. Seun Adeyemi", Specialty: "Cardiologist", Rating: 4.9, Available: true, ExperienceYears: 12},
			{ID: "doc_003", Name: "Dr. Ngozi Eze", Specialty: "Pediatrician", Rating: 4.7, Available: true, ExperienceYears: 10},
			{ID: "doc_004", Name: "Dr. Kunle Okonkwo", Specialty: "Orthopedic Surgeon", Rating: 4.6, Available: false, ExperienceYears: 15},
		},
		hospitals: []triageapi.Hospital{
			{
				ID: 1, Name: "Rivers State University Teaching Hospital",
				Address: "Port Harcourt, Rivers State", Phone: "+234-803-0001",
				Latitude: 4.8156, Longitude: 6.9271,
				Services: []string{"Emergency", "Surgery", "ICU", "Maternity"},
			},
			{
				ID: 2, Name: "University of Port Harcourt Teaching Hospital",
				Address: "Choba, Port Harcourt", Phone: "+234-803-0002",
				Latitude: 4.9081, Longitude: 6.9131,
				Services: []string{"Emergency", "General", "Cardiology"},
			},
		},
	}
}

// Routes returns the stub backend's router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/api/auth/login", s.handleLogin)
	r.Post("/api/emergency/assess", s.handleAssess)
	r.Get("/api/emergency/assessment/{assessmentID}", s.handleGetAssessment)
	r.Get("/api/doctors/available", s.handleAvailableDoctors)
	r.Get("/api/doctors/search", s.handleSearchDoctors)
	r.Get("/api/doctors/slots/{doctorID}", s.handleDoctorSlots)
	r.Post("/api/doctors/book", s.handleBook)
	r.Get("/api/hospitals/nearby", s.handleNearbyHospitals)
	r.Get("/api/health", s.handleHealth)
	return r
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		detail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	password, ok := s.users[req.Email]
	if !ok || password != req.Password {
		detail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	claims := jwt.MapClaims{
		"sub": req.Email,
		"exp": time.Now().Add(tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		s.logger.Error("token signing failed", "error", err)
		detail(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	var req triageapi.AssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		detail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Symptoms) == 0 {
		detail(w, http.StatusUnprocessableEntity, "symptoms must not be empty")
		return
	}

	result := assessSymptoms(req.Symptoms, req.Age, req.PainRating)

	s.mu.Lock()
	s.nextID++
	rec := assessmentRecord{
		ID:            s.nextID,
		SeverityLevel: result.Severity,
		// Stored the way the production backend stores it: a stringified
		// dict, not a JSON object.
		AssessmentResult: pyDict(result),
		Age:              req.Age,
		PainRating:       req.PainRating,
		Symptoms:         pyList(req.Symptoms),
		CreatedAt:        time.Now().UTC().Format(time.RFC3339),
	}
	s.assessments[rec.ID] = rec
	s.mu.Unlock()

	s.logger.Info("assessment scored", "id", rec.ID, "severity", rec.SeverityLevel)
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "assessmentID"), 10, 64)
	if err != nil {
		detail(w, http.StatusUnprocessableEntity, "invalid assessment id")
		return
	}
	s.mu.Lock()
	rec, ok := s.assessments[id]
	s.mu.Unlock()
	if !ok {
		detail(w, http.StatusNotFound, "Assessment not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleAvailableDoctors(w http.ResponseWriter, r *http.Request) {
	specialty := strings.ToLower(r.URL.Query().Get("specialty"))
	doctors := make([]triageapi.Doctor, 0, len(s.doctors))
	for _, d := range s.doctors {
		if !d.Available {
			continue
		}
		if specialty != "" && !strings.Contains(strings.ToLower(d.Specialty), specialty) {
			continue
		}
		doctors = append(doctors, d)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"count":   len(doctors),
		"doctors": doctors,
	})
}

func (s *Server) handleSearchDoctors(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(r.URL.Query().Get("query"))
	results := make([]triageapi.Doctor, 0)
	for _, d := range s.doctors {
		if strings.Contains(strings.ToLower(d.Name), query) ||
			strings.Contains(strings.ToLower(d.Specialty), query) {
			results = append(results, d)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"results": results,
		"count":   len(results),
	})
}

var fixtureSlots = []string{
	"09:00 AM", "09:30 AM", "10:00 AM", "10:30 AM",
	"02:00 PM", "02:30 PM", "03:00 PM", "03:30 PM", "04:00 PM",
}

func (s *Server) handleDoctorSlots(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		detail(w, http.StatusUnprocessableEntity, "date is required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"doctor_id":       chi.URLParam(r, "doctorID"),
		"date":            date,
		"available_slots": fixtureSlots,
	})
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	email, err := s.authenticate(r)
	if err != nil {
		detail(w, http.StatusUnauthorized, err.Error())
		return
	}

	var req triageapi.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		detail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var doctor *triageapi.Doctor
	for i := range s.doctors {
		if s.doctors[i].ID == req.DoctorID {
			doctor = &s.doctors[i]
			break
		}
	}
	if doctor == nil {
		// The production backend replies 200 with a bare error status here;
		// keep that shape so clients see a success without a consultation id.
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "error",
			"message": "Doctor not found",
		})
		return
	}

	s.mu.Lock()
	consultation := triageapi.Consultation{
		ConsultationID: fmt.Sprintf("cons_%d", len(s.consultations)+1),
		DoctorID:       doctor.ID,
		DoctorName:     doctor.Name,
		Date:           req.BookingDate,
		Time:           req.BookingTime,
		Status:         "booked",
		BookedAt:       time.Now().UTC().Format(time.RFC3339),
	}
	s.consultations = append(s.consultations, consultation)
	s.mu.Unlock()

	s.logger.Info("consultation booked",
		"consultation_id", consultation.ConsultationID,
		"doctor_id", doctor.ID,
		"user", email,
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "success",
		"message":      "Consultation booked with " + doctor.Name,
		"consultation": consultation,
	})
}

func (s *Server) handleNearbyHospitals(w http.ResponseWriter, r *http.Request) {
	latitude, err1 := strconv.ParseFloat(r.URL.Query().Get("latitude"), 64)
	longitude, err2 := strconv.ParseFloat(r.URL.Query().Get("longitude"), 64)
	if err1 != nil || err2 != nil {
		detail(w, http.StatusUnprocessableEntity, "latitude and longitude are required")
		return
	}
	radiusKM := 10
	if v, err := strconv.Atoi(r.URL.Query().Get("radius_km")); err == nil {
		radiusKM = v
	}

	nearby := make([]triageapi.Hospital, 0)
	for _, h := range s.hospitals {
		distance := haversineKM(latitude, longitude, h.Latitude, h.Longitude)
		if distance <= float64(radiusKM) {
			h.DistanceKM = roundKM(distance)
			nearby = append(nearby, h)
		}
	}
	sort.Slice(nearby, func(i, j int) bool { return nearby[i].DistanceKM < nearby[j].DistanceKM })
	writeJSON(w, http.StatusOK, nearby)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"app":       "MediAlert stub backend",
	})
}

func (s *Server) authenticate(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return "", fmt.Errorf("Not authenticated")
	}
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("Invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("Invalid token")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", fmt.Errorf("Invalid token")
	}
	return sub, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func detail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"detail": message})
}

// pyDict renders the result the way the production backend persists it:
// Python's str() of a dict, single quotes and all.
func pyDict(r triageResult) string {
	return fmt.Sprintf(
		"{'severity': '%s', 'action': '%s', 'recommendation': '%s', 'estimated_response': '%s', 'phone': '%s'}",
		r.Severity, r.Action, r.Recommendation, r.EstimatedResponse, r.Phone,
	)
}

// pyList renders a symptom list as Python's str() of a list.
func pyList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "'" + s + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func roundKM(km float64) float64 {
	return float64(int(km*100+0.5)) / 100
}
