package triageapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(Config{
		BaseURL:    srv.URL,
		MaxRetries: 2,
		Backoff:    time.Millisecond,
	})
	return c, srv
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, `{"detail":"try later"}`, http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  "success",
			"count":   1,
			"doctors": []Doctor{{ID: "doc_001", Name: "Dr. Weber", Available: true}},
		})
	}))

	doctors, err := c.AvailableDoctors(context.Background(), "")
	if err != nil {
		t.Fatalf("AvailableDoctors: %v", err)
	}
	if len(doctors) != 1 || doctors[0].ID != "doc_001" {
		t.Fatalf("doctors = %+v", doctors)
	}
	if calls.Load() != 3 {
		t.Fatalf("server saw %d calls, want 3", calls.Load())
	}
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"detail":"Assessment not found"}`, http.StatusNotFound)
	}))

	_, err := c.Assessment(context.Background(), 99)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Detail != "Assessment not found" {
		t.Fatalf("APIError = %+v", apiErr)
	}
	if calls.Load() != 1 {
		t.Fatalf("server saw %d calls, want 1", calls.Load())
	}
}

func TestAssessIsNeverRetried(t *testing.T) {
	var calls atomic.Int32
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"detail":"boom"}`, http.StatusInternalServerError)
	}))

	_, err := c.Assess(context.Background(), AssessmentRequest{Symptoms: []string{"Fever"}, Age: 30, PainRating: 5})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want APIError", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("submission retried: %d calls", calls.Load())
	}
}

func TestBookConsultationSendsBearer(t *testing.T) {
	var gotAuth string
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(BookingResponse{Status: "success", ConsultationID: "cons_1"})
	}))

	resp, err := c.BookConsultation(context.Background(), BookingRequest{DoctorID: "doc_001"}, StaticTokenSource("tok-123"))
	if err != nil {
		t.Fatalf("BookConsultation: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if resp.ResolveConsultationID() != "cons_1" {
		t.Fatalf("ConsultationID = %q", resp.ResolveConsultationID())
	}

	if _, err := c.BookConsultation(context.Background(), BookingRequest{}, nil); err == nil {
		t.Fatal("BookConsultation accepted nil token source")
	}
}

func TestClientCredentialsLoginOnce(t *testing.T) {
	var logins atomic.Int32
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logins.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-abc", "token_type": "bearer"})
	}))

	creds := NewClientCredentials(c, "demo@medialert.app", "pw")
	for i := 0; i < 3; i++ {
		token, err := creds.Token(context.Background())
		if err != nil {
			t.Fatalf("Token: %v", err)
		}
		if token != "tok-abc" {
			t.Fatalf("token = %q", token)
		}
	}
	if logins.Load() != 1 {
		t.Fatalf("login called %d times, want 1", logins.Load())
	}

	creds.Invalidate()
	if _, err := creds.Token(context.Background()); err != nil {
		t.Fatal(err)
	}
	if logins.Load() != 2 {
		t.Fatalf("login after invalidate: %d calls, want 2", logins.Load())
	}
}

func TestErrorDetailFallsBackToBody(t *testing.T) {
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "plain text failure", http.StatusBadRequest)
	}))

	_, err := c.Assessment(context.Background(), 1)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v", err)
	}
	if apiErr.Detail != "plain text failure" {
		t.Fatalf("Detail = %q", apiErr.Detail)
	}
}
