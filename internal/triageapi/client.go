// Package triageapi provides the HTTP client for the MediAlert backend API.
// The backend's triage algorithm is opaque to this client; it submits
// finalized requests and hands raw responses to the workflow classifiers.
package triageapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/medialert/medialert-client/pkg/logging"
)

const (
	defaultBaseURL   = "http://localhost:8000"
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "medialert-client/0.1"
)

// Config controls how the API client behaves.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
	UserAgent  string
}

// Client talks to the MediAlert backend. Idempotent GETs are retried with a
// bounded linear backoff; submissions (POSTs) are never retried by the
// client, so a retry is always an explicit user action.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
	maxRetries int
	backoff    time.Duration
	userAgent  string
}

// NewClient creates a MediAlert API client.
func NewClient(cfg Config) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.Backoff,
		userAgent:  cfg.UserAgent,
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	if c.httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		c.httpClient = &http.Client{Timeout: timeout}
	}
	if c.logger == nil {
		c.logger = logging.Default()
	}
	if c.backoff <= 0 {
		c.backoff = 500 * time.Millisecond
	}
	if c.userAgent == "" {
		c.userAgent = defaultUserAgent
	}
	return c
}

// APIError is a non-2xx reply from the backend.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("medialert api: status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("medialert api: status %d", e.StatusCode)
}

// Login exchanges credentials for a bearer token via POST /api/auth/login.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}
	var out tokenResponse
	if err := c.post(ctx, "/api/auth/login", body, "", &out); err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("login reply missing access token")
	}
	return out.AccessToken, nil
}

// Assess submits a finalized assessment to POST /api/emergency/assess and
// returns the raw response for classification. Never retried.
func (c *Client) Assess(ctx context.Context, req AssessmentRequest) (*AssessmentResponse, error) {
	var out AssessmentResponse
	if err := c.post(ctx, "/api/emergency/assess", req, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Assessment fetches a stored assessment by id.
func (c *Client) Assessment(ctx context.Context, id int64) (*AssessmentResponse, error) {
	var out AssessmentResponse
	path := "/api/emergency/assessment/" + strconv.FormatInt(id, 10)
	if err := c.get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AvailableDoctors lists bookable providers, optionally filtered by
// specialty.
func (c *Client) AvailableDoctors(ctx context.Context, specialty string) ([]Doctor, error) {
	q := url.Values{}
	if specialty != "" {
		q.Set("specialty", specialty)
	}
	var out doctorsResponse
	if err := c.get(ctx, "/api/doctors/available", q, &out); err != nil {
		return nil, err
	}
	return out.Doctors, nil
}

// SearchDoctors searches providers by name or specialty.
func (c *Client) SearchDoctors(ctx context.Context, query string) ([]Doctor, error) {
	q := url.Values{}
	q.Set("query", query)
	var out searchResponse
	if err := c.get(ctx, "/api/doctors/search", q, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// DoctorSlots lists available time slots for a provider on a date
// (YYYY-MM-DD).
func (c *Client) DoctorSlots(ctx context.Context, doctorID, date string) ([]string, error) {
	q := url.Values{}
	q.Set("date", date)
	var out slotsResponse
	if err := c.get(ctx, "/api/doctors/slots/"+url.PathEscape(doctorID), q, &out); err != nil {
		return nil, err
	}
	return out.AvailableSlots, nil
}

// BookConsultation submits a finalized booking to POST /api/doctors/book.
// The bearer credential comes from tokens; its absence or rejection surfaces
// as an error, never a silent retry.
func (c *Client) BookConsultation(ctx context.Context, req BookingRequest, tokens TokenSource) (*BookingResponse, error) {
	if tokens == nil {
		return nil, fmt.Errorf("booking requires a bearer credential")
	}
	token, err := tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire bearer credential: %w", err)
	}
	var out BookingResponse
	if err := c.post(ctx, "/api/doctors/book", req, token, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// NearbyHospitals lists hospitals within radiusKM of the coordinates,
// nearest first.
func (c *Client) NearbyHospitals(ctx context.Context, latitude, longitude float64, radiusKM int) ([]Hospital, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))
	q.Set("radius_km", strconv.Itoa(radiusKM))
	var out []Hospital
	if err := c.get(ctx, "/api/hospitals/nearby", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoff * time.Duration(attempt)):
			}
			c.logger.Debug("retrying request", "path", path, "attempt", attempt)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", c.userAgent)

		err = c.do(req, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable(err) {
			return err
		}
	}
	return lastErr
}

func (c *Client) post(ctx context.Context, path string, body any, bearer string, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Detail: errorDetail(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorDetail extracts FastAPI-style {"detail": "..."} messages, falling
// back to the raw body.
func errorDetail(data []byte) string {
	var body struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Detail != "" {
			return body.Detail
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return strings.TrimSpace(string(data))
}

func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// Network-level failures on idempotent GETs are retried.
	return true
}
