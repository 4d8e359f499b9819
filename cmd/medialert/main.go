// Command medialert drives the client workflows end to end against a
// running backend (the real one or cmd/stubserver): an emergency
// assessment first, then a consultation booking seeded with the assessed
// symptoms, then the nearby-hospital lookup.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/medialert/medialert-client/internal/assessment"
	"github.com/medialert/medialert-client/internal/booking"
	"github.com/medialert/medialert-client/internal/config"
	"github.com/medialert/medialert-client/internal/observability/metrics"
	"github.com/medialert/medialert-client/internal/session"
	"github.com/medialert/medialert-client/internal/triageapi"
	"github.com/medialert/medialert-client/internal/workflow"
	"github.com/medialert/medialert-client/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logging.Default().Warn("could not load .env", "error", err)
	}

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting medialert client demo", "api", cfg.APIBaseURL)

	client := triageapi.NewClient(triageapi.Config{
		BaseURL:    cfg.APIBaseURL,
		Timeout:    cfg.APITimeout,
		MaxRetries: cfg.APIMaxRetries,
		Backoff:    cfg.APIBackoff,
		Logger:     logger,
	})

	var store session.Store
	if cfg.RedisAddr != "" {
		store = session.NewRedisStore(redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}))
	} else {
		store = session.NewMemoryStore()
	}

	wfMetrics := metrics.NewWorkflowMetrics(nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	outcome, err := runAssessment(ctx, cfg, client, store, wfMetrics, logger)
	if err != nil {
		logger.Error("assessment workflow failed", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("=== Assessment outcome ===")
	fmt.Printf("Severity:        %s (%s)\n", outcome.Severity, outcome.Label)
	fmt.Printf("Recommendation:  %s\n", outcome.Recommendation)
	fmt.Printf("Action:          %s\n", outcome.Action)
	fmt.Printf("Response time:   %s\n", outcome.EstimatedResponse)
	if outcome.EmergencyPhone != "" {
		fmt.Printf("Emergency phone: %s\n", outcome.EmergencyPhone)
	}

	if outcome.Severity == assessment.SeverityRed {
		showNearbyHospitals(ctx, cfg, client)
	}

	if cfg.AccountEmail == "" {
		logger.Info("no account credentials configured, skipping booking demo")
		return
	}

	conf, err := runBooking(ctx, cfg, client, store, wfMetrics, logger)
	if err != nil {
		logger.Error("booking workflow failed", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("=== Booking confirmation ===")
	fmt.Printf("Consultation: %s\n", conf.ConsultationID)
	fmt.Printf("Doctor:       %s\n", conf.DoctorName)
	fmt.Printf("When:         %s at %s\n", conf.Date, conf.Time)
}

func runAssessment(
	ctx context.Context,
	cfg *config.Config,
	client *triageapi.Client,
	store session.Store,
	wfMetrics *metrics.WorkflowMetrics,
	logger *logging.Logger,
) (*assessment.Outcome, error) {
	events := &workflow.Events[*assessment.Outcome]{
		StepChanged: func(step string) { fmt.Printf("-> step: %s\n", step) },
		SubmitStarted: func() {
			fmt.Println("-> submitting assessment...")
		},
	}

	w, err := assessment.New(assessment.Config{
		Assessor: client,
		Location: assessment.Location{
			Latitude:  cfg.DefaultLatitude,
			Longitude: cfg.DefaultLongitude,
			Address:   cfg.DefaultAddress,
		},
		Events:   events,
		Store:    store,
		DraftTTL: cfg.DraftTTL,
		Logger:   logger,
		Metrics:  wfMetrics,
	})
	if err != nil {
		return nil, err
	}
	defer w.Close()

	// Scripted intake, standing in for a UI driving the same calls.
	w.ToggleSymptom(ctx, "Fever")
	w.ToggleSymptom(ctx, "Severe Headache")
	if err := w.Advance(ctx); err != nil {
		return nil, err
	}
	w.Apply(ctx, assessment.Partial{Age: intptr(52), PainRating: intptr(6)})
	if err := w.Advance(ctx); err != nil {
		return nil, err
	}
	w.Apply(ctx, assessment.Partial{MedicalHistory: strptr("hypertension")})
	if err := w.Advance(ctx); err != nil {
		return nil, err
	}
	return w.Outcome(), nil
}

func runBooking(
	ctx context.Context,
	cfg *config.Config,
	client *triageapi.Client,
	store session.Store,
	wfMetrics *metrics.WorkflowMetrics,
	logger *logging.Logger,
) (*booking.Confirmation, error) {
	events := &workflow.Events[*booking.Confirmation]{
		StepChanged: func(step string) { fmt.Printf("-> step: %s\n", step) },
	}

	w, err := booking.New(booking.Config{
		Directory: client,
		Booker:    client,
		Tokens:    triageapi.NewClientCredentials(client, cfg.AccountEmail, cfg.AccountPassword),
		Symptoms:  []string{"Fever", "Severe Headache"},
		Events:    events,
		Store:     store,
		DraftTTL:  cfg.DraftTTL,
		Logger:    logger,
		Metrics:   wfMetrics,
	})
	if err != nil {
		return nil, err
	}
	defer w.Close()

	doctors, err := w.LoadDoctors(ctx, "")
	if err != nil {
		return nil, err
	}
	if len(doctors) == 0 {
		return nil, fmt.Errorf("no doctors available")
	}
	w.SelectDoctor(ctx, doctors[0])
	if err := w.Advance(ctx); err != nil {
		return nil, err
	}

	date := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	slots, err := w.SetDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("no slots available on %s", date)
	}
	w.SelectTime(ctx, slots[0])
	if err := w.Advance(ctx); err != nil {
		return nil, err
	}
	if err := w.Advance(ctx); err != nil {
		return nil, err
	}
	return w.Confirmation(), nil
}

func showNearbyHospitals(ctx context.Context, cfg *config.Config, client *triageapi.Client) {
	hospitals, err := client.NearbyHospitals(ctx, cfg.DefaultLatitude, cfg.DefaultLongitude, 25)
	if err != nil {
		fmt.Printf("could not load nearby hospitals: %v\n", err)
		return
	}
	fmt.Println()
	fmt.Println("=== Nearby hospitals ===")
	for _, h := range hospitals {
		fmt.Printf("%-45s %5.1f km  %s\n", h.Name, h.DistanceKM, h.Phone)
	}
}

func intptr(n int) *int       { return &n }
func strptr(s string) *string { return &s }
