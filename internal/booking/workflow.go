package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/medialert/medialert-client/internal/observability/metrics"
	"github.com/medialert/medialert-client/internal/session"
	"github.com/medialert/medialert-client/internal/triageapi"
	"github.com/medialert/medialert-client/internal/workflow"
	"github.com/medialert/medialert-client/pkg/logging"
)

const workflowName = "booking"

// Phase tracks the instance lifecycle around the booking steps.
type Phase int

const (
	PhaseSelecting Phase = iota
	PhaseSubmitting
	PhaseBooked
	PhaseCancelled
)

func (p Phase) String() string {
	switch p {
	case PhaseSelecting:
		return "selecting"
	case PhaseSubmitting:
		return "submitting"
	case PhaseBooked:
		return "booked"
	case PhaseCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Directory lists providers and their open slots. *triageapi.Client
// satisfies it.
type Directory interface {
	AvailableDoctors(ctx context.Context, specialty string) ([]triageapi.Doctor, error)
	DoctorSlots(ctx context.Context, doctorID, date string) ([]string, error)
}

// Booker submits a finalized booking. *triageapi.Client satisfies it.
type Booker interface {
	BookConsultation(ctx context.Context, req triageapi.BookingRequest, tokens triageapi.TokenSource) (*triageapi.BookingResponse, error)
}

// Confirmation is the terminal outcome of a successful booking.
type Confirmation struct {
	ConsultationID string
	DoctorID       string
	DoctorName     string
	Date           string
	Time           string
	Status         string
	Message        string
	BookedAt       string
}

// Config carries the workflow's collaborators. Directory, Booker, and
// Tokens are required.
type Config struct {
	Directory Directory
	Booker    Booker
	Tokens    triageapi.TokenSource
	Symptoms  []string
	Events    *workflow.Events[*Confirmation]
	Store     session.Store
	DraftTTL  time.Duration
	Logger    *logging.Logger
	Metrics   *metrics.WorkflowMetrics
}

// Workflow drives one consultation booking: browse, schedule, confirm,
// submit. A booked consultation is terminal; the instance cannot be reused.
type Workflow struct {
	id      string
	draft   *Draft
	seq     *workflow.Sequencer[Step]
	invoker *workflow.Invoker[triageapi.BookingRequest, *triageapi.BookingResponse]
	events  *workflow.Events[*Confirmation]
	dir     Directory
	store   session.Store
	ttl     time.Duration
	logger  *logging.Logger
	metrics *metrics.WorkflowMetrics

	active atomic.Bool

	mu           sync.Mutex
	phase        Phase
	doctors      []triageapi.Doctor
	slots        []string
	confirmation *Confirmation
}

// New starts a fresh booking at the browse step.
func New(cfg Config) (*Workflow, error) {
	if cfg.Directory == nil || cfg.Booker == nil {
		return nil, fmt.Errorf("booking: Directory and Booker are required")
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("booking: Tokens is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	ttl := cfg.DraftTTL
	if ttl <= 0 {
		ttl = session.DefaultTTL
	}

	w := &Workflow{
		id:      uuid.NewString(),
		draft:   NewDraft(cfg.Symptoms),
		events:  cfg.Events,
		dir:     cfg.Directory,
		store:   cfg.Store,
		ttl:     ttl,
		logger:  logger.With("workflow", workflowName),
		metrics: cfg.Metrics,
	}
	w.seq = workflow.NewSequencer(stepOrder, gateFor(w.draft))
	booker, tokens := cfg.Booker, cfg.Tokens
	w.invoker = workflow.NewInvoker(workflowName,
		func(ctx context.Context, req triageapi.BookingRequest) (*triageapi.BookingResponse, error) {
			return booker.BookConsultation(ctx, req, tokens)
		})
	w.active.Store(true)
	return w, nil
}

// Resume rebuilds a booking from a previously persisted draft. The sequencer
// is re-driven through its gates rather than teleported, so a draft that no
// longer satisfies an earlier gate resumes at the first unsatisfied step.
// Open slots for a restored doctor and date are refetched best-effort.
func Resume(ctx context.Context, cfg Config, id string) (*Workflow, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("booking: resume requires a session store")
	}
	var rec sessionRecord
	if err := cfg.Store.Load(ctx, sessionKey(id), &rec); err != nil {
		return nil, fmt.Errorf("resume %s: %w", id, err)
	}

	w, err := New(cfg)
	if err != nil {
		return nil, err
	}
	w.id = id
	if rec.Draft != nil {
		*w.draft = *rec.Draft
	}
	for i := 0; i < rec.Step && !w.seq.IsLast(); i++ {
		if err := w.seq.Advance(); err != nil {
			break
		}
	}
	if w.draft.Doctor != nil && w.draft.Date != "" {
		slots, err := w.dir.DoctorSlots(ctx, w.draft.Doctor.ID, w.draft.Date)
		if err != nil {
			w.logger.Warn("could not refresh slots on resume", "id", id, "error", err)
		} else {
			w.slots = slots
		}
	}
	return w, nil
}

// ID identifies this workflow instance.
func (w *Workflow) ID() string { return w.id }

// Draft exposes the accumulating selections for rendering.
func (w *Workflow) Draft() *Draft { return w.draft }

// Step returns the current booking step.
func (w *Workflow) Step() Step { return w.seq.Current() }

// Position returns the 1-based step number and total for progress display.
func (w *Workflow) Position() (current, total int) { return w.seq.Position() }

// Phase returns the lifecycle phase.
func (w *Workflow) Phase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phase
}

// InFlight reports whether a submission is pending.
func (w *Workflow) InFlight() bool { return w.invoker.InFlight() }

// Confirmation returns the booking confirmation once the workflow booked.
func (w *Workflow) Confirmation() *Confirmation {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.confirmation
}

// Doctors returns the last loaded provider list.
func (w *Workflow) Doctors() []triageapi.Doctor {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.doctors
}

// Slots returns the open slots fetched for the current doctor and date.
func (w *Workflow) Slots() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.slots
}

// LoadDoctors fetches the provider list for the browse step.
func (w *Workflow) LoadDoctors(ctx context.Context, specialty string) ([]triageapi.Doctor, error) {
	docs, err := w.dir.AvailableDoctors(ctx, specialty)
	if err != nil {
		return nil, fmt.Errorf("load doctors: %w", err)
	}
	w.mu.Lock()
	w.doctors = docs
	w.mu.Unlock()
	return docs, nil
}

// SelectDoctor records the chosen provider and clears any schedule made for
// a different one.
func (w *Workflow) SelectDoctor(ctx context.Context, doc triageapi.Doctor) {
	w.draft.SelectDoctor(doc)
	w.mu.Lock()
	w.slots = nil
	w.mu.Unlock()
	w.persist(ctx)
}

// SetDate records the visit date and fetches the open slots for it. The
// previously chosen time slot is cleared on a date change, so a stale slot
// can never ride along to a new date.
func (w *Workflow) SetDate(ctx context.Context, date string) ([]string, error) {
	if w.draft.Doctor == nil {
		return nil, &workflow.ValidationError{Step: StepSchedule.String(), Reason: "select a doctor first"}
	}
	w.draft.SetDate(date)
	if date == "" {
		w.mu.Lock()
		w.slots = nil
		w.mu.Unlock()
		w.persist(ctx)
		return nil, nil
	}

	slots, err := w.dir.DoctorSlots(ctx, w.draft.Doctor.ID, date)
	if err != nil {
		return nil, fmt.Errorf("load slots: %w", err)
	}
	w.mu.Lock()
	w.slots = slots
	w.mu.Unlock()
	w.persist(ctx)
	return slots, nil
}

// SelectTime records the chosen slot.
func (w *Workflow) SelectTime(ctx context.Context, slot string) {
	w.draft.SetTime(slot)
	w.persist(ctx)
}

// SetNotes records free-text notes for the provider.
func (w *Workflow) SetNotes(ctx context.Context, notes string) {
	w.draft.SetNotes(notes)
	w.persist(ctx)
}

// Advance moves forward one step. At the confirm step it submits instead.
func (w *Workflow) Advance(ctx context.Context) error {
	if err := w.ensureSelecting(); err != nil {
		return err
	}

	err := w.seq.Advance()
	switch {
	case err == nil:
		w.metrics.ObserveStep(workflowName, "forward")
		w.events.EmitStepChanged(w.seq.Current().String())
		w.persist(ctx)
		return nil
	case errors.Is(err, workflow.ErrAtFinalStep):
		return w.Submit(ctx)
	default:
		var verr *workflow.ValidationError
		if errors.As(err, &verr) {
			w.events.EmitValidationFailed(verr.Reason)
		}
		return err
	}
}

// Back moves to the previous step without clearing selections. At the
// browse step it cancels the workflow instead.
func (w *Workflow) Back(ctx context.Context) error {
	if err := w.ensureSelecting(); err != nil {
		return err
	}
	if !w.seq.Retreat() {
		return w.Cancel(ctx)
	}
	w.metrics.ObserveStep(workflowName, "backward")
	w.events.EmitStepChanged(w.seq.Current().String())
	return nil
}

// Submit finalizes the selections and books the consultation. A success
// reply that omits the consultation id is a *DataIntegrityError: the server
// said yes but the client cannot reference the booking, so it is surfaced
// as a failure.
func (w *Workflow) Submit(ctx context.Context) error {
	if err := w.ensureSelecting(); err != nil {
		return err
	}
	// Reject a duplicate before any side effects: no phase change, no
	// SubmitStarted, no latency sample for a request that never goes out.
	if w.invoker.InFlight() {
		return workflow.ErrSubmitInFlight
	}

	req, err := w.draft.Finalize()
	if err != nil {
		return err
	}

	w.setPhase(PhaseSubmitting)
	w.events.EmitSubmitStarted()
	w.logger.Info("booking consultation",
		"id", w.id,
		"doctor_id", req.DoctorID,
		"date", req.BookingDate,
		"time", req.BookingTime,
	)

	start := time.Now()
	resp, err := w.invoker.Invoke(ctx, req)
	w.metrics.ObserveSubmitLatency(workflowName, time.Since(start).Seconds())

	if !w.active.Load() {
		w.logger.Warn("discarding booking reply for closed instance", "id", w.id)
		return workflow.ErrClosed
	}
	if err == nil {
		if resp.ResolveConsultationID() == "" {
			err = &workflow.DataIntegrityError{
				Field:   "consultation_id",
				Message: "booking accepted but not referenceable",
			}
		}
	}
	if err != nil {
		if errors.Is(err, workflow.ErrSubmitInFlight) {
			return err
		}
		w.setPhase(PhaseSelecting)
		w.metrics.ObserveSubmission(workflowName, "failure")
		w.events.EmitSubmitFailed(err)
		w.logger.Error("booking failed", "id", w.id, "error", err)
		return err
	}

	conf := &Confirmation{
		ConsultationID: resp.ResolveConsultationID(),
		DoctorID:       req.DoctorID,
		DoctorName:     w.draft.Doctor.Name,
		Date:           req.BookingDate,
		Time:           req.BookingTime,
		Status:         resp.Status,
		Message:        resp.Message,
	}
	if resp.Consultation != nil {
		if resp.Consultation.DoctorName != "" {
			conf.DoctorName = resp.Consultation.DoctorName
		}
		conf.BookedAt = resp.Consultation.BookedAt
	}

	w.mu.Lock()
	w.phase = PhaseBooked
	w.confirmation = conf
	w.mu.Unlock()

	w.metrics.ObserveSubmission(workflowName, "success")
	w.clearSession()
	w.events.EmitSubmitSucceeded(conf)
	w.logger.Info("consultation booked",
		"id", w.id,
		"consultation_id", conf.ConsultationID,
		"doctor_id", conf.DoctorID,
	)
	return nil
}

// Cancel abandons the booking and marks the instance dead so any in-flight
// reply is dropped.
func (w *Workflow) Cancel(ctx context.Context) error {
	w.mu.Lock()
	if w.phase == PhaseBooked || w.phase == PhaseCancelled {
		w.mu.Unlock()
		return workflow.ErrClosed
	}
	w.phase = PhaseCancelled
	w.mu.Unlock()

	w.active.Store(false)
	w.clearSession()
	w.events.EmitCancelled()
	w.logger.Info("booking cancelled", "id", w.id)
	return nil
}

// Close tears the instance down without emitting events.
func (w *Workflow) Close() {
	w.active.Store(false)
}

func (w *Workflow) ensureSelecting() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.phase == PhaseBooked || w.phase == PhaseCancelled {
		return workflow.ErrClosed
	}
	return nil
}

func (w *Workflow) setPhase(p Phase) {
	w.mu.Lock()
	w.phase = p
	w.mu.Unlock()
}

type sessionRecord struct {
	Draft *Draft `json:"draft"`
	Step  int    `json:"step"`
}

func sessionKey(id string) string { return workflowName + ":" + id }

func (w *Workflow) persist(ctx context.Context) {
	if w.store == nil {
		return
	}
	cur, _ := w.seq.Position()
	rec := sessionRecord{Draft: w.draft, Step: cur - 1}
	if err := w.store.Save(ctx, sessionKey(w.id), rec, w.ttl); err != nil {
		w.logger.Warn("draft persistence failed", "id", w.id, "error", err)
	}
}

func (w *Workflow) clearSession() {
	if w.store == nil {
		return
	}
	if err := w.store.Delete(context.Background(), sessionKey(w.id)); err != nil {
		w.logger.Warn("draft cleanup failed", "id", w.id, "error", err)
	}
}
