package assessment

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

const workflowName = "assessment"

// Phase tracks the instance lifecycle around the intake steps.
type Phase int

const (
	PhaseIntake Phase = iota
	PhaseSubmitting
	PhaseCompleted
	PhaseCancelled
)

func (p Phase) String() string {
	switch p {
	case PhaseIntake:
		return "intake"
	case PhaseSubmitting:
		return "submitting"
	case PhaseCompleted:
		return "completed"
	case PhaseCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Assessor is the remote collaborator that scores a finalized assessment.
// *triageapi.Client satisfies it.
type Assessor interface {
	Assess(ctx context.Context, req triageapi.AssessmentRequest) (*triageapi.AssessmentResponse, error)
}

// Config carries the workflow's collaborators. Assessor is required; the
// rest default sensibly.
type Config struct {
	Assessor Assessor
	Location Location
	Events   *workflow.Events[*Outcome]
	Store    session.Store
	DraftTTL time.Duration
	Logger   *logging.Logger
	Metrics  *metrics.WorkflowMetrics
}

// Workflow drives one emergency assessment: three intake steps accumulating
// a draft, a single-flight submit, and classification of the reply. Methods
// are safe for a single driving goroutine plus concurrent readers of
// InFlight; the UI loop is expected to own mutation.
type Workflow struct {
	id         string
	draft      *Draft
	seq        *workflow.Sequencer[Step]
	invoker    *workflow.Invoker[triageapi.AssessmentRequest, *triageapi.AssessmentResponse]
	classifier *Classifier
	events     *workflow.Events[*Outcome]
	store      session.Store
	ttl        time.Duration
	logger     *logging.Logger
	metrics    *metrics.WorkflowMetrics

	// active gates result application: a reply that lands after Cancel or
	// Close is discarded, never applied to a dead instance.
	active atomic.Bool

	mu      sync.Mutex
	phase   Phase
	outcome *Outcome
}

// New starts a fresh assessment at the symptoms step.
func New(cfg Config) (*Workflow, error) {
	if cfg.Assessor == nil {
		return nil, fmt.Errorf("assessment: Assessor is required")
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
		id:         uuid.NewString(),
		draft:      NewDraft(cfg.Location),
		events:     cfg.Events,
		store:      cfg.Store,
		ttl:        ttl,
		logger:     logger.With("workflow", workflowName),
		metrics:    cfg.Metrics,
		classifier: NewClassifier(logger, cfg.Metrics),
	}
	w.seq = workflow.NewSequencer(stepOrder, gateFor(w.draft))
	w.invoker = workflow.NewInvoker(workflowName, cfg.Assessor.Assess)
	w.active.Store(true)
	return w, nil
}

// sessionRecord is the persisted shape of an in-progress intake.
type sessionRecord struct {
	Draft *Draft `json:"draft"`
	Step  int    `json:"step"`
}

// Resume rebuilds a workflow from a previously persisted draft. The
// sequencer is re-driven through its gates rather than teleported, so a
// draft that no longer satisfies an earlier gate resumes at the first
// unsatisfied step.
func Resume(ctx context.Context, cfg Config, id string) (*Workflow, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("assessment: resume requires a session store")
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
	return w, nil
}

func sessionKey(id string) string { return workflowName + ":" + id }

// ID identifies this workflow instance.
func (w *Workflow) ID() string { return w.id }

// Draft exposes the accumulating draft for rendering.
func (w *Workflow) Draft() *Draft { return w.draft }

// Step returns the current intake step.
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

// Outcome returns the classified result once the workflow completed.
func (w *Workflow) Outcome() *Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.outcome
}

// Apply merges newly entered fields into the draft and persists it.
func (w *Workflow) Apply(ctx context.Context, p Partial) {
	w.draft.Merge(p)
	w.persist(ctx)
}

// ToggleSymptom flips one symptom selection and persists the draft.
func (w *Workflow) ToggleSymptom(ctx context.Context, label string) {
	w.draft.ToggleSymptom(label)
	w.persist(ctx)
}

// Advance moves forward one step. At the final step it submits instead. A
// gate rejection keeps the position and is surfaced through the
// ValidationFailed event as well as the returned *ValidationError.
func (w *Workflow) Advance(ctx context.Context) error {
	if err := w.ensureIntake(); err != nil {
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

// Back moves to the previous step without clearing any entered data. At the
// first step it cancels the workflow instead.
func (w *Workflow) Back(ctx context.Context) error {
	if err := w.ensureIntake(); err != nil {
		return err
	}
	if !w.seq.Retreat() {
		return w.Cancel(ctx)
	}
	w.metrics.ObserveStep(workflowName, "backward")
	w.events.EmitStepChanged(w.seq.Current().String())
	return nil
}

// Submit finalizes the draft and performs the remote assessment. Exactly
// one submission may be in flight; a concurrent call gets
// ErrSubmitInFlight. On failure the draft and step are untouched so the
// user may retry.
func (w *Workflow) Submit(ctx context.Context) error {
	if err := w.ensureIntake(); err != nil {
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
	w.logger.Info("submitting assessment", "id", w.id, "symptoms", len(req.Symptoms))

	start := time.Now()
	resp, err := w.invoker.Invoke(ctx, req)
	w.metrics.ObserveSubmitLatency(workflowName, time.Since(start).Seconds())

	if !w.active.Load() {
		// The instance was torn down while the call was pending. The reply
		// belongs to nobody; drop it.
		w.logger.Warn("discarding assessment reply for closed instance", "id", w.id)
		return workflow.ErrClosed
	}
	if err != nil {
		if errors.Is(err, workflow.ErrSubmitInFlight) {
			return err
		}
		w.setPhase(PhaseIntake)
		w.metrics.ObserveSubmission(workflowName, "failure")
		w.events.EmitSubmitFailed(err)
		w.logger.Error("assessment submission failed", "id", w.id, "error", err)
		return err
	}

	outcome := w.classifier.Classify(resp)

	w.mu.Lock()
	w.phase = PhaseCompleted
	w.outcome = outcome
	w.mu.Unlock()

	w.metrics.ObserveSubmission(workflowName, "success")
	w.clearSession()
	w.events.EmitSubmitSucceeded(outcome)
	w.logger.Info("assessment completed",
		"id", w.id,
		"assessment_id", outcome.AssessmentID,
		"severity", string(outcome.Severity),
	)
	return nil
}

// Cancel abandons the workflow, discards the draft, and marks the instance
// dead so any in-flight reply is dropped.
func (w *Workflow) Cancel(ctx context.Context) error {
	w.mu.Lock()
	if w.phase == PhaseCompleted || w.phase == PhaseCancelled {
		w.mu.Unlock()
		return workflow.ErrClosed
	}
	w.phase = PhaseCancelled
	w.mu.Unlock()

	w.active.Store(false)
	w.clearSession()
	w.events.EmitCancelled()
	w.logger.Info("assessment cancelled", "id", w.id)
	return nil
}

// Close tears the instance down without emitting events. Safe to call more
// than once.
func (w *Workflow) Close() {
	w.active.Store(false)
}

func (w *Workflow) ensureIntake() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.phase == PhaseCompleted || w.phase == PhaseCancelled {
		return workflow.ErrClosed
	}
	return nil
}

func (w *Workflow) setPhase(p Phase) {
	w.mu.Lock()
	w.phase = p
	w.mu.Unlock()
}

// persist saves the draft best-effort. Persistence failures never block the
// intake; they are logged and the workflow continues in memory.
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
