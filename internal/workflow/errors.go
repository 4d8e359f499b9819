// Package workflow provides the building blocks for MediAlert's multi-step
// client workflows: a linear step sequencer with per-step validation gates,
// an event surface for the hosting UI, and a single-flight remote invoker.
// The assessment and booking packages compose these into concrete workflows.
package workflow

import (
	"errors"
	"fmt"
)

// ErrSubmitInFlight is returned when a submission is requested while another
// submission for the same workflow instance is still pending. Duplicate
// submits are rejected outright, never queued.
var ErrSubmitInFlight = errors.New("workflow: submission already in flight")

// ErrClosed is returned when a result arrives for a workflow instance that
// has already been torn down. The result is discarded, not applied.
var ErrClosed = errors.New("workflow: instance closed")

// ErrAtFinalStep is returned by Sequencer.Advance at the last step. The
// owning workflow treats it as the signal to submit instead of advancing.
var ErrAtFinalStep = errors.New("workflow: already at final step")

// ValidationError reports that the current step's validation gate rejected
// an advance. It is recoverable: the workflow stays on the same step and the
// reason is surfaced inline to the user.
type ValidationError struct {
	Step   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed at %s: %s", e.Step, e.Reason)
}

// SubmissionError reports that the remote call failed, either in transport
// or with a server error. The draft is preserved and the user may retry.
type SubmissionError struct {
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("submission failed: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("submission failed: %s", e.Message)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// DataIntegrityError reports that the server responded with success but
// omitted a field the client requires, e.g. a missing consultation id.
// It is surfaced as a failure even though the transport succeeded.
type DataIntegrityError struct {
	Field   string
	Message string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("response missing %s: %s", e.Field, e.Message)
}
