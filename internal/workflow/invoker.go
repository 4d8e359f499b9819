package workflow

import (
	"context"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var workflowTracer = otel.Tracer("medialert.internal.workflow")

// Invoker performs exactly-once submission of a finalized request. It is
// single-flight: while one call is pending, further Invoke calls for the same
// instance are rejected with ErrSubmitInFlight. No queuing, no reordering.
type Invoker[Req, Resp any] struct {
	name string
	call func(context.Context, Req) (Resp, error)
	busy atomic.Bool
}

// NewInvoker wraps a remote call for single-flight submission. name labels
// the workflow in traces ("assessment", "booking").
func NewInvoker[Req, Resp any](name string, call func(context.Context, Req) (Resp, error)) *Invoker[Req, Resp] {
	if call == nil {
		panic("workflow: invoker requires a call")
	}
	return &Invoker[Req, Resp]{name: name, call: call}
}

// InFlight reports whether a submission is currently pending. The hosting UI
// is expected to honor it by disabling resubmission controls.
func (i *Invoker[Req, Resp]) InFlight() bool { return i.busy.Load() }

// Invoke performs the remote call, suspending the caller until the external
// collaborator responds. Transport and server failures come back as a
// *SubmissionError; the caller's draft is untouched so the user may retry.
func (i *Invoker[Req, Resp]) Invoke(ctx context.Context, req Req) (Resp, error) {
	var zero Resp
	if !i.busy.CompareAndSwap(false, true) {
		return zero, ErrSubmitInFlight
	}
	defer i.busy.Store(false)

	ctx, span := workflowTracer.Start(ctx, "workflow.submit")
	span.SetAttributes(attribute.String("workflow.name", i.name))
	defer span.End()

	resp, err := i.call(ctx, req)
	if err != nil {
		span.RecordError(err)
		return zero, &SubmissionError{Message: "remote call failed", Err: err}
	}
	return resp, nil
}
