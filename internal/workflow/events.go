package workflow

// Events is the surface a workflow exposes to its hosting UI. Every field is
// optional; the workflow emits through nil-safe helpers so a host may
// subscribe to only the events it renders. Callbacks run synchronously on
// the goroutine driving the workflow.
type Events[O any] struct {
	StepChanged      func(step string)
	ValidationFailed func(reason string)
	SubmitStarted    func()
	SubmitSucceeded  func(outcome O)
	SubmitFailed     func(err error)
	Cancelled        func()
}

func (e *Events[O]) EmitStepChanged(step string) {
	if e != nil && e.StepChanged != nil {
		e.StepChanged(step)
	}
}

func (e *Events[O]) EmitValidationFailed(reason string) {
	if e != nil && e.ValidationFailed != nil {
		e.ValidationFailed(reason)
	}
}

func (e *Events[O]) EmitSubmitStarted() {
	if e != nil && e.SubmitStarted != nil {
		e.SubmitStarted()
	}
}

func (e *Events[O]) EmitSubmitSucceeded(outcome O) {
	if e != nil && e.SubmitSucceeded != nil {
		e.SubmitSucceeded(outcome)
	}
}

func (e *Events[O]) EmitSubmitFailed(err error) {
	if e != nil && e.SubmitFailed != nil {
		e.SubmitFailed(err)
	}
}

func (e *Events[O]) EmitCancelled() {
	if e != nil && e.Cancelled != nil {
		e.Cancelled()
	}
}
