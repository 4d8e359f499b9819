package workflow

import "fmt"

// Sequencer walks a fixed, ordered list of steps. Sequencing is strictly
// linear: a step is reached only by sequential advance/retreat, and the gate
// for the current step must pass before advancing past it.
type Sequencer[S fmt.Stringer] struct {
	order []S
	idx   int
	gate  func(S) error
}

// NewSequencer builds a sequencer over the given step ordering. gate is
// called with the current step and returns a *ValidationError when the step's
// required draft fields are not yet populated; a nil gate accepts every step.
func NewSequencer[S fmt.Stringer](order []S, gate func(S) error) *Sequencer[S] {
	if len(order) == 0 {
		panic("workflow: sequencer requires at least one step")
	}
	if gate == nil {
		gate = func(S) error { return nil }
	}
	return &Sequencer[S]{order: order, gate: gate}
}

// Current returns the step the workflow is on.
func (s *Sequencer[S]) Current() S { return s.order[s.idx] }

// Position returns the 1-based step number and the total step count.
func (s *Sequencer[S]) Position() (current, total int) {
	return s.idx + 1, len(s.order)
}

// IsFirst reports whether the sequencer is at the first step.
func (s *Sequencer[S]) IsFirst() bool { return s.idx == 0 }

// IsLast reports whether the sequencer is at the final step.
func (s *Sequencer[S]) IsLast() bool { return s.idx == len(s.order)-1 }

// CanAdvance runs the current step's validation gate without moving.
func (s *Sequencer[S]) CanAdvance() error {
	return s.gate(s.Current())
}

// Advance moves to the next step if the current gate passes. At the final
// step it returns ErrAtFinalStep without moving; the owning workflow submits
// instead. A gate rejection returns the *ValidationError unchanged and the
// position is unaffected.
func (s *Sequencer[S]) Advance() error {
	if err := s.gate(s.Current()); err != nil {
		return err
	}
	if s.IsLast() {
		return ErrAtFinalStep
	}
	s.idx++
	return nil
}

// Retreat moves back one step and reports true. At the first step it does
// not move and reports false, which the owning workflow interprets as a
// cancel request. Draft fields are never cleared by retreating.
func (s *Sequencer[S]) Retreat() bool {
	if s.IsFirst() {
		return false
	}
	s.idx--
	return true
}
