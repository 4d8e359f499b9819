package workflow

import (
	"errors"
	"testing"
)

type testStep int

const (
	stepOne testStep = iota
	stepTwo
	stepThree
)

func (s testStep) String() string {
	switch s {
	case stepOne:
		return "one"
	case stepTwo:
		return "two"
	case stepThree:
		return "three"
	}
	return "unknown"
}

func newTestSequencer(gate func(testStep) error) *Sequencer[testStep] {
	return NewSequencer([]testStep{stepOne, stepTwo, stepThree}, gate)
}

func TestAdvanceMovesForwardWhenGatePasses(t *testing.T) {
	seq := newTestSequencer(nil)

	if err := seq.Advance(); err != nil {
		t.Fatalf("Advance returned error: %v", err)
	}
	if seq.Current() != stepTwo {
		t.Fatalf("Current = %v, want %v", seq.Current(), stepTwo)
	}
	cur, total := seq.Position()
	if cur != 2 || total != 3 {
		t.Fatalf("Position = %d/%d, want 2/3", cur, total)
	}
}

func TestAdvanceDoesNotMoveWhenGateFails(t *testing.T) {
	gateErr := &ValidationError{Step: "one", Reason: "missing field"}
	seq := newTestSequencer(func(s testStep) error {
		if s == stepOne {
			return gateErr
		}
		return nil
	})

	err := seq.Advance()
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Advance error = %v, want ValidationError", err)
	}
	if seq.Current() != stepOne {
		t.Fatalf("Current = %v, step must not change on gate failure", seq.Current())
	}
}

func TestAdvanceAtFinalStepSignalsSubmission(t *testing.T) {
	seq := newTestSequencer(nil)
	if err := seq.Advance(); err != nil {
		t.Fatal(err)
	}
	if err := seq.Advance(); err != nil {
		t.Fatal(err)
	}
	if !seq.IsLast() {
		t.Fatal("expected sequencer at final step")
	}

	if err := seq.Advance(); !errors.Is(err, ErrAtFinalStep) {
		t.Fatalf("Advance at final step = %v, want ErrAtFinalStep", err)
	}
	if seq.Current() != stepThree {
		t.Fatalf("Current = %v, final-step advance must not move", seq.Current())
	}
}

func TestRetreatAtFirstStepSignalsCancel(t *testing.T) {
	seq := newTestSequencer(nil)
	if moved := seq.Retreat(); moved {
		t.Fatal("Retreat at first step must not move")
	}
	if seq.Current() != stepOne {
		t.Fatalf("Current = %v, want %v", seq.Current(), stepOne)
	}
}

func TestRetreatMovesBackOneStep(t *testing.T) {
	seq := newTestSequencer(nil)
	if err := seq.Advance(); err != nil {
		t.Fatal(err)
	}
	if moved := seq.Retreat(); !moved {
		t.Fatal("expected Retreat to move")
	}
	if seq.Current() != stepOne {
		t.Fatalf("Current = %v, want %v", seq.Current(), stepOne)
	}
}

func TestNewSequencerRejectsEmptyOrder(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for empty step order")
		}
	}()
	NewSequencer(nil, func(testStep) error { return nil })
}
