package wizard

import (
	"math"
	"sync"
)

// StepState describes how a step relates to the current step, for rendering the step bar.
type StepState string

// Step states.
const (
	StateDone      StepState = "done"
	StateCurrent   StepState = "current"
	StateReachable StepState = "reachable"
	StateLocked    StepState = "locked"
)

// Wizard tracks the current step and the server details of one wizard session.  Every transition
// is total: moves past either end are ignored.
type Wizard struct {
	mu      sync.RWMutex
	current int
	details ServerDetails
}

// New returns a wizard positioned on the first step.
func New(details ServerDetails) *Wizard {
	return &Wizard{details: details}
}

// Current returns the index of the current step.
func (w *Wizard) Current() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// CurrentStep returns the current step.
func (w *Wizard) CurrentStep() Step {
	return steps[w.Current()]
}

// Next advances one step unless already on the last.
func (w *Wizard) Next() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current < StepCount-1 {
		w.current++
	}
}

// Previous moves back one step unless already on the first.
func (w *Wizard) Previous() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current > 0 {
		w.current--
	}
}

// JumpTo moves to step i if it has been reached or is the immediate next step, returning whether
// the move was allowed.
func (w *Wizard) JumpTo(i int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if i < 0 || i >= StepCount || i > w.current+1 {
		return false
	}
	w.current = i
	return true
}

// Progress returns the completion percentage, rounded to the nearest integer.
func (w *Wizard) Progress() int {
	return progress(w.Current())
}

func progress(current int) int {
	return int(math.Round(float64(current+1) / float64(StepCount) * 100))
}

// CanPrevious reports whether Previous would move.
func (w *Wizard) CanPrevious() bool {
	return w.Current() > 0
}

// CanNext reports whether Next would move.
func (w *Wizard) CanNext() bool {
	return w.Current() < StepCount-1
}

// NextLabel is the caption for the forward button.
func (w *Wizard) NextLabel() string {
	return nextLabel(w.Current())
}

func nextLabel(current int) string {
	if current == StepCount-2 {
		return "Finish"
	}
	return "Next"
}

// StepState returns the state of step i relative to the current step.
func (w *Wizard) StepState(i int) StepState {
	return stateOf(i, w.Current())
}

func stateOf(i, current int) StepState {
	switch {
	case i == current:
		return StateCurrent
	case i < current:
		return StateDone
	case i == current+1:
		return StateReachable
	}
	return StateLocked
}

// Details returns a copy of the server details.
func (w *Wizard) Details() ServerDetails {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.details
}

// SetDetail updates a single server detail field by its form name.
func (w *Wizard) SetDetail(field, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.details.Set(field, value)
}

// Panel returns the content of the current step.
func (w *Wizard) Panel() Panel {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return Content(StepKind(w.current), w.details)
}

// Snapshot is a consistent view of the wizard for rendering.
type Snapshot struct {
	Current   int
	Step      Step
	Progress  int
	NextLabel string
	States    []StepState
	Details   ServerDetails
	Panel     Panel
}

// Snapshot captures the wizard state under a single lock.
func (w *Wizard) Snapshot() Snapshot {
	w.mu.RLock()
	current, details := w.current, w.details
	w.mu.RUnlock()

	states := make([]StepState, StepCount)
	for i := range states {
		states[i] = stateOf(i, current)
	}
	return Snapshot{
		Current:   current,
		Step:      steps[current],
		Progress:  progress(current),
		NextLabel: nextLabel(current),
		States:    states,
		Details:   details,
		Panel:     Content(StepKind(current), details),
	}
}
