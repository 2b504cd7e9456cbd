// Package wizard implements strictly linear multi-step setup flows.
//
// Steps are 1-based. Advance moves forward one step; advancing from the last step
// confirms the wizard, runs its completion hook, shows a success state for
// SuccessDuration and returns the wizard to step 1. Back moves one step backwards
// and is a no-op on step 1.
package wizard

import (
	"context"
	"sync"
	"time"
)

// SuccessDuration is how long the success state stays visible after completion.
const SuccessDuration = 2500 * time.Millisecond

// CompleteFunc persists the wizard's configuration when it is confirmed.
type CompleteFunc func(ctx context.Context) error

// Wizard is a linear state machine. It is safe for concurrent use.
type Wizard struct {
	def        Definition
	onComplete CompleteFunc
	clock      func() time.Time

	mu           sync.Mutex
	current      int
	successUntil time.Time
}

// Option configures a Wizard.
type Option func(*Wizard)

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(w *Wizard) { w.clock = clock }
}

// New creates a wizard at step 1.
func New(def Definition, onComplete CompleteFunc, opts ...Option) *Wizard {
	w := &Wizard{def: def, onComplete: onComplete, clock: time.Now, current: 1}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// State is a point-in-time view of a wizard.
type State struct {
	Kind     Kind   `json:"kind"`
	Title    string `json:"title"`
	Step     int    `json:"step"`
	Total    int    `json:"total"`
	StepName string `json:"stepName"`
	Success  bool   `json:"success"`
}

// State returns the current state.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stateLocked()
}

func (w *Wizard) stateLocked() State {
	return State{
		Kind:     w.def.Kind,
		Title:    w.def.Title,
		Step:     w.current,
		Total:    len(w.def.Steps),
		StepName: w.def.Steps[w.current-1],
		Success:  w.clock().Before(w.successUntil),
	}
}

// Open starts the wizard from step 1, discarding any in-progress position.
func (w *Wizard) Open() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.current = 1
	return w.stateLocked()
}

// Back moves to the previous step. On step 1 it does nothing.
func (w *Wizard) Back() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current > 1 {
		w.current--
	}
	return w.stateLocked()
}

// Advance moves to the next step, or confirms on the last step. If the completion
// hook fails the wizard stays on the last step and the error is returned.
func (w *Wizard) Advance(ctx context.Context) (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current < len(w.def.Steps) {
		w.current++
		return w.stateLocked(), nil
	}

	if w.onComplete != nil {
		if err := w.onComplete(ctx); err != nil {
			return w.stateLocked(), err
		}
	}
	w.current = 1
	w.successUntil = w.clock().Add(SuccessDuration)
	return w.stateLocked(), nil
}
