package navigation

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jonathan/architect/internal/types"
)

// Workspace is the project selection and preference surface the dispatcher drives.
type Workspace interface {
	Projects() []types.Project
	ActiveID() string
	Select(id string) error
	ClearSelection()
	Prefs() types.UserPrefs
	SetEInkMode(on bool)
}

// Dispatcher owns the view state and applies commands to it and to the workspace.
type Dispatcher struct {
	mu      sync.Mutex
	ws      Workspace
	matcher Matcher
	state   State
	logger  zerolog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMatcher sets the fuzzy matcher used by switch_project.
func WithMatcher(m Matcher) Option {
	return func(d *Dispatcher) { d.matcher = m }
}

// WithLogger sets the dispatcher logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

// NewDispatcher creates a Dispatcher over ws starting from DefaultState.
func NewDispatcher(ws Workspace, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		ws:      ws,
		matcher: NewMatcher(DefaultThreshold),
		state:   DefaultState(),
		logger:  log.Logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With().Str("component", "navigation").Logger()
	return d
}

// State returns the current view state, with selection and e-ink mode read from the workspace.
func (d *Dispatcher) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current()
}

func (d *Dispatcher) current() State {
	s := d.state
	s.ActiveProjectID = d.ws.ActiveID()
	s.EInkMode = d.ws.Prefs().IsEInkMode
	return s
}

// Dispatch applies cmd. It never fails; inapplicable commands leave state unchanged.
func (d *Dispatcher) Dispatch(cmd Command) Outcome {
	d.mu.Lock()
	defer d.mu.Unlock()

	prev := d.current()
	next, out := Reduce(prev, cmd, d.ws.Projects(), d.matcher)

	if next.ActiveProjectID != prev.ActiveProjectID {
		if next.ActiveProjectID == "" {
			d.ws.ClearSelection()
		} else if err := d.ws.Select(next.ActiveProjectID); err != nil {
			d.logger.Warn().Err(err).Str("project_id", next.ActiveProjectID).Msg("selection rejected")
			return Outcome{Message: err.Error()}
		}
	}
	if next.EInkMode != prev.EInkMode {
		d.ws.SetEInkMode(next.EInkMode)
	}
	d.state = next

	d.logger.Debug().
		Str("action", string(cmd.Action)).
		Str("target", cmd.Target).
		Bool("applied", out.Applied).
		Msg(out.Message)
	return out
}

// HandleCommand applies a command requested by the chat model.
func (d *Dispatcher) HandleCommand(_ context.Context, cmd Command) Outcome {
	return d.Dispatch(cmd)
}

// SetView switches directly to v.
func (d *Dispatcher) SetView(v View) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.View = v
}
