// Package project holds the canonical project list and user preferences and persists
// every mutation through the storage adapter.
package project

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jonathan/architect/internal/metrics"
	"github.com/jonathan/architect/internal/storage"
	"github.com/jonathan/architect/internal/types"
)

// DefaultUndoWindow is how long a deleted project can be restored.
const DefaultUndoWindow = 5 * time.Second

var (
	// ErrNotFound is returned for an unknown project or step id.
	ErrNotFound = errors.New("project not found")
	// ErrOffline is returned when plan generation is attempted without connectivity.
	ErrOffline = errors.New("offline: plan generation is unavailable")
	// ErrGenerationInProgress is returned while another plan generation is outstanding.
	ErrGenerationInProgress = errors.New("plan generation already in progress")
	// ErrEmptyGoal is returned when Generate is called with a blank goal.
	ErrEmptyGoal = errors.New("goal must not be empty")
)

// Planner produces a plan for a goal. The gateway implements it.
type Planner interface {
	GeneratePlan(ctx context.Context, goal, language string) (*types.GeneratedPlan, error)
}

// Store is the single writer of the project list and preferences.
type Store struct {
	mu       sync.RWMutex
	projects []types.Project
	activeID string
	prefs    types.UserPrefs

	persist    *storage.Adapter
	planner    Planner
	conn       Connectivity
	clock      func() time.Time
	undoWindow time.Duration
	metrics    *metrics.Metrics
	logger     zerolog.Logger

	generating atomic.Bool
}

// Option configures a Store.
type Option func(*Store)

// WithPlanner sets the plan generator used by Generate.
func WithPlanner(p Planner) Option {
	return func(s *Store) { s.planner = p }
}

// WithConnectivity sets the online check consulted before generation.
func WithConnectivity(c Connectivity) Option {
	return func(s *Store) { s.conn = c }
}

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// WithUndoWindow sets how long Delete can be undone.
func WithUndoWindow(d time.Duration) Option {
	return func(s *Store) { s.undoWindow = d }
}

// WithMetrics publishes the project count.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithLogger sets the store logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// NewStore loads the persisted projects and preferences.
func NewStore(ctx context.Context, persist *storage.Adapter, opts ...Option) *Store {
	s := &Store{
		persist:    persist,
		conn:       AlwaysOnline{},
		clock:      time.Now,
		undoWindow: DefaultUndoWindow,
		logger:     log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "project").Logger()

	s.projects = persist.LoadProjects(ctx)
	s.prefs = persist.LoadPrefs(ctx)
	s.metrics.SetProjects(len(s.projects))
	s.logger.Debug().Int("projects", len(s.projects)).Msg("store loaded")
	return s
}

// Projects returns copies of every project, most recent first.
func (s *Store) Projects() []types.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Project, len(s.projects))
	for i := range s.projects {
		out[i] = *s.projects[i].Clone()
	}
	return out
}

// Get returns a copy of the project with id.
func (s *Store) Get(id string) (*types.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.projects[i].Clone(), nil
}

// ActiveID returns the selected project id, or "" when nothing is selected.
func (s *Store) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// Active returns a copy of the selected project.
func (s *Store) Active() (*types.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(s.activeID)
	if i < 0 {
		return nil, false
	}
	return s.projects[i].Clone(), true
}

// Select makes id the active project.
func (s *Store) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(id) < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.activeID = id
	return nil
}

// ClearSelection deselects the active project.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = ""
}

// Generating reports whether a Generate call is outstanding.
func (s *Store) Generating() bool {
	return s.generating.Load()
}

// Generate asks the planner for a plan and creates a project from it.
// Only one generation may be outstanding; on failure no project is added.
func (s *Store) Generate(ctx context.Context, goal string) (*types.Project, error) {
	if strings.TrimSpace(goal) == "" {
		return nil, ErrEmptyGoal
	}
	if s.planner == nil {
		return nil, errors.New("no planner configured")
	}
	if !s.conn.Online(ctx) {
		return nil, ErrOffline
	}
	if !s.generating.CompareAndSwap(false, true) {
		return nil, ErrGenerationInProgress
	}
	defer s.generating.Store(false)

	plan, err := s.planner.GeneratePlan(ctx, goal, s.Prefs().Language)
	if err != nil {
		return nil, err
	}
	p := s.Create(ctx, plan, goal)
	return &p, nil
}

// Create builds a project from plan, prepends it and selects it.
func (s *Store) Create(ctx context.Context, plan *types.GeneratedPlan, sourcePrompt string) types.Project {
	p := types.Project{
		ID:          uuid.NewString(),
		Name:        plan.ProjectName,
		Description: plan.ProjectDescription,
		VentureType: InferVentureType(sourcePrompt),
		CreatedAt:   s.clock().UnixMilli(),
		Steps:       make([]types.Step, 0, len(plan.Steps)),
	}
	if plan.FeasibilityScore != nil {
		v := *plan.FeasibilityScore
		p.FeasibilityScore = &v
	}
	for _, ps := range plan.Steps {
		p.Steps = append(p.Steps, types.Step{
			ID:            uuid.NewString(),
			Title:         ps.Title,
			Description:   ps.Description,
			EstimatedTime: ps.EstimatedTime,
			Category:      types.StepCategory(ps.Category),
			DeepLink:      ps.DeepLink,
			ExternalLink:  ps.ExternalLink,
		})
	}

	s.mu.Lock()
	p.Language = s.prefs.Language
	s.projects = append([]types.Project{p}, s.projects...)
	s.activeID = p.ID
	s.saveLocked(ctx)
	s.mu.Unlock()

	s.logger.Info().
		Str("project_id", p.ID).
		Str("venture_type", string(p.VentureType)).
		Int("steps", len(p.Steps)).
		Msg("project created")
	return *p.Clone()
}

// Update replaces the project with the same id in place. It reports whether one was found.
// Progress is recomputed from the steps; the caller's value is ignored.
func (s *Store) Update(ctx context.Context, updated types.Project) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(updated.ID)
	if i < 0 {
		return false
	}
	next := updated.Clone()
	next.RecomputeProgress()
	s.projects[i] = *next
	s.saveLocked(ctx)
	return true
}

// Modify applies fn to the stored project with id and persists the result.
// If fn returns an error nothing is changed.
func (s *Store) Modify(ctx context.Context, id string, fn func(p *types.Project) error) (*types.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	working := s.projects[i].Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	working.RecomputeProgress()
	s.projects[i] = *working
	s.saveLocked(ctx)
	return working.Clone(), nil
}

// ToggleStep flips a step's completion and recomputes progress.
func (s *Store) ToggleStep(ctx context.Context, projectID, stepID string) (*types.Project, error) {
	return s.Modify(ctx, projectID, func(p *types.Project) error {
		j := p.StepIndex(stepID)
		if j < 0 {
			return fmt.Errorf("%w: step %s", ErrNotFound, stepID)
		}
		p.Steps[j].IsCompleted = !p.Steps[j].IsCompleted
		p.RecomputeProgress()
		return nil
	})
}

func (s *Store) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.projects {
		if s.projects[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) saveLocked(ctx context.Context) {
	s.persist.SaveProjects(ctx, s.projects)
	s.metrics.SetProjects(len(s.projects))
}

// InferVentureType classifies a prompt. Precedence: "drop" → dropshipping,
// "stock" or "invent" → inventory, "game" → gaming, otherwise commerce.
func InferVentureType(prompt string) types.VentureType {
	p := strings.ToLower(prompt)
	switch {
	case strings.Contains(p, "drop"):
		return types.VentureDropshipping
	case strings.Contains(p, "stock"), strings.Contains(p, "invent"):
		return types.VentureInventory
	case strings.Contains(p, "game"):
		return types.VentureGaming
	default:
		return types.VentureCommerce
	}
}
