package project

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/architect/internal/storage"
	"github.com/jonathan/architect/internal/types"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakePlanner struct {
	plan     *types.GeneratedPlan
	err      error
	language string
	block    chan struct{}
	entered  chan struct{}
}

func (f *fakePlanner) GeneratePlan(_ context.Context, _, language string) (*types.GeneratedPlan, error) {
	f.language = language
	if f.entered != nil {
		close(f.entered)
	}
	if f.block != nil {
		<-f.block
	}
	return f.plan, f.err
}

type offline struct{}

func (offline) Online(context.Context) bool { return false }

func samplePlan(steps int) *types.GeneratedPlan {
	score := 75.0
	plan := &types.GeneratedPlan{
		ProjectName:        "Aether Moor Shop",
		ProjectDescription: "Fantasy map prints",
		FeasibilityScore:   &score,
	}
	for i := 0; i < steps; i++ {
		plan.Steps = append(plan.Steps, types.PlanStep{
			Title:         "Step",
			Description:   "Do it",
			EstimatedTime: "1h",
			Category:      "setup",
		})
	}
	return plan
}

func newTestStore(t *testing.T, opts ...Option) (*Store, *storage.MemoryBackend, *fakeClock) {
	t.Helper()
	backend := storage.NewMemoryBackend()
	clock := newFakeClock()
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return NewStore(context.Background(), storage.New(backend), opts...), backend, clock
}

func persisted(t *testing.T, backend *storage.MemoryBackend) []types.Project {
	t.Helper()
	return storage.New(backend).LoadProjects(context.Background())
}

func TestInferVentureType(t *testing.T) {
	tests := []struct {
		prompt string
		want   types.VentureType
	}{
		{"dropship my game merch", types.VentureDropshipping},
		{"track inventory for my shop", types.VentureInventory},
		{"keep STOCK levels in check", types.VentureInventory},
		{"launch my game", types.VentureGaming},
		{"open a store", types.VentureCommerce},
		{"", types.VentureCommerce},
	}

	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			assert.Equal(t, tt.want, InferVentureType(tt.prompt))
		})
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	s, backend, clock := newTestStore(t)
	require.NoError(t, s.SetLanguage(ctx, "French"))

	first := s.Create(ctx, samplePlan(3), "open a store")
	second := s.Create(ctx, samplePlan(2), "launch my game")

	assert.Len(t, second.Steps, 2)
	assert.Equal(t, 0, second.Progress)
	assert.Equal(t, types.VentureGaming, second.VentureType)
	assert.Equal(t, "French", second.Language)
	assert.Equal(t, clock.Now().UnixMilli(), second.CreatedAt)
	require.NotNil(t, second.FeasibilityScore)

	ids := map[string]bool{first.ID: true, second.ID: true}
	for _, p := range []types.Project{first, second} {
		for _, step := range p.Steps {
			assert.False(t, step.IsCompleted)
			assert.False(t, ids[step.ID], "duplicate id %s", step.ID)
			ids[step.ID] = true
		}
	}
	assert.Len(t, ids, 7)

	list := s.Projects()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, second.ID, s.ActiveID())

	stored := persisted(t, backend)
	require.Len(t, stored, 2)
	assert.Equal(t, second.ID, stored[0].ID)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	s, backend, _ := newTestStore(t)
	a := s.Create(ctx, samplePlan(1), "a")
	b := s.Create(ctx, samplePlan(1), "b")

	a.Name = "Renamed"
	assert.True(t, s.Update(ctx, a))
	list := s.Projects()
	assert.Equal(t, []string{b.ID, a.ID}, []string{list[0].ID, list[1].ID})
	assert.Equal(t, "Renamed", list[1].Name)
	assert.Equal(t, "Renamed", persisted(t, backend)[1].Name)

	assert.False(t, s.Update(ctx, types.Project{ID: "missing", Name: "x"}))
	assert.Len(t, s.Projects(), 2)
}

func TestUpdate_RecomputesProgress(t *testing.T) {
	ctx := context.Background()
	s, backend, _ := newTestStore(t)
	p := s.Create(ctx, samplePlan(3), "a")

	p.Progress = 90
	require.True(t, s.Update(ctx, p))
	got, err := s.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Progress)

	p.Steps[0].IsCompleted = true
	p.Progress = 5
	require.True(t, s.Update(ctx, p))
	got, err = s.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 33, got.Progress)
	assert.Equal(t, 33, persisted(t, backend)[0].Progress)
}

func TestToggleStep(t *testing.T) {
	ctx := context.Background()
	s, backend, _ := newTestStore(t)
	p := s.Create(ctx, samplePlan(3), "x")

	updated, err := s.ToggleStep(ctx, p.ID, p.Steps[0].ID)
	require.NoError(t, err)
	assert.True(t, updated.Steps[0].IsCompleted)
	assert.Equal(t, 33, updated.Progress)

	updated, err = s.ToggleStep(ctx, p.ID, p.Steps[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 67, updated.Progress)
	assert.Equal(t, 67, persisted(t, backend)[0].Progress)

	updated, err = s.ToggleStep(ctx, p.ID, p.Steps[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 33, updated.Progress)

	_, err = s.ToggleStep(ctx, p.ID, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.ToggleStep(ctx, "nope", p.Steps[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleStep_RoundTripRestoresProgress(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t)
	p := s.Create(ctx, samplePlan(8), "x")

	for _, step := range p.Steps {
		before, err := s.Get(p.ID)
		require.NoError(t, err)
		_, err = s.ToggleStep(ctx, p.ID, step.ID)
		require.NoError(t, err)
		after, err := s.ToggleStep(ctx, p.ID, step.ID)
		require.NoError(t, err)
		assert.Equal(t, before.Progress, after.Progress)
	}
}

func TestDelete_UndoWithinWindow(t *testing.T) {
	ctx := context.Background()
	s, backend, clock := newTestStore(t)
	keep := s.Create(ctx, samplePlan(1), "keep")
	victim := s.Create(ctx, samplePlan(2), "victim")
	_, err := s.ToggleStep(ctx, victim.ID, victim.Steps[0].ID)
	require.NoError(t, err)
	before, err := s.Get(victim.ID)
	require.NoError(t, err)

	del, err := s.Delete(ctx, victim.ID)
	require.NoError(t, err)
	assert.True(t, del.WasActive)
	assert.Empty(t, s.ActiveID())
	assert.Len(t, s.Projects(), 1)
	assert.Len(t, persisted(t, backend), 1)

	require.NoError(t, s.Select(keep.ID))
	clock.Advance(4 * time.Second)
	require.NoError(t, del.Undo(ctx))

	restored, err := s.Get(victim.ID)
	require.NoError(t, err)
	assert.Equal(t, before, restored)
	assert.Equal(t, victim.ID, s.ActiveID())
	assert.Equal(t, victim.ID, s.Projects()[0].ID)
	assert.Len(t, persisted(t, backend), 2)

	assert.ErrorIs(t, del.Undo(ctx), ErrUndoUsed)
	assert.Len(t, s.Projects(), 2)
}

func TestDelete_UndoAfterWindow(t *testing.T) {
	ctx := context.Background()
	s, _, clock := newTestStore(t)
	p := s.Create(ctx, samplePlan(1), "x")

	del, err := s.Delete(ctx, p.ID)
	require.NoError(t, err)
	clock.Advance(DefaultUndoWindow)

	assert.True(t, del.Expired())
	assert.ErrorIs(t, del.Undo(ctx), ErrUndoExpired)
	_, err = s.Get(p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_InactiveKeepsSelection(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t)
	a := s.Create(ctx, samplePlan(1), "a")
	b := s.Create(ctx, samplePlan(1), "b")

	del, err := s.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, del.WasActive)
	assert.Equal(t, b.ID, s.ActiveID())

	_, err = s.Delete(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	planner := &fakePlanner{plan: samplePlan(4)}
	s, _, _ := newTestStore(t, WithPlanner(planner))
	require.NoError(t, s.SetLanguage(ctx, "German"))

	p, err := s.Generate(ctx, "dropship posters")
	require.NoError(t, err)
	assert.Equal(t, types.VentureDropshipping, p.VentureType)
	assert.Equal(t, "German", planner.language)
	assert.Len(t, p.Steps, 4)

	_, err = s.Generate(ctx, "   ")
	assert.ErrorIs(t, err, ErrEmptyGoal)
}

func TestGenerate_FailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	planner := &fakePlanner{err: errors.New("generation failed")}
	s, backend, _ := newTestStore(t, WithPlanner(planner))
	existing := s.Create(ctx, samplePlan(1), "x")

	_, err := s.Generate(ctx, "new idea")
	require.Error(t, err)
	assert.Len(t, s.Projects(), 1)
	assert.Equal(t, existing.ID, s.ActiveID())
	assert.Len(t, persisted(t, backend), 1)
	assert.False(t, s.Generating())
}

func TestGenerate_Offline(t *testing.T) {
	s, _, _ := newTestStore(t, WithPlanner(&fakePlanner{plan: samplePlan(1)}), WithConnectivity(offline{}))
	_, err := s.Generate(context.Background(), "idea")
	assert.ErrorIs(t, err, ErrOffline)
	assert.Empty(t, s.Projects())
}

func TestGenerate_RejectsConcurrentDuplicate(t *testing.T) {
	planner := &fakePlanner{plan: samplePlan(1), block: make(chan struct{}), entered: make(chan struct{})}
	s, _, _ := newTestStore(t, WithPlanner(planner))

	errCh := make(chan error, 1)
	go func() {
		_, err := s.Generate(context.Background(), "first")
		errCh <- err
	}()
	<-planner.entered
	assert.True(t, s.Generating())

	_, err := s.Generate(context.Background(), "second")
	assert.ErrorIs(t, err, ErrGenerationInProgress)

	close(planner.block)
	require.NoError(t, <-errCh)
	assert.Len(t, s.Projects(), 1)
	assert.False(t, s.Generating())
}

func TestPrefs(t *testing.T) {
	ctx := context.Background()
	s, backend, _ := newTestStore(t)
	assert.Equal(t, types.DefaultUserPrefs(), s.Prefs())

	s.SetEInkMode(true)
	prefs := storage.New(backend).LoadPrefs(ctx)
	assert.True(t, prefs.IsEInkMode)
	assert.True(t, prefs.OnboardingCompleted)

	assert.Error(t, s.SavePrefs(ctx, types.UserPrefs{}))
	assert.True(t, s.Prefs().IsEInkMode)
}

func TestNewStore_LoadsPersistedState(t *testing.T) {
	ctx := context.Background()
	s, backend, _ := newTestStore(t)
	p := s.Create(ctx, samplePlan(2), "x")
	require.NoError(t, s.SetLanguage(ctx, "Japanese"))

	reopened := NewStore(ctx, storage.New(backend))
	got, err := reopened.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, "Japanese", reopened.Prefs().Language)
	assert.Empty(t, reopened.ActiveID())
}

func TestSelect(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t)
	p := s.Create(ctx, samplePlan(1), "x")
	s.ClearSelection()

	_, ok := s.Active()
	assert.False(t, ok)
	assert.ErrorIs(t, s.Select("missing"), ErrNotFound)

	require.NoError(t, s.Select(p.ID))
	active, ok := s.Active()
	require.True(t, ok)
	assert.Equal(t, p.ID, active.ID)
}

func TestProjectsReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t)
	p := s.Create(ctx, samplePlan(1), "x")

	list := s.Projects()
	list[0].Steps[0].IsCompleted = true
	got, err := s.Get(p.ID)
	require.NoError(t, err)
	assert.False(t, got.Steps[0].IsCompleted)
}

func TestHTTPProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	assert.True(t, NewHTTPProbe(srv.URL).Online(context.Background()))
	assert.True(t, NewHTTPProbe("").Online(context.Background()))

	unreachable := NewHTTPProbe("http://127.0.0.1:1")
	unreachable.Timeout = 200 * time.Millisecond
	assert.False(t, unreachable.Online(context.Background()))
}
