// Package storage persists the project list and user preferences through a pluggable backend.
//
// Reads and writes are fail-soft: a missing or malformed record loads as its default value and
// a failed write is logged and dropped. The caller's in-memory state stays authoritative.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jonathan/architect/internal/types"
)

// Keys of the two independent durable records.
const (
	ProjectsKey = "architect_projects"
	PrefsKey    = "architect_prefs"
)

// ErrNotFound is returned by a Backend when a key has never been written.
var ErrNotFound = errors.New("key not found")

// Backend is a durable key/value store holding whole serialized records.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Adapter reads and writes the project list and preferences.
type Adapter struct {
	backend  Backend
	logger   zerolog.Logger
	validate *validator.Validate
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger used for swallowed failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// New creates an Adapter over backend.
func New(backend Backend, opts ...Option) *Adapter {
	a := &Adapter{
		backend:  backend,
		logger:   log.Logger,
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With().Str("component", "storage").Logger()
	return a
}

// LoadProjects returns the stored project list, most recent first.
// Missing or unparseable data yields an empty list. Individual records that fail
// shape validation are dropped.
func (a *Adapter) LoadProjects(ctx context.Context) []types.Project {
	data, ok := a.read(ctx, ProjectsKey)
	if !ok {
		return []types.Project{}
	}

	var raw []types.Project
	if err := json.Unmarshal(data, &raw); err != nil {
		a.logger.Error().Err(err).Msg("failed to load projects")
		return []types.Project{}
	}

	projects := make([]types.Project, 0, len(raw))
	for i := range raw {
		if err := a.validate.Struct(&raw[i]); err != nil {
			a.logger.Warn().Err(err).Str("project_id", raw[i].ID).Msg("dropping invalid stored project")
			continue
		}
		raw[i].RecomputeProgress()
		projects = append(projects, raw[i])
	}
	return projects
}

// SaveProjects replaces the stored project list.
func (a *Adapter) SaveProjects(ctx context.Context, projects []types.Project) {
	if projects == nil {
		projects = []types.Project{}
	}
	a.write(ctx, ProjectsKey, projects)
}

// LoadPrefs returns the stored preferences, or the defaults when absent or invalid.
func (a *Adapter) LoadPrefs(ctx context.Context) types.UserPrefs {
	data, ok := a.read(ctx, PrefsKey)
	if !ok {
		return types.DefaultUserPrefs()
	}

	var prefs types.UserPrefs
	if err := json.Unmarshal(data, &prefs); err != nil {
		a.logger.Error().Err(err).Msg("failed to load preferences")
		return types.DefaultUserPrefs()
	}
	if err := a.validate.Struct(&prefs); err != nil {
		a.logger.Warn().Err(err).Msg("stored preferences are invalid, using defaults")
		return types.DefaultUserPrefs()
	}
	return prefs
}

// SavePrefs replaces the stored preferences.
func (a *Adapter) SavePrefs(ctx context.Context, prefs types.UserPrefs) {
	a.write(ctx, PrefsKey, prefs)
}

// Close releases the backend.
func (a *Adapter) Close() error {
	return a.backend.Close()
}

func (a *Adapter) read(ctx context.Context, key string) ([]byte, bool) {
	data, err := a.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, false
	}
	if err != nil {
		a.logger.Error().Err(err).Str("key", key).Msg("failed to read record")
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}
	return data, true
}

func (a *Adapter) write(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		a.logger.Error().Err(fmt.Errorf("failed to marshal %s: %w", key, err)).Msg("failed to save record")
		return
	}
	if err := a.backend.Put(ctx, key, data); err != nil {
		a.logger.Error().Err(err).Str("key", key).Msg("failed to save record")
	}
}
