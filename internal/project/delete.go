package project

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonathan/architect/internal/types"
)

var (
	// ErrUndoExpired is returned when Undo is called after the window closed.
	ErrUndoExpired = errors.New("undo window has expired")
	// ErrUndoUsed is returned when Undo is called a second time.
	ErrUndoUsed = errors.New("deletion already undone")
)

// Deletion is the handle returned by Delete. It can restore the project exactly once
// before its window closes.
type Deletion struct {
	Project   types.Project
	WasActive bool
	Expires   time.Time

	store *Store
	mu    sync.Mutex
	used  bool
}

// Delete removes the project with id and clears the selection if it was active.
func (s *Store) Delete(ctx context.Context, id string) (*Deletion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	removed := s.projects[i]
	s.projects = append(s.projects[:i:i], s.projects[i+1:]...)

	wasActive := s.activeID == id
	if wasActive {
		s.activeID = ""
	}
	s.saveLocked(ctx)

	s.logger.Info().Str("project_id", id).Msg("project deleted")
	return &Deletion{
		Project:   removed,
		WasActive: wasActive,
		Expires:   s.clock().Add(s.undoWindow),
		store:     s,
	}, nil
}

// Undo reinserts the project at the front of the list and selects it.
func (d *Deletion) Undo(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.used {
		return ErrUndoUsed
	}
	if !d.store.clock().Before(d.Expires) {
		return ErrUndoExpired
	}
	d.used = true

	s := d.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(d.Project.ID) < 0 {
		s.projects = append([]types.Project{*d.Project.Clone()}, s.projects...)
	}
	s.activeID = d.Project.ID
	s.saveLocked(ctx)

	s.logger.Info().Str("project_id", d.Project.ID).Msg("project restored")
	return nil
}

// Expired reports whether the undo window has closed.
func (d *Deletion) Expired() bool {
	return !d.store.clock().Before(d.Expires)
}
