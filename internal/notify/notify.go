// Package notify holds transient user notifications, including undoable ones.
package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jonathan/architect/internal/metrics"
)

// DefaultLifetime is how long a notification stays visible.
const DefaultLifetime = 5 * time.Second

// maxVisible caps the number of notifications kept at once.
const maxVisible = 20

// Type is the notification severity.
type Type string

// Notification types.
const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeInfo    Type = "info"
	TypeUndo    Type = "undo"
)

var (
	// ErrNotFound is returned for an unknown or expired notification id.
	ErrNotFound = errors.New("notification not found")
	// ErrNotUndoable is returned when undoing a notification without an undo action.
	ErrNotUndoable = errors.New("notification has no undo action")
	// ErrAlreadyUndone is returned on a second undo.
	ErrAlreadyUndone = errors.New("already undone")
)

// UndoFunc reverses the action a notification reports.
type UndoFunc func(ctx context.Context) error

// Notification is a transient message.
type Notification struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Undoable  bool      `json:"undoable"`
}

type entry struct {
	Notification
	undo UndoFunc
	used bool
}

// Center stores notifications until they expire.
type Center struct {
	mu       sync.Mutex
	entries  []*entry
	clock    func() time.Time
	lifetime time.Duration
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// Option configures a Center.
type Option func(*Center)

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(c *Center) { c.clock = clock }
}

// WithLifetime sets how long notifications remain visible and undoable.
func WithLifetime(d time.Duration) Option {
	return func(c *Center) { c.lifetime = d }
}

// WithMetrics counts emitted notifications.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Center) { c.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Center) { c.logger = logger }
}

// NewCenter creates an empty Center.
func NewCenter(opts ...Option) *Center {
	c := &Center{clock: time.Now, lifetime: DefaultLifetime, logger: log.Logger}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "notify").Logger()
	return c
}

// Success emits a success notification.
func (c *Center) Success(message string) Notification {
	return c.push(TypeSuccess, message, nil)
}

// Error emits an error notification.
func (c *Center) Error(message string) Notification {
	return c.push(TypeError, message, nil)
}

// Info emits an informational notification.
func (c *Center) Info(message string) Notification {
	return c.push(TypeInfo, message, nil)
}

// Undo emits a notification whose action can be reversed once while it is visible.
func (c *Center) Undo(message string, undo UndoFunc) Notification {
	return c.push(TypeUndo, message, undo)
}

func (c *Center) push(t Type, message string, undo UndoFunc) Notification {
	now := c.clock()
	e := &entry{
		Notification: Notification{
			ID:        uuid.NewString(),
			Type:      t,
			Message:   message,
			CreatedAt: now,
			ExpiresAt: now.Add(c.lifetime),
			Undoable:  undo != nil,
		},
		undo: undo,
	}

	c.mu.Lock()
	c.pruneLocked(now)
	c.entries = append(c.entries, e)
	c.trimLocked()
	c.mu.Unlock()

	c.metrics.RecordNotification(string(t))
	c.logger.Debug().Str("type", string(t)).Msg(message)
	return e.Notification
}

// trimLocked drops the oldest entries beyond maxVisible. Pending undo entries go
// last so an undo stays reachable for its whole window.
func (c *Center) trimLocked() {
	for len(c.entries) > maxVisible {
		victim := 0
		for i, e := range c.entries {
			if e.undo == nil || e.used {
				victim = i
				break
			}
		}
		c.entries = append(c.entries[:victim], c.entries[victim+1:]...)
	}
}

// List returns the visible notifications, oldest first.
func (c *Center) List() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneLocked(c.clock())
	out := make([]Notification, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e.Notification)
	}
	return out
}

// Dismiss removes a notification.
func (c *Center) Dismiss(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, e := range c.entries {
		if e.ID == id {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return
		}
	}
}

// InvokeUndo runs the undo action of notification id. It succeeds at most once and
// only while the notification is visible.
func (c *Center) InvokeUndo(ctx context.Context, id string) error {
	c.mu.Lock()
	c.pruneLocked(c.clock())
	var target *entry
	for _, e := range c.entries {
		if e.ID == id {
			target = e
			break
		}
	}
	if target == nil {
		c.mu.Unlock()
		return ErrNotFound
	}
	if target.undo == nil {
		c.mu.Unlock()
		return ErrNotUndoable
	}
	if target.used {
		c.mu.Unlock()
		return ErrAlreadyUndone
	}
	target.used = true
	undo := target.undo
	c.mu.Unlock()

	if err := undo(ctx); err != nil {
		return err
	}
	c.Dismiss(id)
	return nil
}

func (c *Center) pruneLocked(now time.Time) {
	kept := c.entries[:0]
	for _, e := range c.entries {
		if now.Before(e.ExpiresAt) {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(c.entries); i++ {
		c.entries[i] = nil
	}
	c.entries = kept
}
