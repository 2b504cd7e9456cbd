package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/architect/internal/metrics"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newCenter(c *clock, opts ...Option) *Center {
	return NewCenter(append([]Option{WithClock(c.Now)}, opts...)...)
}

func TestCenter_ListAndExpiry(t *testing.T) {
	c := &clock{now: time.Unix(1000, 0)}
	center := newCenter(c)

	center.Success("Project created")
	c.now = c.now.Add(2 * time.Second)
	center.Error("Generation failed")

	list := center.List()
	require.Len(t, list, 2)
	assert.Equal(t, TypeSuccess, list[0].Type)
	assert.Equal(t, TypeError, list[1].Type)
	assert.False(t, list[0].Undoable)

	c.now = c.now.Add(3 * time.Second)
	list = center.List()
	require.Len(t, list, 1)
	assert.Equal(t, "Generation failed", list[0].Message)
}

func TestCenter_UndoOnceWithinWindow(t *testing.T) {
	c := &clock{now: time.Unix(1000, 0)}
	center := newCenter(c)
	calls := 0
	n := center.Undo("Project deleted", func(context.Context) error {
		calls++
		return nil
	})
	assert.True(t, n.Undoable)

	c.now = c.now.Add(4 * time.Second)
	require.NoError(t, center.InvokeUndo(context.Background(), n.ID))
	assert.Equal(t, 1, calls)
	assert.Empty(t, center.List())

	assert.ErrorIs(t, center.InvokeUndo(context.Background(), n.ID), ErrNotFound)
	assert.Equal(t, 1, calls)
}

func TestCenter_UndoAfterWindow(t *testing.T) {
	c := &clock{now: time.Unix(1000, 0)}
	center := newCenter(c)
	calls := 0
	n := center.Undo("Project deleted", func(context.Context) error {
		calls++
		return nil
	})

	c.now = c.now.Add(DefaultLifetime)
	assert.ErrorIs(t, center.InvokeUndo(context.Background(), n.ID), ErrNotFound)
	assert.Equal(t, 0, calls)
}

func TestCenter_UndoErrors(t *testing.T) {
	c := &clock{now: time.Unix(1000, 0)}
	center := newCenter(c)

	info := center.Info("hello")
	assert.ErrorIs(t, center.InvokeUndo(context.Background(), info.ID), ErrNotUndoable)

	failing := center.Undo("deleted", func(context.Context) error { return errors.New("restore failed") })
	require.Error(t, center.InvokeUndo(context.Background(), failing.ID))
	assert.ErrorIs(t, center.InvokeUndo(context.Background(), failing.ID), ErrAlreadyUndone)
}

func TestCenter_DismissAndCap(t *testing.T) {
	c := &clock{now: time.Unix(1000, 0)}
	center := newCenter(c)
	first := center.Info("first")
	center.Dismiss(first.ID)
	assert.Empty(t, center.List())

	for i := 0; i < maxVisible+5; i++ {
		center.Info("n")
	}
	assert.Len(t, center.List(), maxVisible)
}

func TestCenter_CapKeepsPendingUndo(t *testing.T) {
	c := &clock{now: time.Unix(1000, 0)}
	center := newCenter(c)
	undone := 0
	n := center.Undo("Project deleted", func(context.Context) error {
		undone++
		return nil
	})

	for i := 0; i < maxVisible+5; i++ {
		center.Error("sync failed")
	}
	list := center.List()
	require.Len(t, list, maxVisible)
	assert.Equal(t, n.ID, list[0].ID)

	require.NoError(t, center.InvokeUndo(context.Background(), n.ID))
	assert.Equal(t, 1, undone)
}

func TestCenter_Metrics(t *testing.T) {
	m := metrics.New()
	center := newCenter(&clock{now: time.Unix(0, 0)}, WithMetrics(m))
	center.Success("a")
	center.Success("b")
	center.Undo("c", func(context.Context) error { return nil })

	assert.InDelta(t, 2, testutil.ToFloat64(m.Notifications.WithLabelValues("success")), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Notifications.WithLabelValues("undo")), 0.001)
}
