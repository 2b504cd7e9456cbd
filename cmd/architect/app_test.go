package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/architect/internal/config"
	"github.com/jonathan/architect/internal/project"
	"github.com/jonathan/architect/internal/storage"
	"github.com/jonathan/architect/internal/types"
)

func testProjects() []types.Project {
	return []types.Project{
		{ID: "p1", Name: "Aether Moor Shop", Steps: []types.Step{{ID: "s1", Title: "Theme"}, {ID: "s2", Title: "Products"}}},
		{ID: "p2", Name: "Dice Tower Co"},
	}
}

func TestResolveProject(t *testing.T) {
	projects := testProjects()

	tests := []struct {
		name   string
		ref    string
		wantID string
	}{
		{"exact id", "p2", "p2"},
		{"name", "Dice Tower Co", "p2"},
		{"partial name with typo", "aether mor", "p1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := resolveProject(projects, tt.ref, config.DefaultMatchThreshold)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, p.ID)
		})
	}

	_, err := resolveProject(projects, "zzzzzz", config.DefaultMatchThreshold)
	assert.True(t, errors.Is(err, project.ErrNotFound))
}

func TestResolveStep(t *testing.T) {
	p := &testProjects()[0]

	s, err := resolveStep(p, "2")
	require.NoError(t, err)
	assert.Equal(t, "s2", s.ID)

	s, err = resolveStep(p, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Theme", s.Title)

	_, err = resolveStep(p, "3")
	assert.Error(t, err)
	_, err = resolveStep(p, "0")
	assert.Error(t, err)
	_, err = resolveStep(p, "missing")
	assert.Error(t, err)
}

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()

	b, err := openBackend(ctx, &config.Config{Storage: config.StorageMemory})
	require.NoError(t, err)
	assert.IsType(t, &storage.MemoryBackend{}, b)

	dir := filepath.Join(t.TempDir(), "data")
	b, err = openBackend(ctx, &config.Config{Storage: config.StorageFile, DataDir: dir})
	require.NoError(t, err)
	require.NoError(t, b.Put(ctx, storage.PrefsKey, []byte(`{"language":"English"}`)))
	_, err = os.Stat(dir)
	assert.NoError(t, err)

	_, err = openBackend(ctx, &config.Config{Storage: "s3"})
	assert.Error(t, err)
}

func TestChatLoop(t *testing.T) {
	in := strings.NewReader("hello\n\n  \nbad\n/quit\nnever\n")
	var out bytes.Buffer
	var seen []string

	err := chatLoop(in, &out, func(line string) error {
		seen = append(seen, line)
		if line == "bad" {
			return errors.New("boom")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "bad"}, seen)
	assert.Contains(t, out.String(), "error: boom")
}

func TestChatLoop_EOF(t *testing.T) {
	var out bytes.Buffer
	calls := 0
	err := chatLoop(strings.NewReader("one"), &out, func(string) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"serve", "plan", "projects", "advice", "chat", "research", "pricing", "shipping", "speak", "prefs", "audit"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}
