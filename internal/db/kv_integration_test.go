//go:build integration

package db

import (
	"context"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/architect/internal/storage"
	"github.com/jonathan/architect/internal/types"
)

func getTestStore(t *testing.T) *KVStore {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	store, err := NewKVStore(context.Background(), dsn)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	ctx := context.Background()
	_, _ = store.db.pool.Exec(ctx, "DELETE FROM architect_kv WHERE key LIKE 'test_%'")
	_, _ = store.db.pool.Exec(ctx, "DELETE FROM architect_kv WHERE key IN ($1, $2)", storage.ProjectsKey, storage.PrefsKey)

	return store
}

func TestIntegration_KVStore_GetPut(t *testing.T) {
	store := getTestStore(t)
	defer store.Close()
	ctx := context.Background()

	_, err := store.Get(ctx, "test_missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.Put(ctx, "test_key", []byte(`{"a":1}`)))
	require.NoError(t, store.Put(ctx, "test_key", []byte(`{"a":2}`)))

	got, err := store.Get(ctx, "test_key")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2}`, string(got))
}

func TestIntegration_KVStore_AdapterRoundTrip(t *testing.T) {
	store := getTestStore(t)
	defer store.Close()
	ctx := context.Background()

	adapter := storage.New(store, storage.WithLogger(zerolog.Nop()))
	adapter.SaveProjects(ctx, []types.Project{{
		ID:          "p1",
		Name:        "Aether Moor Shop",
		VentureType: types.VentureGaming,
		CreatedAt:   1700000000000,
		Steps:       []types.Step{{ID: "s1", Title: "Set up Twitch drops"}},
	}})
	adapter.SavePrefs(ctx, types.UserPrefs{Language: "German", OnboardingCompleted: true})

	projects := adapter.LoadProjects(ctx)
	require.Len(t, projects, 1)
	assert.Equal(t, "Aether Moor Shop", projects[0].Name)
	assert.Equal(t, "German", adapter.LoadPrefs(ctx).Language)
}
