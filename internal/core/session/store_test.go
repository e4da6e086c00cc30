package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-assistant/internal/infrastructure/config"
)

// exerciseStore 各驅動共用的行為
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "alice", &Context{LastRecipeTitle: "Pad Thai", LastRecipeID: 101}))
	got, err := store.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Pad Thai", got.LastRecipeTitle)
	assert.Equal(t, 101, got.LastRecipeID)
	assert.False(t, got.UpdatedAt.IsZero())
	assert.True(t, got.HasRecipe())

	require.NoError(t, store.Set(ctx, "alice", &Context{LastRecipeTitle: "Ramen", LastRecipeID: 202}))
	got, err = store.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 202, got.LastRecipeID)

	_, err = store.Get(ctx, "bob")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Delete(ctx, "alice"))
	_, err = store.Get(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, store.Set(ctx, "  ", &Context{LastRecipeID: 1}))
	assert.NotEmpty(t, store.Stats()["driver"])
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(config.SessionConfig{TTL: time.Hour})
	defer store.Close()
	exerciseStore(t, store)
}

func TestMemoryStoreExpires(t *testing.T) {
	store := NewMemoryStore(config.SessionConfig{TTL: time.Minute})
	defer store.Close()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(context.Background(), "alice", &Context{LastRecipeID: 1}))
	now = now.Add(2 * time.Minute)

	_, err := store.Get(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualValues(t, 1, store.Stats()["evictions"])
}

func TestMemoryStoreEvictsLeastUsed(t *testing.T) {
	store := NewMemoryStore(config.SessionConfig{TTL: time.Hour, MaxSize: 2})
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", &Context{LastRecipeID: 1}))
	require.NoError(t, store.Set(ctx, "b", &Context{LastRecipeID: 2}))
	_, err := store.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "c", &Context{LastRecipeID: 3}))

	_, err = store.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, "a")
	assert.NoError(t, err)
	assert.Equal(t, 2, store.Stats()["size"])
}

func TestMemoryStoreReturnsCopy(t *testing.T) {
	store := NewMemoryStore(config.SessionConfig{})
	defer store.Close()
	ctx := context.Background()

	original := &Context{LastRecipeTitle: "Soup", LastRecipeID: 5}
	require.NoError(t, store.Set(ctx, "alice", original))
	original.LastRecipeID = 99

	got, err := store.Get(ctx, "alice")
	require.NoError(t, err)
	got.LastRecipeTitle = "changed"

	again, err := store.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 5, again.LastRecipeID)
	assert.Equal(t, "Soup", again.LastRecipeTitle)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := NewRedisStore(config.SessionConfig{RedisAddr: mr.Addr(), TTL: time.Hour})
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)

	require.NoError(t, store.Set(context.Background(), "carol", &Context{LastRecipeID: 7}))
	assert.Equal(t, time.Hour, mr.TTL(redisKeyPrefix+"carol"))

	mr.FastForward(2 * time.Hour)
	_, err = store.Get(context.Background(), "carol")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreConnectionFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisStore(config.SessionConfig{RedisAddr: addr})
	assert.Error(t, err)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sessions.db")
	store, err := NewSQLiteStore(config.SessionConfig{SQLitePath: path, TTL: time.Hour})
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}

func TestSQLiteStoreExpiresAndPurges(t *testing.T) {
	store, err := NewSQLiteStore(config.SessionConfig{SQLitePath: filepath.Join(t.TempDir(), "s.db"), TTL: time.Minute})
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "alice", &Context{LastRecipeTitle: "Tacos", LastRecipeID: 3}))
	got, err := store.Get(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.Equal(now))

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := store.Purge(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestNewStoreDrivers(t *testing.T) {
	store, err := NewStore(config.SessionConfig{Driver: ""})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)
	store.Close()

	store, err = NewStore(config.SessionConfig{Driver: "SQLite", SQLitePath: filepath.Join(t.TempDir(), "x.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, store)
	store.Close()

	_, err = NewStore(config.SessionConfig{Driver: "mongo"})
	assert.Error(t, err)
}
