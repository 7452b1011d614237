package session

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/beerlens/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "sessions.db")

	store, err := NewSQLiteStore(path, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, path, store.Path())
	require.NoError(t, store.Set(ctx, "s1", entry("a")))
	require.NoError(t, store.Set(ctx, "s1", entry("b")))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path, time.Hour)
	require.NoError(t, err)
	defer reopened.Close()

	entries, err := reopened.List(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Key)
	assert.Equal(t, "b", entries[1].Key)
}

func TestSQLiteStore_Expiration(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(":memory:", time.Hour)
	require.NoError(t, err)
	defer store.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "s1", entry("old")))

	now = now.Add(2 * time.Hour)

	_, err = store.Get(ctx, "s1", "old")
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)

	entries, err := store.List(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, entries)

	t.Run("set does not revive expired entries", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "s1", entry("new")))

		entries, err := store.List(ctx, "s1")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "new", entries[0].Key)
	})
}

func TestSQLiteStore_Prune(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(":memory:", time.Hour)
	require.NoError(t, err)
	defer store.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "stale", entry("a")))
	require.NoError(t, store.Set(ctx, "stale", entry("b")))

	now = now.Add(90 * time.Minute)
	require.NoError(t, store.Set(ctx, "fresh", entry("c")))

	deleted, err := store.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	entries, err := store.List(ctx, "fresh")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSQLiteStore_RemoveRefreshesSession(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(":memory:", time.Hour)
	require.NoError(t, err)
	defer store.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "s1", entry("a")))
	require.NoError(t, store.Set(ctx, "s1", entry("b")))

	now = now.Add(45 * time.Minute)
	require.NoError(t, store.Remove(ctx, "s1", "a"))

	// One hour after the first write, but only 15 minutes after the remove
	now = now.Add(30 * time.Minute)
	entries, err := store.List(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "b", entries[0].Key)

	t.Run("removing an absent key is a no-op", func(t *testing.T) {
		require.NoError(t, store.Remove(ctx, "s1", "never-added"))
		require.NoError(t, store.Remove(ctx, "unknown", "a"))

		entries, err := store.List(ctx, "s1")
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}

func TestSQLiteStore_Sweeper(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(":memory:", time.Hour)
	require.NoError(t, err)
	defer store.Close()
	assert.Equal(t, time.Hour, store.TTL())

	var now atomic.Int64
	now.Store(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).UnixNano())
	store.now = func() time.Time { return time.Unix(0, now.Load()) }

	require.NoError(t, store.Set(ctx, "abandoned", entry("a")))
	now.Add(int64(2 * time.Hour))

	var swept atomic.Int64
	stop := store.StartSweeper(5*time.Millisecond, func(deleted int64, err error) {
		assert.NoError(t, err)
		swept.Add(deleted)
	})

	assert.Eventually(t, func() bool {
		var rows int
		err := store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM selection_entries`).Scan(&rows)
		return err == nil && rows == 0
	}, time.Second, 5*time.Millisecond)

	stop()
	stop()
	assert.Equal(t, int64(1), swept.Load())

	// Nothing is pruned once the sweeper has stopped
	require.NoError(t, store.Set(ctx, "later", entry("b")))
	now.Add(int64(2 * time.Hour))
	time.Sleep(20 * time.Millisecond)

	var rows int
	require.NoError(t, store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM selection_entries`).Scan(&rows))
	assert.Equal(t, 1, rows)
}
