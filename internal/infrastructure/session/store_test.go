package session

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/beerlens/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFactories runs the shared contract against every SelectionStore implementation
func storeFactories() map[string]func(t *testing.T) domain.SelectionStore {
	return map[string]func(t *testing.T) domain.SelectionStore{
		"memory": func(t *testing.T) domain.SelectionStore {
			return NewMemoryStore(100, DefaultTTL)
		},
		"sqlite": func(t *testing.T) domain.SelectionStore {
			store, err := NewSQLiteStore(":memory:", DefaultTTL)
			require.NoError(t, err)
			t.Cleanup(func() { store.Close() })
			return store
		},
	}
}

func entry(key string) domain.SelectionEntry {
	return domain.SelectionEntry{
		Key:       key,
		SourceURL: "https://bier.jp/itemdetail/" + key,
		ImageURL:  "https://bier.jp/images/" + key + ".jpg",
	}
}

func TestSelectionStore_Contract(t *testing.T) {
	ctx := context.Background()

	for name, newStore := range storeFactories() {
		t.Run(name+"/set and get", func(t *testing.T) {
			store := newStore(t)
			require.NoError(t, store.Set(ctx, "s1", entry("ipa")))

			got, err := store.Get(ctx, "s1", "ipa")
			require.NoError(t, err)
			assert.Equal(t, entry("ipa"), *got)
		})

		t.Run(name+"/get missing entry", func(t *testing.T) {
			store := newStore(t)
			_, err := store.Get(ctx, "s1", "missing")
			assert.ErrorIs(t, err, domain.ErrEntryNotFound)
		})

		t.Run(name+"/list keeps insertion order", func(t *testing.T) {
			store := newStore(t)
			for _, key := range []string{"c", "a", "b"} {
				require.NoError(t, store.Set(ctx, "s1", entry(key)))
			}

			entries, err := store.List(ctx, "s1")
			require.NoError(t, err)
			require.Len(t, entries, 3)
			assert.Equal(t, "c", entries[0].Key)
			assert.Equal(t, "a", entries[1].Key)
			assert.Equal(t, "b", entries[2].Key)
		})

		t.Run(name+"/set existing key keeps position", func(t *testing.T) {
			store := newStore(t)
			require.NoError(t, store.Set(ctx, "s1", entry("a")))
			require.NoError(t, store.Set(ctx, "s1", entry("b")))

			updated := entry("a")
			updated.ImageURL = "https://bier.jp/images/new.jpg"
			require.NoError(t, store.Set(ctx, "s1", updated))

			entries, err := store.List(ctx, "s1")
			require.NoError(t, err)
			require.Len(t, entries, 2)
			assert.Equal(t, updated, entries[0])
			assert.Equal(t, "b", entries[1].Key)
		})

		t.Run(name+"/remove is idempotent", func(t *testing.T) {
			store := newStore(t)
			require.NoError(t, store.Set(ctx, "s1", entry("a")))
			require.NoError(t, store.Set(ctx, "s1", entry("b")))

			require.NoError(t, store.Remove(ctx, "s1", "a"))
			require.NoError(t, store.Remove(ctx, "s1", "a"))
			require.NoError(t, store.Remove(ctx, "unknown-session", "a"))

			entries, err := store.List(ctx, "s1")
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, "b", entries[0].Key)
		})

		t.Run(name+"/clear empties only one session", func(t *testing.T) {
			store := newStore(t)
			require.NoError(t, store.Set(ctx, "s1", entry("a")))
			require.NoError(t, store.Set(ctx, "s2", entry("b")))

			require.NoError(t, store.Clear(ctx, "s1"))

			entries, err := store.List(ctx, "s1")
			require.NoError(t, err)
			assert.Empty(t, entries)

			entries, err = store.List(ctx, "s2")
			require.NoError(t, err)
			assert.Len(t, entries, 1)
		})

		t.Run(name+"/list of unknown session is empty", func(t *testing.T) {
			store := newStore(t)
			entries, err := store.List(ctx, "nobody")
			require.NoError(t, err)
			assert.NotNil(t, entries)
			assert.Empty(t, entries)
		})

		t.Run(name+"/concurrent sets", func(t *testing.T) {
			store := newStore(t)
			var wg sync.WaitGroup
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func(id int) {
					defer wg.Done()
					if err := store.Set(ctx, "s1", entry(fmt.Sprintf("item-%d", id))); err != nil {
						t.Errorf("Concurrent Set() error = %v", err)
					}
				}(i)
			}
			wg.Wait()

			entries, err := store.List(ctx, "s1")
			require.NoError(t, err)
			assert.Len(t, entries, 10)
		})
	}
}
