package session

import (
	"context"
	"testing"
	"time"

	"github.com/beerlens/backend/internal/domain"
)

func TestNewMemoryStore_Defaults(t *testing.T) {
	store := NewMemoryStore(0, 0)
	if store == nil {
		t.Fatal("expected store to be created")
	}
	if size := store.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 for empty store", size)
	}
}

func TestMemoryStore_Expiration(t *testing.T) {
	store := NewMemoryStore(10, 20*time.Millisecond)
	ctx := context.Background()

	if err := store.Set(ctx, "s1", entry("a")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	time.Sleep(60 * time.Millisecond)

	_, err := store.Get(ctx, "s1", "a")
	if err != domain.ErrEntryNotFound {
		t.Errorf("Get() after expiration error = %v, want %v", err, domain.ErrEntryNotFound)
	}

	entries, err := store.List(ctx, "s1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("List() after expiration = %d entries, want 0", len(entries))
	}
}

func TestMemoryStore_EvictsLeastRecentlyUsedSession(t *testing.T) {
	store := NewMemoryStore(2, time.Minute)
	ctx := context.Background()

	for _, id := range []string{"s1", "s2", "s3"} {
		if err := store.Set(ctx, id, entry("a")); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	if size := store.Size(); size != 2 {
		t.Errorf("Size() = %d, want 2", size)
	}

	entries, _ := store.List(ctx, "s1")
	if len(entries) != 0 {
		t.Errorf("List(s1) = %d entries, want 0 after eviction", len(entries))
	}
}

func TestMemoryStore_RemoveLastEntryDropsSession(t *testing.T) {
	store := NewMemoryStore(10, time.Minute)
	ctx := context.Background()

	if err := store.Set(ctx, "s1", entry("a")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := store.Remove(ctx, "s1", "a"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	if size := store.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 after removing last entry", size)
	}
}

func TestMemoryStore_ListReturnsCopy(t *testing.T) {
	store := NewMemoryStore(10, time.Minute)
	ctx := context.Background()

	if err := store.Set(ctx, "s1", entry("a")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	entries, _ := store.List(ctx, "s1")
	entries[0].Key = "mutated"

	got, err := store.Get(ctx, "s1", "a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Key != "a" {
		t.Errorf("Get().Key = %s, want a", got.Key)
	}
}

func TestMemoryStore_Purge(t *testing.T) {
	store := NewMemoryStore(10, time.Minute)
	ctx := context.Background()

	for _, id := range []string{"s1", "s2"} {
		if err := store.Set(ctx, id, entry("a")); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	store.Purge()

	if size := store.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 after purge", size)
	}
}
