package session

import (
	"context"
	"sync"
	"time"

	"github.com/beerlens/backend/internal/domain"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Default bounds for the in-memory store
const (
	DefaultMaxSessions = 10000
	DefaultTTL         = 12 * time.Hour
)

// selection holds the ordered entries of one session
type selection struct {
	entries []domain.SelectionEntry
}

func (s *selection) indexOf(key string) int {
	for i, entry := range s.entries {
		if entry.Key == key {
			return i
		}
	}
	return -1
}

// MemoryStore is a thread-safe in-memory selection store.
// Sessions expire after TTL without mutation and the least recently used
// session is evicted once MaxSessions is reached.
type MemoryStore struct {
	sessions *expirable.LRU[string, *selection]
	mutex    sync.Mutex
}

// NewMemoryStore creates a new in-memory selection store
func NewMemoryStore(maxSessions int, ttl time.Duration) *MemoryStore {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &MemoryStore{
		sessions: expirable.NewLRU[string, *selection](maxSessions, nil, ttl),
	}
}

// Get retrieves one entry of a session
func (s *MemoryStore) Get(ctx context.Context, sessionID, key string) (*domain.SelectionEntry, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sel, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrEntryNotFound
	}

	idx := sel.indexOf(key)
	if idx < 0 {
		return nil, domain.ErrEntryNotFound
	}

	entry := sel.entries[idx]
	return &entry, nil
}

// Set inserts an entry at the end of the session, or replaces it in place when the key exists
func (s *MemoryStore) Set(ctx context.Context, sessionID string, entry domain.SelectionEntry) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sel, ok := s.sessions.Get(sessionID)
	if !ok {
		sel = &selection{}
	}

	if idx := sel.indexOf(entry.Key); idx >= 0 {
		sel.entries[idx] = entry
	} else {
		sel.entries = append(sel.entries, entry)
	}

	// Re-adding refreshes the session expiry
	s.sessions.Add(sessionID, sel)
	return nil
}

// Remove deletes an entry from a session; removing an absent key is a no-op
func (s *MemoryStore) Remove(ctx context.Context, sessionID, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sel, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil
	}

	if idx := sel.indexOf(key); idx >= 0 {
		sel.entries = append(sel.entries[:idx], sel.entries[idx+1:]...)
	}

	if len(sel.entries) == 0 {
		s.sessions.Remove(sessionID)
		return nil
	}

	s.sessions.Add(sessionID, sel)
	return nil
}

// Clear removes every entry of a session
func (s *MemoryStore) Clear(ctx context.Context, sessionID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.sessions.Remove(sessionID)
	return nil
}

// List returns a copy of the session's entries in insertion order
func (s *MemoryStore) List(ctx context.Context, sessionID string) ([]domain.SelectionEntry, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sel, ok := s.sessions.Get(sessionID)
	if !ok {
		return []domain.SelectionEntry{}, nil
	}

	entries := make([]domain.SelectionEntry, len(sel.entries))
	copy(entries, sel.entries)
	return entries, nil
}

// Size returns the current number of live sessions (for debugging/monitoring)
func (s *MemoryStore) Size() int {
	return s.sessions.Len()
}

// Purge drops every session
func (s *MemoryStore) Purge() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.sessions.Purge()
}
