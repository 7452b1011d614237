package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/beerlens/backend/internal/domain"
	"github.com/beerlens/backend/internal/logging"
	"go.uber.org/zap"
)

// SelectionServiceConfig holds configuration for the selection service
type SelectionServiceConfig struct {
	MaxSelection int
}

// SelectionService manages the products a session has picked for comparison
type SelectionService struct {
	store        domain.SelectionStore
	maxSelection int
	observer     domain.ComparisonObserver
	logger       *zap.Logger

	// serializes check-then-insert so concurrent adds cannot exceed the limit
	mu sync.Mutex
}

// NewSelectionService creates a new selection service with dependencies
func NewSelectionService(
	store domain.SelectionStore,
	config SelectionServiceConfig,
	observer domain.ComparisonObserver,
	logger *zap.Logger,
) *SelectionService {
	maxSelection := config.MaxSelection
	if maxSelection <= 0 || maxSelection > domain.MaxSelection {
		maxSelection = domain.MaxSelection
	}
	if observer == nil {
		observer = domain.NopObserver{}
	}

	return &SelectionService{
		store:        store,
		maxSelection: maxSelection,
		observer:     observer,
		logger:       logging.OrNop(logger).Named("selection"),
	}
}

// MaxSelection returns the number of entries a session may hold
func (s *SelectionService) MaxSelection() int {
	return s.maxSelection
}

// Add puts a product into the session's selection.
// A full selection yields domain.ErrSelectionFull and is left untouched.
// Adding a key that is already selected refreshes its URLs in place.
func (s *SelectionService) Add(ctx context.Context, sessionID string, entry domain.SelectionEntry) error {
	entry.Key = strings.TrimSpace(entry.Key)
	entry.SourceURL = strings.TrimSpace(entry.SourceURL)
	entry.ImageURL = strings.TrimSpace(entry.ImageURL)
	if sessionID == "" || entry.Key == "" || entry.SourceURL == "" {
		return domain.ErrInvalidRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.store.Get(ctx, sessionID, entry.Key)
	switch {
	case err == nil:
		return s.store.Set(ctx, sessionID, entry)
	case !errors.Is(err, domain.ErrEntryNotFound):
		return fmt.Errorf("failed to read selection: %w", err)
	}

	entries, err := s.store.List(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to read selection: %w", err)
	}
	if len(entries) >= s.maxSelection {
		s.observer.SelectionRejected()
		s.logger.Info("selection full",
			zap.String("session", sessionID),
			zap.String("key", entry.Key),
			zap.Int("limit", s.maxSelection))
		return domain.ErrSelectionFull
	}

	if err := s.store.Set(ctx, sessionID, entry); err != nil {
		return fmt.Errorf("failed to store selection: %w", err)
	}
	return nil
}

// Remove drops a product from the selection; unknown keys are ignored
func (s *SelectionService) Remove(ctx context.Context, sessionID, key string) error {
	if sessionID == "" {
		return domain.ErrInvalidRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Remove(ctx, sessionID, strings.TrimSpace(key))
}

// Clear empties the session's selection
func (s *SelectionService) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domain.ErrInvalidRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Clear(ctx, sessionID)
}

// List returns the session's selection in insertion order
func (s *SelectionService) List(ctx context.Context, sessionID string) ([]domain.SelectionEntry, error) {
	if sessionID == "" {
		return nil, domain.ErrInvalidRequest
	}
	return s.store.List(ctx, sessionID)
}
