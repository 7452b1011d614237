package domain

import "context"

// SelectionStore persists the selection of one session.
// List returns entries in insertion order; Set on an existing key keeps its position.
type SelectionStore interface {
	Get(ctx context.Context, sessionID, key string) (*SelectionEntry, error)
	Set(ctx context.Context, sessionID string, entry SelectionEntry) error
	Remove(ctx context.Context, sessionID, key string) error
	Clear(ctx context.Context, sessionID string) error
	List(ctx context.Context, sessionID string) ([]SelectionEntry, error)
}

// DetailProvider fetches the structured product detail for a product id.
type DetailProvider interface {
	FetchDetail(ctx context.Context, productID string) (*ProductDetail, error)
}

// CapacityProvider extracts the capacity of a product from its page.
type CapacityProvider interface {
	FetchCapacity(ctx context.Context, pageURL string) (string, error)
}
