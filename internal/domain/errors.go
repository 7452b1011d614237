package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrSelectionFull is returned when a selection already holds the maximum number of entries
	ErrSelectionFull = errors.New("selection is full")

	// ErrEntryNotFound is returned when a key is not part of the selection
	ErrEntryNotFound = errors.New("selection entry not found")

	// ErrInsufficientSelection is returned when fewer than two entries are compared
	ErrInsufficientSelection = errors.New("at least two products are required for comparison")

	// ErrTransport is returned when a remote request fails or answers with a non-200 status
	ErrTransport = errors.New("remote request failed")

	// ErrMalformedPayload is returned when a detail payload cannot be parsed even after repair
	ErrMalformedPayload = errors.New("malformed detail payload")

	// ErrMissingField is returned when a detail payload parses but carries no price
	ErrMissingField = errors.New("detail payload missing price")

	// ErrCapacityNotFound is returned when a product page has no capacity row
	ErrCapacityNotFound = errors.New("capacity row not found")

	// ErrStoreUnavailable is returned when the selection store cannot be reached
	ErrStoreUnavailable = errors.New("selection store unavailable")
)
