package store

import "errors"

// Error Handling Guidelines:
// - Stores: Use fmt.Errorf("context: %w", err) for wrapping errors
// - Handlers: Use apperrors.* functions for HTTP-appropriate errors

var (
	// ErrCorruptedValue indicates a stored slot could not be decoded.
	ErrCorruptedValue = errors.New("stored value is corrupted")
)
