package types

import (
	"errors"
	"fmt"
)

// ------------------------------
// Shared Errors
// ------------------------------

// Sentinel errors shared between the SDK surface and the API layer. The root
// package re-exports these so callers compare against a single symbol.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrCredentialUnavailable = errors.New("subscribe credential unavailable")
	ErrHistoryUnavailable    = errors.New("message history unavailable")
	ErrSendFailed            = errors.New("send failed")
)

// ValidateIDPresent rejects empty identifiers with a named field error.
func ValidateIDPresent(id, field string) error {
	if id == "" {
		return fmt.Errorf("%s is required: %w", field, ErrInvalidInput)
	}
	return nil
}
