package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested cart was not found in storage.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates the validation engine rejected a cart or a
	// proposed item change.
	ErrValidation = errors.New("validation failed")

	// ErrPricing indicates a pricing or promotion computation failed.
	ErrPricing = errors.New("pricing failed")

	// ErrConflict indicates a lifecycle or state conflict: missing cart,
	// invalid status transition, item not found, migration scope clash, or
	// a resolver-rejected catalog divergence.
	ErrConflict = errors.New("conflict")

	// ErrStorage indicates the cart store failed.
	ErrStorage = errors.New("storage failure")

	// ErrUnknown covers failures outside the taxonomy.
	ErrUnknown = errors.New("unknown error")
)

func ValidationError(reason string) error {
	return fmt.Errorf("%w: %s", ErrValidation, reason)
}

func PricingError(reason string) error {
	return fmt.Errorf("%w: %s", ErrPricing, reason)
}

func ConflictError(reason string) error {
	return fmt.Errorf("%w: %s", ErrConflict, reason)
}

// StorageError wraps a store failure, preserving the cause for errors.Is.
func StorageError(err error) error {
	return fmt.Errorf("%w: %v", ErrStorage, err)
}
