package model

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrNotFound            = errors.New("not found")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrUpstreamData        = errors.New("upstream returned malformed data")
	ErrStoreNotInitialized = errors.New("store is not initialized")
)

var (
	ErrProductNotFound  = fmt.Errorf("product %w", ErrNotFound)
	ErrCustomerNotFound = fmt.Errorf("customer %w", ErrNotFound)
	ErrOrderNotFound    = fmt.Errorf("order %w", ErrNotFound)
)

// PremiumRequiredError is returned when a premium-only operation is attempted
// by a regular customer.
type PremiumRequiredError struct {
	Operation string
}

func (e *PremiumRequiredError) Error() string {
	return fmt.Sprintf("operation %q requires premium membership", e.Operation)
}

func (e *PremiumRequiredError) Unwrap() error { return ErrPermissionDenied }
