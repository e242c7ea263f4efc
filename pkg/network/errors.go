package network

import (
	"errors"
	"fmt"
)

// Error kinds returned across component boundaries. Store errors are always wrapped into
// one of these so callers can branch with errors.Is.
var (
	ErrConnection    = errors.New("could not connect to the database")
	ErrStore         = errors.New("store operation failed")
	ErrValidation    = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrDuplicateCN   = errors.New("carrier number already exists")
	ErrBookingFailed = errors.New("ticket booking failed")

	// ErrNoRouteAvailable is a domain condition, not a failure. It matches ErrNotFound.
	ErrNoRouteAvailable = fmt.Errorf("no route available: %w", ErrNotFound)

	ErrNoEligibleStation = errors.New("no station without a carrier number")
	ErrStationInUse      = fmt.Errorf("station is referenced by routes or tickets: %w", ErrValidation)
)

// StoreError wraps a raw store failure with the kind it surfaces as
func StoreError(kind error, action string, err error) error {
	return fmt.Errorf("%s: %w (%v)", action, kind, err)
}
