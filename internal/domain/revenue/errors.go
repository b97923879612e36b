package revenue

import "errors"

var (
	ErrShareNotFound = errors.New("revenue share not found")
	// ErrPeriodClosed is returned when a write touches a revenue share that
	// has already been locked by a completed payout.
	ErrPeriodClosed  = errors.New("revenue share period is closed")
	ErrVideoNotFound = errors.New("monetized video not found")
)
