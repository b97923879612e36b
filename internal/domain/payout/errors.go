package payout

import "errors"

var (
	ErrPayoutNotFound = errors.New("payout not found")
	// ErrDuplicatePayout signals a second payout for the same channel and
	// period; the unique index makes the first insert win.
	ErrDuplicatePayout = errors.New("payout already exists for channel and period")
	// ErrIncompletePeriod blocks settlement while any monetized video is
	// missing daily figures inside the period.
	ErrIncompletePeriod        = errors.New("period has monetized videos with missing daily revenue")
	ErrPayoutImmutable         = errors.New("payout is in a terminal state")
	ErrInvalidStatusTransition = errors.New("invalid payout status transition")
	ErrBelowMinimumPayout      = errors.New("net payout is below the minimum threshold")
	ErrNoVerifiedPayoutMethod  = errors.New("channel has no verified payout method")
	ErrPayoutMethodNotFound    = errors.New("payout method not found")
)
