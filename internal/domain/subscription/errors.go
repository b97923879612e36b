package subscription

import (
	"errors"
	"fmt"
)

var (
	ErrSubscriptionNotFound        = errors.New("subscription not found")
	ErrDuplicateActiveSubscription = errors.New("user already has a non-terminal subscription")
	ErrSubscriptionTerminal        = errors.New("subscription is in a terminal state")
	ErrInvalidStatusTransition     = errors.New("invalid status transition")
	ErrGraceDeadlineNotReached     = errors.New("grace period deadline not reached")
	ErrPlanNotFound                = errors.New("subscription plan not found")
	ErrPlanInactive                = errors.New("subscription plan inactive")
	ErrPlanNotBillable             = errors.New("subscription plan has no billing period")
)

func ErrInvalidTransition(from, to string) error {
	return fmt.Errorf("%w: from %s to %s", ErrInvalidStatusTransition, from, to)
}
