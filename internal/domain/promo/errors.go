package promo

import "errors"

// Evaluation failures are surfaced to the billing caller for user-facing
// messaging; none of them are fatal.
var (
	ErrCodeNotFound      = errors.New("promotional code not found")
	ErrCodeInactive      = errors.New("promotional code is disabled")
	ErrCodeExpired       = errors.New("promotional code is outside its validity window")
	ErrCodeExhausted     = errors.New("promotional code has reached its global usage cap")
	ErrUserLimitReached  = errors.New("promotional code per-user usage limit reached")
	ErrPlanNotApplicable = errors.New("promotional code does not apply to this plan")
)
