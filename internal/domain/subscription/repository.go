package subscription

import (
	"context"
	"time"
)

// SubscriptionRepository persists subscription aggregates. Create must enforce
// the at-most-one-non-terminal-subscription-per-user invariant at the storage
// layer, returning ErrDuplicateActiveSubscription on violation.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *Subscription) error
	Update(ctx context.Context, sub *Subscription) error
	GetByID(ctx context.Context, id uint) (*Subscription, error)
	// GetActiveByUserID returns the user's single non-terminal subscription,
	// or ErrSubscriptionNotFound.
	GetActiveByUserID(ctx context.Context, userID uint) (*Subscription, error)
	GetByGatewaySubscriptionID(ctx context.Context, gatewaySubscriptionID string) (*Subscription, error)
	// ListGraceExpiredBefore returns subscriptions in GRACE_PERIOD whose
	// deadline passed before the given moment. Used by the expiry sweep.
	ListGraceExpiredBefore(ctx context.Context, deadline time.Time) ([]*Subscription, error)
	// ListPendingPeriodEndCancellation returns ACTIVE subscriptions with
	// cancel_at_period_end set whose renewal date has passed.
	ListPendingPeriodEndCancellation(ctx context.Context, now time.Time) ([]*Subscription, error)
}

// PlanRepository persists the subscription plan catalog.
type PlanRepository interface {
	Create(ctx context.Context, plan *Plan) error
	Update(ctx context.Context, plan *Plan) error
	GetByID(ctx context.Context, id uint) (*Plan, error)
	ListActive(ctx context.Context) ([]*Plan, error)
}
