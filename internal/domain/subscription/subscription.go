package subscription

import (
	"fmt"
	"time"

	vo "github.com/vistream-inc/vistream/internal/domain/subscription/valueobjects"
	"github.com/vistream-inc/vistream/internal/shared/biztime"
)

// Subscription is the aggregate root for a user's premium subscription.
// A user has at most one non-terminal subscription at a time; a new row is
// created for resubscription after expiry or cancellation.
type Subscription struct {
	id                    uint
	userID                uint
	planID                uint
	status                vo.SubscriptionStatus
	gateway               string
	gatewaySubscriptionID string
	gatewayCustomerID     string
	startDate             time.Time
	endDate               *time.Time
	renewalDate           time.Time
	cancelledAt           *time.Time
	cancelAtPeriodEnd     bool
	gracePeriodEndsAt     *time.Time
	suspensionReason      *string
	version               int
	createdAt             time.Time
	updatedAt             time.Time
}

// NewSubscription creates a subscription in ACTIVE status. Subscriptions are
// only created on the first successful payment, so there is no pending state.
func NewSubscription(userID, planID uint, gateway, gatewaySubscriptionID string, startDate, renewalDate time.Time) (*Subscription, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if planID == 0 {
		return nil, fmt.Errorf("plan ID is required")
	}
	if gateway == "" {
		return nil, fmt.Errorf("payment gateway is required")
	}
	if renewalDate.Before(startDate) {
		return nil, fmt.Errorf("renewal date must be after start date")
	}

	now := biztime.NowUTC()
	return &Subscription{
		userID:                userID,
		planID:                planID,
		status:                vo.StatusActive,
		gateway:               gateway,
		gatewaySubscriptionID: gatewaySubscriptionID,
		startDate:             startDate,
		renewalDate:           renewalDate,
		version:               1,
		createdAt:             now,
		updatedAt:             now,
	}, nil
}

func (s *Subscription) ID() uint                      { return s.id }
func (s *Subscription) UserID() uint                  { return s.userID }
func (s *Subscription) PlanID() uint                  { return s.planID }
func (s *Subscription) Status() vo.SubscriptionStatus { return s.status }
func (s *Subscription) Gateway() string               { return s.gateway }
func (s *Subscription) GatewaySubscriptionID() string { return s.gatewaySubscriptionID }
func (s *Subscription) GatewayCustomerID() string     { return s.gatewayCustomerID }
func (s *Subscription) StartDate() time.Time          { return s.startDate }
func (s *Subscription) EndDate() *time.Time           { return s.endDate }
func (s *Subscription) RenewalDate() time.Time        { return s.renewalDate }
func (s *Subscription) CancelledAt() *time.Time       { return s.cancelledAt }
func (s *Subscription) CancelAtPeriodEnd() bool       { return s.cancelAtPeriodEnd }
func (s *Subscription) GracePeriodEndsAt() *time.Time { return s.gracePeriodEndsAt }
func (s *Subscription) SuspensionReason() *string     { return s.suspensionReason }
func (s *Subscription) Version() int                  { return s.version }
func (s *Subscription) CreatedAt() time.Time          { return s.createdAt }
func (s *Subscription) UpdatedAt() time.Time          { return s.updatedAt }

// IsActive reports whether the subscription currently grants premium access.
// It is computed from the supplied moment every time; the result must never be
// cached because a grace deadline can lapse between checks.
func (s *Subscription) IsActive(now time.Time) bool {
	switch s.status {
	case vo.StatusActive:
		return true
	case vo.StatusGracePeriod:
		return s.gracePeriodEndsAt != nil && now.Before(*s.gracePeriodEndsAt)
	}
	return false
}

// IsTerminal reports whether this row can never change status again.
func (s *Subscription) IsTerminal() bool {
	return s.status.IsTerminal()
}

// RecordRenewalSuccess applies a successful renewal (or grace-period retry)
// payment: the subscription returns to ACTIVE and the next renewal is
// scheduled.
func (s *Subscription) RecordRenewalSuccess(nextRenewalDate time.Time) error {
	switch s.status {
	case vo.StatusActive:
		// scheduled renewal
	case vo.StatusGracePeriod:
		if !s.status.CanTransitionTo(vo.StatusActive) {
			return ErrInvalidTransition(s.status.String(), vo.StatusActive.String())
		}
	default:
		return fmt.Errorf("cannot renew subscription with status %s", s.status)
	}

	if s.cancelAtPeriodEnd {
		return fmt.Errorf("subscription is set to cancel at period end, renewal not allowed")
	}
	if !nextRenewalDate.After(s.renewalDate) {
		return fmt.Errorf("next renewal date must be after current renewal date")
	}

	s.status = vo.StatusActive
	s.renewalDate = nextRenewalDate
	s.gracePeriodEndsAt = nil
	s.touch()
	return nil
}

// RecordRenewalFailure moves an ACTIVE subscription into GRACE_PERIOD with a
// deadline of failedAt plus the configured grace window. A repeated failure
// while already in grace does not extend the deadline.
func (s *Subscription) RecordRenewalFailure(failedAt time.Time, graceWindow time.Duration) error {
	switch s.status {
	case vo.StatusGracePeriod:
		return nil
	case vo.StatusActive:
		if !s.status.CanTransitionTo(vo.StatusGracePeriod) {
			return ErrInvalidTransition(s.status.String(), vo.StatusGracePeriod.String())
		}
	default:
		return fmt.Errorf("cannot record renewal failure with status %s", s.status)
	}

	deadline := failedAt.Add(graceWindow)
	s.status = vo.StatusGracePeriod
	s.gracePeriodEndsAt = &deadline
	s.touch()
	return nil
}

// Cancel cancels the subscription. With atPeriodEnd the row stays ACTIVE until
// the renewal date passes (see FinalizePeriodEndCancellation); otherwise the
// transition to CANCELLED is immediate.
func (s *Subscription) Cancel(now time.Time, atPeriodEnd bool) error {
	if s.status.IsTerminal() {
		return ErrSubscriptionTerminal
	}
	if s.status != vo.StatusActive && s.status != vo.StatusGracePeriod {
		return fmt.Errorf("cannot cancel subscription with status %s", s.status)
	}

	if atPeriodEnd && s.status == vo.StatusActive {
		s.cancelAtPeriodEnd = true
		s.touch()
		return nil
	}

	if !s.status.CanTransitionTo(vo.StatusCancelled) {
		return ErrInvalidTransition(s.status.String(), vo.StatusCancelled.String())
	}

	s.status = vo.StatusCancelled
	s.cancelledAt = &now
	s.endDate = &now
	s.gracePeriodEndsAt = nil
	s.touch()
	return nil
}

// FinalizePeriodEndCancellation completes a deferred cancellation once the
// paid period has run out. No further renewal is attempted.
func (s *Subscription) FinalizePeriodEndCancellation(now time.Time) error {
	if !s.cancelAtPeriodEnd {
		return fmt.Errorf("subscription is not marked for period-end cancellation")
	}
	if s.status != vo.StatusActive {
		return fmt.Errorf("cannot finalize cancellation with status %s", s.status)
	}
	if now.Before(s.renewalDate) {
		return fmt.Errorf("current period has not ended yet")
	}

	end := s.renewalDate
	s.status = vo.StatusCancelled
	s.cancelledAt = &now
	s.endDate = &end
	s.touch()
	return nil
}

// MarkExpired transitions a lapsed GRACE_PERIOD subscription to EXPIRED.
// Callers (the periodic sweep) must re-check status on fresh state before
// applying, so a concurrent successful retry payment always wins.
func (s *Subscription) MarkExpired(now time.Time) error {
	if s.status == vo.StatusExpired {
		return nil
	}
	if s.status != vo.StatusGracePeriod {
		return ErrInvalidTransition(s.status.String(), vo.StatusExpired.String())
	}
	if s.gracePeriodEndsAt == nil || now.Before(*s.gracePeriodEndsAt) {
		return ErrGraceDeadlineNotReached
	}

	end := *s.gracePeriodEndsAt
	s.status = vo.StatusExpired
	s.endDate = &end
	s.touch()
	return nil
}

// Suspend freezes the subscription following a moderation or fraud action.
// Reversible only by explicit reinstatement.
func (s *Subscription) Suspend(reason string) error {
	if s.status == vo.StatusSuspended {
		return nil
	}
	if s.status.IsTerminal() {
		return ErrSubscriptionTerminal
	}
	if reason == "" {
		return fmt.Errorf("suspension reason is required")
	}

	s.status = vo.StatusSuspended
	s.suspensionReason = &reason
	s.touch()
	return nil
}

// Reinstate lifts a suspension. The subscription returns to ACTIVE; if the
// grace deadline or renewal date lapsed while suspended, the periodic sweeps
// will settle the final state on their next pass.
func (s *Subscription) Reinstate() error {
	if s.status != vo.StatusSuspended {
		return fmt.Errorf("cannot reinstate subscription with status %s", s.status)
	}

	s.status = vo.StatusActive
	s.suspensionReason = nil
	s.touch()
	return nil
}

func (s *Subscription) touch() {
	s.updatedAt = biztime.NowUTC()
	s.version++
}

// SetID sets the subscription ID (only for persistence layer use)
func (s *Subscription) SetID(id uint) error {
	if s.id != 0 {
		return fmt.Errorf("subscription ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("subscription ID cannot be zero")
	}
	s.id = id
	return nil
}

// SubscriptionReconstructParams carries persisted state back into the aggregate.
type SubscriptionReconstructParams struct {
	ID                    uint
	UserID                uint
	PlanID                uint
	Status                vo.SubscriptionStatus
	Gateway               string
	GatewaySubscriptionID string
	GatewayCustomerID     string
	StartDate             time.Time
	EndDate               *time.Time
	RenewalDate           time.Time
	CancelledAt           *time.Time
	CancelAtPeriodEnd     bool
	GracePeriodEndsAt     *time.Time
	SuspensionReason      *string
	Version               int
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// ReconstructSubscription rebuilds a subscription from persistence.
func ReconstructSubscription(p SubscriptionReconstructParams) (*Subscription, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("subscription ID cannot be zero")
	}
	if p.UserID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if p.PlanID == 0 {
		return nil, fmt.Errorf("plan ID is required")
	}
	if !vo.ValidStatuses[p.Status] {
		return nil, fmt.Errorf("invalid subscription status: %s", p.Status)
	}

	return &Subscription{
		id:                    p.ID,
		userID:                p.UserID,
		planID:                p.PlanID,
		status:                p.Status,
		gateway:               p.Gateway,
		gatewaySubscriptionID: p.GatewaySubscriptionID,
		gatewayCustomerID:     p.GatewayCustomerID,
		startDate:             p.StartDate,
		endDate:               p.EndDate,
		renewalDate:           p.RenewalDate,
		cancelledAt:           p.CancelledAt,
		cancelAtPeriodEnd:     p.CancelAtPeriodEnd,
		gracePeriodEndsAt:     p.GracePeriodEndsAt,
		suspensionReason:      p.SuspensionReason,
		version:               p.Version,
		createdAt:             p.CreatedAt,
		updatedAt:             p.UpdatedAt,
	}, nil
}
