package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vistream-inc/vistream/internal/domain/subscription"
	"github.com/vistream-inc/vistream/internal/shared/biztime"
	"github.com/vistream-inc/vistream/internal/shared/logger"
)

// PremiumEligibility answers whether a user gets premium treatment right
// now, with the features their plan grants.
type PremiumEligibility struct {
	Eligible             bool       `json:"eligible"`
	Status               string     `json:"status,omitempty"`
	PlanID               uint       `json:"plan_id,omitempty"`
	MaxResolution        string     `json:"max_resolution,omitempty"`
	AdFree               bool       `json:"ad_free"`
	PremiumContentAccess bool       `json:"premium_content_access"`
	EarlyAccess          bool       `json:"early_access"`
	GracePeriodEndsAt    *time.Time `json:"grace_period_ends_at,omitempty"`
}

// CheckPremiumEligibilityUseCase computes eligibility from the live row at
// the moment of the call. The answer is deliberately never cached: a grace
// deadline can lapse between any two requests.
type CheckPremiumEligibilityUseCase struct {
	subscriptionRepo subscription.SubscriptionRepository
	planRepo         subscription.PlanRepository
	logger           logger.Interface
}

func NewCheckPremiumEligibilityUseCase(
	subscriptionRepo subscription.SubscriptionRepository,
	planRepo subscription.PlanRepository,
	logger logger.Interface,
) *CheckPremiumEligibilityUseCase {
	return &CheckPremiumEligibilityUseCase{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		logger:           logger,
	}
}

func (uc *CheckPremiumEligibilityUseCase) Execute(ctx context.Context, userID uint) (*PremiumEligibility, error) {
	sub, err := uc.subscriptionRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, subscription.ErrSubscriptionNotFound) {
			return &PremiumEligibility{Eligible: false}, nil
		}
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}

	if !sub.IsActive(biztime.NowUTC()) {
		return &PremiumEligibility{
			Eligible: false,
			Status:   sub.Status().String(),
		}, nil
	}

	plan, err := uc.planRepo.GetByID(ctx, sub.PlanID())
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}

	features := plan.Features()
	return &PremiumEligibility{
		Eligible:             true,
		Status:               sub.Status().String(),
		PlanID:               plan.ID(),
		MaxResolution:        features.MaxResolution(),
		AdFree:               features.AdFree(),
		PremiumContentAccess: features.PremiumContentAccess(),
		EarlyAccess:          features.EarlyAccess(),
		GracePeriodEndsAt:    sub.GracePeriodEndsAt(),
	}, nil
}
