package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/vistream-inc/vistream/internal/domain/subscription"
	"github.com/vistream-inc/vistream/internal/shared/biztime"
	apperrors "github.com/vistream-inc/vistream/internal/shared/errors"
	"github.com/vistream-inc/vistream/internal/shared/logger"
)

// CancelSubscriptionCommand cancels a subscription, immediately or at the
// end of the paid period.
type CancelSubscriptionCommand struct {
	SubscriptionID uint
	UserID         uint
	AtPeriodEnd    bool
}

type CancelSubscriptionUseCase struct {
	subscriptionRepo subscription.SubscriptionRepository
	logger           logger.Interface
}

func NewCancelSubscriptionUseCase(
	subscriptionRepo subscription.SubscriptionRepository,
	logger logger.Interface,
) *CancelSubscriptionUseCase {
	return &CancelSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

func (uc *CancelSubscriptionUseCase) Execute(ctx context.Context, cmd CancelSubscriptionCommand) (*subscription.Subscription, error) {
	sub, err := uc.subscriptionRepo.GetByID(ctx, cmd.SubscriptionID)
	if err != nil {
		if errors.Is(err, subscription.ErrSubscriptionNotFound) {
			return nil, apperrors.NewNotFoundError("subscription not found")
		}
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}

	// Users can only cancel their own subscription; admin callers pass 0.
	if cmd.UserID != 0 && sub.UserID() != cmd.UserID {
		return nil, apperrors.NewForbiddenError("subscription does not belong to user")
	}

	if err := sub.Cancel(biztime.NowUTC(), cmd.AtPeriodEnd); err != nil {
		if errors.Is(err, subscription.ErrSubscriptionTerminal) {
			return nil, apperrors.NewConflictError("subscription is already terminal")
		}
		return nil, apperrors.NewConflictError("subscription cannot be cancelled", err.Error())
	}

	if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}

	uc.logger.Infow("subscription cancelled",
		"subscription_id", sub.ID(),
		"at_period_end", cmd.AtPeriodEnd,
		"status", sub.Status().String(),
	)
	return sub, nil
}
