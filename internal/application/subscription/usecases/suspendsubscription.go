package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/vistream-inc/vistream/internal/domain/subscription"
	apperrors "github.com/vistream-inc/vistream/internal/shared/errors"
	"github.com/vistream-inc/vistream/internal/shared/logger"
)

// SuspendSubscriptionCommand freezes a subscription for moderation or fraud
// review.
type SuspendSubscriptionCommand struct {
	SubscriptionID uint
	Reason         string
}

type SuspendSubscriptionUseCase struct {
	subscriptionRepo subscription.SubscriptionRepository
	logger           logger.Interface
}

func NewSuspendSubscriptionUseCase(
	subscriptionRepo subscription.SubscriptionRepository,
	logger logger.Interface,
) *SuspendSubscriptionUseCase {
	return &SuspendSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

func (uc *SuspendSubscriptionUseCase) Execute(ctx context.Context, cmd SuspendSubscriptionCommand) error {
	if cmd.Reason == "" {
		return apperrors.NewValidationError("suspension reason is required")
	}

	sub, err := uc.subscriptionRepo.GetByID(ctx, cmd.SubscriptionID)
	if err != nil {
		if errors.Is(err, subscription.ErrSubscriptionNotFound) {
			return apperrors.NewNotFoundError("subscription not found")
		}
		return fmt.Errorf("failed to load subscription: %w", err)
	}

	if err := sub.Suspend(cmd.Reason); err != nil {
		if errors.Is(err, subscription.ErrSubscriptionTerminal) {
			return apperrors.NewConflictError("subscription is already terminal")
		}
		return err
	}

	if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	uc.logger.Infow("subscription suspended", "subscription_id", sub.ID(), "reason", cmd.Reason)
	return nil
}
