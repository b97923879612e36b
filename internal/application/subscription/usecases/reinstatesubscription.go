package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/vistream-inc/vistream/internal/domain/subscription"
	apperrors "github.com/vistream-inc/vistream/internal/shared/errors"
	"github.com/vistream-inc/vistream/internal/shared/logger"
)

type ReinstateSubscriptionCommand struct {
	SubscriptionID uint
}

// ReinstateSubscriptionUseCase lifts a suspension. Any grace deadline or
// renewal that lapsed during the suspension is settled by the periodic
// sweeps, not here.
type ReinstateSubscriptionUseCase struct {
	subscriptionRepo subscription.SubscriptionRepository
	logger           logger.Interface
}

func NewReinstateSubscriptionUseCase(
	subscriptionRepo subscription.SubscriptionRepository,
	logger logger.Interface,
) *ReinstateSubscriptionUseCase {
	return &ReinstateSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

func (uc *ReinstateSubscriptionUseCase) Execute(ctx context.Context, cmd ReinstateSubscriptionCommand) error {
	sub, err := uc.subscriptionRepo.GetByID(ctx, cmd.SubscriptionID)
	if err != nil {
		if errors.Is(err, subscription.ErrSubscriptionNotFound) {
			return apperrors.NewNotFoundError("subscription not found")
		}
		return fmt.Errorf("failed to load subscription: %w", err)
	}

	if err := sub.Reinstate(); err != nil {
		return apperrors.NewConflictError("subscription cannot be reinstated", err.Error())
	}

	if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	uc.logger.Infow("subscription reinstated", "subscription_id", sub.ID())
	return nil
}
