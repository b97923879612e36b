package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/vistream-inc/vistream/internal/domain/subscription"
	"github.com/vistream-inc/vistream/internal/shared/biztime"
	"github.com/vistream-inc/vistream/internal/shared/db"
	"github.com/vistream-inc/vistream/internal/shared/logger"
)

// ExpireSubscriptionsUseCase is the periodic sweep that expires grace-period
// subscriptions whose deadline has lapsed. Each candidate is re-read and
// re-checked inside its own database transaction, so a retry payment webhook
// that lands between the listing query and the update always wins.
type ExpireSubscriptionsUseCase struct {
	subscriptionRepo subscription.SubscriptionRepository
	txManager        db.Transactor
	logger           logger.Interface
}

func NewExpireSubscriptionsUseCase(
	subscriptionRepo subscription.SubscriptionRepository,
	txManager db.Transactor,
	logger logger.Interface,
) *ExpireSubscriptionsUseCase {
	return &ExpireSubscriptionsUseCase{
		subscriptionRepo: subscriptionRepo,
		txManager:        txManager,
		logger:           logger,
	}
}

// Execute returns the number of subscriptions expired.
func (uc *ExpireSubscriptionsUseCase) Execute(ctx context.Context) (int, error) {
	now := biztime.NowUTC()
	candidates, err := uc.subscriptionRepo.ListGraceExpiredBefore(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list lapsed subscriptions: %w", err)
	}

	expired := 0
	for _, candidate := range candidates {
		err := uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
			sub, err := uc.subscriptionRepo.GetByID(txCtx, candidate.ID())
			if err != nil {
				return err
			}
			if err := sub.MarkExpired(biztime.NowUTC()); err != nil {
				return err
			}
			return uc.subscriptionRepo.Update(txCtx, sub)
		})
		switch {
		case err == nil:
			expired++
		case errors.Is(err, subscription.ErrGraceDeadlineNotReached),
			errors.Is(err, subscription.ErrInvalidStatusTransition):
			// The subscription changed underneath the sweep, usually a
			// successful retry payment. Leave it alone.
			uc.logger.Infow("skipping subscription changed since listing", "subscription_id", candidate.ID())
		default:
			uc.logger.Errorw("failed to expire subscription", "subscription_id", candidate.ID(), "error", err)
		}
	}

	if expired > 0 {
		uc.logger.Infow("grace period sweep finished", "expired", expired, "candidates", len(candidates))
	}
	return expired, nil
}
