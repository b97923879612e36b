package usecases

import (
	"context"
	"fmt"

	"github.com/vistream-inc/vistream/internal/domain/subscription"
	"github.com/vistream-inc/vistream/internal/shared/biztime"
	"github.com/vistream-inc/vistream/internal/shared/db"
	"github.com/vistream-inc/vistream/internal/shared/logger"
)

// FinalizeCancellationsUseCase completes deferred cancellations once their
// paid period runs out. Runs on the same cadence as the expiry sweep.
type FinalizeCancellationsUseCase struct {
	subscriptionRepo subscription.SubscriptionRepository
	txManager        db.Transactor
	logger           logger.Interface
}

func NewFinalizeCancellationsUseCase(
	subscriptionRepo subscription.SubscriptionRepository,
	txManager db.Transactor,
	logger logger.Interface,
) *FinalizeCancellationsUseCase {
	return &FinalizeCancellationsUseCase{
		subscriptionRepo: subscriptionRepo,
		txManager:        txManager,
		logger:           logger,
	}
}

// Execute returns the number of cancellations finalized.
func (uc *FinalizeCancellationsUseCase) Execute(ctx context.Context) (int, error) {
	now := biztime.NowUTC()
	candidates, err := uc.subscriptionRepo.ListPendingPeriodEndCancellation(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending cancellations: %w", err)
	}

	finalized := 0
	for _, candidate := range candidates {
		err := uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
			sub, err := uc.subscriptionRepo.GetByID(txCtx, candidate.ID())
			if err != nil {
				return err
			}
			if err := sub.FinalizePeriodEndCancellation(biztime.NowUTC()); err != nil {
				return err
			}
			return uc.subscriptionRepo.Update(txCtx, sub)
		})
		if err != nil {
			uc.logger.Warnw("skipping period-end cancellation", "subscription_id", candidate.ID(), "error", err)
			continue
		}
		finalized++
	}

	if finalized > 0 {
		uc.logger.Infow("period-end cancellation sweep finished", "finalized", finalized)
	}
	return finalized, nil
}
