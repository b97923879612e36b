package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/vistream-inc/vistream/internal/domain/revenue"
	"github.com/vistream-inc/vistream/internal/shared/biztime"
	apperrors "github.com/vistream-inc/vistream/internal/shared/errors"
	"github.com/vistream-inc/vistream/internal/shared/logger"
)

// SettleMonthlyPayoutsUseCase runs the monthly settlement batch: every
// channel with revenue in the previous calendar month gets settled and
// submitted for disbursement. Per-channel failures are logged and skipped;
// one channel's incomplete period must not hold up everyone else's money.
type SettleMonthlyPayoutsUseCase struct {
	settleUC  *SettlePayoutUseCase
	processUC *ProcessPayoutUseCase
	shareRepo revenue.ShareRepository
	logger    logger.Interface
}

func NewSettleMonthlyPayoutsUseCase(
	settleUC *SettlePayoutUseCase,
	processUC *ProcessPayoutUseCase,
	shareRepo revenue.ShareRepository,
	logger logger.Interface,
) *SettleMonthlyPayoutsUseCase {
	return &SettleMonthlyPayoutsUseCase{
		settleUC:  settleUC,
		processUC: processUC,
		shareRepo: shareRepo,
		logger:    logger,
	}
}

// Execute settles the month before now and returns how many payouts
// completed.
func (uc *SettleMonthlyPayoutsUseCase) Execute(ctx context.Context, now time.Time) (int, error) {
	start, end := biztime.PreviousMonthPeriod(now)

	channels, err := uc.shareRepo.ListChannelIDsWithRevenueInPeriod(ctx, start, end)
	if err != nil {
		return 0, fmt.Errorf("failed to list channels with revenue: %w", err)
	}

	uc.logger.Infow("monthly settlement starting",
		"period_start", start.Format("2006-01-02"),
		"period_end", end.Format("2006-01-02"),
		"channels", len(channels),
	)

	completed := 0
	for _, channelID := range channels {
		p, err := uc.settleUC.Execute(ctx, SettlePayoutCommand{
			ChannelID:   channelID,
			PeriodStart: start,
			PeriodEnd:   end,
		})
		if err != nil {
			// Incomplete periods, sub-minimum earnings and missing payout
			// methods are expected; they settle on a later run.
			if apperrors.IsConflictError(err) {
				uc.logger.Warnw("channel skipped this settlement run", "channel_id", channelID, "reason", err.Error())
			} else {
				uc.logger.Errorw("channel settlement failed", "channel_id", channelID, "error", err)
			}
			continue
		}
		if p.Status().IsTerminal() {
			continue
		}

		if _, err := uc.processUC.Execute(ctx, ProcessPayoutCommand{PayoutID: p.ID()}); err != nil {
			uc.logger.Errorw("payout processing failed", "payout_id", p.ID(), "channel_id", channelID, "error", err)
			continue
		}
		completed++
	}

	uc.logger.Infow("monthly settlement finished",
		"period_start", start.Format("2006-01-02"),
		"channels", len(channels),
		"completed", completed,
	)
	return completed, nil
}
