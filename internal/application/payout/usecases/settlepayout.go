package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vistream-inc/vistream/internal/domain/payout"
	"github.com/vistream-inc/vistream/internal/domain/revenue"
	"github.com/vistream-inc/vistream/internal/domain/shared/services"
	"github.com/vistream-inc/vistream/internal/shared/biztime"
	"github.com/vistream-inc/vistream/internal/shared/db"
	apperrors "github.com/vistream-inc/vistream/internal/shared/errors"
	"github.com/vistream-inc/vistream/internal/shared/logger"
)

// SettlePayoutCommand settles one channel's earnings for one period.
type SettlePayoutCommand struct {
	ChannelID   uint
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// SettlementRates are the payout-side settlement constants.
type SettlementRates struct {
	CreatorSharePercent int64
	FeePolicy           payout.FeePolicy
	MinimumPayoutCents  int64
	Currency            string
}

// SettlePayoutUseCase aggregates a channel's daily creator shares into a
// pending payout. Settlement refuses to run while any monetized video is
// missing a day inside the period: a missing row means telemetry never
// arrived, which is not the same as earning nothing.
type SettlePayoutUseCase struct {
	payoutRepo payout.PayoutRepository
	methodRepo payout.MethodRepository
	shareRepo  revenue.ShareRepository
	videoRepo  revenue.VideoRepository
	refGen     services.ReferenceGenerator
	rates      SettlementRates
	txManager  db.Transactor
	logger     logger.Interface
}

func NewSettlePayoutUseCase(
	payoutRepo payout.PayoutRepository,
	methodRepo payout.MethodRepository,
	shareRepo revenue.ShareRepository,
	videoRepo revenue.VideoRepository,
	refGen services.ReferenceGenerator,
	rates SettlementRates,
	txManager db.Transactor,
	logger logger.Interface,
) *SettlePayoutUseCase {
	return &SettlePayoutUseCase{
		payoutRepo: payoutRepo,
		methodRepo: methodRepo,
		shareRepo:  shareRepo,
		videoRepo:  videoRepo,
		refGen:     refGen,
		rates:      rates,
		txManager:  txManager,
		logger:     logger,
	}
}

func (uc *SettlePayoutUseCase) Execute(ctx context.Context, cmd SettlePayoutCommand) (*payout.CreatorPayout, error) {
	start := biztime.DateOf(cmd.PeriodStart)
	end := biztime.DateOf(cmd.PeriodEnd)
	if end.Before(start) {
		return nil, apperrors.NewValidationError("period end is before period start")
	}

	var settled *payout.CreatorPayout
	err := uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		// One payout per channel and period. A replayed settlement returns
		// the existing row; the unique index backs this up under concurrency.
		if existing, err := uc.payoutRepo.GetByChannelAndPeriod(txCtx, cmd.ChannelID, start, end); err == nil {
			settled = existing
			return nil
		} else if !errors.Is(err, payout.ErrPayoutNotFound) {
			return fmt.Errorf("failed to check existing payout: %w", err)
		}

		if err := uc.checkPeriodComplete(txCtx, cmd.ChannelID, start, end); err != nil {
			return err
		}

		shares, err := uc.shareRepo.ListByChannelInPeriod(txCtx, cmd.ChannelID, start, end)
		if err != nil {
			return fmt.Errorf("failed to list revenue shares: %w", err)
		}

		var creatorGross, adPortion int64
		for _, share := range shares {
			creatorGross += share.CreatorShareCents()
			adPortion += revenue.CreatorCut(share.AdRevenueCents(), uc.rates.CreatorSharePercent)
		}
		// The premium portion absorbs the truncation remainder so the split
		// always sums exactly to the aggregated creator share.
		premiumPortion := creatorGross - adPortion

		if creatorGross < uc.rates.MinimumPayoutCents {
			return apperrors.NewConflictError("earnings below minimum payout",
				fmt.Sprintf("%s: %d < %d", payout.ErrBelowMinimumPayout.Error(), creatorGross, uc.rates.MinimumPayoutCents))
		}

		method, err := uc.methodRepo.GetDefaultVerifiedByChannelID(txCtx, cmd.ChannelID)
		if err != nil {
			if errors.Is(err, payout.ErrNoVerifiedPayoutMethod) {
				return apperrors.NewConflictError("channel has no verified payout method")
			}
			return fmt.Errorf("failed to load payout method: %w", err)
		}

		fees := uc.rates.FeePolicy.Apply(creatorGross)
		reference := uc.refGen.Generate("PO")
		p, err := payout.NewCreatorPayout(cmd.ChannelID, method.ID(), start, end, adPortion, premiumPortion, fees, uc.rates.Currency, reference)
		if err != nil {
			return err
		}

		if err := uc.payoutRepo.Create(txCtx, p); err != nil {
			if errors.Is(err, payout.ErrDuplicatePayout) {
				existing, getErr := uc.payoutRepo.GetByChannelAndPeriod(txCtx, cmd.ChannelID, start, end)
				if getErr != nil {
					return getErr
				}
				settled = existing
				return nil
			}
			return fmt.Errorf("failed to create payout: %w", err)
		}

		uc.logger.Infow("payout settled",
			"payout_id", p.ID(),
			"channel_id", cmd.ChannelID,
			"period_start", start.Format("2006-01-02"),
			"period_end", end.Format("2006-01-02"),
			"gross_cents", fees.GrossCents,
			"net_cents", fees.NetCents,
		)
		settled = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settled, nil
}

// checkPeriodComplete verifies every monetized video of the channel has a
// revenue share row for every day it was monetized inside the period.
func (uc *SettlePayoutUseCase) checkPeriodComplete(ctx context.Context, channelID uint, start, end time.Time) error {
	videos, err := uc.videoRepo.ListByChannelID(ctx, channelID)
	if err != nil {
		return fmt.Errorf("failed to list monetized videos: %w", err)
	}

	for _, video := range videos {
		have, err := uc.shareRepo.ListDatesByVideoInPeriod(ctx, video.VideoID(), start, end)
		if err != nil {
			return fmt.Errorf("failed to list share dates: %w", err)
		}
		haveSet := make(map[time.Time]bool, len(have))
		for _, d := range have {
			haveSet[d] = true
		}

		for _, d := range biztime.DatesInRange(start, end) {
			if !video.IsMonetizedOn(d) {
				continue
			}
			if !haveSet[d] {
				uc.logger.Warnw("settlement blocked by missing revenue day",
					"channel_id", channelID,
					"video_id", video.VideoID(),
					"date", d.Format("2006-01-02"),
				)
				return apperrors.NewConflictError("period has missing revenue days",
					fmt.Sprintf("%s: video %d date %s", payout.ErrIncompletePeriod.Error(), video.VideoID(), d.Format("2006-01-02")))
			}
		}
	}
	return nil
}
