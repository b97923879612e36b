package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vistream-inc/vistream/internal/domain/revenue"
	"github.com/vistream-inc/vistream/internal/shared/db"
	apperrors "github.com/vistream-inc/vistream/internal/shared/errors"
	"github.com/vistream-inc/vistream/internal/shared/logger"
)

// IngestDailyTelemetryCommand carries one video's figures for one day from
// the analytics pipeline.
type IngestDailyTelemetryCommand struct {
	VideoID        uint
	ChannelID      uint
	Date           time.Time
	AdRevenueCents int64
	AdImpressions  int64
	PremiumViews   int64
}

// RevenueRates are the settlement constants applied at ingest time.
type RevenueRates struct {
	CreatorSharePercent int64
	PremiumRateCents    int64
}

// IngestDailyTelemetryUseCase upserts the revenue share for a (video, date)
// pair. Re-ingest replaces the previous figures until a payout locks the
// row. First sight of a video also registers it as monetized, which is what
// later lets settlement tell missing days apart from zero-revenue days.
type IngestDailyTelemetryUseCase struct {
	shareRepo      revenue.ShareRepository
	videoRepo      revenue.VideoRepository
	settledPeriods settledPeriodChecker
	rates          RevenueRates
	txManager      db.Transactor
	logger         logger.Interface
}

// settledPeriodChecker is the slice of the payout repository this use case
// needs. Row-level locks only cover rows that existed when the payout was
// processed; the period check is what keeps backdated telemetry for a
// never-seen video out of an already settled period.
type settledPeriodChecker interface {
	HasPayoutCovering(ctx context.Context, channelID uint, date time.Time) (bool, error)
}

func NewIngestDailyTelemetryUseCase(
	shareRepo revenue.ShareRepository,
	videoRepo revenue.VideoRepository,
	settledPeriods settledPeriodChecker,
	rates RevenueRates,
	txManager db.Transactor,
	logger logger.Interface,
) *IngestDailyTelemetryUseCase {
	return &IngestDailyTelemetryUseCase{
		shareRepo:      shareRepo,
		videoRepo:      videoRepo,
		settledPeriods: settledPeriods,
		rates:          rates,
		txManager:      txManager,
		logger:         logger,
	}
}

func (uc *IngestDailyTelemetryUseCase) Execute(ctx context.Context, cmd IngestDailyTelemetryCommand) (*revenue.RevenueShare, error) {
	if cmd.AdRevenueCents < 0 || cmd.AdImpressions < 0 || cmd.PremiumViews < 0 {
		return nil, apperrors.NewValidationError("telemetry figures cannot be negative")
	}

	var share *revenue.RevenueShare
	err := uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		// A payout covering the date freezes the whole channel period,
		// including dates for videos that never reported before.
		covered, err := uc.settledPeriods.HasPayoutCovering(txCtx, cmd.ChannelID, cmd.Date)
		if err != nil {
			return fmt.Errorf("failed to check settled periods: %w", err)
		}
		if covered {
			return apperrors.NewConflictError("revenue period is closed", revenue.ErrPeriodClosed.Error())
		}

		if err := uc.ensureRegistered(txCtx, cmd); err != nil {
			return err
		}

		existing, err := uc.shareRepo.GetByVideoAndDate(txCtx, cmd.VideoID, cmd.Date)
		switch {
		case err == nil:
			share = existing
		case errors.Is(err, revenue.ErrShareNotFound):
			share, err = revenue.NewRevenueShare(cmd.VideoID, cmd.ChannelID, cmd.Date)
			if err != nil {
				return apperrors.NewValidationError("invalid telemetry", err.Error())
			}
		default:
			return fmt.Errorf("failed to load revenue share: %w", err)
		}

		premiumRevenue := cmd.PremiumViews * uc.rates.PremiumRateCents
		if err := share.RecordEarnings(cmd.AdRevenueCents, premiumRevenue, cmd.AdImpressions, cmd.PremiumViews, uc.rates.CreatorSharePercent); err != nil {
			if errors.Is(err, revenue.ErrPeriodClosed) {
				return apperrors.NewConflictError("revenue period is closed", err.Error())
			}
			return err
		}

		if err := uc.shareRepo.Upsert(txCtx, share); err != nil {
			if errors.Is(err, revenue.ErrPeriodClosed) {
				return apperrors.NewConflictError("revenue period is closed", err.Error())
			}
			return fmt.Errorf("failed to upsert revenue share: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("daily telemetry ingested",
		"video_id", cmd.VideoID,
		"channel_id", cmd.ChannelID,
		"date", share.Date().Format("2006-01-02"),
		"creator_share_cents", share.CreatorShareCents(),
	)
	return share, nil
}

func (uc *IngestDailyTelemetryUseCase) ensureRegistered(ctx context.Context, cmd IngestDailyTelemetryCommand) error {
	_, err := uc.videoRepo.GetByVideoID(ctx, cmd.VideoID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, revenue.ErrVideoNotFound) {
		return fmt.Errorf("failed to look up monetized video: %w", err)
	}

	video, err := revenue.NewMonetizedVideo(cmd.VideoID, cmd.ChannelID, cmd.Date)
	if err != nil {
		return apperrors.NewValidationError("invalid telemetry", err.Error())
	}
	if err := uc.videoRepo.Create(ctx, video); err != nil {
		// Lost a race against a concurrent ingest for the same video.
		if apperrors.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("failed to register monetized video: %w", err)
	}
	return nil
}
