package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vistream-inc/vistream/internal/domain/revenue"
	"github.com/vistream-inc/vistream/internal/shared/biztime"
	"github.com/vistream-inc/vistream/internal/shared/db"
	"github.com/vistream-inc/vistream/internal/shared/logger"
)

// CloseAccountingDayUseCase zero-fills revenue shares for monetized videos
// that sent no telemetry for a day. It runs after the analytics pipeline's
// delivery deadline, so the gap it fills is a confirmed zero, not late data.
type CloseAccountingDayUseCase struct {
	shareRepo revenue.ShareRepository
	videoRepo revenue.VideoRepository
	rates     RevenueRates
	txManager db.Transactor
	logger    logger.Interface
}

func NewCloseAccountingDayUseCase(
	shareRepo revenue.ShareRepository,
	videoRepo revenue.VideoRepository,
	rates RevenueRates,
	txManager db.Transactor,
	logger logger.Interface,
) *CloseAccountingDayUseCase {
	return &CloseAccountingDayUseCase{
		shareRepo: shareRepo,
		videoRepo: videoRepo,
		rates:     rates,
		txManager: txManager,
		logger:    logger,
	}
}

// Execute closes the given accounting day and returns the number of
// zero-filled rows.
func (uc *CloseAccountingDayUseCase) Execute(ctx context.Context, day time.Time) (int, error) {
	date := biztime.DateOf(day)
	videos, err := uc.videoRepo.ListMonetizedOn(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("failed to list monetized videos: %w", err)
	}

	filled := 0
	for _, video := range videos {
		err := uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
			_, err := uc.shareRepo.GetByVideoAndDate(txCtx, video.VideoID(), date)
			if err == nil {
				return nil
			}
			if !errors.Is(err, revenue.ErrShareNotFound) {
				return err
			}

			share, err := revenue.NewRevenueShare(video.VideoID(), video.ChannelID(), date)
			if err != nil {
				return err
			}
			if err := share.RecordEarnings(0, 0, 0, 0, uc.rates.CreatorSharePercent); err != nil {
				return err
			}
			if err := uc.shareRepo.Upsert(txCtx, share); err != nil {
				return err
			}
			filled++
			return nil
		})
		if err != nil {
			uc.logger.Errorw("failed to zero-fill revenue share",
				"video_id", video.VideoID(),
				"date", date.Format("2006-01-02"),
				"error", err,
			)
		}
	}

	uc.logger.Infow("accounting day closed",
		"date", date.Format("2006-01-02"),
		"monetized_videos", len(videos),
		"zero_filled", filled,
	)
	return filled, nil
}
