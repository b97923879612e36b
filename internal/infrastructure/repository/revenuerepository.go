package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/vistream-inc/vistream/internal/domain/revenue"
	"github.com/vistream-inc/vistream/internal/infrastructure/persistence/mappers"
	"github.com/vistream-inc/vistream/internal/infrastructure/persistence/models"
	"github.com/vistream-inc/vistream/internal/shared/db"
	apperrors "github.com/vistream-inc/vistream/internal/shared/errors"
)

type RevenueShareRepository struct {
	db *gorm.DB
}

func NewRevenueShareRepository(db *gorm.DB) *RevenueShareRepository {
	return &RevenueShareRepository{db: db}
}

// Upsert replaces the figures for the share's (video, date) key. A locked
// row refuses the write: once a payout settles a period, late telemetry
// for it is an error, not a correction.
func (r *RevenueShareRepository) Upsert(ctx context.Context, share *revenue.RevenueShare) error {
	tx := db.GetTxFromContext(ctx, r.db)
	model := mappers.RevenueShareToModel(share)

	if model.ID == 0 {
		if err := tx.Create(model).Error; err != nil {
			if apperrors.IsDuplicateKeyError(err) {
				return r.updateExisting(tx, model)
			}
			return fmt.Errorf("failed to create revenue share: %w", err)
		}
		share.SetID(model.ID)
		return nil
	}
	return r.updateExisting(tx, model)
}

func (r *RevenueShareRepository) updateExisting(tx *gorm.DB, model *models.RevenueShareModel) error {
	result := tx.Model(&models.RevenueShareModel{}).
		Where("video_id = ? AND date = ? AND locked = ?", model.VideoID, model.Date, false).
		Updates(map[string]interface{}{
			"ad_revenue_cents":      model.AdRevenueCents,
			"premium_revenue_cents": model.PremiumRevenueCents,
			"ad_impressions":        model.AdImpressions,
			"premium_views":         model.PremiumViews,
			"creator_share_cents":   model.CreatorShareCents,
			"updated_at":            model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update revenue share: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return revenue.ErrPeriodClosed
	}
	return nil
}

func (r *RevenueShareRepository) GetByVideoAndDate(ctx context.Context, videoID uint, date time.Time) (*revenue.RevenueShare, error) {
	var model models.RevenueShareModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("video_id = ? AND date = ?", videoID, date).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, revenue.ErrShareNotFound
		}
		return nil, fmt.Errorf("failed to get revenue share: %w", err)
	}
	return mappers.RevenueShareToDomain(&model), nil
}

func (r *RevenueShareRepository) ListByChannelInPeriod(ctx context.Context, channelID uint, start, end time.Time) ([]*revenue.RevenueShare, error) {
	var modelList []models.RevenueShareModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("channel_id = ? AND date >= ? AND date <= ?", channelID, start, end).
		Order("date ASC").
		Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list revenue shares: %w", err)
	}

	shares := make([]*revenue.RevenueShare, 0, len(modelList))
	for i := range modelList {
		shares = append(shares, mappers.RevenueShareToDomain(&modelList[i]))
	}
	return shares, nil
}

func (r *RevenueShareRepository) ListDatesByVideoInPeriod(ctx context.Context, videoID uint, start, end time.Time) ([]time.Time, error) {
	var dates []time.Time

	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.RevenueShareModel{}).
		Where("video_id = ? AND date >= ? AND date <= ?", videoID, start, end).
		Order("date ASC").
		Pluck("date", &dates).Error; err != nil {
		return nil, fmt.Errorf("failed to list revenue share dates: %w", err)
	}
	return dates, nil
}

func (r *RevenueShareRepository) LockByChannelInPeriod(ctx context.Context, channelID uint, start, end time.Time) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.RevenueShareModel{}).
		Where("channel_id = ? AND date >= ? AND date <= ? AND locked = ?", channelID, start, end, false).
		Update("locked", true)
	if result.Error != nil {
		return fmt.Errorf("failed to lock revenue shares: %w", result.Error)
	}
	return nil
}

func (r *RevenueShareRepository) ListChannelIDsWithRevenueInPeriod(ctx context.Context, start, end time.Time) ([]uint, error) {
	var channelIDs []uint

	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.RevenueShareModel{}).
		Where("date >= ? AND date <= ? AND locked = ?", start, end, false).
		Distinct("channel_id").
		Pluck("channel_id", &channelIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to list channels with revenue: %w", err)
	}
	return channelIDs, nil
}

type MonetizedVideoRepository struct {
	db *gorm.DB
}

func NewMonetizedVideoRepository(db *gorm.DB) *MonetizedVideoRepository {
	return &MonetizedVideoRepository{db: db}
}

func (r *MonetizedVideoRepository) Create(ctx context.Context, video *revenue.MonetizedVideo) error {
	model := mappers.MonetizedVideoToModel(video)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateKeyError(err) {
			return fmt.Errorf("video %d already registered: %w", video.VideoID(), err)
		}
		return fmt.Errorf("failed to register monetized video: %w", err)
	}
	video.SetID(model.ID)
	return nil
}

func (r *MonetizedVideoRepository) Update(ctx context.Context, video *revenue.MonetizedVideo) error {
	model := mappers.MonetizedVideoToModel(video)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.MonetizedVideoModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"demonetized_at": model.DemonetizedAt,
			"updated_at":     model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update monetized video: %w", result.Error)
	}
	return nil
}

func (r *MonetizedVideoRepository) GetByVideoID(ctx context.Context, videoID uint) (*revenue.MonetizedVideo, error) {
	var model models.MonetizedVideoModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("video_id = ?", videoID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, revenue.ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to get monetized video: %w", err)
	}
	return mappers.MonetizedVideoToDomain(&model), nil
}

func (r *MonetizedVideoRepository) ListByChannelID(ctx context.Context, channelID uint) ([]*revenue.MonetizedVideo, error) {
	var modelList []models.MonetizedVideoModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("channel_id = ?", channelID).
		Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list monetized videos: %w", err)
	}
	return r.toDomainList(modelList), nil
}

func (r *MonetizedVideoRepository) ListMonetizedOn(ctx context.Context, date time.Time) ([]*revenue.MonetizedVideo, error) {
	var modelList []models.MonetizedVideoModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("monetized_since <= ? AND (demonetized_at IS NULL OR demonetized_at > ?)", date, date).
		Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list videos monetized on date: %w", err)
	}
	return r.toDomainList(modelList), nil
}

func (r *MonetizedVideoRepository) toDomainList(modelList []models.MonetizedVideoModel) []*revenue.MonetizedVideo {
	videos := make([]*revenue.MonetizedVideo, 0, len(modelList))
	for i := range modelList {
		videos = append(videos, mappers.MonetizedVideoToDomain(&modelList[i]))
	}
	return videos
}
