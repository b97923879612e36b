package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/vistream-inc/vistream/internal/domain/payout"
	"github.com/vistream-inc/vistream/internal/infrastructure/persistence/mappers"
	"github.com/vistream-inc/vistream/internal/infrastructure/persistence/models"
	"github.com/vistream-inc/vistream/internal/shared/db"
	apperrors "github.com/vistream-inc/vistream/internal/shared/errors"
)

type PayoutRepository struct {
	db *gorm.DB
}

func NewPayoutRepository(db *gorm.DB) *PayoutRepository {
	return &PayoutRepository{db: db}
}

func (r *PayoutRepository) Create(ctx context.Context, p *payout.CreatorPayout) error {
	model := mappers.PayoutToModel(p)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateKeyError(err) {
			return payout.ErrDuplicatePayout
		}
		return fmt.Errorf("failed to create payout: %w", err)
	}
	p.SetID(model.ID)
	return nil
}

func (r *PayoutRepository) Update(ctx context.Context, p *payout.CreatorPayout) error {
	model := mappers.PayoutToModel(p)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PayoutModel{}).
		Where("id = ? AND version < ?", model.ID, model.Version).
		Updates(map[string]interface{}{
			"status":            model.Status,
			"payment_reference": model.PaymentReference,
			"failure_reason":    model.FailureReason,
			"processed_at":      model.ProcessedAt,
			"completed_at":      model.CompletedAt,
			"version":           model.Version,
			"updated_at":        model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update payout: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return payout.ErrInvalidStatusTransition
	}
	return nil
}

func (r *PayoutRepository) GetByID(ctx context.Context, id uint) (*payout.CreatorPayout, error) {
	var model models.PayoutModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payout.ErrPayoutNotFound
		}
		return nil, fmt.Errorf("failed to get payout: %w", err)
	}
	return mappers.PayoutToDomain(&model)
}

func (r *PayoutRepository) GetByChannelAndPeriod(ctx context.Context, channelID uint, periodStart, periodEnd time.Time) (*payout.CreatorPayout, error) {
	var model models.PayoutModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("channel_id = ? AND period_start = ? AND period_end = ?", channelID, periodStart, periodEnd).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payout.ErrPayoutNotFound
		}
		return nil, fmt.Errorf("failed to get payout by period: %w", err)
	}
	return mappers.PayoutToDomain(&model)
}

// HasPayoutCovering reports whether any payout period of the channel
// contains the date. A payout's amounts are frozen the moment its row is
// created, so a covered date accepts no new revenue rows.
func (r *PayoutRepository) HasPayoutCovering(ctx context.Context, channelID uint, date time.Time) (bool, error) {
	var count int64

	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.PayoutModel{}).
		Where("channel_id = ? AND period_start <= ? AND period_end >= ?", channelID, date, date).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check payouts covering date: %w", err)
	}
	return count > 0, nil
}

func (r *PayoutRepository) ListByChannelID(ctx context.Context, channelID uint, limit, offset int) ([]*payout.CreatorPayout, int64, error) {
	return r.list(ctx, "channel_id = ?", channelID, limit, offset)
}

func (r *PayoutRepository) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*payout.CreatorPayout, int64, error) {
	return r.list(ctx, "status = ?", status, limit, offset)
}

func (r *PayoutRepository) list(ctx context.Context, condition string, value interface{}, limit, offset int) ([]*payout.CreatorPayout, int64, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var total int64
	if err := tx.Model(&models.PayoutModel{}).Where(condition, value).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payouts: %w", err)
	}

	var modelList []models.PayoutModel
	if err := tx.Where(condition, value).
		Order("period_start DESC").
		Limit(limit).
		Offset(offset).
		Find(&modelList).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list payouts: %w", err)
	}

	payouts := make([]*payout.CreatorPayout, 0, len(modelList))
	for i := range modelList {
		p, err := mappers.PayoutToDomain(&modelList[i])
		if err != nil {
			return nil, 0, err
		}
		payouts = append(payouts, p)
	}
	return payouts, total, nil
}

type PayoutMethodRepository struct {
	db *gorm.DB
}

func NewPayoutMethodRepository(db *gorm.DB) *PayoutMethodRepository {
	return &PayoutMethodRepository{db: db}
}

func (r *PayoutMethodRepository) Create(ctx context.Context, m *payout.PayoutMethod) error {
	model, err := mappers.PayoutMethodToModel(m)
	if err != nil {
		return err
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create payout method: %w", err)
	}
	m.SetID(model.ID)
	return nil
}

func (r *PayoutMethodRepository) Update(ctx context.Context, m *payout.PayoutMethod) error {
	model, err := mappers.PayoutMethodToModel(m)
	if err != nil {
		return err
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PayoutMethodModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"account_name":    model.AccountName,
			"account_details": model.AccountDetails,
			"is_default":      model.IsDefault,
			"is_verified":     model.IsVerified,
			"verified_at":     model.VerifiedAt,
			"updated_at":      model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update payout method: %w", result.Error)
	}
	return nil
}

func (r *PayoutMethodRepository) GetByID(ctx context.Context, id uint) (*payout.PayoutMethod, error) {
	var model models.PayoutMethodModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payout.ErrPayoutMethodNotFound
		}
		return nil, fmt.Errorf("failed to get payout method: %w", err)
	}
	return mappers.PayoutMethodToDomain(&model)
}

func (r *PayoutMethodRepository) GetDefaultVerifiedByChannelID(ctx context.Context, channelID uint) (*payout.PayoutMethod, error) {
	var model models.PayoutMethodModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("channel_id = ? AND is_default = ? AND is_verified = ?", channelID, true, true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payout.ErrNoVerifiedPayoutMethod
		}
		return nil, fmt.Errorf("failed to get default payout method: %w", err)
	}
	return mappers.PayoutMethodToDomain(&model)
}

func (r *PayoutMethodRepository) ListByChannelID(ctx context.Context, channelID uint) ([]*payout.PayoutMethod, error) {
	var modelList []models.PayoutMethodModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("channel_id = ?", channelID).
		Order("is_default DESC, created_at ASC").
		Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list payout methods: %w", err)
	}

	methods := make([]*payout.PayoutMethod, 0, len(modelList))
	for i := range modelList {
		m, err := mappers.PayoutMethodToDomain(&modelList[i])
		if err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	return methods, nil
}
