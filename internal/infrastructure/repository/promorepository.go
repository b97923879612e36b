package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vistream-inc/vistream/internal/domain/promo"
	"github.com/vistream-inc/vistream/internal/infrastructure/persistence/mappers"
	"github.com/vistream-inc/vistream/internal/infrastructure/persistence/models"
	"github.com/vistream-inc/vistream/internal/shared/db"
	apperrors "github.com/vistream-inc/vistream/internal/shared/errors"
)

type PromoCodeRepository struct {
	db *gorm.DB
}

func NewPromoCodeRepository(db *gorm.DB) *PromoCodeRepository {
	return &PromoCodeRepository{db: db}
}

func (r *PromoCodeRepository) Create(ctx context.Context, code *promo.PromotionalCode) error {
	model := mappers.PromoCodeToModel(code)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateKeyError(err) {
			return fmt.Errorf("promo code %s already exists: %w", code.Code(), err)
		}
		return fmt.Errorf("failed to create promo code: %w", err)
	}
	code.SetID(model.ID)
	return nil
}

func (r *PromoCodeRepository) Update(ctx context.Context, code *promo.PromotionalCode) error {
	model := mappers.PromoCodeToModel(code)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PromoCodeModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"discount_type":       model.DiscountType,
			"discount_value":      model.DiscountValue,
			"valid_from":          model.ValidFrom,
			"valid_until":         model.ValidUntil,
			"max_uses":            model.MaxUses,
			"max_uses_per_user":   model.MaxUsesPerUser,
			"applicable_plan_ids": model.ApplicablePlanIDs,
			"is_active":           model.IsActive,
			"version":             model.Version,
			"updated_at":          model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update promo code: %w", result.Error)
	}
	return nil
}

func (r *PromoCodeRepository) GetByID(ctx context.Context, id uint) (*promo.PromotionalCode, error) {
	var model models.PromoCodeModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, promo.ErrCodeNotFound
		}
		return nil, fmt.Errorf("failed to get promo code: %w", err)
	}
	return mappers.PromoCodeToDomain(&model)
}

func (r *PromoCodeRepository) GetByCode(ctx context.Context, code string) (*promo.PromotionalCode, error) {
	var model models.PromoCodeModel

	normalized := strings.ToUpper(strings.TrimSpace(code))
	if err := db.GetTxFromContext(ctx, r.db).
		Where("code = ?", normalized).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, promo.ErrCodeNotFound
		}
		return nil, fmt.Errorf("failed to get promo code: %w", err)
	}
	return mappers.PromoCodeToDomain(&model)
}

// GetByCodeForUpdate locks the code row for the rest of the transaction.
// A second checkout of the same code blocks here until the first commits,
// so the usage counts read afterwards are never stale.
func (r *PromoCodeRepository) GetByCodeForUpdate(ctx context.Context, code string) (*promo.PromotionalCode, error) {
	var model models.PromoCodeModel

	normalized := strings.ToUpper(strings.TrimSpace(code))
	if err := db.GetTxFromContext(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("code = ?", normalized).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, promo.ErrCodeNotFound
		}
		return nil, fmt.Errorf("failed to get promo code: %w", err)
	}
	return mappers.PromoCodeToDomain(&model)
}

// Redeem is the authoritative usage-cap check: the conditional UPDATE
// either claims a use or affects zero rows. Two concurrent redemptions
// of a code with one use left cannot both pass.
func (r *PromoCodeRepository) Redeem(ctx context.Context, codeID uint) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PromoCodeModel{}).
		Where("id = ? AND is_active = ? AND (max_uses IS NULL OR current_uses < max_uses)", codeID, true).
		Update("current_uses", gorm.Expr("current_uses + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to redeem promo code: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return promo.ErrCodeExhausted
	}
	return nil
}

type PromoUsageRepository struct {
	db *gorm.DB
}

func NewPromoUsageRepository(db *gorm.DB) *PromoUsageRepository {
	return &PromoUsageRepository{db: db}
}

func (r *PromoUsageRepository) Create(ctx context.Context, usage *promo.Usage) error {
	model := mappers.PromoUsageToModel(usage)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to record promo usage: %w", err)
	}
	usage.SetID(model.ID)
	return nil
}

func (r *PromoUsageRepository) CountByCodeAndUser(ctx context.Context, codeID, userID uint) (int, error) {
	var count int64

	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.PromoUsageModel{}).
		Where("promo_code_id = ? AND user_id = ?", codeID, userID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count promo usages: %w", err)
	}
	return int(count), nil
}

func (r *PromoUsageRepository) ListByUser(ctx context.Context, userID uint) ([]*promo.Usage, error) {
	var modelList []models.PromoUsageModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ?", userID).
		Order("used_at DESC").
		Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list promo usages: %w", err)
	}

	usages := make([]*promo.Usage, 0, len(modelList))
	for i := range modelList {
		usages = append(usages, mappers.PromoUsageToDomain(&modelList[i]))
	}
	return usages, nil
}
