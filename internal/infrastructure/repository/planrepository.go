package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/vistream-inc/vistream/internal/domain/subscription"
	"github.com/vistream-inc/vistream/internal/infrastructure/persistence/mappers"
	"github.com/vistream-inc/vistream/internal/infrastructure/persistence/models"
	"github.com/vistream-inc/vistream/internal/shared/db"
)

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) Create(ctx context.Context, plan *subscription.Plan) error {
	model := mappers.PlanToModel(plan)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create plan: %w", err)
	}
	plan.SetID(model.ID)
	return nil
}

func (r *PlanRepository) Update(ctx context.Context, plan *subscription.Plan) error {
	model := mappers.PlanToModel(plan)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PlanModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"name":                   model.Name,
			"max_resolution":         model.MaxResolution,
			"ad_free":                model.AdFree,
			"premium_content_access": model.PremiumContentAccess,
			"early_access":           model.EarlyAccess,
			"price_monthly_cents":    model.PriceMonthlyCents,
			"price_annual_cents":     model.PriceAnnualCents,
			"display_currency":       model.DisplayCurrency,
			"is_active":              model.IsActive,
			"version":                model.Version,
			"updated_at":             model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update plan: %w", result.Error)
	}
	return nil
}

func (r *PlanRepository) GetByID(ctx context.Context, id uint) (*subscription.Plan, error) {
	var model models.PlanModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subscription.ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return mappers.PlanToDomain(&model)
}

func (r *PlanRepository) ListActive(ctx context.Context) ([]*subscription.Plan, error) {
	var modelList []models.PlanModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("is_active = ?", true).
		Order("price_monthly_cents ASC").
		Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list active plans: %w", err)
	}

	plans := make([]*subscription.Plan, 0, len(modelList))
	for i := range modelList {
		p, err := mappers.PlanToDomain(&modelList[i])
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, nil
}
