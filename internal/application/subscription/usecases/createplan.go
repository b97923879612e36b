package usecases

import (
	"context"
	"fmt"

	"github.com/vistream-inc/vistream/internal/domain/subscription"
	vo "github.com/vistream-inc/vistream/internal/domain/subscription/valueobjects"
	apperrors "github.com/vistream-inc/vistream/internal/shared/errors"
	"github.com/vistream-inc/vistream/internal/shared/logger"
)

// CreatePlanCommand describes a new catalog entry.
type CreatePlanCommand struct {
	Name                 string
	PlanType             string
	MaxResolution        string
	AdFree               bool
	PremiumContentAccess bool
	EarlyAccess          bool
	PriceMonthlyCents    int64
	PriceAnnualCents     *int64
	DisplayCurrency      string
}

type CreatePlanUseCase struct {
	planRepo subscription.PlanRepository
	cache    PlanCache
	logger   logger.Interface
}

func NewCreatePlanUseCase(planRepo subscription.PlanRepository, cache PlanCache, logger logger.Interface) *CreatePlanUseCase {
	return &CreatePlanUseCase{planRepo: planRepo, cache: cache, logger: logger}
}

func (uc *CreatePlanUseCase) Execute(ctx context.Context, cmd CreatePlanCommand) (*subscription.Plan, error) {
	planType, err := vo.NewPlanType(cmd.PlanType)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid plan type", err.Error())
	}
	features, err := vo.NewPlanFeatures(cmd.MaxResolution, cmd.AdFree, cmd.PremiumContentAccess, cmd.EarlyAccess)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid plan features", err.Error())
	}

	plan, err := subscription.NewPlan(cmd.Name, planType, features, cmd.PriceMonthlyCents, cmd.PriceAnnualCents, cmd.DisplayCurrency)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid plan", err.Error())
	}

	if err := uc.planRepo.Create(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}

	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx); err != nil {
			uc.logger.Warnw("failed to invalidate plan cache", "error", err)
		}
	}

	uc.logger.Infow("plan created", "plan_id", plan.ID(), "name", plan.Name(), "type", planType.String())
	return plan, nil
}
