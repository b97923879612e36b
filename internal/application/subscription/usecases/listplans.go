package usecases

import (
	"context"
	"fmt"

	"github.com/vistream-inc/vistream/internal/domain/subscription"
	"github.com/vistream-inc/vistream/internal/shared/logger"
)

// PlanCache is a read-through cache over the active plan catalog. The
// catalog changes rarely and is read on every pricing page load, which
// makes it the one piece of subscription state that is safe to cache.
type PlanCache interface {
	GetActivePlans(ctx context.Context) ([]*subscription.Plan, bool)
	SetActivePlans(ctx context.Context, plans []*subscription.Plan) error
	Invalidate(ctx context.Context) error
}

type ListPlansUseCase struct {
	planRepo subscription.PlanRepository
	cache    PlanCache
	logger   logger.Interface
}

func NewListPlansUseCase(planRepo subscription.PlanRepository, cache PlanCache, logger logger.Interface) *ListPlansUseCase {
	return &ListPlansUseCase{planRepo: planRepo, cache: cache, logger: logger}
}

func (uc *ListPlansUseCase) Execute(ctx context.Context) ([]*subscription.Plan, error) {
	if uc.cache != nil {
		if plans, ok := uc.cache.GetActivePlans(ctx); ok {
			return plans, nil
		}
	}

	plans, err := uc.planRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	if uc.cache != nil {
		if err := uc.cache.SetActivePlans(ctx, plans); err != nil {
			uc.logger.Warnw("failed to cache plan catalog", "error", err)
		}
	}
	return plans, nil
}
