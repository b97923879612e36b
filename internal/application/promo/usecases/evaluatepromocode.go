package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/vistream-inc/vistream/internal/domain/promo"
	"github.com/vistream-inc/vistream/internal/domain/subscription"
	"github.com/vistream-inc/vistream/internal/shared/biztime"
	apperrors "github.com/vistream-inc/vistream/internal/shared/errors"
	"github.com/vistream-inc/vistream/internal/shared/logger"
)

// EvaluatePromoCodeCommand asks what a code would do for a user and plan.
type EvaluatePromoCodeCommand struct {
	Code   string
	UserID uint
	PlanID uint
}

// PromoEvaluation is the read-only answer. Nothing is redeemed; the counter
// only moves at checkout.
type PromoEvaluation struct {
	Valid           bool   `json:"valid"`
	Reason          string `json:"reason,omitempty"`
	DiscountType    string `json:"discount_type,omitempty"`
	DiscountValue   int64  `json:"discount_value,omitempty"`
	PriceCents      int64  `json:"price_cents"`
	DiscountCents   int64  `json:"discount_cents"`
	FinalPriceCents int64  `json:"final_price_cents"`
}

type EvaluatePromoCodeUseCase struct {
	promoCodeRepo  promo.CodeRepository
	promoUsageRepo promo.UsageRepository
	planRepo       subscription.PlanRepository
	logger         logger.Interface
}

func NewEvaluatePromoCodeUseCase(
	promoCodeRepo promo.CodeRepository,
	promoUsageRepo promo.UsageRepository,
	planRepo subscription.PlanRepository,
	logger logger.Interface,
) *EvaluatePromoCodeUseCase {
	return &EvaluatePromoCodeUseCase{
		promoCodeRepo:  promoCodeRepo,
		promoUsageRepo: promoUsageRepo,
		planRepo:       planRepo,
		logger:         logger,
	}
}

func (uc *EvaluatePromoCodeUseCase) Execute(ctx context.Context, cmd EvaluatePromoCodeCommand) (*PromoEvaluation, error) {
	plan, err := uc.planRepo.GetByID(ctx, cmd.PlanID)
	if err != nil {
		if errors.Is(err, subscription.ErrPlanNotFound) {
			return nil, apperrors.NewNotFoundError("plan not found")
		}
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	price := plan.PriceCents()

	code, err := uc.promoCodeRepo.GetByCode(ctx, cmd.Code)
	if err != nil {
		if errors.Is(err, promo.ErrCodeNotFound) {
			return &PromoEvaluation{Valid: false, Reason: promo.ErrCodeNotFound.Error(), PriceCents: price, FinalPriceCents: price}, nil
		}
		return nil, fmt.Errorf("failed to load promo code: %w", err)
	}

	userUses, err := uc.promoUsageRepo.CountByCodeAndUser(ctx, code.ID(), cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to count promo usage: %w", err)
	}

	if err := code.Validate(biztime.NowUTC(), plan.ID(), userUses); err != nil {
		return &PromoEvaluation{Valid: false, Reason: err.Error(), PriceCents: price, FinalPriceCents: price}, nil
	}

	discount := code.DiscountFor(price)
	return &PromoEvaluation{
		Valid:           true,
		DiscountType:    code.Discount().Type().String(),
		DiscountValue:   code.Discount().Value(),
		PriceCents:      price,
		DiscountCents:   discount,
		FinalPriceCents: price - discount,
	}, nil
}
