package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/vistream-inc/vistream/internal/domain/promo"
	vo "github.com/vistream-inc/vistream/internal/domain/promo/valueobjects"
	apperrors "github.com/vistream-inc/vistream/internal/shared/errors"
	"github.com/vistream-inc/vistream/internal/shared/logger"
)

// CreatePromoCodeCommand describes a new promotional code.
type CreatePromoCodeCommand struct {
	Code              string
	DiscountType      string
	DiscountValue     int64
	ValidFrom         time.Time
	ValidUntil        time.Time
	MaxUses           *int
	MaxUsesPerUser    int
	ApplicablePlanIDs []uint
}

type CreatePromoCodeUseCase struct {
	promoCodeRepo promo.CodeRepository
	logger        logger.Interface
}

func NewCreatePromoCodeUseCase(promoCodeRepo promo.CodeRepository, logger logger.Interface) *CreatePromoCodeUseCase {
	return &CreatePromoCodeUseCase{promoCodeRepo: promoCodeRepo, logger: logger}
}

func (uc *CreatePromoCodeUseCase) Execute(ctx context.Context, cmd CreatePromoCodeCommand) (*promo.PromotionalCode, error) {
	discountType, err := vo.NewDiscountType(cmd.DiscountType)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid discount type", err.Error())
	}
	discount, err := vo.NewDiscount(discountType, cmd.DiscountValue)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid discount", err.Error())
	}

	code, err := promo.NewPromotionalCode(cmd.Code, discount, cmd.ValidFrom, cmd.ValidUntil)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid promotional code", err.Error())
	}
	if cmd.MaxUses != nil {
		if err := code.SetMaxUses(*cmd.MaxUses); err != nil {
			return nil, apperrors.NewValidationError("invalid usage cap", err.Error())
		}
	}
	if cmd.MaxUsesPerUser > 0 {
		if err := code.SetMaxUsesPerUser(cmd.MaxUsesPerUser); err != nil {
			return nil, apperrors.NewValidationError("invalid per-user cap", err.Error())
		}
	}
	if len(cmd.ApplicablePlanIDs) > 0 {
		code.RestrictToPlans(cmd.ApplicablePlanIDs)
	}

	if err := uc.promoCodeRepo.Create(ctx, code); err != nil {
		if apperrors.IsDuplicateKeyError(err) {
			return nil, apperrors.NewConflictError("promotional code already exists")
		}
		return nil, fmt.Errorf("failed to create promotional code: %w", err)
	}

	uc.logger.Infow("promotional code created", "code", code.Code(), "promo_code_id", code.ID())
	return code, nil
}
