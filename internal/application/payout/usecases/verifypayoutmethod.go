package usecases

import (
	"context"
	"errors"

	"github.com/vistream-inc/vistream/internal/domain/payout"
	apperrors "github.com/vistream-inc/vistream/internal/shared/errors"
	"github.com/vistream-inc/vistream/internal/shared/logger"
)

type VerifyPayoutMethodCommand struct {
	MethodID uint
}

// VerifyPayoutMethodUseCase marks a payout method usable for disbursement.
// Operators run it after confirming the account belongs to the creator.
type VerifyPayoutMethodUseCase struct {
	methodRepo payout.MethodRepository
	logger     logger.Interface
}

func NewVerifyPayoutMethodUseCase(methodRepo payout.MethodRepository, logger logger.Interface) *VerifyPayoutMethodUseCase {
	return &VerifyPayoutMethodUseCase{
		methodRepo: methodRepo,
		logger:     logger,
	}
}

func (uc *VerifyPayoutMethodUseCase) Execute(ctx context.Context, cmd VerifyPayoutMethodCommand) (*payout.PayoutMethod, error) {
	method, err := uc.methodRepo.GetByID(ctx, cmd.MethodID)
	if err != nil {
		if errors.Is(err, payout.ErrPayoutMethodNotFound) {
			return nil, apperrors.NewNotFoundError("payout method not found")
		}
		return nil, apperrors.NewInternalError("failed to load payout method", err.Error())
	}

	if method.IsVerified() {
		return method, nil
	}

	method.Verify()
	if err := uc.methodRepo.Update(ctx, method); err != nil {
		return nil, apperrors.NewInternalError("failed to verify payout method", err.Error())
	}

	uc.logger.Infow("payout method verified",
		"method_id", method.ID(),
		"channel_id", method.ChannelID(),
	)
	return method, nil
}
