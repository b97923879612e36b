package usecases

import (
	"context"

	"github.com/vistream-inc/vistream/internal/domain/payout"
	vo "github.com/vistream-inc/vistream/internal/domain/payout/valueobjects"
	"github.com/vistream-inc/vistream/internal/shared/db"
	apperrors "github.com/vistream-inc/vistream/internal/shared/errors"
	"github.com/vistream-inc/vistream/internal/shared/logger"
)

type RegisterPayoutMethodCommand struct {
	ChannelID      uint
	MethodType     string
	AccountName    string
	AccountDetails map[string]interface{}
	MakeDefault    bool
}

// RegisterPayoutMethodUseCase records a channel's disbursement destination.
// New methods start unverified; settlement ignores them until an operator
// verifies the account.
type RegisterPayoutMethodUseCase struct {
	methodRepo payout.MethodRepository
	txManager  db.Transactor
	logger     logger.Interface
}

func NewRegisterPayoutMethodUseCase(
	methodRepo payout.MethodRepository,
	txManager db.Transactor,
	logger logger.Interface,
) *RegisterPayoutMethodUseCase {
	return &RegisterPayoutMethodUseCase{
		methodRepo: methodRepo,
		txManager:  txManager,
		logger:     logger,
	}
}

func (uc *RegisterPayoutMethodUseCase) Execute(ctx context.Context, cmd RegisterPayoutMethodCommand) (*payout.PayoutMethod, error) {
	methodType, err := vo.NewPayoutMethodType(cmd.MethodType)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid payout method type", err.Error())
	}

	method, err := payout.NewPayoutMethod(cmd.ChannelID, methodType, cmd.AccountName, cmd.AccountDetails)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid payout method", err.Error())
	}

	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if cmd.MakeDefault {
			// Demote the previous default inside the same transaction.
			existing, err := uc.methodRepo.ListByChannelID(txCtx, cmd.ChannelID)
			if err != nil {
				return err
			}
			for _, m := range existing {
				if m.IsDefault() {
					m.UnmarkDefault()
					if err := uc.methodRepo.Update(txCtx, m); err != nil {
						return err
					}
				}
			}
			method.MarkDefault()
		}
		return uc.methodRepo.Create(txCtx, method)
	})
	if err != nil {
		uc.logger.Errorw("failed to register payout method",
			"channel_id", cmd.ChannelID,
			"error", err,
		)
		return nil, apperrors.NewInternalError("failed to register payout method", err.Error())
	}

	uc.logger.Infow("payout method registered",
		"method_id", method.ID(),
		"channel_id", cmd.ChannelID,
		"method_type", methodType.String(),
		"default", method.IsDefault(),
	)
	return method, nil
}
