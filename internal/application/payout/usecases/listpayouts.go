package usecases

import (
	"context"
	"fmt"

	"github.com/vistream-inc/vistream/internal/domain/payout"
	"github.com/vistream-inc/vistream/internal/shared/logger"
)

// ListPayoutsCommand filters the payout listing. ChannelID filters to one
// channel; Status filters by lifecycle state; both are optional.
type ListPayoutsCommand struct {
	ChannelID uint
	Status    string
	Page      int
	PageSize  int
}

type ListPayoutsUseCase struct {
	payoutRepo payout.PayoutRepository
	logger     logger.Interface
}

func NewListPayoutsUseCase(payoutRepo payout.PayoutRepository, logger logger.Interface) *ListPayoutsUseCase {
	return &ListPayoutsUseCase{payoutRepo: payoutRepo, logger: logger}
}

func (uc *ListPayoutsUseCase) Execute(ctx context.Context, cmd ListPayoutsCommand) ([]*payout.CreatorPayout, int64, error) {
	if cmd.Page < 1 {
		cmd.Page = 1
	}
	if cmd.PageSize < 1 || cmd.PageSize > 100 {
		cmd.PageSize = 20
	}
	offset := (cmd.Page - 1) * cmd.PageSize

	var (
		payouts []*payout.CreatorPayout
		total   int64
		err     error
	)
	if cmd.ChannelID != 0 {
		payouts, total, err = uc.payoutRepo.ListByChannelID(ctx, cmd.ChannelID, cmd.PageSize, offset)
	} else {
		payouts, total, err = uc.payoutRepo.ListByStatus(ctx, cmd.Status, cmd.PageSize, offset)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payouts: %w", err)
	}
	return payouts, total, nil
}
