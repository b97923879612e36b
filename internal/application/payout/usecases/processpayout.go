package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vistream-inc/vistream/internal/domain/payout"
	"github.com/vistream-inc/vistream/internal/shared/db"
	apperrors "github.com/vistream-inc/vistream/internal/shared/errors"
	"github.com/vistream-inc/vistream/internal/shared/goroutine"
	"github.com/vistream-inc/vistream/internal/shared/logger"
)

// ProcessPayoutCommand submits a pending or failed payout to the gateway.
type ProcessPayoutCommand struct {
	PayoutID uint
}

// ProcessPayoutUseCase drives a payout through disbursement. On gateway
// success the payout completes and every revenue share in its period is
// locked, in one database transaction, so a settled period can never be
// rewritten by late telemetry. On gateway failure the payout is marked
// failed and stays retryable.
type ProcessPayoutUseCase struct {
	payoutRepo payout.PayoutRepository
	methodRepo payout.MethodRepository
	shareRepo  shareLocker
	gateway    PayoutGateway
	notifier   PayoutNotifier // Optional
	txManager  db.Transactor
	logger     logger.Interface
}

// shareLocker is the slice of the revenue repository this use case needs.
type shareLocker interface {
	LockByChannelInPeriod(ctx context.Context, channelID uint, start, end time.Time) error
}

func NewProcessPayoutUseCase(
	payoutRepo payout.PayoutRepository,
	methodRepo payout.MethodRepository,
	shareRepo shareLocker,
	gateway PayoutGateway,
	txManager db.Transactor,
	logger logger.Interface,
) *ProcessPayoutUseCase {
	return &ProcessPayoutUseCase{
		payoutRepo: payoutRepo,
		methodRepo: methodRepo,
		shareRepo:  shareRepo,
		gateway:    gateway,
		txManager:  txManager,
		logger:     logger,
	}
}

// SetNotifier sets the completion notifier (optional dependency injection)
func (uc *ProcessPayoutUseCase) SetNotifier(notifier PayoutNotifier) {
	uc.notifier = notifier
}

func (uc *ProcessPayoutUseCase) Execute(ctx context.Context, cmd ProcessPayoutCommand) (*payout.CreatorPayout, error) {
	p, err := uc.payoutRepo.GetByID(ctx, cmd.PayoutID)
	if err != nil {
		if errors.Is(err, payout.ErrPayoutNotFound) {
			return nil, apperrors.NewNotFoundError("payout not found")
		}
		return nil, fmt.Errorf("failed to load payout: %w", err)
	}

	method, err := uc.methodRepo.GetByID(ctx, p.PayoutMethodID())
	if err != nil {
		return nil, fmt.Errorf("failed to load payout method: %w", err)
	}

	if err := p.StartProcessing(); err != nil {
		if errors.Is(err, payout.ErrPayoutImmutable) {
			return nil, apperrors.NewConflictError("payout is already settled")
		}
		return nil, apperrors.NewConflictError("payout cannot be processed", err.Error())
	}
	if err := uc.payoutRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update payout: %w", err)
	}

	paymentRef, gwErr := uc.gateway.SubmitPayout(ctx, PayoutOrder{
		Reference:      p.Reference(),
		ChannelID:      p.ChannelID(),
		MethodType:     method.MethodType().String(),
		AccountName:    method.AccountName(),
		AccountDetails: method.AccountDetails(),
		AmountCents:    p.NetPayoutCents(),
		Currency:       p.Currency(),
	})
	if gwErr != nil {
		uc.logger.Errorw("payout disbursement failed",
			"payout_id", p.ID(),
			"gateway", uc.gateway.Name(),
			"error", gwErr,
		)
		if err := p.Fail(gwErr.Error()); err != nil {
			return nil, err
		}
		if err := uc.payoutRepo.Update(ctx, p); err != nil {
			return nil, fmt.Errorf("failed to record payout failure: %w", err)
		}
		return p, apperrors.NewInternalError("payout disbursement failed", gwErr.Error())
	}

	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := p.Complete(paymentRef); err != nil {
			return err
		}
		if err := uc.payoutRepo.Update(txCtx, p); err != nil {
			return fmt.Errorf("failed to complete payout: %w", err)
		}
		if err := uc.shareRepo.LockByChannelInPeriod(txCtx, p.ChannelID(), p.PeriodStart(), p.PeriodEnd()); err != nil {
			return fmt.Errorf("failed to lock revenue shares: %w", err)
		}
		return nil
	})
	if err != nil {
		// Money moved but the completion did not commit; this needs an
		// operator, not a silent retry that would pay twice.
		uc.logger.Errorw("payout disbursed but completion failed, manual reconciliation required",
			"payout_id", p.ID(),
			"payment_reference", paymentRef,
			"error", err,
		)
		return nil, err
	}

	uc.logger.Infow("payout completed",
		"payout_id", p.ID(),
		"channel_id", p.ChannelID(),
		"net_cents", p.NetPayoutCents(),
		"payment_reference", paymentRef,
	)
	uc.notifyAsync(p, paymentRef)
	return p, nil
}

func (uc *ProcessPayoutUseCase) notifyAsync(p *payout.CreatorPayout, paymentRef string) {
	if uc.notifier == nil {
		return
	}
	n := PayoutNotification{
		ChannelID:        p.ChannelID(),
		Reference:        p.Reference(),
		PeriodStart:      p.PeriodStart(),
		PeriodEnd:        p.PeriodEnd(),
		GrossCents:       p.GrossCents(),
		PlatformFeeCents: p.PlatformFeeCents(),
		GatewayFeeCents:  p.GatewayFeeCents(),
		TaxWithheldCents: p.TaxWithheldCents(),
		NetCents:         p.NetPayoutCents(),
		Currency:         p.Currency(),
		PaymentReference: paymentRef,
	}
	goroutine.SafeGo(uc.logger, "payout-notification", func() {
		if err := uc.notifier.NotifyPayoutCompleted(context.Background(), n); err != nil {
			uc.logger.Warnw("failed to send payout notification", "payout_id", p.ID(), "error", err)
		}
	})
}
