package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/vistream-inc/vistream/internal/domain/payment"
	"github.com/vistream-inc/vistream/internal/domain/subscription"
	"github.com/vistream-inc/vistream/internal/shared/db"
	apperrors "github.com/vistream-inc/vistream/internal/shared/errors"
	"github.com/vistream-inc/vistream/internal/shared/logger"
)

// RefundTransactionCommand identifies the transaction to refund.
type RefundTransactionCommand struct {
	TransactionID      uint
	Reason             string
	CancelSubscription bool
}

// RefundTransactionUseCase writes a compensating refund row against a
// completed transaction. Optionally cancels the attached subscription
// immediately, for chargebacks.
type RefundTransactionUseCase struct {
	transactionRepo  payment.TransactionRepository
	subscriptionRepo subscription.SubscriptionRepository
	txManager        db.Transactor
	logger           logger.Interface
}

func NewRefundTransactionUseCase(
	transactionRepo payment.TransactionRepository,
	subscriptionRepo subscription.SubscriptionRepository,
	txManager db.Transactor,
	logger logger.Interface,
) *RefundTransactionUseCase {
	return &RefundTransactionUseCase{
		transactionRepo:  transactionRepo,
		subscriptionRepo: subscriptionRepo,
		txManager:        txManager,
		logger:           logger,
	}
}

func (uc *RefundTransactionUseCase) Execute(ctx context.Context, cmd RefundTransactionCommand) (*payment.Transaction, error) {
	if cmd.Reason == "" {
		return nil, apperrors.NewValidationError("refund reason is required")
	}

	var refund *payment.Transaction
	err := uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		original, err := uc.transactionRepo.GetByID(txCtx, cmd.TransactionID)
		if err != nil {
			if errors.Is(err, payment.ErrTransactionNotFound) {
				return apperrors.NewNotFoundError("transaction not found")
			}
			return fmt.Errorf("failed to load transaction: %w", err)
		}

		refund, err = payment.NewRefundTransaction(original, cmd.Reason)
		if err != nil {
			return apperrors.NewConflictError("transaction cannot be refunded", err.Error())
		}

		if err := uc.transactionRepo.Create(txCtx, refund); err != nil {
			// Unique index on the refund's gateway transaction ID makes a
			// double refund a no-op.
			if errors.Is(err, payment.ErrDuplicateTransaction) {
				return apperrors.NewConflictError("transaction already refunded")
			}
			return fmt.Errorf("failed to create refund: %w", err)
		}

		if cmd.CancelSubscription && original.SubscriptionID() != nil {
			sub, err := uc.subscriptionRepo.GetByID(txCtx, *original.SubscriptionID())
			if err != nil {
				return fmt.Errorf("failed to load subscription: %w", err)
			}
			if !sub.IsTerminal() {
				if err := sub.Cancel(refund.CreatedAt(), false); err != nil {
					return err
				}
				if err := uc.subscriptionRepo.Update(txCtx, sub); err != nil {
					return fmt.Errorf("failed to update subscription: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("refund recorded",
		"original_transaction_id", cmd.TransactionID,
		"refund_transaction_id", refund.ID(),
		"amount_cents", refund.Amount().AmountInCents(),
	)
	return refund, nil
}
