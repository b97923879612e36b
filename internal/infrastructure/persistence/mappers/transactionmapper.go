package mappers

import (
	"fmt"

	"github.com/vistream-inc/vistream/internal/domain/payment"
	vo "github.com/vistream-inc/vistream/internal/domain/payment/valueobjects"
	"github.com/vistream-inc/vistream/internal/infrastructure/persistence/models"
)

func TransactionToModel(t *payment.Transaction) *models.TransactionModel {
	model := &models.TransactionModel{
		ID:                   t.ID(),
		UserID:               t.UserID(),
		SubscriptionID:       t.SubscriptionID(),
		Gateway:              t.Gateway().String(),
		GatewayTransactionID: t.GatewayTransactionID(),
		AmountCents:          t.Amount().AmountInCents(),
		Currency:             t.Amount().Currency(),
		Status:               t.Status().String(),
		PaymentMethod:        t.PaymentMethod(),
		DiscountCents:        t.DiscountCents(),
		PromoCodeID:          t.PromoCodeID(),
		RefundOfID:           t.RefundOfID(),
		FailureReason:        t.FailureReason(),
		CreatedAt:            t.CreatedAt(),
		CompletedAt:          t.CompletedAt(),
	}

	if len(t.Metadata()) > 0 {
		model.Metadata = t.Metadata()
	}
	return model
}

func TransactionToDomain(model *models.TransactionModel) (*payment.Transaction, error) {
	gateway, err := vo.NewGateway(model.Gateway)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway: %w", err)
	}

	status := vo.TransactionStatus(model.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid transaction status: %s", model.Status)
	}

	return payment.ReconstructTransaction(payment.TransactionReconstructParams{
		ID:                   model.ID,
		UserID:               model.UserID,
		SubscriptionID:       model.SubscriptionID,
		Gateway:              gateway,
		GatewayTransactionID: model.GatewayTransactionID,
		Amount:               vo.NewMoney(model.AmountCents, model.Currency),
		Status:               status,
		PaymentMethod:        model.PaymentMethod,
		DiscountCents:        model.DiscountCents,
		PromoCodeID:          model.PromoCodeID,
		RefundOfID:           model.RefundOfID,
		FailureReason:        model.FailureReason,
		Metadata:             model.Metadata,
		CreatedAt:            model.CreatedAt,
		CompletedAt:          model.CompletedAt,
	}), nil
}
