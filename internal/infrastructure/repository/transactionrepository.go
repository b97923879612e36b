package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/vistream-inc/vistream/internal/domain/payment"
	"github.com/vistream-inc/vistream/internal/infrastructure/persistence/mappers"
	"github.com/vistream-inc/vistream/internal/infrastructure/persistence/models"
	"github.com/vistream-inc/vistream/internal/shared/db"
	apperrors "github.com/vistream-inc/vistream/internal/shared/errors"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, t *payment.Transaction) error {
	model := mappers.TransactionToModel(t)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateKeyError(err) {
			return payment.ErrDuplicateTransaction
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	t.SetID(model.ID)
	return nil
}

func (r *TransactionRepository) Update(ctx context.Context, t *payment.Transaction) error {
	model := mappers.TransactionToModel(t)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.TransactionModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"subscription_id": model.SubscriptionID,
			"status":          model.Status,
			"payment_method":  model.PaymentMethod,
			"discount_cents":  model.DiscountCents,
			"promo_code_id":   model.PromoCodeID,
			"failure_reason":  model.FailureReason,
			"metadata":        model.Metadata,
			"completed_at":    model.CompletedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update transaction: %w", result.Error)
	}
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id uint) (*payment.Transaction, error) {
	var model models.TransactionModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return mappers.TransactionToDomain(&model)
}

func (r *TransactionRepository) GetByGatewayTransactionID(ctx context.Context, gatewayTransactionID string) (*payment.Transaction, error) {
	var model models.TransactionModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("gateway_transaction_id = ?", gatewayTransactionID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction by gateway transaction id: %w", err)
	}
	return mappers.TransactionToDomain(&model)
}

func (r *TransactionRepository) ListBySubscriptionID(ctx context.Context, subscriptionID uint) ([]*payment.Transaction, error) {
	var modelList []models.TransactionModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("subscription_id = ?", subscriptionID).
		Order("created_at DESC").
		Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	transactions := make([]*payment.Transaction, 0, len(modelList))
	for i := range modelList {
		t, err := mappers.TransactionToDomain(&modelList[i])
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, nil
}
