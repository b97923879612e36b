package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/vistream-inc/vistream/internal/domain/subscription"
	vo "github.com/vistream-inc/vistream/internal/domain/subscription/valueobjects"
	"github.com/vistream-inc/vistream/internal/infrastructure/persistence/mappers"
	"github.com/vistream-inc/vistream/internal/infrastructure/persistence/models"
	"github.com/vistream-inc/vistream/internal/shared/db"
)

var nonTerminalStatuses = []string{
	vo.StatusActive.String(),
	vo.StatusGracePeriod.String(),
	vo.StatusSuspended.String(),
}

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(ctx context.Context, s *subscription.Subscription) error {
	tx := db.GetTxFromContext(ctx, r.db)

	// One non-terminal subscription per user. The check runs inside the
	// caller's transaction, together with the insert.
	var count int64
	if err := tx.Model(&models.SubscriptionModel{}).
		Where("user_id = ? AND status IN ?", s.UserID(), nonTerminalStatuses).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check existing subscriptions: %w", err)
	}
	if count > 0 {
		return subscription.ErrDuplicateActiveSubscription
	}

	model := mappers.SubscriptionToModel(s)
	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return s.SetID(model.ID)
}

func (r *SubscriptionRepository) Update(ctx context.Context, s *subscription.Subscription) error {
	model := mappers.SubscriptionToModel(s)

	// Optimistic locking: the update only applies if nobody else bumped
	// the version since this aggregate was loaded.
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.SubscriptionModel{}).
		Where("id = ? AND version < ?", model.ID, model.Version).
		Updates(map[string]interface{}{
			"status":               model.Status,
			"end_date":             model.EndDate,
			"renewal_date":         model.RenewalDate,
			"cancelled_at":         model.CancelledAt,
			"cancel_at_period_end": model.CancelAtPeriodEnd,
			"grace_period_ends_at": model.GracePeriodEndsAt,
			"suspension_reason":    model.SuspensionReason,
			"version":              model.Version,
			"updated_at":           model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return subscription.ErrInvalidTransition("stale", "concurrent update")
	}
	return nil
}

func (r *SubscriptionRepository) GetByID(ctx context.Context, id uint) (*subscription.Subscription, error) {
	var model models.SubscriptionModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subscription.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return mappers.SubscriptionToDomain(&model)
}

func (r *SubscriptionRepository) GetActiveByUserID(ctx context.Context, userID uint) (*subscription.Subscription, error) {
	var model models.SubscriptionModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ? AND status IN ?", userID, nonTerminalStatuses).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subscription.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get active subscription: %w", err)
	}
	return mappers.SubscriptionToDomain(&model)
}

func (r *SubscriptionRepository) GetByGatewaySubscriptionID(ctx context.Context, gatewaySubscriptionID string) (*subscription.Subscription, error) {
	var model models.SubscriptionModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("gateway_subscription_id = ? AND status IN ?", gatewaySubscriptionID, nonTerminalStatuses).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subscription.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get subscription by gateway subscription id: %w", err)
	}
	return mappers.SubscriptionToDomain(&model)
}

func (r *SubscriptionRepository) ListGraceExpiredBefore(ctx context.Context, deadline time.Time) ([]*subscription.Subscription, error) {
	var modelList []models.SubscriptionModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("status = ? AND grace_period_ends_at < ?", vo.StatusGracePeriod.String(), deadline).
		Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list lapsed subscriptions: %w", err)
	}
	return r.toDomainList(modelList)
}

func (r *SubscriptionRepository) ListPendingPeriodEndCancellation(ctx context.Context, now time.Time) ([]*subscription.Subscription, error) {
	var modelList []models.SubscriptionModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("status = ? AND cancel_at_period_end = ? AND renewal_date <= ?", vo.StatusActive.String(), true, now).
		Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending cancellations: %w", err)
	}
	return r.toDomainList(modelList)
}

func (r *SubscriptionRepository) toDomainList(modelList []models.SubscriptionModel) ([]*subscription.Subscription, error) {
	subs := make([]*subscription.Subscription, 0, len(modelList))
	for i := range modelList {
		s, err := mappers.SubscriptionToDomain(&modelList[i])
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, nil
}
