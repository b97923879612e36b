package mappers

import (
	"fmt"

	"github.com/vistream-inc/vistream/internal/domain/subscription"
	vo "github.com/vistream-inc/vistream/internal/domain/subscription/valueobjects"
	"github.com/vistream-inc/vistream/internal/infrastructure/persistence/models"
)

func SubscriptionToModel(s *subscription.Subscription) *models.SubscriptionModel {
	return &models.SubscriptionModel{
		ID:                    s.ID(),
		UserID:                s.UserID(),
		PlanID:                s.PlanID(),
		Status:                s.Status().String(),
		Gateway:               s.Gateway(),
		GatewaySubscriptionID: s.GatewaySubscriptionID(),
		GatewayCustomerID:     s.GatewayCustomerID(),
		StartDate:             s.StartDate(),
		EndDate:               s.EndDate(),
		RenewalDate:           s.RenewalDate(),
		CancelledAt:           s.CancelledAt(),
		CancelAtPeriodEnd:     s.CancelAtPeriodEnd(),
		GracePeriodEndsAt:     s.GracePeriodEndsAt(),
		SuspensionReason:      s.SuspensionReason(),
		Version:               s.Version(),
		CreatedAt:             s.CreatedAt(),
		UpdatedAt:             s.UpdatedAt(),
	}
}

func SubscriptionToDomain(model *models.SubscriptionModel) (*subscription.Subscription, error) {
	sub, err := subscription.ReconstructSubscription(subscription.SubscriptionReconstructParams{
		ID:                    model.ID,
		UserID:                model.UserID,
		PlanID:                model.PlanID,
		Status:                vo.SubscriptionStatus(model.Status),
		Gateway:               model.Gateway,
		GatewaySubscriptionID: model.GatewaySubscriptionID,
		GatewayCustomerID:     model.GatewayCustomerID,
		StartDate:             model.StartDate,
		EndDate:               model.EndDate,
		RenewalDate:           model.RenewalDate,
		CancelledAt:           model.CancelledAt,
		CancelAtPeriodEnd:     model.CancelAtPeriodEnd,
		GracePeriodEndsAt:     model.GracePeriodEndsAt,
		SuspensionReason:      model.SuspensionReason,
		Version:               model.Version,
		CreatedAt:             model.CreatedAt,
		UpdatedAt:             model.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct subscription: %w", err)
	}
	return sub, nil
}

func PlanToModel(p *subscription.Plan) *models.PlanModel {
	features := p.Features()
	return &models.PlanModel{
		ID:                   p.ID(),
		Name:                 p.Name(),
		PlanType:             p.PlanType().String(),
		MaxResolution:        features.MaxResolution(),
		AdFree:               features.AdFree(),
		PremiumContentAccess: features.PremiumContentAccess(),
		EarlyAccess:          features.EarlyAccess(),
		PriceMonthlyCents:    p.PriceMonthlyCents(),
		PriceAnnualCents:     p.PriceAnnualCents(),
		DisplayCurrency:      p.DisplayCurrency(),
		IsActive:             p.IsActive(),
		Version:              p.Version(),
		CreatedAt:            p.CreatedAt(),
		UpdatedAt:            p.UpdatedAt(),
	}
}

func PlanToDomain(model *models.PlanModel) (*subscription.Plan, error) {
	planType, err := vo.NewPlanType(model.PlanType)
	if err != nil {
		return nil, fmt.Errorf("invalid plan type: %w", err)
	}
	features, err := vo.NewPlanFeatures(model.MaxResolution, model.AdFree, model.PremiumContentAccess, model.EarlyAccess)
	if err != nil {
		return nil, fmt.Errorf("invalid plan features: %w", err)
	}

	return subscription.ReconstructPlan(
		model.ID,
		model.Name,
		planType,
		features,
		model.PriceMonthlyCents,
		model.PriceAnnualCents,
		model.DisplayCurrency,
		model.IsActive,
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	), nil
}
