package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/vistream-inc/vistream/internal/domain/payout"
	vo "github.com/vistream-inc/vistream/internal/domain/payout/valueobjects"
	"github.com/vistream-inc/vistream/internal/infrastructure/persistence/models"
)

func PayoutToModel(p *payout.CreatorPayout) *models.PayoutModel {
	return &models.PayoutModel{
		ID:                  p.ID(),
		ChannelID:           p.ChannelID(),
		PayoutMethodID:      p.PayoutMethodID(),
		PeriodStart:         p.PeriodStart(),
		PeriodEnd:           p.PeriodEnd(),
		AdRevenueCents:      p.AdRevenueCents(),
		PremiumRevenueCents: p.PremiumRevenueCents(),
		GrossCents:          p.GrossCents(),
		PlatformFeeCents:    p.PlatformFeeCents(),
		GatewayFeeCents:     p.GatewayFeeCents(),
		TaxWithheldCents:    p.TaxWithheldCents(),
		NetPayoutCents:      p.NetPayoutCents(),
		Currency:            p.Currency(),
		Status:              p.Status().String(),
		Reference:           p.Reference(),
		PaymentReference:    p.PaymentReference(),
		FailureReason:       p.FailureReason(),
		ProcessedAt:         p.ProcessedAt(),
		CompletedAt:         p.CompletedAt(),
		Version:             p.Version(),
		CreatedAt:           p.CreatedAt(),
		UpdatedAt:           p.UpdatedAt(),
	}
}

func PayoutToDomain(model *models.PayoutModel) (*payout.CreatorPayout, error) {
	status, err := vo.NewPayoutStatus(model.Status)
	if err != nil {
		return nil, fmt.Errorf("invalid payout status: %w", err)
	}

	return payout.ReconstructCreatorPayout(payout.CreatorPayoutReconstructParams{
		ID:                  model.ID,
		ChannelID:           model.ChannelID,
		PayoutMethodID:      model.PayoutMethodID,
		PeriodStart:         model.PeriodStart,
		PeriodEnd:           model.PeriodEnd,
		AdRevenueCents:      model.AdRevenueCents,
		PremiumRevenueCents: model.PremiumRevenueCents,
		GrossCents:          model.GrossCents,
		PlatformFeeCents:    model.PlatformFeeCents,
		GatewayFeeCents:     model.GatewayFeeCents,
		TaxWithheldCents:    model.TaxWithheldCents,
		NetPayoutCents:      model.NetPayoutCents,
		Currency:            model.Currency,
		Status:              status,
		Reference:           model.Reference,
		PaymentReference:    model.PaymentReference,
		FailureReason:       model.FailureReason,
		ProcessedAt:         model.ProcessedAt,
		CompletedAt:         model.CompletedAt,
		Version:             model.Version,
		CreatedAt:           model.CreatedAt,
		UpdatedAt:           model.UpdatedAt,
	}), nil
}

func PayoutMethodToModel(m *payout.PayoutMethod) (*models.PayoutMethodModel, error) {
	details, err := json.Marshal(m.AccountDetails())
	if err != nil {
		return nil, fmt.Errorf("failed to encode account details: %w", err)
	}

	return &models.PayoutMethodModel{
		ID:             m.ID(),
		ChannelID:      m.ChannelID(),
		MethodType:     m.MethodType().String(),
		AccountName:    m.AccountName(),
		AccountDetails: datatypes.JSON(details),
		IsDefault:      m.IsDefault(),
		IsVerified:     m.IsVerified(),
		VerifiedAt:     m.VerifiedAt(),
		CreatedAt:      m.CreatedAt(),
		UpdatedAt:      m.UpdatedAt(),
	}, nil
}

func PayoutMethodToDomain(model *models.PayoutMethodModel) (*payout.PayoutMethod, error) {
	methodType, err := vo.NewPayoutMethodType(model.MethodType)
	if err != nil {
		return nil, fmt.Errorf("invalid payout method type: %w", err)
	}

	details := make(map[string]interface{})
	if len(model.AccountDetails) > 0 {
		if err := json.Unmarshal(model.AccountDetails, &details); err != nil {
			return nil, fmt.Errorf("failed to decode account details: %w", err)
		}
	}

	return payout.ReconstructPayoutMethod(payout.PayoutMethodReconstructParams{
		ID:             model.ID,
		ChannelID:      model.ChannelID,
		MethodType:     methodType,
		AccountName:    model.AccountName,
		AccountDetails: details,
		IsDefault:      model.IsDefault,
		IsVerified:     model.IsVerified,
		VerifiedAt:     model.VerifiedAt,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}), nil
}
