package mappers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vistream-inc/vistream/internal/domain/promo"
	vo "github.com/vistream-inc/vistream/internal/domain/promo/valueobjects"
	"github.com/vistream-inc/vistream/internal/infrastructure/persistence/models"
)

func PromoCodeToModel(c *promo.PromotionalCode) *models.PromoCodeModel {
	return &models.PromoCodeModel{
		ID:                c.ID(),
		Code:              c.Code(),
		DiscountType:      c.Discount().Type().String(),
		DiscountValue:     c.Discount().Value(),
		ValidFrom:         c.ValidFrom(),
		ValidUntil:        c.ValidUntil(),
		MaxUses:           c.MaxUses(),
		MaxUsesPerUser:    c.MaxUsesPerUser(),
		CurrentUses:       c.CurrentUses(),
		ApplicablePlanIDs: encodePlanIDs(c.ApplicablePlanIDs()),
		IsActive:          c.IsActive(),
		Version:           c.Version(),
		CreatedAt:         c.CreatedAt(),
		UpdatedAt:         c.UpdatedAt(),
	}
}

func PromoCodeToDomain(model *models.PromoCodeModel) (*promo.PromotionalCode, error) {
	discountType, err := vo.NewDiscountType(model.DiscountType)
	if err != nil {
		return nil, fmt.Errorf("invalid discount type: %w", err)
	}
	discount, err := vo.NewDiscount(discountType, model.DiscountValue)
	if err != nil {
		return nil, fmt.Errorf("invalid discount: %w", err)
	}
	planIDs, err := decodePlanIDs(model.ApplicablePlanIDs)
	if err != nil {
		return nil, fmt.Errorf("invalid applicable plan IDs: %w", err)
	}

	return promo.ReconstructPromotionalCode(promo.PromotionalCodeReconstructParams{
		ID:                model.ID,
		Code:              model.Code,
		Discount:          discount,
		ValidFrom:         model.ValidFrom,
		ValidUntil:        model.ValidUntil,
		MaxUses:           model.MaxUses,
		MaxUsesPerUser:    model.MaxUsesPerUser,
		CurrentUses:       model.CurrentUses,
		ApplicablePlanIDs: planIDs,
		IsActive:          model.IsActive,
		Version:           model.Version,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}), nil
}

func PromoUsageToModel(u *promo.Usage) *models.PromoUsageModel {
	return &models.PromoUsageModel{
		ID:            u.ID(),
		PromoCodeID:   u.PromoCodeID(),
		UserID:        u.UserID(),
		TransactionID: u.TransactionID(),
		DiscountCents: u.DiscountCents(),
		UsedAt:        u.UsedAt(),
	}
}

func PromoUsageToDomain(model *models.PromoUsageModel) *promo.Usage {
	return promo.ReconstructUsage(promo.UsageReconstructParams{
		ID:            model.ID,
		PromoCodeID:   model.PromoCodeID,
		UserID:        model.UserID,
		TransactionID: model.TransactionID,
		DiscountCents: model.DiscountCents,
		UsedAt:        model.UsedAt,
	})
}

func encodePlanIDs(ids []uint) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}

func decodePlanIDs(encoded string) ([]uint, error) {
	if encoded == "" {
		return nil, nil
	}
	parts := strings.Split(encoded, ",")
	ids := make([]uint, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
		if err != nil {
			return nil, err
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}
