package mappers

import (
	"github.com/vistream-inc/vistream/internal/domain/revenue"
	"github.com/vistream-inc/vistream/internal/infrastructure/persistence/models"
)

func RevenueShareToModel(s *revenue.RevenueShare) *models.RevenueShareModel {
	return &models.RevenueShareModel{
		ID:                  s.ID(),
		VideoID:             s.VideoID(),
		ChannelID:           s.ChannelID(),
		Date:                s.Date(),
		AdRevenueCents:      s.AdRevenueCents(),
		PremiumRevenueCents: s.PremiumRevenueCents(),
		AdImpressions:       s.AdImpressions(),
		PremiumViews:        s.PremiumViews(),
		CreatorShareCents:   s.CreatorShareCents(),
		Locked:              s.Locked(),
		CreatedAt:           s.CreatedAt(),
		UpdatedAt:           s.UpdatedAt(),
	}
}

func RevenueShareToDomain(model *models.RevenueShareModel) *revenue.RevenueShare {
	return revenue.ReconstructRevenueShare(revenue.RevenueShareReconstructParams{
		ID:                  model.ID,
		VideoID:             model.VideoID,
		ChannelID:           model.ChannelID,
		Date:                model.Date,
		AdRevenueCents:      model.AdRevenueCents,
		PremiumRevenueCents: model.PremiumRevenueCents,
		AdImpressions:       model.AdImpressions,
		PremiumViews:        model.PremiumViews,
		CreatorShareCents:   model.CreatorShareCents,
		Locked:              model.Locked,
		CreatedAt:           model.CreatedAt,
		UpdatedAt:           model.UpdatedAt,
	})
}

func MonetizedVideoToModel(v *revenue.MonetizedVideo) *models.MonetizedVideoModel {
	return &models.MonetizedVideoModel{
		ID:             v.ID(),
		VideoID:        v.VideoID(),
		ChannelID:      v.ChannelID(),
		MonetizedSince: v.MonetizedSince(),
		DemonetizedAt:  v.DemonetizedAt(),
		CreatedAt:      v.CreatedAt(),
		UpdatedAt:      v.UpdatedAt(),
	}
}

func MonetizedVideoToDomain(model *models.MonetizedVideoModel) *revenue.MonetizedVideo {
	return revenue.ReconstructMonetizedVideo(revenue.MonetizedVideoReconstructParams{
		ID:             model.ID,
		VideoID:        model.VideoID,
		ChannelID:      model.ChannelID,
		MonetizedSince: model.MonetizedSince,
		DemonetizedAt:  model.DemonetizedAt,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	})
}
