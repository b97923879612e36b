package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vistream-inc/vistream/internal/application/revenue/usecases"
	"github.com/vistream-inc/vistream/internal/shared/biztime"
	"github.com/vistream-inc/vistream/internal/shared/logger"
	"github.com/vistream-inc/vistream/internal/shared/utils"
)

// TelemetryHandler ingests daily monetization telemetry from the ad server
// and the premium view counter.
type TelemetryHandler struct {
	ingestUseCase *usecases.IngestDailyTelemetryUseCase
	logger        logger.Interface
}

func NewTelemetryHandler(ingestUC *usecases.IngestDailyTelemetryUseCase, logger logger.Interface) *TelemetryHandler {
	return &TelemetryHandler{
		ingestUseCase: ingestUC,
		logger:        logger,
	}
}

// IngestTelemetryRequest carries one video-day of monetization figures.
// Re-sending the same video and date replaces the stored figures until the
// day is locked by settlement.
type IngestTelemetryRequest struct {
	VideoID        uint   `json:"video_id" binding:"required"`
	ChannelID      uint   `json:"channel_id" binding:"required"`
	Date           string `json:"date" binding:"required,dateonly"`
	AdRevenueCents int64  `json:"ad_revenue_cents"`
	AdImpressions  int64  `json:"ad_impressions"`
	PremiumViews   int64  `json:"premium_views"`
}

func (h *TelemetryHandler) IngestDailyTelemetry(c *gin.Context) {
	var req IngestTelemetryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for telemetry ingest", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := biztime.ParseDate(req.Date)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	share, err := h.ingestUseCase.Execute(c.Request.Context(), usecases.IngestDailyTelemetryCommand{
		VideoID:        req.VideoID,
		ChannelID:      req.ChannelID,
		Date:           date,
		AdRevenueCents: req.AdRevenueCents,
		AdImpressions:  req.AdImpressions,
		PremiumViews:   req.PremiumViews,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "telemetry recorded", gin.H{
		"video_id":              share.VideoID(),
		"date":                  biztime.FormatDate(share.Date()),
		"ad_revenue_cents":      share.AdRevenueCents(),
		"premium_revenue_cents": share.PremiumRevenueCents(),
		"creator_share_cents":   share.CreatorShareCents(),
	})
}
