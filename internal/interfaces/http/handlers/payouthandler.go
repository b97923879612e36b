package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vistream-inc/vistream/internal/application/payout/usecases"
	"github.com/vistream-inc/vistream/internal/domain/payout"
	"github.com/vistream-inc/vistream/internal/shared/biztime"
	"github.com/vistream-inc/vistream/internal/shared/logger"
	"github.com/vistream-inc/vistream/internal/shared/utils"
)

// PayoutHandler handles creator payout settlement and payout methods.
type PayoutHandler struct {
	settleUseCase         *usecases.SettlePayoutUseCase
	processUseCase        *usecases.ProcessPayoutUseCase
	listUseCase           *usecases.ListPayoutsUseCase
	registerMethodUseCase *usecases.RegisterPayoutMethodUseCase
	verifyMethodUseCase   *usecases.VerifyPayoutMethodUseCase
	logger                logger.Interface
}

func NewPayoutHandler(
	settleUC *usecases.SettlePayoutUseCase,
	processUC *usecases.ProcessPayoutUseCase,
	listUC *usecases.ListPayoutsUseCase,
	registerMethodUC *usecases.RegisterPayoutMethodUseCase,
	verifyMethodUC *usecases.VerifyPayoutMethodUseCase,
	logger logger.Interface,
) *PayoutHandler {
	return &PayoutHandler{
		settleUseCase:         settleUC,
		processUseCase:        processUC,
		listUseCase:           listUC,
		registerMethodUseCase: registerMethodUC,
		verifyMethodUseCase:   verifyMethodUC,
		logger:                logger,
	}
}

// SettlePayoutRequest asks for one channel-period to be settled
type SettlePayoutRequest struct {
	ChannelID   uint   `json:"channel_id" binding:"required"`
	PeriodStart string `json:"period_start" binding:"required,dateonly"`
	PeriodEnd   string `json:"period_end" binding:"required,dateonly"`
}

// PayoutResponse is the wire form of a creator payout
type PayoutResponse struct {
	ID                  uint       `json:"id"`
	ChannelID           uint       `json:"channel_id"`
	PeriodStart         string     `json:"period_start"`
	PeriodEnd           string     `json:"period_end"`
	AdRevenueCents      int64      `json:"ad_revenue_cents"`
	PremiumRevenueCents int64      `json:"premium_revenue_cents"`
	GrossCents          int64      `json:"gross_cents"`
	PlatformFeeCents    int64      `json:"platform_fee_cents"`
	GatewayFeeCents     int64      `json:"gateway_fee_cents"`
	TaxWithheldCents    int64      `json:"tax_withheld_cents"`
	NetPayoutCents      int64      `json:"net_payout_cents"`
	Currency            string     `json:"currency"`
	Status              string     `json:"status"`
	Reference           string     `json:"reference"`
	PaymentReference    *string    `json:"payment_reference,omitempty"`
	FailureReason       *string    `json:"failure_reason,omitempty"`
	ProcessedAt         *time.Time `json:"processed_at,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
}

func (h *PayoutHandler) SettlePayout(c *gin.Context) {
	var req SettlePayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for settle payout", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	periodStart, err := biztime.ParseDate(req.PeriodStart)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "period_start must be YYYY-MM-DD")
		return
	}
	periodEnd, err := biztime.ParseDate(req.PeriodEnd)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "period_end must be YYYY-MM-DD")
		return
	}

	p, err := h.settleUseCase.Execute(c.Request.Context(), usecases.SettlePayoutCommand{
		ChannelID:   req.ChannelID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, toPayoutResponse(p), "payout settled")
}

func (h *PayoutHandler) ProcessPayout(c *gin.Context) {
	payoutID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	p, err := h.processUseCase.Execute(c.Request.Context(), usecases.ProcessPayoutCommand{
		PayoutID: payoutID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "payout processed", toPayoutResponse(p))
}

func (h *PayoutHandler) ListPayouts(c *gin.Context) {
	channelID, _ := strconv.ParseUint(c.Query("channel_id"), 10, 32)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	payouts, total, err := h.listUseCase.Execute(c.Request.Context(), usecases.ListPayoutsCommand{
		ChannelID: uint(channelID),
		Status:    c.Query("status"),
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	items := make([]PayoutResponse, 0, len(payouts))
	for _, p := range payouts {
		items = append(items, toPayoutResponse(p))
	}

	utils.SuccessResponse(c, http.StatusOK, "", utils.ListResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// RegisterPayoutMethodRequest adds a disbursement destination for a channel
type RegisterPayoutMethodRequest struct {
	ChannelID      uint                   `json:"channel_id" binding:"required"`
	MethodType     string                 `json:"method_type" binding:"required,oneof=bank_transfer paypal mobile_banking"`
	AccountName    string                 `json:"account_name" binding:"required"`
	AccountDetails map[string]interface{} `json:"account_details"`
	MakeDefault    bool                   `json:"make_default"`
}

func (h *PayoutHandler) RegisterPayoutMethod(c *gin.Context) {
	var req RegisterPayoutMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for register payout method", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	method, err := h.registerMethodUseCase.Execute(c.Request.Context(), usecases.RegisterPayoutMethodCommand{
		ChannelID:      req.ChannelID,
		MethodType:     req.MethodType,
		AccountName:    req.AccountName,
		AccountDetails: req.AccountDetails,
		MakeDefault:    req.MakeDefault,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"id":          method.ID(),
		"channel_id":  method.ChannelID(),
		"method_type": method.MethodType().String(),
		"is_default":  method.IsDefault(),
		"is_verified": method.IsVerified(),
	}, "payout method registered")
}

func (h *PayoutHandler) VerifyPayoutMethod(c *gin.Context) {
	methodID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	method, err := h.verifyMethodUseCase.Execute(c.Request.Context(), usecases.VerifyPayoutMethodCommand{
		MethodID: methodID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "payout method verified", gin.H{
		"id":          method.ID(),
		"is_verified": method.IsVerified(),
	})
}

func toPayoutResponse(p *payout.CreatorPayout) PayoutResponse {
	return PayoutResponse{
		ID:                  p.ID(),
		ChannelID:           p.ChannelID(),
		PeriodStart:         biztime.FormatDate(p.PeriodStart()),
		PeriodEnd:           biztime.FormatDate(p.PeriodEnd()),
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
	}
}
