package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vistream-inc/vistream/internal/application/subscription/usecases"
	"github.com/vistream-inc/vistream/internal/shared/logger"
	"github.com/vistream-inc/vistream/internal/shared/utils"
)

// SubscriptionHandler handles premium subscription operations
type SubscriptionHandler struct {
	startCheckoutUseCase    *usecases.StartCheckoutUseCase
	cancelUseCase           *usecases.CancelSubscriptionUseCase
	suspendUseCase          *usecases.SuspendSubscriptionUseCase
	reinstateUseCase        *usecases.ReinstateSubscriptionUseCase
	checkEligibilityUseCase *usecases.CheckPremiumEligibilityUseCase
	logger                  logger.Interface
}

func NewSubscriptionHandler(
	startCheckoutUC *usecases.StartCheckoutUseCase,
	cancelUC *usecases.CancelSubscriptionUseCase,
	suspendUC *usecases.SuspendSubscriptionUseCase,
	reinstateUC *usecases.ReinstateSubscriptionUseCase,
	checkEligibilityUC *usecases.CheckPremiumEligibilityUseCase,
	logger logger.Interface,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		startCheckoutUseCase:    startCheckoutUC,
		cancelUseCase:           cancelUC,
		suspendUseCase:          suspendUC,
		reinstateUseCase:        reinstateUC,
		checkEligibilityUseCase: checkEligibilityUC,
		logger:                  logger,
	}
}

// StartCheckoutRequest represents the request to begin a plan purchase
type StartCheckoutRequest struct {
	UserID    uint   `json:"user_id" binding:"required"`
	PlanID    uint   `json:"plan_id" binding:"required"`
	Gateway   string `json:"gateway" binding:"required,oneof=sslcommerz 2checkout"`
	PromoCode string `json:"promo_code"`
}

func (h *SubscriptionHandler) StartCheckout(c *gin.Context) {
	var req StartCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for start checkout", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.startCheckoutUseCase.Execute(c.Request.Context(), usecases.StartCheckoutCommand{
		UserID:    req.UserID,
		PlanID:    req.PlanID,
		Gateway:   req.Gateway,
		PromoCode: req.PromoCode,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "checkout started")
}

// CancelSubscriptionRequest represents the request to cancel a subscription
type CancelSubscriptionRequest struct {
	UserID      uint `json:"user_id"`
	AtPeriodEnd bool `json:"at_period_end"`
}

func (h *SubscriptionHandler) CancelSubscription(c *gin.Context) {
	subscriptionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CancelSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for cancel subscription", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	sub, err := h.cancelUseCase.Execute(c.Request.Context(), usecases.CancelSubscriptionCommand{
		SubscriptionID: subscriptionID,
		UserID:         req.UserID,
		AtPeriodEnd:    req.AtPeriodEnd,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "subscription cancelled", gin.H{
		"subscription_id":      sub.ID(),
		"status":               sub.Status().String(),
		"cancel_at_period_end": sub.CancelAtPeriodEnd(),
	})
}

// SuspendSubscriptionRequest represents the admin request to suspend
type SuspendSubscriptionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *SubscriptionHandler) SuspendSubscription(c *gin.Context) {
	subscriptionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SuspendSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for suspend subscription", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "suspension reason is required")
		return
	}

	if err := h.suspendUseCase.Execute(c.Request.Context(), usecases.SuspendSubscriptionCommand{
		SubscriptionID: subscriptionID,
		Reason:         req.Reason,
	}); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "subscription suspended", nil)
}

func (h *SubscriptionHandler) ReinstateSubscription(c *gin.Context) {
	subscriptionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.reinstateUseCase.Execute(c.Request.Context(), usecases.ReinstateSubscriptionCommand{
		SubscriptionID: subscriptionID,
	}); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "subscription reinstated", nil)
}

func (h *SubscriptionHandler) CheckPremiumEligibility(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	eligibility, err := h.checkEligibilityUseCase.Execute(c.Request.Context(), userID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", eligibility)
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid "+name+" parameter")
		return 0, false
	}
	return uint(id), true
}
