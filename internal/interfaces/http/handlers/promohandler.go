package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vistream-inc/vistream/internal/application/promo/usecases"
	"github.com/vistream-inc/vistream/internal/shared/logger"
	"github.com/vistream-inc/vistream/internal/shared/utils"
)

// PromoHandler handles promotional code operations
type PromoHandler struct {
	evaluateUseCase *usecases.EvaluatePromoCodeUseCase
	createUseCase   *usecases.CreatePromoCodeUseCase
	logger          logger.Interface
}

func NewPromoHandler(
	evaluateUC *usecases.EvaluatePromoCodeUseCase,
	createUC *usecases.CreatePromoCodeUseCase,
	logger logger.Interface,
) *PromoHandler {
	return &PromoHandler{
		evaluateUseCase: evaluateUC,
		createUseCase:   createUC,
		logger:          logger,
	}
}

// EvaluatePromoCodeRequest asks what a code would be worth at checkout
type EvaluatePromoCodeRequest struct {
	Code   string `json:"code" binding:"required"`
	UserID uint   `json:"user_id" binding:"required"`
	PlanID uint   `json:"plan_id" binding:"required"`
}

func (h *PromoHandler) EvaluatePromoCode(c *gin.Context) {
	var req EvaluatePromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for evaluate promo code", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	evaluation, err := h.evaluateUseCase.Execute(c.Request.Context(), usecases.EvaluatePromoCodeCommand{
		Code:   req.Code,
		UserID: req.UserID,
		PlanID: req.PlanID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", evaluation)
}

// CreatePromoCodeRequest represents the admin request to mint a code
type CreatePromoCodeRequest struct {
	Code              string    `json:"code" binding:"required"`
	DiscountType      string    `json:"discount_type" binding:"required,oneof=percentage fixed"`
	DiscountValue     int64     `json:"discount_value" binding:"required"`
	ValidFrom         time.Time `json:"valid_from" binding:"required"`
	ValidUntil        time.Time `json:"valid_until" binding:"required"`
	MaxUses           *int      `json:"max_uses"`
	MaxUsesPerUser    int       `json:"max_uses_per_user"`
	ApplicablePlanIDs []uint    `json:"applicable_plan_ids"`
}

func (h *PromoHandler) CreatePromoCode(c *gin.Context) {
	var req CreatePromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create promo code", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	code, err := h.createUseCase.Execute(c.Request.Context(), usecases.CreatePromoCodeCommand{
		Code:              req.Code,
		DiscountType:      req.DiscountType,
		DiscountValue:     req.DiscountValue,
		ValidFrom:         req.ValidFrom,
		ValidUntil:        req.ValidUntil,
		MaxUses:           req.MaxUses,
		MaxUsesPerUser:    req.MaxUsesPerUser,
		ApplicablePlanIDs: req.ApplicablePlanIDs,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"id":   code.ID(),
		"code": code.Code(),
	}, "promo code created")
}
