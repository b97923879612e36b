package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vistream-inc/vistream/internal/application/subscription/usecases"
	"github.com/vistream-inc/vistream/internal/domain/subscription"
	"github.com/vistream-inc/vistream/internal/shared/logger"
	"github.com/vistream-inc/vistream/internal/shared/utils"
)

// PlanHandler handles subscription plan catalog operations
type PlanHandler struct {
	createPlanUseCase *usecases.CreatePlanUseCase
	listPlansUseCase  *usecases.ListPlansUseCase
	logger            logger.Interface
}

func NewPlanHandler(
	createPlanUC *usecases.CreatePlanUseCase,
	listPlansUC *usecases.ListPlansUseCase,
	logger logger.Interface,
) *PlanHandler {
	return &PlanHandler{
		createPlanUseCase: createPlanUC,
		listPlansUseCase:  listPlansUC,
		logger:            logger,
	}
}

// CreatePlanRequest represents the admin request to add a plan
type CreatePlanRequest struct {
	Name                 string `json:"name" binding:"required"`
	PlanType             string `json:"plan_type" binding:"required,oneof=free premium_monthly premium_annual"`
	MaxResolution        string `json:"max_resolution" binding:"required"`
	AdFree               bool   `json:"ad_free"`
	PremiumContentAccess bool   `json:"premium_content_access"`
	EarlyAccess          bool   `json:"early_access"`
	PriceMonthlyCents    int64  `json:"price_monthly_cents"`
	PriceAnnualCents     *int64 `json:"price_annual_cents"`
	DisplayCurrency      string `json:"display_currency"`
}

// PlanResponse is the wire form of a catalog plan
type PlanResponse struct {
	ID                   uint      `json:"id"`
	Name                 string    `json:"name"`
	PlanType             string    `json:"plan_type"`
	MaxResolution        string    `json:"max_resolution"`
	AdFree               bool      `json:"ad_free"`
	PremiumContentAccess bool      `json:"premium_content_access"`
	EarlyAccess          bool      `json:"early_access"`
	PriceMonthlyCents    int64     `json:"price_monthly_cents"`
	PriceAnnualCents     *int64    `json:"price_annual_cents,omitempty"`
	DisplayCurrency      string    `json:"display_currency"`
	IsActive             bool      `json:"is_active"`
	CreatedAt            time.Time `json:"created_at"`
}

func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create plan", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	plan, err := h.createPlanUseCase.Execute(c.Request.Context(), usecases.CreatePlanCommand{
		Name:                 req.Name,
		PlanType:             req.PlanType,
		MaxResolution:        req.MaxResolution,
		AdFree:               req.AdFree,
		PremiumContentAccess: req.PremiumContentAccess,
		EarlyAccess:          req.EarlyAccess,
		PriceMonthlyCents:    req.PriceMonthlyCents,
		PriceAnnualCents:     req.PriceAnnualCents,
		DisplayCurrency:      req.DisplayCurrency,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, toPlanResponse(plan), "plan created")
}

func (h *PlanHandler) ListPlans(c *gin.Context) {
	plans, err := h.listPlansUseCase.Execute(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	responses := make([]PlanResponse, 0, len(plans))
	for _, plan := range plans {
		responses = append(responses, toPlanResponse(plan))
	}
	utils.SuccessResponse(c, http.StatusOK, "", responses)
}

func toPlanResponse(plan *subscription.Plan) PlanResponse {
	return PlanResponse{
		ID:                   plan.ID(),
		Name:                 plan.Name(),
		PlanType:             plan.PlanType().String(),
		MaxResolution:        plan.Features().MaxResolution(),
		AdFree:               plan.Features().AdFree(),
		PremiumContentAccess: plan.Features().PremiumContentAccess(),
		EarlyAccess:          plan.Features().EarlyAccess(),
		PriceMonthlyCents:    plan.PriceMonthlyCents(),
		PriceAnnualCents:     plan.PriceAnnualCents(),
		DisplayCurrency:      plan.DisplayCurrency(),
		IsActive:             plan.IsActive(),
		CreatedAt:            plan.CreatedAt(),
	}
}
