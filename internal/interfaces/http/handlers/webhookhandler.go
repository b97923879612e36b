package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vistream-inc/vistream/internal/application/payment/usecases"
	"github.com/vistream-inc/vistream/internal/shared/logger"
	"github.com/vistream-inc/vistream/internal/shared/utils"
)

// WebhookHandler receives payment gateway notifications. The gateway is
// told 200 only after the event is durably applied; anything else makes
// it retry, which the idempotent ledger absorbs.
type WebhookHandler struct {
	handleWebhookUseCase *usecases.HandleWebhookUseCase
	logger               logger.Interface
}

func NewWebhookHandler(handleWebhookUC *usecases.HandleWebhookUseCase, logger logger.Interface) *WebhookHandler {
	return &WebhookHandler{
		handleWebhookUseCase: handleWebhookUC,
		logger:               logger,
	}
}

type webhookResponse struct {
	TransactionID  uint  `json:"transaction_id"`
	SubscriptionID *uint `json:"subscription_id,omitempty"`
	Replayed       bool  `json:"replayed"`
}

func (h *WebhookHandler) HandlePaymentWebhook(c *gin.Context) {
	gateway := c.Param("gateway")

	result, err := h.handleWebhookUseCase.Execute(c.Request.Context(), gateway, c.Request)
	if err != nil {
		h.logger.Warnw("webhook rejected",
			"gateway", gateway,
			"error", err,
		)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "webhook processed", webhookResponse{
		TransactionID:  result.TransactionID,
		SubscriptionID: result.SubscriptionID,
		Replayed:       result.Replayed,
	})
}
