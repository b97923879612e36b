package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vistream-inc/vistream/internal/application/payment/usecases"
	"github.com/vistream-inc/vistream/internal/shared/logger"
	"github.com/vistream-inc/vistream/internal/shared/utils"
)

// PaymentHandler handles ledger operations outside the webhook path.
type PaymentHandler struct {
	refundUseCase *usecases.RefundTransactionUseCase
	logger        logger.Interface
}

func NewPaymentHandler(refundUC *usecases.RefundTransactionUseCase, logger logger.Interface) *PaymentHandler {
	return &PaymentHandler{
		refundUseCase: refundUC,
		logger:        logger,
	}
}

// RefundTransactionRequest represents the admin request to refund a charge
type RefundTransactionRequest struct {
	Reason             string `json:"reason" binding:"required"`
	CancelSubscription bool   `json:"cancel_subscription"`
}

func (h *PaymentHandler) RefundTransaction(c *gin.Context) {
	transactionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RefundTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for refund", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "refund reason is required")
		return
	}

	refund, err := h.refundUseCase.Execute(c.Request.Context(), usecases.RefundTransactionCommand{
		TransactionID:      transactionID,
		Reason:             req.Reason,
		CancelSubscription: req.CancelSubscription,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"refund_transaction_id": refund.ID(),
		"amount_cents":          refund.Amount().AmountInCents(),
		"refund_of_id":          refund.RefundOfID(),
	}, "transaction refunded")
}
