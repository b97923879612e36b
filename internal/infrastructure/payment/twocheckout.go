package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/vistream-inc/vistream/internal/application/payment/paymentgateway"
	"github.com/vistream-inc/vistream/internal/application/payout/usecases"
	vo "github.com/vistream-inc/vistream/internal/domain/payment/valueobjects"
	"github.com/vistream-inc/vistream/internal/shared/logger"
)

// twoCheckoutPayload is the IPN body 2Checkout posts. Custom fields carry
// our passthrough identifiers.
type twoCheckoutPayload struct {
	MessageType    string `json:"message_type"`
	SaleID         string `json:"sale_id"`
	RecurringID    string `json:"recurring_id"`
	CustomerID     string `json:"customer_id"`
	InvoiceAmount  string `json:"invoice_amount"`
	CurrencyCode   string `json:"currency_code"`
	PaymentType    string `json:"payment_type"`
	DeclinedReason string `json:"declined_reason"`
	Timestamp      string `json:"timestamp"`
	CustomUserID   string `json:"custom_user_id"`
	CustomPlanID   string `json:"custom_plan_id"`
}

// TwoCheckoutAdapter verifies 2Checkout IPN webhooks and disburses payouts
// through the 2Checkout payout API.
type TwoCheckoutAdapter struct {
	secret     string
	httpClient *http.Client
	logger     logger.Interface
}

func NewTwoCheckoutAdapter(secret string, log logger.Interface) *TwoCheckoutAdapter {
	return &TwoCheckoutAdapter{
		secret:     secret,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     log,
	}
}

func (a *TwoCheckoutAdapter) Name() string {
	return vo.GatewayTwoCheckout.String()
}

func (a *TwoCheckoutAdapter) VerifyWebhook(r *http.Request) (*paymentgateway.WebhookEvent, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read webhook body: %w", err)
	}

	signature := r.Header.Get("X-2CO-Signature")
	if signature == "" {
		return nil, fmt.Errorf("missing webhook signature")
	}
	if err := verifyHMAC(body, signature, a.secret); err != nil {
		return nil, err
	}

	var payload twoCheckoutPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}
	if payload.SaleID == "" {
		return nil, fmt.Errorf("webhook payload missing sale_id")
	}

	event := &paymentgateway.WebhookEvent{
		Gateway:               a.Name(),
		GatewayTransactionID:  payload.SaleID,
		GatewaySubscriptionID: payload.RecurringID,
		GatewayCustomerID:     payload.CustomerID,
		Currency:              payload.CurrencyCode,
		PaymentMethod:         payload.PaymentType,
		OccurredAt:            parseGatewayTime(payload.Timestamp),
	}

	switch payload.MessageType {
	case "ORDER_CREATED", "RECURRING_INSTALLMENT_SUCCESS":
		event.EventType = paymentgateway.EventPaymentSuccess
	case "RECURRING_INSTALLMENT_FAILED", "FRAUD_STATUS_CHANGED":
		event.EventType = paymentgateway.EventPaymentFailure
		event.FailureReason = payload.DeclinedReason
	default:
		return nil, fmt.Errorf("unsupported 2checkout message type: %s", payload.MessageType)
	}

	if amount, err := strconv.ParseFloat(payload.InvoiceAmount, 64); err == nil {
		event.AmountCents = int64(amount*100 + 0.5)
	}
	if userID, err := strconv.ParseUint(payload.CustomUserID, 10, 32); err == nil {
		event.UserID = uint(userID)
	}
	if planID, err := strconv.ParseUint(payload.CustomPlanID, 10, 32); err == nil {
		event.PlanID = uint(planID)
	}

	return event, nil
}

func (a *TwoCheckoutAdapter) SubmitPayout(ctx context.Context, order usecases.PayoutOrder) (string, error) {
	reqBody, err := json.Marshal(map[string]interface{}{
		"merchant_order_id": order.Reference,
		"amount":            fmt.Sprintf("%d.%02d", order.AmountCents/100, order.AmountCents%100),
		"currency_code":     order.Currency,
		"method":            order.MethodType,
		"recipient_name":    order.AccountName,
		"recipient_details": order.AccountDetails,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode payout request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://api.2checkout.com/rest/6.0/payouts", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to build payout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-2CO-Signature", signHMAC(reqBody, a.secret))

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("payout request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("payout request rejected with status %d", resp.StatusCode)
	}

	var result struct {
		PayoutReference string `json:"payout_reference"`
		Error           string `json:"error_message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode payout response: %w", err)
	}
	if result.PayoutReference == "" {
		return "", fmt.Errorf("payout rejected: %s", result.Error)
	}

	a.logger.Infow("2checkout payout submitted",
		"reference", order.Reference,
		"payment_reference", result.PayoutReference,
	)
	return result.PayoutReference, nil
}
