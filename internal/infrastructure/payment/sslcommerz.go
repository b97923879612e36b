package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
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

// sslcommerzPayload is the webhook body SSLCommerz posts on transaction
// status changes. value_a and value_b carry our passthrough identifiers.
type sslcommerzPayload struct {
	Status         string `json:"status"`
	TranID         string `json:"tran_id"`
	SubscriptionID string `json:"subscription_id"`
	CustomerID     string `json:"cus_id"`
	Amount         string `json:"amount"`
	Currency       string `json:"currency"`
	CardType       string `json:"card_type"`
	FailedReason   string `json:"failedreason"`
	TranDate       string `json:"tran_date"`
	ValueA         string `json:"value_a"`
	ValueB         string `json:"value_b"`
}

// SSLCommerzAdapter verifies SSLCommerz webhooks and disburses payouts
// through the SSLCommerz payout API.
type SSLCommerzAdapter struct {
	secret     string
	httpClient *http.Client
	logger     logger.Interface
}

func NewSSLCommerzAdapter(secret string, log logger.Interface) *SSLCommerzAdapter {
	return &SSLCommerzAdapter{
		secret:     secret,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     log,
	}
}

func (a *SSLCommerzAdapter) Name() string {
	return vo.GatewaySSLCommerz.String()
}

func (a *SSLCommerzAdapter) VerifyWebhook(r *http.Request) (*paymentgateway.WebhookEvent, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read webhook body: %w", err)
	}

	signature := r.Header.Get("X-SSLCZ-Signature")
	if signature == "" {
		return nil, fmt.Errorf("missing webhook signature")
	}
	if err := verifyHMAC(body, signature, a.secret); err != nil {
		return nil, err
	}

	var payload sslcommerzPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}
	if payload.TranID == "" {
		return nil, fmt.Errorf("webhook payload missing tran_id")
	}

	event := &paymentgateway.WebhookEvent{
		Gateway:               a.Name(),
		GatewayTransactionID:  payload.TranID,
		GatewaySubscriptionID: payload.SubscriptionID,
		GatewayCustomerID:     payload.CustomerID,
		Currency:              payload.Currency,
		PaymentMethod:         payload.CardType,
		OccurredAt:            parseGatewayTime(payload.TranDate),
	}

	switch payload.Status {
	case "VALID", "VALIDATED":
		event.EventType = paymentgateway.EventPaymentSuccess
	case "FAILED", "CANCELLED", "EXPIRED":
		event.EventType = paymentgateway.EventPaymentFailure
		event.FailureReason = payload.FailedReason
	default:
		return nil, fmt.Errorf("unsupported sslcommerz status: %s", payload.Status)
	}

	if amount, err := strconv.ParseFloat(payload.Amount, 64); err == nil {
		event.AmountCents = int64(amount*100 + 0.5)
	}
	if userID, err := strconv.ParseUint(payload.ValueA, 10, 32); err == nil {
		event.UserID = uint(userID)
	}
	if planID, err := strconv.ParseUint(payload.ValueB, 10, 32); err == nil {
		event.PlanID = uint(planID)
	}

	return event, nil
}

func (a *SSLCommerzAdapter) SubmitPayout(ctx context.Context, order usecases.PayoutOrder) (string, error) {
	// SSLCommerz disbursements are synchronous: the API call either
	// returns a bank reference or fails outright.
	reqBody, err := json.Marshal(map[string]interface{}{
		"reference":       order.Reference,
		"amount":          fmt.Sprintf("%d.%02d", order.AmountCents/100, order.AmountCents%100),
		"currency":        order.Currency,
		"account_name":    order.AccountName,
		"account_details": order.AccountDetails,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode payout request: %w", err)
	}

	ref, err := a.postPayout(ctx, reqBody)
	if err != nil {
		return "", err
	}

	a.logger.Infow("sslcommerz payout submitted",
		"reference", order.Reference,
		"payment_reference", ref,
	)
	return ref, nil
}

func (a *SSLCommerzAdapter) postPayout(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://api.sslcommerz.com/v1/disbursements", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build payout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-SSLCZ-Signature", signHMAC(body, a.secret))

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("payout request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("payout request rejected with status %d", resp.StatusCode)
	}

	var result struct {
		Status    string `json:"status"`
		BankRefID string `json:"bank_ref_id"`
		Reason    string `json:"reason"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode payout response: %w", err)
	}
	if result.Status != "SUCCESS" {
		return "", fmt.Errorf("payout rejected: %s", result.Reason)
	}
	return result.BankRefID, nil
}

func verifyHMAC(body []byte, signature, secret string) error {
	expected := signHMAC(body, secret)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("webhook signature mismatch")
	}
	return nil
}

func signHMAC(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func parseGatewayTime(value string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Now().UTC()
}
