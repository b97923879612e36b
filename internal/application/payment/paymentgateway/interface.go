package paymentgateway

import (
	"fmt"
	"net/http"
	"time"
)

// Webhook event types shared by all gateway adapters.
const (
	EventPaymentSuccess = "payment_success"
	EventPaymentFailure = "payment_failure"
)

// WebhookEvent is the gateway-neutral form of a payment notification after
// signature verification.
type WebhookEvent struct {
	Gateway               string
	EventType             string
	GatewayTransactionID  string
	GatewaySubscriptionID string
	GatewayCustomerID     string
	// UserID and PlanID ride in the gateway's passthrough fields, set when
	// the checkout session was created.
	UserID        uint
	PlanID        uint
	AmountCents   int64
	Currency      string
	PaymentMethod string
	FailureReason string
	OccurredAt    time.Time
	Metadata      map[string]interface{}
}

func (e *WebhookEvent) Succeeded() bool {
	return e.EventType == EventPaymentSuccess
}

// WebhookVerifier authenticates and parses a gateway's webhook request.
// Verification failures must be returned as errors; an unverified payload
// never reaches the ledger.
type WebhookVerifier interface {
	Name() string
	VerifyWebhook(r *http.Request) (*WebhookEvent, error)
}

// Registry resolves a verifier by gateway name.
type Registry struct {
	verifiers map[string]WebhookVerifier
}

func NewRegistry(verifiers ...WebhookVerifier) *Registry {
	r := &Registry{verifiers: make(map[string]WebhookVerifier)}
	for _, v := range verifiers {
		r.verifiers[v.Name()] = v
	}
	return r
}

func (r *Registry) Get(name string) (WebhookVerifier, error) {
	v, ok := r.verifiers[name]
	if !ok {
		return nil, fmt.Errorf("unsupported payment gateway: %s", name)
	}
	return v, nil
}
