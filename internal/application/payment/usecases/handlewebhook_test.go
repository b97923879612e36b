package usecases

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vistream-inc/vistream/internal/application/payment/paymentgateway"
	"github.com/vistream-inc/vistream/internal/domain/payment"
	"github.com/vistream-inc/vistream/internal/domain/subscription"
	subvo "github.com/vistream-inc/vistream/internal/domain/subscription/valueobjects"
	"github.com/vistream-inc/vistream/internal/shared/logger"
)

type fakeTransactionRepo struct {
	nextID uint
	byGwID map[string]*payment.Transaction
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{byGwID: make(map[string]*payment.Transaction)}
}

func (r *fakeTransactionRepo) Create(_ context.Context, tx *payment.Transaction) error {
	if _, ok := r.byGwID[tx.GatewayTransactionID()]; ok {
		return payment.ErrDuplicateTransaction
	}
	r.nextID++
	tx.SetID(r.nextID)
	r.byGwID[tx.GatewayTransactionID()] = tx
	return nil
}

func (r *fakeTransactionRepo) Update(_ context.Context, tx *payment.Transaction) error {
	r.byGwID[tx.GatewayTransactionID()] = tx
	return nil
}

func (r *fakeTransactionRepo) GetByID(_ context.Context, id uint) (*payment.Transaction, error) {
	for _, tx := range r.byGwID {
		if tx.ID() == id {
			return tx, nil
		}
	}
	return nil, payment.ErrTransactionNotFound
}

func (r *fakeTransactionRepo) GetByGatewayTransactionID(_ context.Context, gwID string) (*payment.Transaction, error) {
	tx, ok := r.byGwID[gwID]
	if !ok {
		return nil, payment.ErrTransactionNotFound
	}
	return tx, nil
}

func (r *fakeTransactionRepo) ListBySubscriptionID(_ context.Context, subID uint) ([]*payment.Transaction, error) {
	var out []*payment.Transaction
	for _, tx := range r.byGwID {
		if tx.SubscriptionID() != nil && *tx.SubscriptionID() == subID {
			out = append(out, tx)
		}
	}
	return out, nil
}

type fakeSubscriptionRepo struct {
	nextID uint
	byID   map[uint]*subscription.Subscription
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{byID: make(map[uint]*subscription.Subscription)}
}

func (r *fakeSubscriptionRepo) Create(_ context.Context, sub *subscription.Subscription) error {
	for _, existing := range r.byID {
		if existing.UserID() == sub.UserID() && !existing.IsTerminal() {
			return subscription.ErrDuplicateActiveSubscription
		}
	}
	r.nextID++
	if err := sub.SetID(r.nextID); err != nil {
		return err
	}
	r.byID[sub.ID()] = sub
	return nil
}

func (r *fakeSubscriptionRepo) Update(_ context.Context, sub *subscription.Subscription) error {
	r.byID[sub.ID()] = sub
	return nil
}

func (r *fakeSubscriptionRepo) GetByID(_ context.Context, id uint) (*subscription.Subscription, error) {
	sub, ok := r.byID[id]
	if !ok {
		return nil, subscription.ErrSubscriptionNotFound
	}
	return sub, nil
}

func (r *fakeSubscriptionRepo) GetActiveByUserID(_ context.Context, userID uint) (*subscription.Subscription, error) {
	for _, sub := range r.byID {
		if sub.UserID() == userID && !sub.IsTerminal() {
			return sub, nil
		}
	}
	return nil, subscription.ErrSubscriptionNotFound
}

func (r *fakeSubscriptionRepo) GetByGatewaySubscriptionID(_ context.Context, gwSubID string) (*subscription.Subscription, error) {
	for _, sub := range r.byID {
		if sub.GatewaySubscriptionID() == gwSubID {
			return sub, nil
		}
	}
	return nil, subscription.ErrSubscriptionNotFound
}

func (r *fakeSubscriptionRepo) ListGraceExpiredBefore(_ context.Context, deadline time.Time) ([]*subscription.Subscription, error) {
	var out []*subscription.Subscription
	for _, sub := range r.byID {
		if sub.Status() == subvo.StatusGracePeriod && sub.GracePeriodEndsAt() != nil && sub.GracePeriodEndsAt().Before(deadline) {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) ListPendingPeriodEndCancellation(_ context.Context, now time.Time) ([]*subscription.Subscription, error) {
	var out []*subscription.Subscription
	for _, sub := range r.byID {
		if sub.CancelAtPeriodEnd() && sub.Status() == subvo.StatusActive && !now.Before(sub.RenewalDate()) {
			out = append(out, sub)
		}
	}
	return out, nil
}

type fakePlanRepo struct {
	byID map[uint]*subscription.Plan
}

func (r *fakePlanRepo) Create(_ context.Context, plan *subscription.Plan) error { return nil }
func (r *fakePlanRepo) Update(_ context.Context, plan *subscription.Plan) error { return nil }

func (r *fakePlanRepo) GetByID(_ context.Context, id uint) (*subscription.Plan, error) {
	plan, ok := r.byID[id]
	if !ok {
		return nil, subscription.ErrPlanNotFound
	}
	return plan, nil
}

func (r *fakePlanRepo) ListActive(_ context.Context) ([]*subscription.Plan, error) {
	var out []*subscription.Plan
	for _, plan := range r.byID {
		if plan.IsActive() {
			out = append(out, plan)
		}
	}
	return out, nil
}

// passthroughTx executes the function without a real database transaction.
type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeVerifier struct {
	event *paymentgateway.WebhookEvent
	err   error
}

func (v *fakeVerifier) Name() string { return "sslcommerz" }

func (v *fakeVerifier) VerifyWebhook(_ *http.Request) (*paymentgateway.WebhookEvent, error) {
	return v.event, v.err
}

func monthlyPlan(t *testing.T) *subscription.Plan {
	t.Helper()
	features, err := subvo.NewPlanFeatures("1080p", true, true, false)
	require.NoError(t, err)
	plan, err := subscription.NewPlan("Premium Monthly", subvo.PlanTypePremiumMonthly, features, 999, nil, "USD")
	require.NoError(t, err)
	plan.SetID(1)
	return plan
}

func newWebhookFixture(t *testing.T, event *paymentgateway.WebhookEvent) (*HandleWebhookUseCase, *fakeTransactionRepo, *fakeSubscriptionRepo) {
	t.Helper()
	txRepo := newFakeTransactionRepo()
	subRepo := newFakeSubscriptionRepo()
	planRepo := &fakePlanRepo{byID: map[uint]*subscription.Plan{1: monthlyPlan(t)}}
	registry := paymentgateway.NewRegistry(&fakeVerifier{event: event})

	uc := NewHandleWebhookUseCase(registry, txRepo, subRepo, planRepo, passthroughTx{}, 72*time.Hour, logger.NewNop())
	return uc, txRepo, subRepo
}

func successEvent(occurredAt time.Time) *paymentgateway.WebhookEvent {
	return &paymentgateway.WebhookEvent{
		Gateway:               "sslcommerz",
		EventType:             paymentgateway.EventPaymentSuccess,
		GatewayTransactionID:  "gw-txn-1",
		GatewaySubscriptionID: "gw-sub-1",
		UserID:                9,
		PlanID:                1,
		AmountCents:           999,
		Currency:              "USD",
		PaymentMethod:         "card",
		OccurredAt:            occurredAt,
	}
}

func webhookRequest(t *testing.T) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, "/api/webhooks/payment/sslcommerz", nil)
	require.NoError(t, err)
	return req
}

func TestHandleWebhook_FirstPaymentActivates(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	uc, txRepo, subRepo := newWebhookFixture(t, successEvent(now))

	result, err := uc.Execute(context.Background(), "sslcommerz", webhookRequest(t))
	require.NoError(t, err)
	assert.False(t, result.Replayed)
	require.NotNil(t, result.SubscriptionID)

	sub, err := subRepo.GetByID(context.Background(), *result.SubscriptionID)
	require.NoError(t, err)
	assert.Equal(t, subvo.StatusActive, sub.Status())
	assert.Equal(t, uint(9), sub.UserID())
	assert.Equal(t, now.AddDate(0, 1, 0), sub.RenewalDate())

	tx, err := txRepo.GetByGatewayTransactionID(context.Background(), "gw-txn-1")
	require.NoError(t, err)
	assert.True(t, tx.Status().IsFinal())
	require.NotNil(t, tx.SubscriptionID())
	assert.Equal(t, sub.ID(), *tx.SubscriptionID())
}

func TestHandleWebhook_ReplayIsIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	uc, txRepo, subRepo := newWebhookFixture(t, successEvent(now))

	first, err := uc.Execute(context.Background(), "sslcommerz", webhookRequest(t))
	require.NoError(t, err)

	second, err := uc.Execute(context.Background(), "sslcommerz", webhookRequest(t))
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.TransactionID, second.TransactionID)

	assert.Len(t, txRepo.byGwID, 1)
	assert.Len(t, subRepo.byID, 1)
}

func TestHandleWebhook_RenewalAdvancesDate(t *testing.T) {
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	uc, _, subRepo := newWebhookFixture(t, successEvent(first))
	_, err := uc.Execute(context.Background(), "sslcommerz", webhookRequest(t))
	require.NoError(t, err)

	renewalEvent := successEvent(first.AddDate(0, 1, 0))
	renewalEvent.GatewayTransactionID = "gw-txn-2"
	uc2, _, _ := newWebhookFixture(t, renewalEvent)
	// Reuse the subscription store so the renewal finds the existing row.
	uc2.subscriptionRepo = subRepo

	result, err := uc2.Execute(context.Background(), "sslcommerz", webhookRequest(t))
	require.NoError(t, err)

	sub, err := subRepo.GetByID(context.Background(), *result.SubscriptionID)
	require.NoError(t, err)
	assert.Equal(t, first.AddDate(0, 2, 0), sub.RenewalDate())
	assert.Equal(t, subvo.StatusActive, sub.Status())
}

func TestHandleWebhook_FailureOpensGrace(t *testing.T) {
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	uc, _, subRepo := newWebhookFixture(t, successEvent(first))
	_, err := uc.Execute(context.Background(), "sslcommerz", webhookRequest(t))
	require.NoError(t, err)

	failedAt := first.AddDate(0, 1, 0)
	failureEvent := &paymentgateway.WebhookEvent{
		Gateway:               "sslcommerz",
		EventType:             paymentgateway.EventPaymentFailure,
		GatewayTransactionID:  "gw-txn-2",
		GatewaySubscriptionID: "gw-sub-1",
		UserID:                9,
		AmountCents:           999,
		Currency:              "USD",
		FailureReason:         "insufficient funds",
		OccurredAt:            failedAt,
	}
	uc2, txRepo, _ := newWebhookFixture(t, failureEvent)
	uc2.subscriptionRepo = subRepo

	result, err := uc2.Execute(context.Background(), "sslcommerz", webhookRequest(t))
	require.NoError(t, err)
	require.NotNil(t, result.SubscriptionID)

	sub, err := subRepo.GetByID(context.Background(), *result.SubscriptionID)
	require.NoError(t, err)
	assert.Equal(t, subvo.StatusGracePeriod, sub.Status())
	require.NotNil(t, sub.GracePeriodEndsAt())
	assert.Equal(t, failedAt.Add(72*time.Hour), *sub.GracePeriodEndsAt())
	// Still active until the deadline.
	assert.True(t, sub.IsActive(failedAt.Add(time.Hour)))

	tx, err := txRepo.GetByGatewayTransactionID(context.Background(), "gw-txn-2")
	require.NoError(t, err)
	require.NotNil(t, tx.FailureReason())
	assert.Equal(t, "insufficient funds", *tx.FailureReason())
}

func TestHandleWebhook_BadSignatureRejected(t *testing.T) {
	registry := paymentgateway.NewRegistry(&fakeVerifier{err: assert.AnError})
	uc := NewHandleWebhookUseCase(registry, newFakeTransactionRepo(), newFakeSubscriptionRepo(), &fakePlanRepo{}, passthroughTx{}, 72*time.Hour, logger.NewNop())

	_, err := uc.Execute(context.Background(), "sslcommerz", webhookRequest(t))
	assert.Error(t, err)
}
