package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vistream-inc/vistream/internal/domain/payment"
	"github.com/vistream-inc/vistream/internal/domain/promo"
	promovo "github.com/vistream-inc/vistream/internal/domain/promo/valueobjects"
	"github.com/vistream-inc/vistream/internal/domain/shared/services"
	"github.com/vistream-inc/vistream/internal/domain/subscription"
	subvo "github.com/vistream-inc/vistream/internal/domain/subscription/valueobjects"
	apperrors "github.com/vistream-inc/vistream/internal/shared/errors"
	"github.com/vistream-inc/vistream/internal/shared/logger"
)

type fakeSubRepo struct {
	active map[uint]*subscription.Subscription
}

func (r *fakeSubRepo) Create(_ context.Context, sub *subscription.Subscription) error { return nil }
func (r *fakeSubRepo) Update(_ context.Context, sub *subscription.Subscription) error { return nil }

func (r *fakeSubRepo) GetByID(_ context.Context, id uint) (*subscription.Subscription, error) {
	return nil, subscription.ErrSubscriptionNotFound
}

func (r *fakeSubRepo) GetActiveByUserID(_ context.Context, userID uint) (*subscription.Subscription, error) {
	sub, ok := r.active[userID]
	if !ok {
		return nil, subscription.ErrSubscriptionNotFound
	}
	return sub, nil
}

func (r *fakeSubRepo) GetByGatewaySubscriptionID(_ context.Context, gwSubID string) (*subscription.Subscription, error) {
	return nil, subscription.ErrSubscriptionNotFound
}

func (r *fakeSubRepo) ListGraceExpiredBefore(_ context.Context, deadline time.Time) ([]*subscription.Subscription, error) {
	return nil, nil
}

func (r *fakeSubRepo) ListPendingPeriodEndCancellation(_ context.Context, now time.Time) ([]*subscription.Subscription, error) {
	return nil, nil
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

type fakeTxRepo struct {
	nextID  uint
	created []*payment.Transaction
}

func (r *fakeTxRepo) Create(_ context.Context, tx *payment.Transaction) error {
	r.nextID++
	tx.SetID(r.nextID)
	r.created = append(r.created, tx)
	return nil
}

func (r *fakeTxRepo) Update(_ context.Context, tx *payment.Transaction) error { return nil }

func (r *fakeTxRepo) GetByID(_ context.Context, id uint) (*payment.Transaction, error) {
	return nil, payment.ErrTransactionNotFound
}

func (r *fakeTxRepo) GetByGatewayTransactionID(_ context.Context, gwID string) (*payment.Transaction, error) {
	return nil, payment.ErrTransactionNotFound
}

func (r *fakeTxRepo) ListBySubscriptionID(_ context.Context, subID uint) ([]*payment.Transaction, error) {
	return nil, nil
}

// fakePromoCodeRepo enforces the usage cap the way the conditional UPDATE
// does: the counter only moves while it is below the cap. lockedReads
// counts GetByCodeForUpdate calls so tests can assert the checkout path
// reads the code through the row lock.
type fakePromoCodeRepo struct {
	code        *promo.PromotionalCode
	remaining   int
	lockedReads int
}

func (r *fakePromoCodeRepo) Create(_ context.Context, c *promo.PromotionalCode) error { return nil }
func (r *fakePromoCodeRepo) Update(_ context.Context, c *promo.PromotionalCode) error { return nil }

func (r *fakePromoCodeRepo) GetByID(_ context.Context, id uint) (*promo.PromotionalCode, error) {
	return r.code, nil
}

func (r *fakePromoCodeRepo) GetByCode(_ context.Context, code string) (*promo.PromotionalCode, error) {
	if r.code == nil || r.code.Code() != code {
		return nil, promo.ErrCodeNotFound
	}
	return r.code, nil
}

func (r *fakePromoCodeRepo) GetByCodeForUpdate(ctx context.Context, code string) (*promo.PromotionalCode, error) {
	r.lockedReads++
	return r.GetByCode(ctx, code)
}

func (r *fakePromoCodeRepo) Redeem(_ context.Context, codeID uint) error {
	if r.remaining <= 0 {
		return promo.ErrCodeExhausted
	}
	r.remaining--
	return nil
}

type fakeUsageRepo struct {
	usages []*promo.Usage
}

func (r *fakeUsageRepo) Create(_ context.Context, u *promo.Usage) error {
	r.usages = append(r.usages, u)
	return nil
}

func (r *fakeUsageRepo) CountByCodeAndUser(_ context.Context, codeID, userID uint) (int, error) {
	n := 0
	for _, u := range r.usages {
		if u.PromoCodeID() == codeID && u.UserID() == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakeUsageRepo) ListByUser(_ context.Context, userID uint) ([]*promo.Usage, error) {
	return nil, nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func testPlan(t *testing.T) *subscription.Plan {
	t.Helper()
	features, err := subvo.NewPlanFeatures("1080p", true, true, false)
	require.NoError(t, err)
	plan, err := subscription.NewPlan("Premium Monthly", subvo.PlanTypePremiumMonthly, features, 999, nil, "USD")
	require.NoError(t, err)
	plan.SetID(1)
	return plan
}

func lastUsePromo(t *testing.T) *promo.PromotionalCode {
	t.Helper()
	discount, err := promovo.NewDiscount(promovo.DiscountTypePercentage, 50)
	require.NoError(t, err)
	code, err := promo.NewPromotionalCode("HALFOFF", discount,
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	require.NoError(t, code.SetMaxUses(100))
	code.SetID(7)
	return code
}

func newCheckoutFixture(t *testing.T, remaining int) (*StartCheckoutUseCase, *fakeTxRepo, *fakeUsageRepo) {
	t.Helper()
	txRepo := &fakeTxRepo{}
	usageRepo := &fakeUsageRepo{}
	uc := NewStartCheckoutUseCase(
		&fakeSubRepo{active: map[uint]*subscription.Subscription{}},
		&fakePlanRepo{byID: map[uint]*subscription.Plan{1: testPlan(t)}},
		txRepo,
		&fakePromoCodeRepo{code: lastUsePromo(t), remaining: remaining},
		usageRepo,
		services.NewReferenceGenerator(),
		passthroughTx{},
		logger.NewNop(),
	)
	return uc, txRepo, usageRepo
}

func TestStartCheckout_WithoutPromo(t *testing.T) {
	uc, txRepo, _ := newCheckoutFixture(t, 1)

	result, err := uc.Execute(context.Background(), StartCheckoutCommand{UserID: 9, PlanID: 1, Gateway: "sslcommerz"})
	require.NoError(t, err)
	assert.Equal(t, int64(999), result.AmountCents)
	assert.Equal(t, int64(0), result.DiscountCents)
	assert.NotEmpty(t, result.Reference)
	require.Len(t, txRepo.created, 1)
}

func TestStartCheckout_PromoDiscountsCharge(t *testing.T) {
	uc, txRepo, usageRepo := newCheckoutFixture(t, 1)

	result, err := uc.Execute(context.Background(), StartCheckoutCommand{UserID: 9, PlanID: 1, Gateway: "sslcommerz", PromoCode: "HALFOFF"})
	require.NoError(t, err)
	// 50% of 999 truncates to 499 off.
	assert.Equal(t, int64(499), result.DiscountCents)
	assert.Equal(t, int64(500), result.AmountCents)

	require.Len(t, txRepo.created, 1)
	require.Len(t, usageRepo.usages, 1)
	assert.Equal(t, uint(7), usageRepo.usages[0].PromoCodeID())
	assert.Equal(t, int64(499), usageRepo.usages[0].DiscountCents())
}

func TestStartCheckout_PromoCapIsAtomic(t *testing.T) {
	// One redemption left: the first checkout takes it, the second is
	// refused by the counter even though Validate saw a stale count.
	uc, _, usageRepo := newCheckoutFixture(t, 1)

	_, err := uc.Execute(context.Background(), StartCheckoutCommand{UserID: 9, PlanID: 1, Gateway: "sslcommerz", PromoCode: "HALFOFF"})
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), StartCheckoutCommand{UserID: 10, PlanID: 1, Gateway: "sslcommerz", PromoCode: "HALFOFF"})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflictError(err))
	assert.Len(t, usageRepo.usages, 1)
}

func TestStartCheckout_PerUserLimitHoldsAcrossCheckouts(t *testing.T) {
	// The code row is read under a row lock inside the checkout
	// transaction, so a second checkout of the same code waits for the
	// first and then sees its recorded usage. For the same user that
	// means the per-user limit of one is enforced, not raced past.
	codeRepo := &fakePromoCodeRepo{code: lastUsePromo(t), remaining: 100}
	usageRepo := &fakeUsageRepo{}
	uc := NewStartCheckoutUseCase(
		&fakeSubRepo{active: map[uint]*subscription.Subscription{}},
		&fakePlanRepo{byID: map[uint]*subscription.Plan{1: testPlan(t)}},
		&fakeTxRepo{},
		codeRepo,
		usageRepo,
		services.NewReferenceGenerator(),
		passthroughTx{},
		logger.NewNop(),
	)

	_, err := uc.Execute(context.Background(), StartCheckoutCommand{UserID: 9, PlanID: 1, Gateway: "sslcommerz", PromoCode: "HALFOFF"})
	require.NoError(t, err)
	assert.Equal(t, 1, codeRepo.lockedReads)

	_, err = uc.Execute(context.Background(), StartCheckoutCommand{UserID: 9, PlanID: 1, Gateway: "sslcommerz", PromoCode: "HALFOFF"})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflictError(err))
	assert.Contains(t, err.Error(), promo.ErrUserLimitReached.Error())
	assert.Len(t, usageRepo.usages, 1)
	assert.Equal(t, 2, codeRepo.lockedReads)
}

func TestStartCheckout_DuplicateActiveSubscriptionBlocked(t *testing.T) {
	uc, _, _ := newCheckoutFixture(t, 1)
	sub, err := subscription.NewSubscription(9, 1, "sslcommerz", "gw-sub-1",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	uc.subscriptionRepo = &fakeSubRepo{active: map[uint]*subscription.Subscription{9: sub}}

	_, err = uc.Execute(context.Background(), StartCheckoutCommand{UserID: 9, PlanID: 1, Gateway: "sslcommerz"})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflictError(err))
}

func TestStartCheckout_RejectsUnknownGateway(t *testing.T) {
	uc, _, _ := newCheckoutFixture(t, 1)
	_, err := uc.Execute(context.Background(), StartCheckoutCommand{UserID: 9, PlanID: 1, Gateway: "stripe"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
}
