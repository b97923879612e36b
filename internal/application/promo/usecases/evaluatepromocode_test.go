package usecases

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vistream-inc/vistream/internal/domain/promo"
	promovo "github.com/vistream-inc/vistream/internal/domain/promo/valueobjects"
	"github.com/vistream-inc/vistream/internal/domain/subscription"
	subvo "github.com/vistream-inc/vistream/internal/domain/subscription/valueobjects"
	"github.com/vistream-inc/vistream/internal/shared/biztime"
	apperrors "github.com/vistream-inc/vistream/internal/shared/errors"
	"github.com/vistream-inc/vistream/internal/shared/logger"
)

type fakeCodeRepo struct {
	byCode map[string]*promo.PromotionalCode
}

func (r *fakeCodeRepo) Create(_ context.Context, c *promo.PromotionalCode) error {
	if _, ok := r.byCode[c.Code()]; ok {
		return apperrors.NewConflictError("promo code already exists")
	}
	c.SetID(uint(len(r.byCode) + 1))
	r.byCode[c.Code()] = c
	return nil
}

func (r *fakeCodeRepo) Update(_ context.Context, c *promo.PromotionalCode) error { return nil }

func (r *fakeCodeRepo) GetByID(_ context.Context, id uint) (*promo.PromotionalCode, error) {
	for _, c := range r.byCode {
		if c.ID() == id {
			return c, nil
		}
	}
	return nil, promo.ErrCodeNotFound
}

func (r *fakeCodeRepo) GetByCode(_ context.Context, code string) (*promo.PromotionalCode, error) {
	c, ok := r.byCode[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return nil, promo.ErrCodeNotFound
	}
	return c, nil
}

func (r *fakeCodeRepo) GetByCodeForUpdate(ctx context.Context, code string) (*promo.PromotionalCode, error) {
	return r.GetByCode(ctx, code)
}

func (r *fakeCodeRepo) Redeem(_ context.Context, codeID uint) error { return nil }

type fakeUsageRepo struct {
	counts map[[2]uint]int
}

func (r *fakeUsageRepo) Create(_ context.Context, u *promo.Usage) error { return nil }

func (r *fakeUsageRepo) CountByCodeAndUser(_ context.Context, codeID, userID uint) (int, error) {
	return r.counts[[2]uint{codeID, userID}], nil
}

func (r *fakeUsageRepo) ListByUser(_ context.Context, userID uint) ([]*promo.Usage, error) {
	return nil, nil
}

type fakePlanRepo struct {
	byID map[uint]*subscription.Plan
}

func (r *fakePlanRepo) Create(_ context.Context, p *subscription.Plan) error { return nil }
func (r *fakePlanRepo) Update(_ context.Context, p *subscription.Plan) error { return nil }

func (r *fakePlanRepo) GetByID(_ context.Context, id uint) (*subscription.Plan, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, subscription.ErrPlanNotFound
	}
	return p, nil
}

func (r *fakePlanRepo) ListActive(_ context.Context) ([]*subscription.Plan, error) {
	var out []*subscription.Plan
	for _, p := range r.byID {
		out = append(out, p)
	}
	return out, nil
}

func premiumPlan(t *testing.T, id uint, priceCents int64) *subscription.Plan {
	t.Helper()
	features, err := subvo.NewPlanFeatures("1080p", true, true, false)
	require.NoError(t, err)
	plan, err := subscription.NewPlan("Premium Monthly", subvo.PlanTypePremiumMonthly, features, priceCents, nil, "BDT")
	require.NoError(t, err)
	plan.SetID(id)
	return plan
}

func activeCode(t *testing.T, code string, discountType promovo.DiscountType, value int64) *promo.PromotionalCode {
	t.Helper()
	discount, err := promovo.NewDiscount(discountType, value)
	require.NoError(t, err)
	now := biztime.NowUTC()
	c, err := promo.NewPromotionalCode(code, discount, now.Add(-time.Hour), now.Add(24*time.Hour))
	require.NoError(t, err)
	return c
}

type evaluateFixture struct {
	uc        *EvaluatePromoCodeUseCase
	codeRepo  *fakeCodeRepo
	usageRepo *fakeUsageRepo
}

func newEvaluateFixture(t *testing.T) *evaluateFixture {
	t.Helper()
	codeRepo := &fakeCodeRepo{byCode: make(map[string]*promo.PromotionalCode)}
	usageRepo := &fakeUsageRepo{counts: make(map[[2]uint]int)}
	planRepo := &fakePlanRepo{byID: map[uint]*subscription.Plan{3: premiumPlan(t, 3, 1000)}}
	return &evaluateFixture{
		uc:        NewEvaluatePromoCodeUseCase(codeRepo, usageRepo, planRepo, logger.NewNop()),
		codeRepo:  codeRepo,
		usageRepo: usageRepo,
	}
}

func TestEvaluatePromoCode_PercentageDiscount(t *testing.T) {
	f := newEvaluateFixture(t)
	require.NoError(t, f.codeRepo.Create(context.Background(), activeCode(t, "LAUNCH25", promovo.DiscountTypePercentage, 25)))

	eval, err := f.uc.Execute(context.Background(), EvaluatePromoCodeCommand{Code: "launch25", UserID: 1, PlanID: 3})
	require.NoError(t, err)

	assert.True(t, eval.Valid)
	assert.Equal(t, int64(1000), eval.PriceCents)
	assert.Equal(t, int64(250), eval.DiscountCents)
	assert.Equal(t, int64(750), eval.FinalPriceCents)
}

func TestEvaluatePromoCode_FixedDiscountClampsAtPrice(t *testing.T) {
	f := newEvaluateFixture(t)
	require.NoError(t, f.codeRepo.Create(context.Background(), activeCode(t, "BIGFIX", promovo.DiscountTypeFixed, 5000)))

	eval, err := f.uc.Execute(context.Background(), EvaluatePromoCodeCommand{Code: "BIGFIX", UserID: 1, PlanID: 3})
	require.NoError(t, err)

	assert.True(t, eval.Valid)
	assert.Equal(t, int64(1000), eval.DiscountCents)
	assert.Equal(t, int64(0), eval.FinalPriceCents)
}

func TestEvaluatePromoCode_UnknownCodeIsInvalidNotError(t *testing.T) {
	f := newEvaluateFixture(t)

	eval, err := f.uc.Execute(context.Background(), EvaluatePromoCodeCommand{Code: "NOPE", UserID: 1, PlanID: 3})
	require.NoError(t, err)

	assert.False(t, eval.Valid)
	assert.Equal(t, promo.ErrCodeNotFound.Error(), eval.Reason)
	assert.Equal(t, int64(1000), eval.FinalPriceCents)
}

func TestEvaluatePromoCode_RejectionReasons(t *testing.T) {
	f := newEvaluateFixture(t)

	expired := activeCode(t, "EXPIRED", promovo.DiscountTypePercentage, 10)
	discount := expired.Discount()
	f.codeRepo.byCode["EXPIRED"] = promo.ReconstructPromotionalCode(promo.PromotionalCodeReconstructParams{
		ID: 1, Code: "EXPIRED", Discount: discount,
		ValidFrom:      biztime.NowUTC().Add(-48 * time.Hour),
		ValidUntil:     biztime.NowUTC().Add(-24 * time.Hour),
		MaxUsesPerUser: 1, IsActive: true, Version: 1,
	})

	maxUses := 5
	f.codeRepo.byCode["SOLDOUT"] = promo.ReconstructPromotionalCode(promo.PromotionalCodeReconstructParams{
		ID: 2, Code: "SOLDOUT", Discount: discount,
		ValidFrom:  biztime.NowUTC().Add(-time.Hour),
		ValidUntil: biztime.NowUTC().Add(time.Hour),
		MaxUses:    &maxUses, CurrentUses: 5,
		MaxUsesPerUser: 1, IsActive: true, Version: 1,
	})

	used := activeCode(t, "ONEPER", promovo.DiscountTypePercentage, 10)
	require.NoError(t, f.codeRepo.Create(context.Background(), used))
	f.usageRepo.counts[[2]uint{used.ID(), 1}] = 1

	wrongPlan := activeCode(t, "ANNUALONLY", promovo.DiscountTypePercentage, 10)
	wrongPlan.RestrictToPlans([]uint{99})
	require.NoError(t, f.codeRepo.Create(context.Background(), wrongPlan))

	cases := []struct {
		code string
		want error
	}{
		{"EXPIRED", promo.ErrCodeExpired},
		{"SOLDOUT", promo.ErrCodeExhausted},
		{"ONEPER", promo.ErrUserLimitReached},
		{"ANNUALONLY", promo.ErrPlanNotApplicable},
	}
	for _, tc := range cases {
		eval, err := f.uc.Execute(context.Background(), EvaluatePromoCodeCommand{Code: tc.code, UserID: 1, PlanID: 3})
		require.NoError(t, err, tc.code)
		assert.False(t, eval.Valid, tc.code)
		assert.Equal(t, tc.want.Error(), eval.Reason, tc.code)
		assert.Equal(t, int64(1000), eval.FinalPriceCents, tc.code)
	}
}

func TestEvaluatePromoCode_PlanNotFound(t *testing.T) {
	f := newEvaluateFixture(t)

	_, err := f.uc.Execute(context.Background(), EvaluatePromoCodeCommand{Code: "ANY", UserID: 1, PlanID: 404})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFoundError(err))
}
