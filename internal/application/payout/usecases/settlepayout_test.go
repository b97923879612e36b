package usecases

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vistream-inc/vistream/internal/domain/payout"
	payoutvo "github.com/vistream-inc/vistream/internal/domain/payout/valueobjects"
	"github.com/vistream-inc/vistream/internal/domain/revenue"
	"github.com/vistream-inc/vistream/internal/domain/shared/services"
	apperrors "github.com/vistream-inc/vistream/internal/shared/errors"
	"github.com/vistream-inc/vistream/internal/shared/logger"
)

type fakePayoutRepo struct {
	nextID uint
	byID   map[uint]*payout.CreatorPayout
}

func newFakePayoutRepo() *fakePayoutRepo {
	return &fakePayoutRepo{byID: make(map[uint]*payout.CreatorPayout)}
}

func (r *fakePayoutRepo) Create(_ context.Context, p *payout.CreatorPayout) error {
	for _, existing := range r.byID {
		if existing.ChannelID() == p.ChannelID() && existing.PeriodStart().Equal(p.PeriodStart()) && existing.PeriodEnd().Equal(p.PeriodEnd()) {
			return payout.ErrDuplicatePayout
		}
	}
	r.nextID++
	p.SetID(r.nextID)
	r.byID[p.ID()] = p
	return nil
}

func (r *fakePayoutRepo) Update(_ context.Context, p *payout.CreatorPayout) error {
	r.byID[p.ID()] = p
	return nil
}

func (r *fakePayoutRepo) GetByID(_ context.Context, id uint) (*payout.CreatorPayout, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, payout.ErrPayoutNotFound
	}
	return p, nil
}

func (r *fakePayoutRepo) GetByChannelAndPeriod(_ context.Context, channelID uint, start, end time.Time) (*payout.CreatorPayout, error) {
	for _, p := range r.byID {
		if p.ChannelID() == channelID && p.PeriodStart().Equal(start) && p.PeriodEnd().Equal(end) {
			return p, nil
		}
	}
	return nil, payout.ErrPayoutNotFound
}

func (r *fakePayoutRepo) HasPayoutCovering(_ context.Context, channelID uint, date time.Time) (bool, error) {
	for _, p := range r.byID {
		if p.ChannelID() == channelID && !date.Before(p.PeriodStart()) && !date.After(p.PeriodEnd()) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePayoutRepo) ListByChannelID(_ context.Context, channelID uint, limit, offset int) ([]*payout.CreatorPayout, int64, error) {
	var out []*payout.CreatorPayout
	for _, p := range r.byID {
		if p.ChannelID() == channelID {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakePayoutRepo) ListByStatus(_ context.Context, status string, limit, offset int) ([]*payout.CreatorPayout, int64, error) {
	var out []*payout.CreatorPayout
	for _, p := range r.byID {
		if status == "" || p.Status().String() == status {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

type fakeMethodRepo struct {
	byID map[uint]*payout.PayoutMethod
}

func (r *fakeMethodRepo) Create(_ context.Context, m *payout.PayoutMethod) error { return nil }
func (r *fakeMethodRepo) Update(_ context.Context, m *payout.PayoutMethod) error { return nil }

func (r *fakeMethodRepo) GetByID(_ context.Context, id uint) (*payout.PayoutMethod, error) {
	m, ok := r.byID[id]
	if !ok {
		return nil, payout.ErrPayoutMethodNotFound
	}
	return m, nil
}

func (r *fakeMethodRepo) GetDefaultVerifiedByChannelID(_ context.Context, channelID uint) (*payout.PayoutMethod, error) {
	for _, m := range r.byID {
		if m.ChannelID() == channelID && m.IsDefault() && m.IsVerified() {
			return m, nil
		}
	}
	return nil, payout.ErrNoVerifiedPayoutMethod
}

func (r *fakeMethodRepo) ListByChannelID(_ context.Context, channelID uint) ([]*payout.PayoutMethod, error) {
	var out []*payout.PayoutMethod
	for _, m := range r.byID {
		if m.ChannelID() == channelID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeShareRepo struct {
	shares map[string]*revenue.RevenueShare
}

func shareKey(videoID uint, date time.Time) string {
	return fmt.Sprintf("%d|%s", videoID, date.Format("2006-01-02"))
}

func newFakeShareRepo() *fakeShareRepo {
	return &fakeShareRepo{shares: make(map[string]*revenue.RevenueShare)}
}

func (r *fakeShareRepo) Upsert(_ context.Context, s *revenue.RevenueShare) error {
	key := shareKey(s.VideoID(), s.Date())
	if existing, ok := r.shares[key]; ok && existing.Locked() {
		return revenue.ErrPeriodClosed
	}
	r.shares[key] = s
	return nil
}

func (r *fakeShareRepo) GetByVideoAndDate(_ context.Context, videoID uint, date time.Time) (*revenue.RevenueShare, error) {
	s, ok := r.shares[shareKey(videoID, date)]
	if !ok {
		return nil, revenue.ErrShareNotFound
	}
	return s, nil
}

func (r *fakeShareRepo) ListByChannelInPeriod(_ context.Context, channelID uint, start, end time.Time) ([]*revenue.RevenueShare, error) {
	var out []*revenue.RevenueShare
	for _, s := range r.shares {
		if s.ChannelID() == channelID && !s.Date().Before(start) && !s.Date().After(end) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeShareRepo) ListDatesByVideoInPeriod(_ context.Context, videoID uint, start, end time.Time) ([]time.Time, error) {
	var out []time.Time
	for _, s := range r.shares {
		if s.VideoID() == videoID && !s.Date().Before(start) && !s.Date().After(end) {
			out = append(out, s.Date())
		}
	}
	return out, nil
}

func (r *fakeShareRepo) LockByChannelInPeriod(_ context.Context, channelID uint, start, end time.Time) error {
	for _, s := range r.shares {
		if s.ChannelID() == channelID && !s.Date().Before(start) && !s.Date().After(end) {
			s.Lock()
		}
	}
	return nil
}

func (r *fakeShareRepo) ListChannelIDsWithRevenueInPeriod(_ context.Context, start, end time.Time) ([]uint, error) {
	seen := make(map[uint]bool)
	var out []uint
	for _, s := range r.shares {
		if !s.Date().Before(start) && !s.Date().After(end) && !seen[s.ChannelID()] {
			seen[s.ChannelID()] = true
			out = append(out, s.ChannelID())
		}
	}
	return out, nil
}

type fakeVideoRepo struct {
	videos []*revenue.MonetizedVideo
}

func (r *fakeVideoRepo) Create(_ context.Context, v *revenue.MonetizedVideo) error {
	r.videos = append(r.videos, v)
	return nil
}

func (r *fakeVideoRepo) Update(_ context.Context, v *revenue.MonetizedVideo) error { return nil }

func (r *fakeVideoRepo) GetByVideoID(_ context.Context, videoID uint) (*revenue.MonetizedVideo, error) {
	for _, v := range r.videos {
		if v.VideoID() == videoID {
			return v, nil
		}
	}
	return nil, revenue.ErrVideoNotFound
}

func (r *fakeVideoRepo) ListByChannelID(_ context.Context, channelID uint) ([]*revenue.MonetizedVideo, error) {
	var out []*revenue.MonetizedVideo
	for _, v := range r.videos {
		if v.ChannelID() == channelID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeVideoRepo) ListMonetizedOn(_ context.Context, date time.Time) ([]*revenue.MonetizedVideo, error) {
	var out []*revenue.MonetizedVideo
	for _, v := range r.videos {
		if v.IsMonetizedOn(date) {
			out = append(out, v)
		}
	}
	return out, nil
}

type fakePayoutGateway struct {
	failures int
	calls    int
}

func (g *fakePayoutGateway) Name() string { return "2checkout" }

func (g *fakePayoutGateway) SubmitPayout(_ context.Context, order PayoutOrder) (string, error) {
	g.calls++
	if g.calls <= g.failures {
		return "", errors.New("gateway timeout")
	}
	return "2co-" + order.Reference, nil
}

// passthroughTx executes the function without a real database transaction.
type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var (
	periodStart = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	periodEnd   = time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)
)

type settlementFixture struct {
	settleUC   *SettlePayoutUseCase
	payoutRepo *fakePayoutRepo
	methodRepo *fakeMethodRepo
	shareRepo  *fakeShareRepo
	videoRepo  *fakeVideoRepo
	gateway    *fakePayoutGateway
}

func addShare(t *testing.T, repo *fakeShareRepo, videoID, channelID uint, date time.Time, adCents, premiumCents int64) {
	t.Helper()
	s, err := revenue.NewRevenueShare(videoID, channelID, date)
	require.NoError(t, err)
	require.NoError(t, s.RecordEarnings(adCents, premiumCents, adCents/5, premiumCents/5, 70))
	require.NoError(t, repo.Upsert(context.Background(), s))
}

func newSettlementFixture(t *testing.T) *settlementFixture {
	t.Helper()
	shareRepo := newFakeShareRepo()
	videoRepo := &fakeVideoRepo{}

	video, err := revenue.NewMonetizedVideo(10, 5, periodStart)
	require.NoError(t, err)
	require.NoError(t, videoRepo.Create(context.Background(), video))

	// Three days: 6000 + 4000 + 0 cents of revenue, 70% creator share.
	addShare(t, shareRepo, 10, 5, periodStart, 6000, 0)
	addShare(t, shareRepo, 10, 5, periodStart.AddDate(0, 0, 1), 0, 4000)
	addShare(t, shareRepo, 10, 5, periodEnd, 0, 0)

	method, err := payout.NewPayoutMethod(5, payoutvo.PayoutMethodBankTransfer, "Creator LLC", nil)
	require.NoError(t, err)
	method.SetID(1)
	method.Verify()
	method.MarkDefault()

	rates := SettlementRates{
		CreatorSharePercent: 70,
		FeePolicy: payout.FeePolicy{
			PlatformFeePercent:  5,
			GatewayFeeFlatCents: 250,
		},
		MinimumPayoutCents: 1000,
		Currency:           "USD",
	}

	payoutRepo := newFakePayoutRepo()
	methodRepo := &fakeMethodRepo{byID: map[uint]*payout.PayoutMethod{1: method}}
	settleUC := NewSettlePayoutUseCase(
		payoutRepo, methodRepo, shareRepo, videoRepo,
		services.NewReferenceGenerator(), rates, passthroughTx{}, logger.NewNop(),
	)

	return &settlementFixture{
		settleUC:   settleUC,
		payoutRepo: payoutRepo,
		methodRepo: methodRepo,
		shareRepo:  shareRepo,
		videoRepo:  videoRepo,
		gateway:    &fakePayoutGateway{},
	}
}

func (f *settlementFixture) processUC() *ProcessPayoutUseCase {
	return NewProcessPayoutUseCase(f.payoutRepo, f.methodRepo, f.shareRepo, f.gateway, passthroughTx{}, logger.NewNop())
}

func settleCmd() SettlePayoutCommand {
	return SettlePayoutCommand{ChannelID: 5, PeriodStart: periodStart, PeriodEnd: periodEnd}
}

func TestSettlePayout_ComputesFees(t *testing.T) {
	f := newSettlementFixture(t)

	p, err := f.settleUC.Execute(context.Background(), settleCmd())
	require.NoError(t, err)

	// 10000 revenue at 70% = 7000 creator gross; 5% platform fee (350)
	// plus 250 flat gateway fee leaves 6400.
	assert.Equal(t, int64(7000), p.GrossCents())
	assert.Equal(t, int64(4200), p.AdRevenueCents())
	assert.Equal(t, int64(2800), p.PremiumRevenueCents())
	assert.Equal(t, int64(350), p.PlatformFeeCents())
	assert.Equal(t, int64(250), p.GatewayFeeCents())
	assert.Equal(t, int64(6400), p.NetPayoutCents())
	assert.Equal(t, payoutvo.PayoutStatusPending, p.Status())
}

func TestSettlePayout_Idempotent(t *testing.T) {
	f := newSettlementFixture(t)

	first, err := f.settleUC.Execute(context.Background(), settleCmd())
	require.NoError(t, err)
	second, err := f.settleUC.Execute(context.Background(), settleCmd())
	require.NoError(t, err)

	assert.Equal(t, first.ID(), second.ID())
	assert.Len(t, f.payoutRepo.byID, 1)
}

func TestSettlePayout_IncompletePeriodBlocks(t *testing.T) {
	f := newSettlementFixture(t)
	delete(f.shareRepo.shares, shareKey(10, periodStart.AddDate(0, 0, 1)))

	_, err := f.settleUC.Execute(context.Background(), settleCmd())
	require.Error(t, err)
	assert.True(t, apperrors.IsConflictError(err))
	assert.Contains(t, err.Error(), "missing")
	assert.Empty(t, f.payoutRepo.byID)
}

func TestSettlePayout_BelowMinimumBlocks(t *testing.T) {
	f := newSettlementFixture(t)
	f.settleUC.rates.MinimumPayoutCents = 100000

	_, err := f.settleUC.Execute(context.Background(), settleCmd())
	require.Error(t, err)
	assert.True(t, apperrors.IsConflictError(err))
}

func TestSettlePayout_NoVerifiedMethodBlocks(t *testing.T) {
	f := newSettlementFixture(t)
	f.methodRepo.byID = map[uint]*payout.PayoutMethod{}

	_, err := f.settleUC.Execute(context.Background(), settleCmd())
	require.Error(t, err)
	assert.True(t, apperrors.IsConflictError(err))
}

func TestProcessPayout_CompletesAndLocksPeriod(t *testing.T) {
	f := newSettlementFixture(t)
	p, err := f.settleUC.Execute(context.Background(), settleCmd())
	require.NoError(t, err)

	processed, err := f.processUC().Execute(context.Background(), ProcessPayoutCommand{PayoutID: p.ID()})
	require.NoError(t, err)
	assert.Equal(t, payoutvo.PayoutStatusCompleted, processed.Status())
	require.NotNil(t, processed.PaymentReference())

	for _, s := range f.shareRepo.shares {
		assert.True(t, s.Locked())
	}

	// Late telemetry for a locked day is refused.
	late, err := revenue.NewRevenueShare(10, 5, periodStart)
	require.NoError(t, err)
	require.NoError(t, late.RecordEarnings(1, 0, 1, 0, 70))
	assert.ErrorIs(t, f.shareRepo.Upsert(context.Background(), late), revenue.ErrPeriodClosed)
}

func TestProcessPayout_FailureIsRetryable(t *testing.T) {
	f := newSettlementFixture(t)
	f.gateway.failures = 1
	p, err := f.settleUC.Execute(context.Background(), settleCmd())
	require.NoError(t, err)

	uc := f.processUC()
	_, err = uc.Execute(context.Background(), ProcessPayoutCommand{PayoutID: p.ID()})
	require.Error(t, err)

	stored, err := f.payoutRepo.GetByID(context.Background(), p.ID())
	require.NoError(t, err)
	assert.Equal(t, payoutvo.PayoutStatusFailed, stored.Status())

	retried, err := uc.Execute(context.Background(), ProcessPayoutCommand{PayoutID: p.ID()})
	require.NoError(t, err)
	assert.Equal(t, payoutvo.PayoutStatusCompleted, retried.Status())
}

func TestSettleMonthlyPayouts(t *testing.T) {
	f := newSettlementFixture(t)

	// Shift shares into January so the batch's "previous month" period
	// covers them, and narrow the video's monetized window to match.
	f.shareRepo.shares = make(map[string]*revenue.RevenueShare)
	janStart := time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC)
	video, err := revenue.NewMonetizedVideo(10, 5, janStart)
	require.NoError(t, err)
	video.Demonetize(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	f.videoRepo.videos = []*revenue.MonetizedVideo{video}
	addShare(t, f.shareRepo, 10, 5, janStart, 6000, 0)
	addShare(t, f.shareRepo, 10, 5, janStart.AddDate(0, 0, 1), 0, 4000)

	batch := NewSettleMonthlyPayoutsUseCase(f.settleUC, f.processUC(), f.shareRepo, logger.NewNop())
	completed, err := batch.Execute(context.Background(), time.Date(2026, 2, 1, 4, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, completed)

	stored, err := f.payoutRepo.GetByChannelAndPeriod(context.Background(),
		5,
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.Equal(t, payoutvo.PayoutStatusCompleted, stored.Status())
	assert.Equal(t, int64(7000), stored.GrossCents())
}
