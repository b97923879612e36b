package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vistream-inc/vistream/internal/domain/subscription"
	subvo "github.com/vistream-inc/vistream/internal/domain/subscription/valueobjects"
	"github.com/vistream-inc/vistream/internal/shared/biztime"
	"github.com/vistream-inc/vistream/internal/shared/logger"
)

// sweepRepo lets a test interleave a concurrent change between the sweep's
// listing query and its per-row re-read.
type sweepRepo struct {
	fakeSubRepo
	subs      map[uint]*subscription.Subscription
	onGetByID func(sub *subscription.Subscription)
}

func (r *sweepRepo) GetByID(_ context.Context, id uint) (*subscription.Subscription, error) {
	sub, ok := r.subs[id]
	if !ok {
		return nil, subscription.ErrSubscriptionNotFound
	}
	if r.onGetByID != nil {
		r.onGetByID(sub)
	}
	return sub, nil
}

func (r *sweepRepo) Update(_ context.Context, sub *subscription.Subscription) error {
	r.subs[sub.ID()] = sub
	return nil
}

func (r *sweepRepo) ListGraceExpiredBefore(_ context.Context, deadline time.Time) ([]*subscription.Subscription, error) {
	var out []*subscription.Subscription
	for _, sub := range r.subs {
		if sub.Status() == subvo.StatusGracePeriod && sub.GracePeriodEndsAt() != nil && sub.GracePeriodEndsAt().Before(deadline) {
			out = append(out, sub)
		}
	}
	return out, nil
}

func lapsedGraceSubscription(t *testing.T) *subscription.Subscription {
	t.Helper()
	start := biztime.NowUTC().AddDate(0, -2, 0)
	sub, err := subscription.NewSubscription(9, 1, "sslcommerz", "gw-sub-1", start, start.AddDate(0, 1, 0))
	require.NoError(t, err)
	// Renewal failed long enough ago that the grace window has lapsed.
	require.NoError(t, sub.RecordRenewalFailure(biztime.NowUTC().Add(-96*time.Hour), 72*time.Hour))
	require.NoError(t, sub.SetID(1))
	return sub
}

func TestExpireSubscriptions_ExpiresLapsedGrace(t *testing.T) {
	repo := &sweepRepo{subs: map[uint]*subscription.Subscription{1: lapsedGraceSubscription(t)}}
	uc := NewExpireSubscriptionsUseCase(repo, passthroughTx{}, logger.NewNop())

	expired, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, expired)
	assert.Equal(t, subvo.StatusExpired, repo.subs[1].Status())
}

func TestExpireSubscriptions_ConcurrentPaymentWins(t *testing.T) {
	repo := &sweepRepo{subs: map[uint]*subscription.Subscription{1: lapsedGraceSubscription(t)}}
	// A retry payment lands between the listing and the per-row re-read.
	repo.onGetByID = func(sub *subscription.Subscription) {
		if sub.Status() == subvo.StatusGracePeriod {
			require.NoError(t, sub.RecordRenewalSuccess(biztime.NowUTC().AddDate(0, 1, 0)))
		}
	}
	uc := NewExpireSubscriptionsUseCase(repo, passthroughTx{}, logger.NewNop())

	expired, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, expired)
	assert.Equal(t, subvo.StatusActive, repo.subs[1].Status())
}
