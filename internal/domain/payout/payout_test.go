package payout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/vistream-inc/vistream/internal/domain/payout/valueobjects"
)

var testPolicy = FeePolicy{
	PlatformFeePercent:    5,
	GatewayFeeFlatCents:   250,
	TaxWithholdingPercent: 0,
}

func newTestPayout(t *testing.T) *CreatorPayout {
	t.Helper()
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	fees := testPolicy.Apply(7000)
	p, err := NewCreatorPayout(5, 1, start, end, 4000, 3000, fees, "USD", "PO20260301040000000001")
	require.NoError(t, err)
	return p
}

func TestFeePolicy_Apply(t *testing.T) {
	t.Run("deducts percentage and flat fees", func(t *testing.T) {
		// 7000 gross, 5% platform fee (350), 250 flat gateway fee.
		b := testPolicy.Apply(7000)
		assert.Equal(t, int64(7000), b.GrossCents)
		assert.Equal(t, int64(350), b.PlatformFeeCents)
		assert.Equal(t, int64(250), b.GatewayFeeCents)
		assert.Equal(t, int64(0), b.TaxWithheldCents)
		assert.Equal(t, int64(6400), b.NetCents)
	})

	t.Run("withholds tax", func(t *testing.T) {
		policy := FeePolicy{PlatformFeePercent: 5, GatewayFeeFlatCents: 250, TaxWithholdingPercent: 10}
		b := policy.Apply(7000)
		assert.Equal(t, int64(700), b.TaxWithheldCents)
		assert.Equal(t, int64(5700), b.NetCents)
	})

	t.Run("clamps net at zero", func(t *testing.T) {
		b := testPolicy.Apply(100)
		assert.Equal(t, int64(0), b.NetCents)
	})

	t.Run("percentage fees truncate", func(t *testing.T) {
		policy := FeePolicy{PlatformFeePercent: 3}
		b := policy.Apply(99)
		assert.Equal(t, int64(2), b.PlatformFeeCents)
	})
}

func TestNewCreatorPayout(t *testing.T) {
	t.Run("starts pending with fee breakdown applied", func(t *testing.T) {
		p := newTestPayout(t)
		assert.Equal(t, vo.PayoutStatusPending, p.Status())
		assert.Equal(t, int64(7000), p.GrossCents())
		assert.Equal(t, int64(6400), p.NetPayoutCents())
		assert.Equal(t, "USD", p.Currency())
	})

	t.Run("rejects mismatched gross", func(t *testing.T) {
		start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
		fees := testPolicy.Apply(9999)
		_, err := NewCreatorPayout(5, 1, start, end, 4000, 3000, fees, "USD", "REF")
		assert.Error(t, err)
	})
}

func TestCreatorPayout_Lifecycle(t *testing.T) {
	t.Run("pending to processing to completed", func(t *testing.T) {
		p := newTestPayout(t)
		require.NoError(t, p.StartProcessing())
		assert.Equal(t, vo.PayoutStatusProcessing, p.Status())
		require.NotNil(t, p.ProcessedAt())

		require.NoError(t, p.Complete("gw-ref-123"))
		assert.Equal(t, vo.PayoutStatusCompleted, p.Status())
		require.NotNil(t, p.PaymentReference())
		assert.Equal(t, "gw-ref-123", *p.PaymentReference())
		assert.NotNil(t, p.CompletedAt())
	})

	t.Run("completed payout is immutable", func(t *testing.T) {
		p := newTestPayout(t)
		require.NoError(t, p.StartProcessing())
		require.NoError(t, p.Complete("gw-ref-123"))

		assert.ErrorIs(t, p.Fail("late failure"), ErrPayoutImmutable)
		assert.ErrorIs(t, p.Cancel(), ErrPayoutImmutable)
		assert.ErrorIs(t, p.StartProcessing(), ErrPayoutImmutable)
	})

	t.Run("failed payout can be retried", func(t *testing.T) {
		p := newTestPayout(t)
		require.NoError(t, p.StartProcessing())
		require.NoError(t, p.Fail("gateway timeout"))
		assert.Equal(t, vo.PayoutStatusFailed, p.Status())
		require.NotNil(t, p.FailureReason())

		require.NoError(t, p.StartProcessing())
		assert.Equal(t, vo.PayoutStatusProcessing, p.Status())
		assert.Nil(t, p.FailureReason())
	})

	t.Run("pending cannot complete directly", func(t *testing.T) {
		p := newTestPayout(t)
		assert.ErrorIs(t, p.Complete("gw-ref"), ErrInvalidStatusTransition)
	})

	t.Run("cancel from pending", func(t *testing.T) {
		p := newTestPayout(t)
		require.NoError(t, p.Cancel())
		assert.Equal(t, vo.PayoutStatusCancelled, p.Status())
	})
}

func TestPayoutMethod_Verify(t *testing.T) {
	m, err := NewPayoutMethod(5, vo.PayoutMethodBankTransfer, "Creator LLC", map[string]interface{}{
		"account_number": "000123",
	})
	require.NoError(t, err)
	assert.False(t, m.IsVerified())

	m.Verify()
	assert.True(t, m.IsVerified())
	require.NotNil(t, m.VerifiedAt())

	first := *m.VerifiedAt()
	m.Verify()
	assert.Equal(t, first, *m.VerifiedAt())
}
