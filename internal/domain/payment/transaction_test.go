package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/vistream-inc/vistream/internal/domain/payment/valueobjects"
)

func newPendingTransaction(t *testing.T) *Transaction {
	t.Helper()
	gw, err := vo.NewGateway("sslcommerz")
	require.NoError(t, err)
	tx, err := NewTransaction(1, gw, "gw-txn-001", vo.NewMoney(999, "USD"))
	require.NoError(t, err)
	return tx
}

func TestTransaction_Complete(t *testing.T) {
	completedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("pending to completed", func(t *testing.T) {
		tx := newPendingTransaction(t)
		require.NoError(t, tx.Complete(completedAt))
		assert.Equal(t, vo.TransactionStatusCompleted, tx.Status())
		require.NotNil(t, tx.CompletedAt())
		assert.Equal(t, completedAt, *tx.CompletedAt())
	})

	t.Run("idempotent on replay", func(t *testing.T) {
		tx := newPendingTransaction(t)
		require.NoError(t, tx.Complete(completedAt))
		assert.NoError(t, tx.Complete(completedAt.Add(time.Minute)))
		assert.Equal(t, completedAt, *tx.CompletedAt())
	})

	t.Run("failed rows stay failed", func(t *testing.T) {
		tx := newPendingTransaction(t)
		require.NoError(t, tx.Fail("card declined"))
		assert.ErrorIs(t, tx.Complete(completedAt), ErrTransactionFinal)
	})
}

func TestTransaction_ApplyDiscount(t *testing.T) {
	t.Run("reduces the charge amount", func(t *testing.T) {
		tx := newPendingTransaction(t)
		require.NoError(t, tx.ApplyDiscount(7, 200))
		assert.Equal(t, int64(799), tx.Amount().AmountInCents())
		assert.Equal(t, int64(200), tx.DiscountCents())
		require.NotNil(t, tx.PromoCodeID())
		assert.Equal(t, uint(7), *tx.PromoCodeID())
	})

	t.Run("rejects discount over the amount", func(t *testing.T) {
		tx := newPendingTransaction(t)
		assert.Error(t, tx.ApplyDiscount(7, 1000))
	})

	t.Run("final rows reject discounts", func(t *testing.T) {
		tx := newPendingTransaction(t)
		require.NoError(t, tx.Complete(time.Now().UTC()))
		assert.ErrorIs(t, tx.ApplyDiscount(7, 100), ErrTransactionFinal)
	})
}

func TestNewRefundTransaction(t *testing.T) {
	t.Run("links a negative row to the original", func(t *testing.T) {
		tx := newPendingTransaction(t)
		tx.SetID(42)
		require.NoError(t, tx.Complete(time.Now().UTC()))

		refund, err := NewRefundTransaction(tx, "billing dispute")
		require.NoError(t, err)
		assert.Equal(t, int64(-999), refund.Amount().AmountInCents())
		assert.Equal(t, vo.TransactionStatusRefunded, refund.Status())
		assert.Equal(t, "gw-txn-001:refund", refund.GatewayTransactionID())
		require.NotNil(t, refund.RefundOfID())
		assert.Equal(t, uint(42), *refund.RefundOfID())
		// The original row is untouched.
		assert.Equal(t, vo.TransactionStatusCompleted, tx.Status())
	})

	t.Run("only completed transactions refund", func(t *testing.T) {
		tx := newPendingTransaction(t)
		_, err := NewRefundTransaction(tx, "dispute")
		assert.Error(t, err)
	})
}
