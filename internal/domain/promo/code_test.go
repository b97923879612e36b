package promo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/vistream-inc/vistream/internal/domain/promo/valueobjects"
)

func mustDiscount(t *testing.T, dt vo.DiscountType, value int64) vo.Discount {
	t.Helper()
	d, err := vo.NewDiscount(dt, value)
	require.NoError(t, err)
	return d
}

func TestNewPromotionalCode(t *testing.T) {
	discount := mustDiscount(t, vo.DiscountTypePercentage, 20)
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC)

	t.Run("normalizes code to uppercase", func(t *testing.T) {
		code, err := NewPromotionalCode("  launch50 ", discount, from, until)
		require.NoError(t, err)
		assert.Equal(t, "LAUNCH50", code.Code())
		assert.True(t, code.IsActive())
		assert.Equal(t, 1, code.MaxUsesPerUser())
		assert.Nil(t, code.MaxUses())
	})

	t.Run("rejects empty code", func(t *testing.T) {
		_, err := NewPromotionalCode("   ", discount, from, until)
		assert.Error(t, err)
	})

	t.Run("rejects inverted validity window", func(t *testing.T) {
		_, err := NewPromotionalCode("X", discount, until, from)
		assert.Error(t, err)
	})
}

func TestPromotionalCode_Validate(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 6, 30, 23, 59, 59, 0, time.UTC)
	inWindow := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	discount := mustDiscount(t, vo.DiscountTypePercentage, 50)

	newCode := func(t *testing.T) *PromotionalCode {
		t.Helper()
		c, err := NewPromotionalCode("SPRING", discount, from, until)
		require.NoError(t, err)
		return c
	}

	t.Run("valid code passes", func(t *testing.T) {
		c := newCode(t)
		assert.NoError(t, c.Validate(inWindow, 1, 0))
	})

	t.Run("inactive code", func(t *testing.T) {
		c := newCode(t)
		c.Deactivate()
		assert.ErrorIs(t, c.Validate(inWindow, 1, 0), ErrCodeInactive)
	})

	t.Run("before window", func(t *testing.T) {
		c := newCode(t)
		assert.ErrorIs(t, c.Validate(from.Add(-time.Hour), 1, 0), ErrCodeExpired)
	})

	t.Run("after window", func(t *testing.T) {
		c := newCode(t)
		assert.ErrorIs(t, c.Validate(until.Add(time.Hour), 1, 0), ErrCodeExpired)
	})

	t.Run("global cap reached", func(t *testing.T) {
		c := newCode(t)
		require.NoError(t, c.SetMaxUses(100))
		c.currentUses = 100
		assert.ErrorIs(t, c.Validate(inWindow, 1, 0), ErrCodeExhausted)
	})

	t.Run("per-user limit reached", func(t *testing.T) {
		c := newCode(t)
		assert.ErrorIs(t, c.Validate(inWindow, 1, 1), ErrUserLimitReached)
	})

	t.Run("plan restriction", func(t *testing.T) {
		c := newCode(t)
		c.RestrictToPlans([]uint{2, 3})
		assert.ErrorIs(t, c.Validate(inWindow, 1, 0), ErrPlanNotApplicable)
		assert.NoError(t, c.Validate(inWindow, 3, 0))
	})
}

func TestDiscount_AmountOff(t *testing.T) {
	t.Run("percentage truncates", func(t *testing.T) {
		d, err := vo.NewDiscount(vo.DiscountTypePercentage, 33)
		require.NoError(t, err)
		// 33% of 999 cents is 329.67; integer math keeps the floor.
		assert.Equal(t, int64(329), d.AmountOff(999))
	})

	t.Run("fixed clamps at amount", func(t *testing.T) {
		d, err := vo.NewDiscount(vo.DiscountTypeFixed, 1500)
		require.NoError(t, err)
		assert.Equal(t, int64(999), d.AmountOff(999))
		assert.Equal(t, int64(1500), d.AmountOff(2000))
	})

	t.Run("rejects percentage over 100", func(t *testing.T) {
		_, err := vo.NewDiscount(vo.DiscountTypePercentage, 101)
		assert.Error(t, err)
	})

	t.Run("zero amount yields zero discount", func(t *testing.T) {
		d, err := vo.NewDiscount(vo.DiscountTypeFixed, 500)
		require.NoError(t, err)
		assert.Equal(t, int64(0), d.AmountOff(0))
	})
}
