package revenue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatorCut(t *testing.T) {
	tests := []struct {
		name       string
		totalCents int64
		percent    int64
		want       int64
	}{
		{"even split", 10000, 70, 7000},
		{"truncates sub-cent remainder", 99, 70, 69},
		{"zero revenue", 0, 70, 0},
		{"full share", 1234, 100, 1234},
		{"no share", 1234, 0, 0},
		{"single cent", 1, 70, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CreatorCut(tt.totalCents, tt.percent))
		})
	}
}

func TestRevenueShare_RecordEarnings(t *testing.T) {
	date := time.Date(2026, 3, 15, 18, 30, 0, 0, time.UTC)

	t.Run("computes creator share from totals", func(t *testing.T) {
		share, err := NewRevenueShare(10, 5, date)
		require.NoError(t, err)
		// Date is truncated to the accounting day.
		assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), share.Date())

		require.NoError(t, share.RecordEarnings(6000, 4000, 120000, 800, 70))
		assert.Equal(t, int64(10000), share.TotalRevenueCents())
		assert.Equal(t, int64(7000), share.CreatorShareCents())
	})

	t.Run("re-ingest replaces previous figures", func(t *testing.T) {
		share, err := NewRevenueShare(10, 5, date)
		require.NoError(t, err)
		require.NoError(t, share.RecordEarnings(100, 0, 50, 0, 70))
		require.NoError(t, share.RecordEarnings(6000, 4000, 120000, 800, 70))
		assert.Equal(t, int64(7000), share.CreatorShareCents())
		assert.Equal(t, int64(120000), share.AdImpressions())
	})

	t.Run("locked row rejects writes", func(t *testing.T) {
		share, err := NewRevenueShare(10, 5, date)
		require.NoError(t, err)
		require.NoError(t, share.RecordEarnings(100, 0, 50, 0, 70))
		share.Lock()
		assert.ErrorIs(t, share.RecordEarnings(200, 0, 80, 0, 70), ErrPeriodClosed)
		assert.Equal(t, int64(70), share.CreatorShareCents())
	})

	t.Run("rejects negative revenue", func(t *testing.T) {
		share, err := NewRevenueShare(10, 5, date)
		require.NoError(t, err)
		assert.Error(t, share.RecordEarnings(-1, 0, 0, 0, 70))
	})

	t.Run("lock is idempotent", func(t *testing.T) {
		share, err := NewRevenueShare(10, 5, date)
		require.NoError(t, err)
		share.Lock()
		share.Lock()
		assert.True(t, share.Locked())
	})
}

func TestMonetizedVideo_IsMonetizedOn(t *testing.T) {
	since := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	video, err := NewMonetizedVideo(10, 5, since)
	require.NoError(t, err)

	assert.False(t, video.IsMonetizedOn(since.AddDate(0, 0, -1)))
	assert.True(t, video.IsMonetizedOn(since))
	assert.True(t, video.IsMonetizedOn(since.AddDate(0, 1, 0)))

	video.Demonetize(time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC))
	assert.True(t, video.IsMonetizedOn(time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)))
	assert.False(t, video.IsMonetizedOn(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)))
}
