package biztime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOf(t *testing.T) {
	moment := time.Date(2026, 3, 15, 18, 42, 7, 123, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), DateOf(moment))
	assert.Equal(t, DateOf(moment), DateOf(DateOf(moment)))
}

func TestPreviousMonthPeriod(t *testing.T) {
	t.Run("mid month", func(t *testing.T) {
		first, last := PreviousMonthPeriod(time.Date(2026, 3, 10, 4, 0, 0, 0, time.UTC))
		assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), first)
		assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), last)
	})

	t.Run("january wraps to december", func(t *testing.T) {
		first, last := PreviousMonthPeriod(time.Date(2026, 1, 1, 4, 0, 0, 0, time.UTC))
		assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), first)
		assert.Equal(t, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), last)
	})
}

func TestDatesInRange(t *testing.T) {
	start := time.Date(2026, 2, 26, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	dates := DatesInRange(start, end)
	require.Len(t, dates, 5)
	assert.Equal(t, start, dates[0])
	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), dates[2])
	assert.Equal(t, end, dates[4])
}

func TestParseFormatDate(t *testing.T) {
	d, err := ParseDate("2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), d)
	assert.Equal(t, "2026-03-15", FormatDate(d))

	_, err = ParseDate("15/03/2026")
	assert.Error(t, err)
}

func TestEndOfMonthUTC(t *testing.T) {
	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), EndOfMonthUTC(2026, time.February))
	assert.Equal(t, time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC), EndOfMonthUTC(2028, time.February))
	assert.Equal(t, time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), EndOfMonthUTC(2026, time.December))
}
