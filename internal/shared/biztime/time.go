// Package biztime provides utilities for accounting timezone calculations.
// All storage and transport use UTC. The accounting timezone is only used to
// decide where a calendar day or payout period begins and ends.
//
// Design principles:
//   - All time storage is in UTC
//   - Accounting-day and payout-period boundaries are computed in the accounting
//     timezone first, then converted to UTC for queries
//   - Implicit Local timezone is prohibited
package biztime

import (
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultTimezone is the default accounting timezone. The ledger keeps
	// everything in UTC unless operators configure otherwise.
	DefaultTimezone = "UTC"
)

var (
	acctLocation     *time.Location
	acctLocationOnce sync.Once
	initErr          error
)

// Init initializes the accounting timezone. Should be called once at startup.
func Init(tz string) error {
	acctLocationOnce.Do(func() {
		if tz == "" {
			tz = DefaultTimezone
		}
		acctLocation, initErr = time.LoadLocation(tz)
	})
	return initErr
}

// MustInit initializes the accounting timezone and panics on error.
func MustInit(tz string) {
	if err := Init(tz); err != nil {
		panic(fmt.Sprintf("failed to initialize accounting timezone %q: %v", tz, err))
	}
}

// Location returns the accounting timezone location, auto-initializing with
// the default when Init was never called.
func Location() *time.Location {
	if acctLocation == nil {
		if err := Init(""); err != nil {
			panic(fmt.Sprintf("biztime: failed to auto-initialize with default timezone: %v", err))
		}
	}
	return acctLocation
}

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// DateOf truncates a moment to its accounting date: midnight of that day in
// the accounting timezone, expressed in UTC. Revenue-share rows and payout
// periods are keyed on dates in this form.
func DateOf(t time.Time) time.Time {
	at := t.In(Location())
	return time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, Location()).UTC()
}

// StartOfDayUTC returns the start of day in the accounting timezone, converted to UTC.
func StartOfDayUTC(t time.Time) time.Time {
	return DateOf(t)
}

// EndOfDayUTC returns the last nanosecond of the day in the accounting
// timezone, converted to UTC.
func EndOfDayUTC(t time.Time) time.Time {
	return DateOf(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// StartOfMonthUTC returns the start of month in the accounting timezone, converted to UTC.
func StartOfMonthUTC(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, Location()).UTC()
}

// EndOfMonthUTC returns the last accounting date of the month, converted to UTC.
func EndOfMonthUTC(year int, month time.Month) time.Time {
	return time.Date(year, month+1, 1, 0, 0, 0, 0, Location()).AddDate(0, 0, -1).UTC()
}

// PreviousMonthPeriod returns the [first date, last date] of the calendar
// month before t in the accounting timezone. Used by the monthly settlement
// job to derive the payout period.
func PreviousMonthPeriod(t time.Time) (time.Time, time.Time) {
	at := t.In(Location())
	firstOfThis := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, Location())
	firstOfPrev := firstOfThis.AddDate(0, -1, 0)
	lastOfPrev := firstOfThis.AddDate(0, 0, -1)
	return firstOfPrev.UTC(), lastOfPrev.UTC()
}

// DatesInRange returns every accounting date from start through end inclusive.
// Both bounds must already be accounting dates (see DateOf).
func DatesInRange(start, end time.Time) []time.Time {
	var dates []time.Time
	for d := start; !d.After(end); d = NextDate(d) {
		dates = append(dates, d)
	}
	return dates
}

// NextDate returns the accounting date following d.
func NextDate(d time.Time) time.Time {
	return DateOf(d.In(Location()).AddDate(0, 0, 1))
}

// ParseDate parses a date string (YYYY-MM-DD) as an accounting date,
// returning the UTC equivalent of that day's midnight.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", dateStr, Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format %q: %w", dateStr, err)
	}
	return t.UTC(), nil
}

// FormatDate formats an accounting date as YYYY-MM-DD in the accounting timezone.
func FormatDate(t time.Time) string {
	return t.In(Location()).Format("2006-01-02")
}

// ToUTC converts a time (any timezone) to UTC.
func ToUTC(t time.Time) time.Time {
	return t.UTC()
}
