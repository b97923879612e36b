package revenue

import (
	"context"
	"time"
)

// ShareRepository persists per-video daily revenue shares.
type ShareRepository interface {
	// Upsert inserts or replaces the share for its (video, date) key.
	// Returns ErrPeriodClosed when the stored row is locked.
	Upsert(ctx context.Context, share *RevenueShare) error
	GetByVideoAndDate(ctx context.Context, videoID uint, date time.Time) (*RevenueShare, error)
	ListByChannelInPeriod(ctx context.Context, channelID uint, start, end time.Time) ([]*RevenueShare, error)
	// ListDatesByVideoInPeriod returns the distinct accounting dates that
	// have a share row for the video. Settlement diffs this against the
	// calendar to find gaps.
	ListDatesByVideoInPeriod(ctx context.Context, videoID uint, start, end time.Time) ([]time.Time, error)
	// LockByChannelInPeriod marks every share in the period locked. Runs
	// inside the payout completion transaction.
	LockByChannelInPeriod(ctx context.Context, channelID uint, start, end time.Time) error
	// ListChannelIDsWithRevenueInPeriod returns channels with at least one
	// unlocked share in the period, for batch settlement.
	ListChannelIDsWithRevenueInPeriod(ctx context.Context, start, end time.Time) ([]uint, error)
}

// VideoRepository persists the monetized video registry.
type VideoRepository interface {
	Create(ctx context.Context, video *MonetizedVideo) error
	Update(ctx context.Context, video *MonetizedVideo) error
	GetByVideoID(ctx context.Context, videoID uint) (*MonetizedVideo, error)
	ListByChannelID(ctx context.Context, channelID uint) ([]*MonetizedVideo, error)
	// ListMonetizedOn returns every video that was earning on the date.
	ListMonetizedOn(ctx context.Context, date time.Time) ([]*MonetizedVideo, error)
}
