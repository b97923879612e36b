package payout

import (
	"context"
	"time"
)

// PayoutRepository persists creator payouts.
type PayoutRepository interface {
	// Create inserts a payout. Returns ErrDuplicatePayout when a payout
	// for the same channel and period already exists.
	Create(ctx context.Context, payout *CreatorPayout) error
	Update(ctx context.Context, payout *CreatorPayout) error
	GetByID(ctx context.Context, id uint) (*CreatorPayout, error)
	GetByChannelAndPeriod(ctx context.Context, channelID uint, periodStart, periodEnd time.Time) (*CreatorPayout, error)
	// HasPayoutCovering reports whether any payout period of the channel
	// contains the date. Telemetry ingest uses this to refuse new rows
	// inside a period that already has a payout.
	HasPayoutCovering(ctx context.Context, channelID uint, date time.Time) (bool, error)
	ListByChannelID(ctx context.Context, channelID uint, limit, offset int) ([]*CreatorPayout, int64, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*CreatorPayout, int64, error)
}

// MethodRepository persists channel payout methods.
type MethodRepository interface {
	Create(ctx context.Context, method *PayoutMethod) error
	Update(ctx context.Context, method *PayoutMethod) error
	GetByID(ctx context.Context, id uint) (*PayoutMethod, error)
	// GetDefaultVerifiedByChannelID returns the channel's default verified
	// method, or ErrNoVerifiedPayoutMethod.
	GetDefaultVerifiedByChannelID(ctx context.Context, channelID uint) (*PayoutMethod, error)
	ListByChannelID(ctx context.Context, channelID uint) ([]*PayoutMethod, error)
}
