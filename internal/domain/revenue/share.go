package revenue

import (
	"fmt"
	"time"

	"github.com/vistream-inc/vistream/internal/shared/biztime"
)

// RevenueShare is one video's earnings for one accounting date. Rows are
// upserted by the daily telemetry ingest until a payout locks them; a locked
// row never changes again.
type RevenueShare struct {
	id                  uint
	videoID             uint
	channelID           uint
	date                time.Time
	adRevenueCents      int64
	premiumRevenueCents int64
	adImpressions       int64
	premiumViews        int64
	creatorShareCents   int64
	locked              bool
	createdAt           time.Time
	updatedAt           time.Time
}

func NewRevenueShare(videoID, channelID uint, date time.Time) (*RevenueShare, error) {
	if videoID == 0 {
		return nil, fmt.Errorf("video ID is required")
	}
	if channelID == 0 {
		return nil, fmt.Errorf("channel ID is required")
	}

	now := biztime.NowUTC()
	return &RevenueShare{
		videoID:   videoID,
		channelID: channelID,
		date:      biztime.DateOf(date),
		createdAt: now,
		updatedAt: now,
	}, nil
}

func (s *RevenueShare) ID() uint                   { return s.id }
func (s *RevenueShare) VideoID() uint              { return s.videoID }
func (s *RevenueShare) ChannelID() uint            { return s.channelID }
func (s *RevenueShare) Date() time.Time            { return s.date }
func (s *RevenueShare) AdRevenueCents() int64      { return s.adRevenueCents }
func (s *RevenueShare) PremiumRevenueCents() int64 { return s.premiumRevenueCents }
func (s *RevenueShare) AdImpressions() int64       { return s.adImpressions }
func (s *RevenueShare) PremiumViews() int64        { return s.premiumViews }
func (s *RevenueShare) CreatorShareCents() int64   { return s.creatorShareCents }
func (s *RevenueShare) Locked() bool               { return s.locked }
func (s *RevenueShare) CreatedAt() time.Time       { return s.createdAt }
func (s *RevenueShare) UpdatedAt() time.Time       { return s.updatedAt }

// TotalRevenueCents is the gross revenue before the creator split.
func (s *RevenueShare) TotalRevenueCents() int64 {
	return s.adRevenueCents + s.premiumRevenueCents
}

// RecordEarnings replaces the day's figures and recomputes the creator
// share with integer truncation, so the platform keeps the remainder.
// Fails with ErrPeriodClosed once the row has been locked by a payout.
func (s *RevenueShare) RecordEarnings(adRevenueCents, premiumRevenueCents, adImpressions, premiumViews int64, creatorSharePercent int64) error {
	if s.locked {
		return ErrPeriodClosed
	}
	if adRevenueCents < 0 || premiumRevenueCents < 0 {
		return fmt.Errorf("revenue cannot be negative")
	}
	if adImpressions < 0 || premiumViews < 0 {
		return fmt.Errorf("metrics cannot be negative")
	}
	if creatorSharePercent < 0 || creatorSharePercent > 100 {
		return fmt.Errorf("creator share percent must be between 0 and 100")
	}

	s.adRevenueCents = adRevenueCents
	s.premiumRevenueCents = premiumRevenueCents
	s.adImpressions = adImpressions
	s.premiumViews = premiumViews
	s.creatorShareCents = CreatorCut(s.TotalRevenueCents(), creatorSharePercent)
	s.updatedAt = biztime.NowUTC()
	return nil
}

// Lock freezes the row after its period settles. Idempotent.
func (s *RevenueShare) Lock() {
	if s.locked {
		return
	}
	s.locked = true
	s.updatedAt = biztime.NowUTC()
}

// SetID sets the share ID after persistence.
func (s *RevenueShare) SetID(id uint) {
	s.id = id
}

// CreatorCut computes the creator's portion of gross revenue. Integer
// division truncates toward zero; the sub-cent remainder stays with the
// platform.
func CreatorCut(totalCents, creatorSharePercent int64) int64 {
	return totalCents * creatorSharePercent / 100
}

// RevenueShareReconstructParams carries persisted state back into the aggregate.
type RevenueShareReconstructParams struct {
	ID                  uint
	VideoID             uint
	ChannelID           uint
	Date                time.Time
	AdRevenueCents      int64
	PremiumRevenueCents int64
	AdImpressions       int64
	PremiumViews        int64
	CreatorShareCents   int64
	Locked              bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ReconstructRevenueShare rebuilds a revenue share from persistence.
func ReconstructRevenueShare(p RevenueShareReconstructParams) *RevenueShare {
	return &RevenueShare{
		id:                  p.ID,
		videoID:             p.VideoID,
		channelID:           p.ChannelID,
		date:                p.Date,
		adRevenueCents:      p.AdRevenueCents,
		premiumRevenueCents: p.PremiumRevenueCents,
		adImpressions:       p.AdImpressions,
		premiumViews:        p.PremiumViews,
		creatorShareCents:   p.CreatorShareCents,
		locked:              p.Locked,
		createdAt:           p.CreatedAt,
		updatedAt:           p.UpdatedAt,
	}
}
