package revenue

import (
	"fmt"
	"time"

	"github.com/vistream-inc/vistream/internal/shared/biztime"
)

// MonetizedVideo registers a video as earning revenue. The registry is what
// makes gap detection possible: settlement can tell "no telemetry arrived"
// apart from "video earned nothing" only because every monetized video is
// known up front.
type MonetizedVideo struct {
	id             uint
	videoID        uint
	channelID      uint
	monetizedSince time.Time
	demonetizedAt  *time.Time
	createdAt      time.Time
	updatedAt      time.Time
}

func NewMonetizedVideo(videoID, channelID uint, monetizedSince time.Time) (*MonetizedVideo, error) {
	if videoID == 0 {
		return nil, fmt.Errorf("video ID is required")
	}
	if channelID == 0 {
		return nil, fmt.Errorf("channel ID is required")
	}

	now := biztime.NowUTC()
	return &MonetizedVideo{
		videoID:        videoID,
		channelID:      channelID,
		monetizedSince: biztime.DateOf(monetizedSince),
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

func (v *MonetizedVideo) ID() uint                  { return v.id }
func (v *MonetizedVideo) VideoID() uint             { return v.videoID }
func (v *MonetizedVideo) ChannelID() uint           { return v.channelID }
func (v *MonetizedVideo) MonetizedSince() time.Time { return v.monetizedSince }
func (v *MonetizedVideo) DemonetizedAt() *time.Time { return v.demonetizedAt }
func (v *MonetizedVideo) CreatedAt() time.Time      { return v.createdAt }
func (v *MonetizedVideo) UpdatedAt() time.Time      { return v.updatedAt }

// IsMonetizedOn reports whether the video was earning on a given date.
func (v *MonetizedVideo) IsMonetizedOn(date time.Time) bool {
	d := biztime.DateOf(date)
	if d.Before(v.monetizedSince) {
		return false
	}
	if v.demonetizedAt != nil && !d.Before(biztime.DateOf(*v.demonetizedAt)) {
		return false
	}
	return true
}

// Demonetize stops the video from accruing revenue. Idempotent.
func (v *MonetizedVideo) Demonetize(at time.Time) {
	if v.demonetizedAt != nil {
		return
	}
	d := biztime.DateOf(at)
	v.demonetizedAt = &d
	v.updatedAt = biztime.NowUTC()
}

// SetID sets the registry ID after persistence.
func (v *MonetizedVideo) SetID(id uint) {
	v.id = id
}

// MonetizedVideoReconstructParams carries persisted state back into the entity.
type MonetizedVideoReconstructParams struct {
	ID             uint
	VideoID        uint
	ChannelID      uint
	MonetizedSince time.Time
	DemonetizedAt  *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ReconstructMonetizedVideo rebuilds a registry entry from persistence.
func ReconstructMonetizedVideo(p MonetizedVideoReconstructParams) *MonetizedVideo {
	return &MonetizedVideo{
		id:             p.ID,
		videoID:        p.VideoID,
		channelID:      p.ChannelID,
		monetizedSince: p.MonetizedSince,
		demonetizedAt:  p.DemonetizedAt,
		createdAt:      p.CreatedAt,
		updatedAt:      p.UpdatedAt,
	}
}
