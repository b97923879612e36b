package models

import "time"

type RevenueShareModel struct {
	ID                  uint      `gorm:"primaryKey"`
	VideoID             uint      `gorm:"uniqueIndex:idx_revenue_shares_video_date;not null"`
	ChannelID           uint      `gorm:"index;not null"`
	Date                time.Time `gorm:"uniqueIndex:idx_revenue_shares_video_date;not null"`
	AdRevenueCents      int64     `gorm:"not null;default:0"`
	PremiumRevenueCents int64     `gorm:"not null;default:0"`
	AdImpressions       int64     `gorm:"not null;default:0"`
	PremiumViews        int64     `gorm:"not null;default:0"`
	CreatorShareCents   int64     `gorm:"not null;default:0"`
	Locked              bool      `gorm:"not null;default:false;index"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (RevenueShareModel) TableName() string {
	return "revenue_shares"
}

type MonetizedVideoModel struct {
	ID             uint      `gorm:"primaryKey"`
	VideoID        uint      `gorm:"uniqueIndex;not null"`
	ChannelID      uint      `gorm:"index;not null"`
	MonetizedSince time.Time `gorm:"not null"`
	DemonetizedAt  *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (MonetizedVideoModel) TableName() string {
	return "monetized_videos"
}
