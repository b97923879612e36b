package models

import (
	"time"

	"gorm.io/datatypes"
)

type PayoutModel struct {
	ID                  uint      `gorm:"primaryKey"`
	ChannelID           uint      `gorm:"uniqueIndex:idx_payouts_channel_period;not null"`
	PayoutMethodID      uint      `gorm:"index;not null"`
	PeriodStart         time.Time `gorm:"uniqueIndex:idx_payouts_channel_period;not null"`
	PeriodEnd           time.Time `gorm:"uniqueIndex:idx_payouts_channel_period;not null"`
	AdRevenueCents      int64     `gorm:"not null;default:0"`
	PremiumRevenueCents int64     `gorm:"not null;default:0"`
	GrossCents          int64     `gorm:"not null"`
	PlatformFeeCents    int64     `gorm:"not null;default:0"`
	GatewayFeeCents     int64     `gorm:"not null;default:0"`
	TaxWithheldCents    int64     `gorm:"not null;default:0"`
	NetPayoutCents      int64     `gorm:"not null"`
	Currency            string    `gorm:"size:10;not null;default:'USD'"`
	Status              string    `gorm:"size:20;not null;index"`
	Reference           string    `gorm:"uniqueIndex;size:64;not null"`
	PaymentReference    *string   `gorm:"size:128"`
	FailureReason       *string   `gorm:"type:text"`
	ProcessedAt         *time.Time
	CompletedAt         *time.Time
	Version             int `gorm:"default:0"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (PayoutModel) TableName() string {
	return "creator_payouts"
}

type PayoutMethodModel struct {
	ID             uint           `gorm:"primaryKey"`
	ChannelID      uint           `gorm:"index;not null"`
	MethodType     string         `gorm:"size:32;not null"`
	AccountName    string         `gorm:"size:128;not null"`
	AccountDetails datatypes.JSON `gorm:"type:json"`
	IsDefault      bool           `gorm:"not null;default:false"`
	IsVerified     bool           `gorm:"not null;default:false"`
	VerifiedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (PayoutMethodModel) TableName() string {
	return "payout_methods"
}
