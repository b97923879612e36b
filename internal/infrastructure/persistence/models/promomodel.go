package models

import "time"

type PromoCodeModel struct {
	ID                uint      `gorm:"primaryKey"`
	Code              string    `gorm:"uniqueIndex;size:64;not null"`
	DiscountType      string    `gorm:"size:20;not null"`
	DiscountValue     int64     `gorm:"not null"`
	ValidFrom         time.Time `gorm:"not null"`
	ValidUntil        time.Time `gorm:"not null"`
	MaxUses           *int
	MaxUsesPerUser    int    `gorm:"not null;default:1"`
	CurrentUses       int    `gorm:"not null;default:0"`
	ApplicablePlanIDs string `gorm:"size:255"`
	IsActive          bool   `gorm:"not null;default:true;index"`
	Version           int    `gorm:"default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (PromoCodeModel) TableName() string {
	return "promo_codes"
}

type PromoUsageModel struct {
	ID            uint      `gorm:"primaryKey"`
	PromoCodeID   uint      `gorm:"index:idx_promo_usages_code_user;not null"`
	UserID        uint      `gorm:"index:idx_promo_usages_code_user;not null"`
	TransactionID uint      `gorm:"index;not null"`
	DiscountCents int64     `gorm:"not null"`
	UsedAt        time.Time `gorm:"not null"`
}

func (PromoUsageModel) TableName() string {
	return "promo_usages"
}
