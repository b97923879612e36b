package models

import "time"

type PlanModel struct {
	ID                   uint   `gorm:"primaryKey"`
	Name                 string `gorm:"size:64;not null"`
	PlanType             string `gorm:"size:32;not null"`
	MaxResolution        string `gorm:"size:10;not null"`
	AdFree               bool   `gorm:"not null;default:false"`
	PremiumContentAccess bool   `gorm:"not null;default:false"`
	EarlyAccess          bool   `gorm:"not null;default:false"`
	PriceMonthlyCents    int64  `gorm:"not null"`
	PriceAnnualCents     *int64
	DisplayCurrency      string `gorm:"size:10;not null;default:'USD'"`
	IsActive             bool   `gorm:"not null;default:true;index"`
	Version              int    `gorm:"default:0"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (PlanModel) TableName() string {
	return "subscription_plans"
}
