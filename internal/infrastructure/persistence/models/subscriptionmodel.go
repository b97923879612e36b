package models

import "time"

type SubscriptionModel struct {
	ID                    uint      `gorm:"primaryKey"`
	UserID                uint      `gorm:"index;not null"`
	PlanID                uint      `gorm:"index;not null"`
	Status                string    `gorm:"size:20;not null;index"`
	Gateway               string    `gorm:"size:32;not null"`
	GatewaySubscriptionID string    `gorm:"index;size:128"`
	GatewayCustomerID     string    `gorm:"size:128"`
	StartDate             time.Time `gorm:"not null"`
	EndDate               *time.Time
	RenewalDate           time.Time `gorm:"not null;index"`
	CancelledAt           *time.Time
	CancelAtPeriodEnd     bool       `gorm:"not null;default:false"`
	GracePeriodEndsAt     *time.Time `gorm:"index"`
	SuspensionReason      *string    `gorm:"type:text"`
	Version               int        `gorm:"default:0"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (SubscriptionModel) TableName() string {
	return "subscriptions"
}
