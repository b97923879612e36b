package models

import "time"

type TransactionModel struct {
	ID                   uint    `gorm:"primaryKey"`
	UserID               uint    `gorm:"index;not null"`
	SubscriptionID       *uint   `gorm:"index"`
	Gateway              string  `gorm:"size:32;not null"`
	GatewayTransactionID string  `gorm:"uniqueIndex;size:128;not null"`
	AmountCents          int64   `gorm:"not null"`
	Currency             string  `gorm:"size:10;not null;default:'USD'"`
	Status               string  `gorm:"size:20;not null;index"`
	PaymentMethod        string  `gorm:"size:32"`
	DiscountCents        int64   `gorm:"not null;default:0"`
	PromoCodeID          *uint   `gorm:"index"`
	RefundOfID           *uint   `gorm:"index"`
	FailureReason        *string `gorm:"type:text"`
	Metadata             JSONB   `gorm:"type:json"`
	CreatedAt            time.Time
	CompletedAt          *time.Time
}

func (TransactionModel) TableName() string {
	return "payment_transactions"
}
