package promo

import (
	"time"

	"github.com/vistream-inc/vistream/internal/shared/biztime"
)

// Usage is an immutable record of a single redemption. It exists for audit
// and for the per-user limit query; it is never updated after insert.
type Usage struct {
	id            uint
	promoCodeID   uint
	userID        uint
	transactionID uint
	discountCents int64
	usedAt        time.Time
}

func NewUsage(promoCodeID, userID, transactionID uint, discountCents int64) *Usage {
	return &Usage{
		promoCodeID:   promoCodeID,
		userID:        userID,
		transactionID: transactionID,
		discountCents: discountCents,
		usedAt:        biztime.NowUTC(),
	}
}

func (u *Usage) ID() uint             { return u.id }
func (u *Usage) PromoCodeID() uint    { return u.promoCodeID }
func (u *Usage) UserID() uint         { return u.userID }
func (u *Usage) TransactionID() uint  { return u.transactionID }
func (u *Usage) DiscountCents() int64 { return u.discountCents }
func (u *Usage) UsedAt() time.Time    { return u.usedAt }

// SetID sets the usage ID after persistence.
func (u *Usage) SetID(id uint) {
	u.id = id
}

// UsageReconstructParams carries persisted state back into the record.
type UsageReconstructParams struct {
	ID            uint
	PromoCodeID   uint
	UserID        uint
	TransactionID uint
	DiscountCents int64
	UsedAt        time.Time
}

// ReconstructUsage rebuilds a usage record from persistence.
func ReconstructUsage(p UsageReconstructParams) *Usage {
	return &Usage{
		id:            p.ID,
		promoCodeID:   p.PromoCodeID,
		userID:        p.UserID,
		transactionID: p.TransactionID,
		discountCents: p.DiscountCents,
		usedAt:        p.UsedAt,
	}
}
