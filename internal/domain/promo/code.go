package promo

import (
	"fmt"
	"strings"
	"time"

	vo "github.com/vistream-inc/vistream/internal/domain/promo/valueobjects"
	"github.com/vistream-inc/vistream/internal/shared/biztime"
)

// PromotionalCode is a discount code with a validity window and usage caps.
// The global cap is advisory at evaluation time; the authoritative check is
// the atomic redemption in the repository, so concurrent redemptions can
// never push currentUses past maxUses.
type PromotionalCode struct {
	id                uint
	code              string
	discount          vo.Discount
	validFrom         time.Time
	validUntil        time.Time
	maxUses           *int
	maxUsesPerUser    int
	currentUses       int
	applicablePlanIDs []uint
	isActive          bool
	version           int
	createdAt         time.Time
	updatedAt         time.Time
}

func NewPromotionalCode(code string, discount vo.Discount, validFrom, validUntil time.Time) (*PromotionalCode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, fmt.Errorf("code is required")
	}
	if !validUntil.After(validFrom) {
		return nil, fmt.Errorf("valid_until must be after valid_from")
	}

	now := biztime.NowUTC()
	return &PromotionalCode{
		code:           code,
		discount:       discount,
		validFrom:      validFrom.UTC(),
		validUntil:     validUntil.UTC(),
		maxUsesPerUser: 1,
		isActive:       true,
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

func (c *PromotionalCode) ID() uint                  { return c.id }
func (c *PromotionalCode) Code() string              { return c.code }
func (c *PromotionalCode) Discount() vo.Discount     { return c.discount }
func (c *PromotionalCode) ValidFrom() time.Time      { return c.validFrom }
func (c *PromotionalCode) ValidUntil() time.Time     { return c.validUntil }
func (c *PromotionalCode) MaxUses() *int             { return c.maxUses }
func (c *PromotionalCode) MaxUsesPerUser() int       { return c.maxUsesPerUser }
func (c *PromotionalCode) CurrentUses() int          { return c.currentUses }
func (c *PromotionalCode) ApplicablePlanIDs() []uint { return c.applicablePlanIDs }
func (c *PromotionalCode) IsActive() bool            { return c.isActive }
func (c *PromotionalCode) Version() int              { return c.version }
func (c *PromotionalCode) CreatedAt() time.Time      { return c.createdAt }
func (c *PromotionalCode) UpdatedAt() time.Time      { return c.updatedAt }

// SetMaxUses caps total redemptions across all users. Nil means unlimited.
func (c *PromotionalCode) SetMaxUses(maxUses int) error {
	if maxUses < 1 {
		return fmt.Errorf("max uses must be at least 1")
	}
	c.maxUses = &maxUses
	c.touch()
	return nil
}

func (c *PromotionalCode) SetMaxUsesPerUser(maxUsesPerUser int) error {
	if maxUsesPerUser < 1 {
		return fmt.Errorf("max uses per user must be at least 1")
	}
	c.maxUsesPerUser = maxUsesPerUser
	c.touch()
	return nil
}

// RestrictToPlans limits the code to a set of plans. An empty list means
// the code applies to every billable plan.
func (c *PromotionalCode) RestrictToPlans(planIDs []uint) {
	c.applicablePlanIDs = planIDs
	c.touch()
}

func (c *PromotionalCode) Deactivate() {
	c.isActive = false
	c.touch()
}

func (c *PromotionalCode) Activate() {
	c.isActive = true
	c.touch()
}

// Validate checks whether the code can be applied right now for the given
// plan and the user's prior redemption count. It reads but does not mutate
// usage counters.
func (c *PromotionalCode) Validate(now time.Time, planID uint, userUses int) error {
	if !c.isActive {
		return ErrCodeInactive
	}
	if now.Before(c.validFrom) || now.After(c.validUntil) {
		return ErrCodeExpired
	}
	if c.maxUses != nil && c.currentUses >= *c.maxUses {
		return ErrCodeExhausted
	}
	if userUses >= c.maxUsesPerUser {
		return ErrUserLimitReached
	}
	if len(c.applicablePlanIDs) > 0 {
		applicable := false
		for _, id := range c.applicablePlanIDs {
			if id == planID {
				applicable = true
				break
			}
		}
		if !applicable {
			return ErrPlanNotApplicable
		}
	}
	return nil
}

// DiscountFor returns the discount in cents for the given amount.
func (c *PromotionalCode) DiscountFor(amountCents int64) int64 {
	return c.discount.AmountOff(amountCents)
}

// SetID sets the code ID after persistence.
func (c *PromotionalCode) SetID(id uint) {
	c.id = id
}

func (c *PromotionalCode) touch() {
	c.updatedAt = biztime.NowUTC()
	c.version++
}

// PromotionalCodeReconstructParams carries persisted state back into the aggregate.
type PromotionalCodeReconstructParams struct {
	ID                uint
	Code              string
	Discount          vo.Discount
	ValidFrom         time.Time
	ValidUntil        time.Time
	MaxUses           *int
	MaxUsesPerUser    int
	CurrentUses       int
	ApplicablePlanIDs []uint
	IsActive          bool
	Version           int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ReconstructPromotionalCode rebuilds a code from persistence.
func ReconstructPromotionalCode(p PromotionalCodeReconstructParams) *PromotionalCode {
	return &PromotionalCode{
		id:                p.ID,
		code:              p.Code,
		discount:          p.Discount,
		validFrom:         p.ValidFrom,
		validUntil:        p.ValidUntil,
		maxUses:           p.MaxUses,
		maxUsesPerUser:    p.MaxUsesPerUser,
		currentUses:       p.CurrentUses,
		applicablePlanIDs: p.ApplicablePlanIDs,
		isActive:          p.IsActive,
		version:           p.Version,
		createdAt:         p.CreatedAt,
		updatedAt:         p.UpdatedAt,
	}
}
