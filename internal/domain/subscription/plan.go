package subscription

import (
	"fmt"
	"time"

	vo "github.com/vistream-inc/vistream/internal/domain/subscription/valueobjects"
	"github.com/vistream-inc/vistream/internal/shared/biztime"
)

// Plan is an immutable catalog entry describing a subscription tier. Plans are
// created by operators and referenced by subscriptions, never embedded.
type Plan struct {
	id                uint
	name              string
	planType          vo.PlanType
	features          vo.PlanFeatures
	priceMonthlyCents int64
	priceAnnualCents  *int64
	displayCurrency   string
	isActive          bool
	version           int
	createdAt         time.Time
	updatedAt         time.Time
}

func NewPlan(name string, planType vo.PlanType, features vo.PlanFeatures, priceMonthlyCents int64, priceAnnualCents *int64, displayCurrency string) (*Plan, error) {
	if name == "" {
		return nil, fmt.Errorf("plan name is required")
	}
	if priceMonthlyCents < 0 {
		return nil, fmt.Errorf("monthly price cannot be negative")
	}
	if priceAnnualCents != nil && *priceAnnualCents < 0 {
		return nil, fmt.Errorf("annual price cannot be negative")
	}
	if planType == vo.PlanTypeFree && priceMonthlyCents != 0 {
		return nil, fmt.Errorf("free plan cannot have a price")
	}
	if displayCurrency == "" {
		displayCurrency = "USD"
	}

	now := biztime.NowUTC()
	return &Plan{
		name:              name,
		planType:          planType,
		features:          features,
		priceMonthlyCents: priceMonthlyCents,
		priceAnnualCents:  priceAnnualCents,
		displayCurrency:   displayCurrency,
		isActive:          true,
		version:           1,
		createdAt:         now,
		updatedAt:         now,
	}, nil
}

func (p *Plan) ID() uint                  { return p.id }
func (p *Plan) Name() string              { return p.name }
func (p *Plan) PlanType() vo.PlanType     { return p.planType }
func (p *Plan) Features() vo.PlanFeatures { return p.features }
func (p *Plan) PriceMonthlyCents() int64  { return p.priceMonthlyCents }
func (p *Plan) PriceAnnualCents() *int64  { return p.priceAnnualCents }
func (p *Plan) DisplayCurrency() string   { return p.displayCurrency }
func (p *Plan) IsActive() bool            { return p.isActive }
func (p *Plan) Version() int              { return p.version }
func (p *Plan) CreatedAt() time.Time      { return p.createdAt }
func (p *Plan) UpdatedAt() time.Time      { return p.updatedAt }

// PriceCents returns the charge for one billing period of this plan.
func (p *Plan) PriceCents() int64 {
	if p.planType == vo.PlanTypePremiumAnnual && p.priceAnnualCents != nil {
		return *p.priceAnnualCents
	}
	return p.priceMonthlyCents
}

func (p *Plan) Deactivate() {
	if !p.isActive {
		return
	}
	p.isActive = false
	p.updatedAt = biztime.NowUTC()
	p.version++
}

func (p *Plan) Activate() {
	if p.isActive {
		return
	}
	p.isActive = true
	p.updatedAt = biztime.NowUTC()
	p.version++
}

// SetID sets the plan ID (only for persistence layer use)
func (p *Plan) SetID(id uint) {
	p.id = id
}

// ReconstructPlan rebuilds a Plan from persistence.
func ReconstructPlan(
	id uint,
	name string,
	planType vo.PlanType,
	features vo.PlanFeatures,
	priceMonthlyCents int64,
	priceAnnualCents *int64,
	displayCurrency string,
	isActive bool,
	version int,
	createdAt, updatedAt time.Time,
) *Plan {
	return &Plan{
		id:                id,
		name:              name,
		planType:          planType,
		features:          features,
		priceMonthlyCents: priceMonthlyCents,
		priceAnnualCents:  priceAnnualCents,
		displayCurrency:   displayCurrency,
		isActive:          isActive,
		version:           version,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}
