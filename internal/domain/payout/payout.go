package payout

import (
	"fmt"
	"time"

	vo "github.com/vistream-inc/vistream/internal/domain/payout/valueobjects"
	"github.com/vistream-inc/vistream/internal/shared/biztime"
)

// CreatorPayout settles one channel's earnings for one accounting period.
// The (channel, period) pair is unique; a completed payout and its fee
// figures never change again.
type CreatorPayout struct {
	id                  uint
	channelID           uint
	payoutMethodID      uint
	periodStart         time.Time
	periodEnd           time.Time
	adRevenueCents      int64
	premiumRevenueCents int64
	grossCents          int64
	platformFeeCents    int64
	gatewayFeeCents     int64
	taxWithheldCents    int64
	netPayoutCents      int64
	currency            string
	status              vo.PayoutStatus
	reference           string
	paymentReference    *string
	failureReason       *string
	processedAt         *time.Time
	completedAt         *time.Time
	version             int
	createdAt           time.Time
	updatedAt           time.Time
}

// NewCreatorPayout builds a pending payout from aggregated creator shares
// and an applied fee policy.
func NewCreatorPayout(channelID, payoutMethodID uint, periodStart, periodEnd time.Time, adRevenueCents, premiumRevenueCents int64, fees FeeBreakdown, currency, reference string) (*CreatorPayout, error) {
	if channelID == 0 {
		return nil, fmt.Errorf("channel ID is required")
	}
	if payoutMethodID == 0 {
		return nil, fmt.Errorf("payout method ID is required")
	}
	if periodEnd.Before(periodStart) {
		return nil, fmt.Errorf("period end cannot be before period start")
	}
	if adRevenueCents < 0 || premiumRevenueCents < 0 {
		return nil, fmt.Errorf("revenue cannot be negative")
	}
	if fees.GrossCents != adRevenueCents+premiumRevenueCents {
		return nil, fmt.Errorf("fee breakdown gross does not match revenue totals")
	}
	if reference == "" {
		return nil, fmt.Errorf("reference is required")
	}
	if currency == "" {
		currency = "USD"
	}

	now := biztime.NowUTC()
	return &CreatorPayout{
		channelID:           channelID,
		payoutMethodID:      payoutMethodID,
		periodStart:         biztime.DateOf(periodStart),
		periodEnd:           biztime.DateOf(periodEnd),
		adRevenueCents:      adRevenueCents,
		premiumRevenueCents: premiumRevenueCents,
		grossCents:          fees.GrossCents,
		platformFeeCents:    fees.PlatformFeeCents,
		gatewayFeeCents:     fees.GatewayFeeCents,
		taxWithheldCents:    fees.TaxWithheldCents,
		netPayoutCents:      fees.NetCents,
		currency:            currency,
		status:              vo.PayoutStatusPending,
		reference:           reference,
		version:             1,
		createdAt:           now,
		updatedAt:           now,
	}, nil
}

func (p *CreatorPayout) ID() uint                   { return p.id }
func (p *CreatorPayout) ChannelID() uint            { return p.channelID }
func (p *CreatorPayout) PayoutMethodID() uint       { return p.payoutMethodID }
func (p *CreatorPayout) PeriodStart() time.Time     { return p.periodStart }
func (p *CreatorPayout) PeriodEnd() time.Time       { return p.periodEnd }
func (p *CreatorPayout) AdRevenueCents() int64      { return p.adRevenueCents }
func (p *CreatorPayout) PremiumRevenueCents() int64 { return p.premiumRevenueCents }
func (p *CreatorPayout) GrossCents() int64          { return p.grossCents }
func (p *CreatorPayout) PlatformFeeCents() int64    { return p.platformFeeCents }
func (p *CreatorPayout) GatewayFeeCents() int64     { return p.gatewayFeeCents }
func (p *CreatorPayout) TaxWithheldCents() int64    { return p.taxWithheldCents }
func (p *CreatorPayout) NetPayoutCents() int64      { return p.netPayoutCents }
func (p *CreatorPayout) Currency() string           { return p.currency }
func (p *CreatorPayout) Status() vo.PayoutStatus    { return p.status }
func (p *CreatorPayout) Reference() string          { return p.reference }
func (p *CreatorPayout) PaymentReference() *string  { return p.paymentReference }
func (p *CreatorPayout) FailureReason() *string     { return p.failureReason }
func (p *CreatorPayout) ProcessedAt() *time.Time    { return p.processedAt }
func (p *CreatorPayout) CompletedAt() *time.Time    { return p.completedAt }
func (p *CreatorPayout) Version() int               { return p.version }
func (p *CreatorPayout) CreatedAt() time.Time       { return p.createdAt }
func (p *CreatorPayout) UpdatedAt() time.Time       { return p.updatedAt }

// StartProcessing moves the payout to processing, from pending or from a
// failed attempt being retried.
func (p *CreatorPayout) StartProcessing() error {
	if err := p.transitionTo(vo.PayoutStatusProcessing); err != nil {
		return err
	}
	now := biztime.NowUTC()
	p.processedAt = &now
	p.failureReason = nil
	p.touch()
	return nil
}

// Complete records the external payment reference and freezes the payout.
func (p *CreatorPayout) Complete(paymentReference string) error {
	if paymentReference == "" {
		return fmt.Errorf("payment reference is required")
	}
	if err := p.transitionTo(vo.PayoutStatusCompleted); err != nil {
		return err
	}
	now := biztime.NowUTC()
	p.paymentReference = &paymentReference
	p.completedAt = &now
	p.touch()
	return nil
}

// Fail records why the disbursement did not go through. The payout stays
// retryable.
func (p *CreatorPayout) Fail(reason string) error {
	if err := p.transitionTo(vo.PayoutStatusFailed); err != nil {
		return err
	}
	p.failureReason = &reason
	p.touch()
	return nil
}

// Cancel withdraws a payout that never completed.
func (p *CreatorPayout) Cancel() error {
	if err := p.transitionTo(vo.PayoutStatusCancelled); err != nil {
		return err
	}
	p.touch()
	return nil
}

func (p *CreatorPayout) transitionTo(target vo.PayoutStatus) error {
	if p.status.IsTerminal() {
		return ErrPayoutImmutable
	}
	if !p.status.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, p.status, target)
	}
	p.status = target
	return nil
}

func (p *CreatorPayout) touch() {
	p.updatedAt = biztime.NowUTC()
	p.version++
}

// SetID sets the payout ID after persistence.
func (p *CreatorPayout) SetID(id uint) {
	p.id = id
}

// CreatorPayoutReconstructParams carries persisted state back into the aggregate.
type CreatorPayoutReconstructParams struct {
	ID                  uint
	ChannelID           uint
	PayoutMethodID      uint
	PeriodStart         time.Time
	PeriodEnd           time.Time
	AdRevenueCents      int64
	PremiumRevenueCents int64
	GrossCents          int64
	PlatformFeeCents    int64
	GatewayFeeCents     int64
	TaxWithheldCents    int64
	NetPayoutCents      int64
	Currency            string
	Status              vo.PayoutStatus
	Reference           string
	PaymentReference    *string
	FailureReason       *string
	ProcessedAt         *time.Time
	CompletedAt         *time.Time
	Version             int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ReconstructCreatorPayout rebuilds a payout from persistence.
func ReconstructCreatorPayout(p CreatorPayoutReconstructParams) *CreatorPayout {
	return &CreatorPayout{
		id:                  p.ID,
		channelID:           p.ChannelID,
		payoutMethodID:      p.PayoutMethodID,
		periodStart:         p.PeriodStart,
		periodEnd:           p.PeriodEnd,
		adRevenueCents:      p.AdRevenueCents,
		premiumRevenueCents: p.PremiumRevenueCents,
		grossCents:          p.GrossCents,
		platformFeeCents:    p.PlatformFeeCents,
		gatewayFeeCents:     p.GatewayFeeCents,
		taxWithheldCents:    p.TaxWithheldCents,
		netPayoutCents:      p.NetPayoutCents,
		currency:            p.Currency,
		status:              p.Status,
		reference:           p.Reference,
		paymentReference:    p.PaymentReference,
		failureReason:       p.FailureReason,
		processedAt:         p.ProcessedAt,
		completedAt:         p.CompletedAt,
		version:             p.Version,
		createdAt:           p.CreatedAt,
		updatedAt:           p.UpdatedAt,
	}
}
