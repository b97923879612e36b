package payout

import "fmt"

// FeePolicy describes the deductions applied to a gross creator payout.
// Percentages use integer math with truncation, same as the revenue split.
type FeePolicy struct {
	PlatformFeePercent    int64
	GatewayFeeFlatCents   int64
	TaxWithholdingPercent int64
}

// FeeBreakdown itemizes what was deducted from a gross amount.
type FeeBreakdown struct {
	GrossCents       int64
	PlatformFeeCents int64
	GatewayFeeCents  int64
	TaxWithheldCents int64
	NetCents         int64
}

func (p FeePolicy) Validate() error {
	if p.PlatformFeePercent < 0 || p.PlatformFeePercent > 100 {
		return fmt.Errorf("platform fee percent must be between 0 and 100")
	}
	if p.TaxWithholdingPercent < 0 || p.TaxWithholdingPercent > 100 {
		return fmt.Errorf("tax withholding percent must be between 0 and 100")
	}
	if p.GatewayFeeFlatCents < 0 {
		return fmt.Errorf("gateway fee cannot be negative")
	}
	return nil
}

// Apply deducts the policy's fees from a gross amount. The net is clamped
// at zero so a small gross with a flat gateway fee never produces a
// negative payout.
func (p FeePolicy) Apply(grossCents int64) FeeBreakdown {
	platformFee := grossCents * p.PlatformFeePercent / 100
	taxWithheld := grossCents * p.TaxWithholdingPercent / 100

	net := grossCents - platformFee - p.GatewayFeeFlatCents - taxWithheld
	if net < 0 {
		net = 0
	}

	return FeeBreakdown{
		GrossCents:       grossCents,
		PlatformFeeCents: platformFee,
		GatewayFeeCents:  p.GatewayFeeFlatCents,
		TaxWithheldCents: taxWithheld,
		NetCents:         net,
	}
}
