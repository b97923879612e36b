package valueobjects

import "fmt"

type PlanType string

const (
	PlanTypeFree           PlanType = "free"
	PlanTypePremiumMonthly PlanType = "premium_monthly"
	PlanTypePremiumAnnual  PlanType = "premium_annual"
)

func NewPlanType(value string) (PlanType, error) {
	pt := PlanType(value)
	switch pt {
	case PlanTypeFree, PlanTypePremiumMonthly, PlanTypePremiumAnnual:
		return pt, nil
	}
	return "", fmt.Errorf("invalid plan type: %s", value)
}

func (p PlanType) String() string {
	return string(p)
}

func (p PlanType) IsPremium() bool {
	return p == PlanTypePremiumMonthly || p == PlanTypePremiumAnnual
}

// BillingMonths returns the length of one billing period in months.
// Free plans have no billing period.
func (p PlanType) BillingMonths() int {
	switch p {
	case PlanTypePremiumMonthly:
		return 1
	case PlanTypePremiumAnnual:
		return 12
	}
	return 0
}
