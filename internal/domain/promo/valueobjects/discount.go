package valueobjects

import "fmt"

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

func NewDiscountType(value string) (DiscountType, error) {
	dt := DiscountType(value)
	switch dt {
	case DiscountTypePercentage, DiscountTypeFixed:
		return dt, nil
	}
	return "", fmt.Errorf("invalid discount type: %s", value)
}

func (d DiscountType) String() string {
	return string(d)
}

// Discount pairs a type with its value: a percentage (0-100) or a fixed
// amount in minor currency units.
type Discount struct {
	discountType DiscountType
	value        int64
}

func NewDiscount(discountType DiscountType, value int64) (Discount, error) {
	if value < 0 {
		return Discount{}, fmt.Errorf("discount value cannot be negative")
	}
	if discountType == DiscountTypePercentage && value > 100 {
		return Discount{}, fmt.Errorf("percentage discount cannot exceed 100")
	}
	return Discount{discountType: discountType, value: value}, nil
}

func (d Discount) Type() DiscountType {
	return d.discountType
}

func (d Discount) Value() int64 {
	return d.value
}

// AmountOff computes the discount in cents for a given transaction amount.
// Percentage discounts truncate; fixed discounts clamp at the amount so a
// transaction never goes negative.
func (d Discount) AmountOff(amountCents int64) int64 {
	if amountCents <= 0 {
		return 0
	}
	switch d.discountType {
	case DiscountTypePercentage:
		return amountCents * d.value / 100
	case DiscountTypeFixed:
		if d.value > amountCents {
			return amountCents
		}
		return d.value
	}
	return 0
}
