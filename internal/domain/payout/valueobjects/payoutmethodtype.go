package valueobjects

import "fmt"

type PayoutMethodType string

const (
	PayoutMethodBankTransfer  PayoutMethodType = "bank_transfer"
	PayoutMethodPaypal        PayoutMethodType = "paypal"
	PayoutMethodMobileBanking PayoutMethodType = "mobile_banking"
)

func NewPayoutMethodType(value string) (PayoutMethodType, error) {
	t := PayoutMethodType(value)
	switch t {
	case PayoutMethodBankTransfer, PayoutMethodPaypal, PayoutMethodMobileBanking:
		return t, nil
	}
	return "", fmt.Errorf("invalid payout method type: %s", value)
}

func (t PayoutMethodType) String() string {
	return string(t)
}
