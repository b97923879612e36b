package usecases

import (
	"context"
	"time"
)

// PayoutOrder is the disbursement request handed to a payout gateway.
type PayoutOrder struct {
	Reference      string
	ChannelID      uint
	MethodType     string
	AccountName    string
	AccountDetails map[string]interface{}
	AmountCents    int64
	Currency       string
}

// PayoutGateway disburses money to a creator's payout method. SubmitPayout
// returns the gateway's payment reference on success.
type PayoutGateway interface {
	Name() string
	SubmitPayout(ctx context.Context, order PayoutOrder) (paymentReference string, err error)
}

// PayoutNotification carries the figures for the completion email.
type PayoutNotification struct {
	ChannelID        uint
	Reference        string
	PeriodStart      time.Time
	PeriodEnd        time.Time
	GrossCents       int64
	PlatformFeeCents int64
	GatewayFeeCents  int64
	TaxWithheldCents int64
	NetCents         int64
	Currency         string
	PaymentReference string
}

// PayoutNotifier tells the creator their payout settled. Failures are
// logged, never propagated; the money has already moved.
type PayoutNotifier interface {
	NotifyPayoutCompleted(ctx context.Context, n PayoutNotification) error
}
