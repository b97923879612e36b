package valueobjects

import "fmt"

type PayoutStatus string

const (
	PayoutStatusPending    PayoutStatus = "pending"
	PayoutStatusProcessing PayoutStatus = "processing"
	PayoutStatusCompleted  PayoutStatus = "completed"
	PayoutStatusFailed     PayoutStatus = "failed"
	PayoutStatusCancelled  PayoutStatus = "cancelled"
)

var validPayoutTransitions = map[PayoutStatus][]PayoutStatus{
	PayoutStatusPending:    {PayoutStatusProcessing, PayoutStatusCancelled},
	PayoutStatusProcessing: {PayoutStatusCompleted, PayoutStatusFailed},
	// Failed payouts can be retried without creating a new row.
	PayoutStatusFailed:    {PayoutStatusProcessing, PayoutStatusCancelled},
	PayoutStatusCompleted: {},
	PayoutStatusCancelled: {},
}

func NewPayoutStatus(value string) (PayoutStatus, error) {
	s := PayoutStatus(value)
	if _, ok := validPayoutTransitions[s]; !ok {
		return "", fmt.Errorf("invalid payout status: %s", value)
	}
	return s, nil
}

func (s PayoutStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the payout can never change again.
func (s PayoutStatus) IsTerminal() bool {
	return s == PayoutStatusCompleted || s == PayoutStatusCancelled
}

func (s PayoutStatus) CanTransitionTo(target PayoutStatus) bool {
	for _, allowed := range validPayoutTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}
