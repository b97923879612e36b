package valueobjects

type SubscriptionStatus string

const (
	StatusActive      SubscriptionStatus = "active"
	StatusGracePeriod SubscriptionStatus = "grace_period"
	StatusCancelled   SubscriptionStatus = "cancelled"
	StatusExpired     SubscriptionStatus = "expired"
	StatusSuspended   SubscriptionStatus = "suspended"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the subscription row can never leave this status.
// A new subscription row is created for resubscription.
func (s SubscriptionStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusExpired
}

func (s SubscriptionStatus) CanTransitionTo(target SubscriptionStatus) bool {
	transitions := map[SubscriptionStatus][]SubscriptionStatus{
		StatusActive:      {StatusGracePeriod, StatusCancelled, StatusSuspended},
		StatusGracePeriod: {StatusActive, StatusCancelled, StatusExpired, StatusSuspended},
		StatusSuspended:   {StatusActive, StatusCancelled, StatusExpired},
		StatusCancelled:   {},
		StatusExpired:     {},
	}

	allowed, exists := transitions[s]
	if !exists {
		return false
	}

	for _, allowedStatus := range allowed {
		if allowedStatus == target {
			return true
		}
	}
	return false
}

var ValidStatuses = map[SubscriptionStatus]bool{
	StatusActive:      true,
	StatusGracePeriod: true,
	StatusCancelled:   true,
	StatusExpired:     true,
	StatusSuspended:   true,
}
