package email

import (
	"context"
	"fmt"

	"github.com/vistream-inc/vistream/internal/domain/payout"
)

// PayoutMethodContactResolver reads the notification address off the
// channel's default verified payout method. Creators set it when they
// register the method.
type PayoutMethodContactResolver struct {
	methodRepo payout.MethodRepository
}

func NewPayoutMethodContactResolver(methodRepo payout.MethodRepository) *PayoutMethodContactResolver {
	return &PayoutMethodContactResolver{methodRepo: methodRepo}
}

func (r *PayoutMethodContactResolver) PayoutEmailForChannel(ctx context.Context, channelID uint) (string, error) {
	method, err := r.methodRepo.GetDefaultVerifiedByChannelID(ctx, channelID)
	if err != nil {
		return "", err
	}

	email, ok := method.AccountDetails()["notification_email"].(string)
	if !ok || email == "" {
		return "", fmt.Errorf("payout method %d has no notification email", method.ID())
	}
	return email, nil
}
