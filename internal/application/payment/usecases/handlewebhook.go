package usecases

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vistream-inc/vistream/internal/application/payment/paymentgateway"
	"github.com/vistream-inc/vistream/internal/domain/payment"
	vo "github.com/vistream-inc/vistream/internal/domain/payment/valueobjects"
	"github.com/vistream-inc/vistream/internal/domain/subscription"
	"github.com/vistream-inc/vistream/internal/shared/db"
	apperrors "github.com/vistream-inc/vistream/internal/shared/errors"
	"github.com/vistream-inc/vistream/internal/shared/logger"
)

// HandleWebhookResult reports what a webhook delivery did to the ledger.
type HandleWebhookResult struct {
	TransactionID  uint
	SubscriptionID *uint
	Replayed       bool
}

// HandleWebhookUseCase ingests verified gateway webhooks: it records the
// transaction, then creates or renews the subscription on success, or opens
// the grace period on failure. The whole event is applied in one database
// transaction so a crash can never leave a paid-but-inactive user.
type HandleWebhookUseCase struct {
	registry         *paymentgateway.Registry
	transactionRepo  payment.TransactionRepository
	subscriptionRepo subscription.SubscriptionRepository
	planRepo         subscription.PlanRepository
	txManager        db.Transactor
	graceWindow      time.Duration
	logger           logger.Interface
}

func NewHandleWebhookUseCase(
	registry *paymentgateway.Registry,
	transactionRepo payment.TransactionRepository,
	subscriptionRepo subscription.SubscriptionRepository,
	planRepo subscription.PlanRepository,
	txManager db.Transactor,
	graceWindow time.Duration,
	logger logger.Interface,
) *HandleWebhookUseCase {
	return &HandleWebhookUseCase{
		registry:         registry,
		transactionRepo:  transactionRepo,
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		txManager:        txManager,
		graceWindow:      graceWindow,
		logger:           logger,
	}
}

func (uc *HandleWebhookUseCase) Execute(ctx context.Context, gatewayName string, req *http.Request) (*HandleWebhookResult, error) {
	verifier, err := uc.registry.Get(gatewayName)
	if err != nil {
		return nil, apperrors.NewNotFoundError(err.Error())
	}

	event, err := verifier.VerifyWebhook(req)
	if err != nil {
		uc.logger.Warnw("webhook signature verification failed", "gateway", gatewayName, "error", err)
		return nil, apperrors.NewValidationError("invalid webhook", err.Error())
	}

	var result *HandleWebhookResult
	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		result, err = uc.apply(txCtx, event)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (uc *HandleWebhookUseCase) apply(ctx context.Context, event *paymentgateway.WebhookEvent) (*HandleWebhookResult, error) {
	tx, err := uc.resolveTransaction(ctx, event)
	if err != nil {
		return nil, err
	}

	// Gateways redeliver webhooks; a transaction already settled means this
	// delivery is a replay and the first outcome stands.
	if tx.Status().IsFinal() {
		uc.logger.Infow("webhook replay ignored",
			"gateway", event.Gateway,
			"gateway_transaction_id", event.GatewayTransactionID,
			"transaction_id", tx.ID(),
		)
		return &HandleWebhookResult{TransactionID: tx.ID(), SubscriptionID: tx.SubscriptionID(), Replayed: true}, nil
	}

	if event.PaymentMethod != "" {
		tx.SetPaymentMethod(event.PaymentMethod)
	}

	if event.Succeeded() {
		return uc.applySuccess(ctx, event, tx)
	}
	return uc.applyFailure(ctx, event, tx)
}

// resolveTransaction finds the pending checkout transaction for this event,
// or creates a fresh row for gateway-initiated renewals that have no local
// precursor.
func (uc *HandleWebhookUseCase) resolveTransaction(ctx context.Context, event *paymentgateway.WebhookEvent) (*payment.Transaction, error) {
	existing, err := uc.transactionRepo.GetByGatewayTransactionID(ctx, event.GatewayTransactionID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, payment.ErrTransactionNotFound) {
		return nil, fmt.Errorf("failed to look up transaction: %w", err)
	}

	userID := event.UserID
	if userID == 0 {
		sub, err := uc.subscriptionRepo.GetByGatewaySubscriptionID(ctx, event.GatewaySubscriptionID)
		if err != nil {
			return nil, apperrors.NewValidationError("webhook has no resolvable user", event.GatewayTransactionID)
		}
		userID = sub.UserID()
	}

	gw, err := vo.NewGateway(event.Gateway)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid gateway", err.Error())
	}

	tx, err := payment.NewTransaction(userID, gw, event.GatewayTransactionID, vo.NewMoney(event.AmountCents, event.Currency))
	if err != nil {
		return nil, apperrors.NewValidationError("invalid webhook payload", err.Error())
	}

	if err := uc.transactionRepo.Create(ctx, tx); err != nil {
		// A concurrent delivery inserted the row first; load and use it.
		if errors.Is(err, payment.ErrDuplicateTransaction) {
			return uc.transactionRepo.GetByGatewayTransactionID(ctx, event.GatewayTransactionID)
		}
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return tx, nil
}

func (uc *HandleWebhookUseCase) applySuccess(ctx context.Context, event *paymentgateway.WebhookEvent, tx *payment.Transaction) (*HandleWebhookResult, error) {
	if err := tx.Complete(event.OccurredAt); err != nil {
		return nil, err
	}

	sub, err := uc.subscriptionRepo.GetByGatewaySubscriptionID(ctx, event.GatewaySubscriptionID)
	switch {
	case err == nil:
		if renewErr := uc.renew(ctx, sub, event); renewErr != nil {
			return nil, renewErr
		}
	case errors.Is(err, subscription.ErrSubscriptionNotFound):
		sub, err = uc.activate(ctx, event)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("failed to look up subscription: %w", err)
	}

	subID := sub.ID()
	if tx.SubscriptionID() == nil {
		if err := tx.LinkSubscription(subID); err != nil {
			return nil, err
		}
	}
	if err := uc.transactionRepo.Update(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	uc.logger.Infow("payment applied",
		"gateway", event.Gateway,
		"transaction_id", tx.ID(),
		"subscription_id", subID,
		"amount_cents", tx.Amount().AmountInCents(),
	)
	return &HandleWebhookResult{TransactionID: tx.ID(), SubscriptionID: &subID}, nil
}

func (uc *HandleWebhookUseCase) applyFailure(ctx context.Context, event *paymentgateway.WebhookEvent, tx *payment.Transaction) (*HandleWebhookResult, error) {
	reason := event.FailureReason
	if reason == "" {
		reason = "payment failed"
	}
	if err := tx.Fail(reason); err != nil {
		return nil, err
	}
	if err := uc.transactionRepo.Update(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	result := &HandleWebhookResult{TransactionID: tx.ID()}

	sub, err := uc.subscriptionRepo.GetByGatewaySubscriptionID(ctx, event.GatewaySubscriptionID)
	if err != nil {
		if errors.Is(err, subscription.ErrSubscriptionNotFound) {
			// First payment failed: no subscription was ever created.
			uc.logger.Infow("initial payment failed", "gateway_transaction_id", event.GatewayTransactionID)
			return result, nil
		}
		return nil, fmt.Errorf("failed to look up subscription: %w", err)
	}

	if sub.IsTerminal() {
		return result, nil
	}
	if err := sub.RecordRenewalFailure(event.OccurredAt, uc.graceWindow); err != nil {
		return nil, err
	}
	if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}

	subID := sub.ID()
	result.SubscriptionID = &subID
	uc.logger.Infow("renewal failure recorded",
		"subscription_id", subID,
		"grace_ends_at", sub.GracePeriodEndsAt(),
	)
	return result, nil
}

func (uc *HandleWebhookUseCase) renew(ctx context.Context, sub *subscription.Subscription, event *paymentgateway.WebhookEvent) error {
	plan, err := uc.planRepo.GetByID(ctx, sub.PlanID())
	if err != nil {
		return fmt.Errorf("failed to load plan: %w", err)
	}

	next := sub.RenewalDate().AddDate(0, plan.PlanType().BillingMonths(), 0)
	if err := sub.RecordRenewalSuccess(next); err != nil {
		return err
	}
	return uc.subscriptionRepo.Update(ctx, sub)
}

func (uc *HandleWebhookUseCase) activate(ctx context.Context, event *paymentgateway.WebhookEvent) (*subscription.Subscription, error) {
	if event.PlanID == 0 {
		return nil, apperrors.NewValidationError("webhook has no plan reference", event.GatewayTransactionID)
	}
	plan, err := uc.planRepo.GetByID(ctx, event.PlanID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	if !plan.PlanType().IsPremium() {
		return nil, subscription.ErrPlanNotBillable
	}

	start := event.OccurredAt
	renewal := start.AddDate(0, plan.PlanType().BillingMonths(), 0)
	sub, err := subscription.NewSubscription(event.UserID, plan.ID(), event.Gateway, event.GatewaySubscriptionID, start, renewal)
	if err != nil {
		return nil, err
	}
	if err := uc.subscriptionRepo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	uc.logger.Infow("subscription activated",
		"subscription_id", sub.ID(),
		"user_id", sub.UserID(),
		"plan_id", plan.ID(),
	)
	return sub, nil
}
