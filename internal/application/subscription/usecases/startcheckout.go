package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/vistream-inc/vistream/internal/domain/payment"
	paymentvo "github.com/vistream-inc/vistream/internal/domain/payment/valueobjects"
	"github.com/vistream-inc/vistream/internal/domain/promo"
	"github.com/vistream-inc/vistream/internal/domain/shared/services"
	"github.com/vistream-inc/vistream/internal/domain/subscription"
	"github.com/vistream-inc/vistream/internal/shared/biztime"
	"github.com/vistream-inc/vistream/internal/shared/db"
	apperrors "github.com/vistream-inc/vistream/internal/shared/errors"
	"github.com/vistream-inc/vistream/internal/shared/logger"
)

// StartCheckoutCommand starts a subscription purchase.
type StartCheckoutCommand struct {
	UserID    uint
	PlanID    uint
	Gateway   string
	PromoCode string
}

// CheckoutResult is handed to the client to drive the gateway redirect.
type CheckoutResult struct {
	Reference     string `json:"reference"`
	PlanID        uint   `json:"plan_id"`
	AmountCents   int64  `json:"amount_cents"`
	DiscountCents int64  `json:"discount_cents"`
	Currency      string `json:"currency"`
	Gateway       string `json:"gateway"`
}

// StartCheckoutUseCase creates the pending ledger transaction for a plan
// purchase. A promo code, when supplied, is validated and redeemed in the
// same database transaction as the pending row, so its usage counter can
// never exceed the cap even under concurrent checkouts.
type StartCheckoutUseCase struct {
	subscriptionRepo subscription.SubscriptionRepository
	planRepo         subscription.PlanRepository
	transactionRepo  payment.TransactionRepository
	promoCodeRepo    promo.CodeRepository
	promoUsageRepo   promo.UsageRepository
	refGen           services.ReferenceGenerator
	txManager        db.Transactor
	logger           logger.Interface
}

func NewStartCheckoutUseCase(
	subscriptionRepo subscription.SubscriptionRepository,
	planRepo subscription.PlanRepository,
	transactionRepo payment.TransactionRepository,
	promoCodeRepo promo.CodeRepository,
	promoUsageRepo promo.UsageRepository,
	refGen services.ReferenceGenerator,
	txManager db.Transactor,
	logger logger.Interface,
) *StartCheckoutUseCase {
	return &StartCheckoutUseCase{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		transactionRepo:  transactionRepo,
		promoCodeRepo:    promoCodeRepo,
		promoUsageRepo:   promoUsageRepo,
		refGen:           refGen,
		txManager:        txManager,
		logger:           logger,
	}
}

func (uc *StartCheckoutUseCase) Execute(ctx context.Context, cmd StartCheckoutCommand) (*CheckoutResult, error) {
	gateway, err := paymentvo.NewGateway(cmd.Gateway)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid gateway", err.Error())
	}

	plan, err := uc.planRepo.GetByID(ctx, cmd.PlanID)
	if err != nil {
		if errors.Is(err, subscription.ErrPlanNotFound) {
			return nil, apperrors.NewNotFoundError("plan not found")
		}
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	if !plan.IsActive() {
		return nil, apperrors.NewConflictError("plan is not available")
	}
	if !plan.PlanType().IsPremium() {
		return nil, apperrors.NewValidationError("plan is not billable")
	}

	if existing, err := uc.subscriptionRepo.GetActiveByUserID(ctx, cmd.UserID); err == nil && existing != nil {
		return nil, apperrors.NewConflictError("user already has an active subscription")
	} else if err != nil && !errors.Is(err, subscription.ErrSubscriptionNotFound) {
		return nil, fmt.Errorf("failed to check existing subscription: %w", err)
	}

	var result *CheckoutResult
	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		reference := uc.refGen.Generate("TXN")
		tx, err := payment.NewTransaction(cmd.UserID, gateway, reference, paymentvo.NewMoney(plan.PriceCents(), plan.DisplayCurrency()))
		if err != nil {
			return apperrors.NewValidationError("invalid checkout", err.Error())
		}

		var discountCents int64
		var code *promo.PromotionalCode
		if cmd.PromoCode != "" {
			code, discountCents, err = uc.applyPromo(txCtx, cmd, plan, tx)
			if err != nil {
				return err
			}
		}

		if err := uc.transactionRepo.Create(txCtx, tx); err != nil {
			return fmt.Errorf("failed to create pending transaction: %w", err)
		}

		if code != nil {
			usage := promo.NewUsage(code.ID(), cmd.UserID, tx.ID(), discountCents)
			if err := uc.promoUsageRepo.Create(txCtx, usage); err != nil {
				return fmt.Errorf("failed to record promo usage: %w", err)
			}
		}

		result = &CheckoutResult{
			Reference:     reference,
			PlanID:        plan.ID(),
			AmountCents:   tx.Amount().AmountInCents(),
			DiscountCents: discountCents,
			Currency:      tx.Amount().Currency(),
			Gateway:       gateway.String(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("checkout started",
		"user_id", cmd.UserID,
		"plan_id", cmd.PlanID,
		"reference", result.Reference,
		"amount_cents", result.AmountCents,
	)
	return result, nil
}

func (uc *StartCheckoutUseCase) applyPromo(ctx context.Context, cmd StartCheckoutCommand, plan *subscription.Plan, tx *payment.Transaction) (*promo.PromotionalCode, int64, error) {
	// The locked read serializes checkouts of the same code, so the usage
	// count below reflects every committed redemption and the per-user
	// limit holds under concurrency.
	code, err := uc.promoCodeRepo.GetByCodeForUpdate(ctx, cmd.PromoCode)
	if err != nil {
		if errors.Is(err, promo.ErrCodeNotFound) {
			return nil, 0, apperrors.NewNotFoundError("promotional code not found")
		}
		return nil, 0, fmt.Errorf("failed to load promo code: %w", err)
	}

	userUses, err := uc.promoUsageRepo.CountByCodeAndUser(ctx, code.ID(), cmd.UserID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count promo usage: %w", err)
	}
	if err := code.Validate(biztime.NowUTC(), plan.ID(), userUses); err != nil {
		return nil, 0, apperrors.NewConflictError("promotional code rejected", err.Error())
	}

	// The conditional increment is the authoritative cap check; Validate
	// above only produces a friendlier error for the common cases.
	if err := uc.promoCodeRepo.Redeem(ctx, code.ID()); err != nil {
		if errors.Is(err, promo.ErrCodeExhausted) {
			return nil, 0, apperrors.NewConflictError("promotional code rejected", err.Error())
		}
		return nil, 0, fmt.Errorf("failed to redeem promo code: %w", err)
	}

	discount := code.DiscountFor(tx.Amount().AmountInCents())
	if err := tx.ApplyDiscount(code.ID(), discount); err != nil {
		return nil, 0, err
	}
	return code, discount, nil
}
