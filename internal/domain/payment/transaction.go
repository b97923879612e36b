package payment

import (
	"fmt"
	"time"

	vo "github.com/vistream-inc/vistream/internal/domain/payment/valueobjects"
	"github.com/vistream-inc/vistream/internal/shared/biztime"
)

// Transaction is an append-only audit record of a payment gateway event.
// The gateway transaction ID is globally unique; replayed webhooks must
// resolve to the existing row instead of creating a second one.
type Transaction struct {
	id                   uint
	userID               uint
	subscriptionID       *uint
	gateway              vo.Gateway
	gatewayTransactionID string
	amount               vo.Money
	status               vo.TransactionStatus
	paymentMethod        string
	discountCents        int64
	promoCodeID          *uint
	refundOfID           *uint
	failureReason        *string
	metadata             map[string]interface{}
	createdAt            time.Time
	completedAt          *time.Time
}

func NewTransaction(userID uint, gateway vo.Gateway, gatewayTransactionID string, amount vo.Money) (*Transaction, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if gatewayTransactionID == "" {
		return nil, fmt.Errorf("gateway transaction ID is required")
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("amount cannot be negative")
	}

	return &Transaction{
		userID:               userID,
		gateway:              gateway,
		gatewayTransactionID: gatewayTransactionID,
		amount:               amount,
		status:               vo.TransactionStatusPending,
		metadata:             make(map[string]interface{}),
		createdAt:            biztime.NowUTC(),
	}, nil
}

// NewRefundTransaction creates a refund linked to an original completed
// transaction. The original row is untouched; the ledger stays append-only.
func NewRefundTransaction(original *Transaction, reason string) (*Transaction, error) {
	if original.status != vo.TransactionStatusCompleted {
		return nil, fmt.Errorf("can only refund a completed transaction, status is %s", original.status)
	}

	now := biztime.NowUTC()
	originalID := original.id
	refund := &Transaction{
		userID:               original.userID,
		subscriptionID:       original.subscriptionID,
		gateway:              original.gateway,
		gatewayTransactionID: original.gatewayTransactionID + ":refund",
		amount:               vo.NewMoney(-original.amount.AmountInCents(), original.amount.Currency()),
		status:               vo.TransactionStatusRefunded,
		paymentMethod:        original.paymentMethod,
		refundOfID:           &originalID,
		metadata:             map[string]interface{}{"refund_reason": reason},
		createdAt:            now,
		completedAt:          &now,
	}
	return refund, nil
}

func (t *Transaction) ID() uint                         { return t.id }
func (t *Transaction) UserID() uint                     { return t.userID }
func (t *Transaction) SubscriptionID() *uint            { return t.subscriptionID }
func (t *Transaction) Gateway() vo.Gateway              { return t.gateway }
func (t *Transaction) GatewayTransactionID() string     { return t.gatewayTransactionID }
func (t *Transaction) Amount() vo.Money                 { return t.amount }
func (t *Transaction) Status() vo.TransactionStatus     { return t.status }
func (t *Transaction) PaymentMethod() string            { return t.paymentMethod }
func (t *Transaction) DiscountCents() int64             { return t.discountCents }
func (t *Transaction) PromoCodeID() *uint               { return t.promoCodeID }
func (t *Transaction) RefundOfID() *uint                { return t.refundOfID }
func (t *Transaction) FailureReason() *string           { return t.failureReason }
func (t *Transaction) Metadata() map[string]interface{} { return t.metadata }
func (t *Transaction) CreatedAt() time.Time             { return t.createdAt }
func (t *Transaction) CompletedAt() *time.Time          { return t.completedAt }

// LinkSubscription attaches the transaction to a subscription row.
func (t *Transaction) LinkSubscription(subscriptionID uint) error {
	if t.status.IsFinal() {
		return ErrTransactionFinal
	}
	t.subscriptionID = &subscriptionID
	return nil
}

// ApplyDiscount records a promo discount on a pending transaction.
func (t *Transaction) ApplyDiscount(promoCodeID uint, discountCents int64) error {
	if t.status.IsFinal() {
		return ErrTransactionFinal
	}
	if discountCents < 0 {
		return fmt.Errorf("discount cannot be negative")
	}
	if discountCents > t.amount.AmountInCents() {
		return fmt.Errorf("discount exceeds transaction amount")
	}
	t.promoCodeID = &promoCodeID
	t.discountCents = discountCents
	t.amount = vo.NewMoney(t.amount.AmountInCents()-discountCents, t.amount.Currency())
	return nil
}

func (t *Transaction) SetPaymentMethod(method string) {
	t.paymentMethod = method
}

// Complete marks the transaction completed. Completed rows are immutable.
func (t *Transaction) Complete(completedAt time.Time) error {
	if t.status == vo.TransactionStatusCompleted {
		return nil
	}
	if t.status.IsFinal() {
		return ErrTransactionFinal
	}
	t.status = vo.TransactionStatusCompleted
	t.completedAt = &completedAt
	return nil
}

// Fail marks the transaction failed with a recorded reason.
func (t *Transaction) Fail(reason string) error {
	if t.status == vo.TransactionStatusFailed {
		return nil
	}
	if t.status.IsFinal() {
		return ErrTransactionFinal
	}
	t.status = vo.TransactionStatusFailed
	t.failureReason = &reason
	return nil
}

// SetID sets the transaction ID after persistence.
func (t *Transaction) SetID(id uint) {
	t.id = id
}

// TransactionReconstructParams carries persisted state back into the aggregate.
type TransactionReconstructParams struct {
	ID                   uint
	UserID               uint
	SubscriptionID       *uint
	Gateway              vo.Gateway
	GatewayTransactionID string
	Amount               vo.Money
	Status               vo.TransactionStatus
	PaymentMethod        string
	DiscountCents        int64
	PromoCodeID          *uint
	RefundOfID           *uint
	FailureReason        *string
	Metadata             map[string]interface{}
	CreatedAt            time.Time
	CompletedAt          *time.Time
}

// ReconstructTransaction rebuilds a transaction from persistence.
func ReconstructTransaction(p TransactionReconstructParams) *Transaction {
	metadata := p.Metadata
	if metadata == nil {
		metadata = make(map[string]interface{})
	}
	return &Transaction{
		id:                   p.ID,
		userID:               p.UserID,
		subscriptionID:       p.SubscriptionID,
		gateway:              p.Gateway,
		gatewayTransactionID: p.GatewayTransactionID,
		amount:               p.Amount,
		status:               p.Status,
		paymentMethod:        p.PaymentMethod,
		discountCents:        p.DiscountCents,
		promoCodeID:          p.PromoCodeID,
		refundOfID:           p.RefundOfID,
		failureReason:        p.FailureReason,
		metadata:             metadata,
		createdAt:            p.CreatedAt,
		completedAt:          p.CompletedAt,
	}
}
