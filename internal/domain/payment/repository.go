package payment

import "context"

// TransactionRepository persists the append-only payment transaction ledger.
type TransactionRepository interface {
	// Create inserts a transaction. Returns ErrDuplicateTransaction when the
	// gateway transaction ID already exists.
	Create(ctx context.Context, tx *Transaction) error
	// Update persists status changes on a non-final transaction.
	Update(ctx context.Context, tx *Transaction) error
	GetByID(ctx context.Context, id uint) (*Transaction, error)
	GetByGatewayTransactionID(ctx context.Context, gatewayTransactionID string) (*Transaction, error)
	ListBySubscriptionID(ctx context.Context, subscriptionID uint) ([]*Transaction, error)
}
