package promo

import "context"

// CodeRepository persists promotional codes.
type CodeRepository interface {
	Create(ctx context.Context, code *PromotionalCode) error
	Update(ctx context.Context, code *PromotionalCode) error
	GetByID(ctx context.Context, id uint) (*PromotionalCode, error)
	// GetByCode looks a code up by its normalized (uppercase) string.
	// Returns ErrCodeNotFound when absent.
	GetByCode(ctx context.Context, code string) (*PromotionalCode, error)
	// GetByCodeForUpdate is GetByCode with a row lock held until the
	// surrounding transaction ends. Redemption reads through this so
	// concurrent checkouts of the same code are serialized and the
	// per-user usage count they see is current.
	GetByCodeForUpdate(ctx context.Context, code string) (*PromotionalCode, error)
	// Redeem increments the usage counter atomically: the update only
	// applies while current_uses is still below max_uses, so two
	// concurrent redemptions of a code with one use left cannot both
	// succeed. Returns ErrCodeExhausted when the cap was hit first.
	Redeem(ctx context.Context, codeID uint) error
}

// UsageRepository persists the append-only redemption log.
type UsageRepository interface {
	Create(ctx context.Context, usage *Usage) error
	CountByCodeAndUser(ctx context.Context, codeID, userID uint) (int, error)
	ListByUser(ctx context.Context, userID uint) ([]*Usage, error)
}
