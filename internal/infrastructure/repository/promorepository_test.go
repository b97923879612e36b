package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vistream-inc/vistream/internal/domain/promo"
	promovo "github.com/vistream-inc/vistream/internal/domain/promo/valueobjects"
	"github.com/vistream-inc/vistream/internal/infrastructure/persistence/models"
	"github.com/vistream-inc/vistream/internal/shared/biztime"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.PromoCodeModel{}, &models.PromoUsageModel{}))
	return db
}

func newStoredCode(t *testing.T, repo *PromoCodeRepository, code string, maxUses *int) *promo.PromotionalCode {
	t.Helper()
	discount, err := promovo.NewDiscount(promovo.DiscountTypePercentage, 20)
	require.NoError(t, err)
	now := biztime.NowUTC()
	c, err := promo.NewPromotionalCode(code, discount, now.Add(-time.Hour), now.Add(24*time.Hour))
	require.NoError(t, err)
	if maxUses != nil {
		require.NoError(t, c.SetMaxUses(*maxUses))
	}
	require.NoError(t, repo.Create(context.Background(), c))
	require.NotZero(t, c.ID())
	return c
}

func TestPromoCodeRepository_CreateRejectsDuplicateCode(t *testing.T) {
	repo := NewPromoCodeRepository(newTestDB(t))
	newStoredCode(t, repo, "WELCOME", nil)

	discount, err := promovo.NewDiscount(promovo.DiscountTypeFixed, 500)
	require.NoError(t, err)
	now := biztime.NowUTC()
	dup, err := promo.NewPromotionalCode("welcome", discount, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)

	err = repo.Create(context.Background(), dup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestPromoCodeRepository_GetByCodeNormalizes(t *testing.T) {
	repo := NewPromoCodeRepository(newTestDB(t))
	stored := newStoredCode(t, repo, "WELCOME", nil)

	found, err := repo.GetByCode(context.Background(), "  welcome ")
	require.NoError(t, err)
	assert.Equal(t, stored.ID(), found.ID())
	assert.Equal(t, "WELCOME", found.Code())

	_, err = repo.GetByCode(context.Background(), "MISSING")
	assert.ErrorIs(t, err, promo.ErrCodeNotFound)
}

func TestPromoCodeRepository_RedeemStopsAtCap(t *testing.T) {
	repo := NewPromoCodeRepository(newTestDB(t))
	maxUses := 2
	stored := newStoredCode(t, repo, "TWOONLY", &maxUses)

	require.NoError(t, repo.Redeem(context.Background(), stored.ID()))
	require.NoError(t, repo.Redeem(context.Background(), stored.ID()))
	assert.ErrorIs(t, repo.Redeem(context.Background(), stored.ID()), promo.ErrCodeExhausted)

	reloaded, err := repo.GetByID(context.Background(), stored.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.CurrentUses())
}

func TestPromoCodeRepository_RedeemUncappedAndInactive(t *testing.T) {
	repo := NewPromoCodeRepository(newTestDB(t))
	stored := newStoredCode(t, repo, "FOREVER", nil)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Redeem(context.Background(), stored.ID()))
	}

	stored.Deactivate()
	require.NoError(t, repo.Update(context.Background(), stored))
	assert.ErrorIs(t, repo.Redeem(context.Background(), stored.ID()), promo.ErrCodeExhausted)
}

func TestPromoUsageRepository_CountByCodeAndUser(t *testing.T) {
	gdb := newTestDB(t)
	codeRepo := NewPromoCodeRepository(gdb)
	usageRepo := NewPromoUsageRepository(gdb)
	stored := newStoredCode(t, codeRepo, "WELCOME", nil)

	usage := promo.NewUsage(stored.ID(), 7, 100, 250)
	require.NoError(t, usageRepo.Create(context.Background(), usage))
	require.NotZero(t, usage.ID())

	count, err := usageRepo.CountByCodeAndUser(context.Background(), stored.ID(), 7)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = usageRepo.CountByCodeAndUser(context.Background(), stored.ID(), 8)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
