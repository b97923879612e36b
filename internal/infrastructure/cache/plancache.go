package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vistream-inc/vistream/internal/domain/subscription"
	vo "github.com/vistream-inc/vistream/internal/domain/subscription/valueobjects"
	"github.com/vistream-inc/vistream/internal/shared/logger"
)

const (
	planCacheKey = "vistream:plans:active"
	planCacheTTL = 10 * time.Minute
)

// RedisPlanCache caches the active plan catalog in Redis. Plans change
// rarely and are read on every checkout and plan listing, so a short TTL
// plus explicit invalidation on writes keeps the catalog fresh enough.
type RedisPlanCache struct {
	client *redis.Client
	logger logger.Interface
}

func NewRedisPlanCache(client *redis.Client, log logger.Interface) *RedisPlanCache {
	return &RedisPlanCache{client: client, logger: log}
}

type cachedPlan struct {
	ID                   uint      `json:"id"`
	Name                 string    `json:"name"`
	PlanType             string    `json:"plan_type"`
	MaxResolution        string    `json:"max_resolution"`
	AdFree               bool      `json:"ad_free"`
	PremiumContentAccess bool      `json:"premium_content_access"`
	EarlyAccess          bool      `json:"early_access"`
	PriceMonthlyCents    int64     `json:"price_monthly_cents"`
	PriceAnnualCents     *int64    `json:"price_annual_cents,omitempty"`
	DisplayCurrency      string    `json:"display_currency"`
	IsActive             bool      `json:"is_active"`
	Version              int       `json:"version"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (c *RedisPlanCache) GetActivePlans(ctx context.Context) ([]*subscription.Plan, bool) {
	data, err := c.client.Get(ctx, planCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warnw("plan cache read failed", "error", err)
		}
		return nil, false
	}

	var cached []cachedPlan
	if err := json.Unmarshal(data, &cached); err != nil {
		c.logger.Warnw("plan cache entry corrupt, dropping", "error", err)
		_ = c.client.Del(ctx, planCacheKey).Err()
		return nil, false
	}

	plans := make([]*subscription.Plan, 0, len(cached))
	for _, cp := range cached {
		plan, err := c.toDomain(cp)
		if err != nil {
			c.logger.Warnw("plan cache entry invalid, dropping", "error", err)
			_ = c.client.Del(ctx, planCacheKey).Err()
			return nil, false
		}
		plans = append(plans, plan)
	}
	return plans, true
}

func (c *RedisPlanCache) SetActivePlans(ctx context.Context, plans []*subscription.Plan) error {
	cached := make([]cachedPlan, 0, len(plans))
	for _, p := range plans {
		cached = append(cached, cachedPlan{
			ID:                   p.ID(),
			Name:                 p.Name(),
			PlanType:             p.PlanType().String(),
			MaxResolution:        p.Features().MaxResolution(),
			AdFree:               p.Features().AdFree(),
			PremiumContentAccess: p.Features().PremiumContentAccess(),
			EarlyAccess:          p.Features().EarlyAccess(),
			PriceMonthlyCents:    p.PriceMonthlyCents(),
			PriceAnnualCents:     p.PriceAnnualCents(),
			DisplayCurrency:      p.DisplayCurrency(),
			IsActive:             p.IsActive(),
			Version:              p.Version(),
			CreatedAt:            p.CreatedAt(),
			UpdatedAt:            p.UpdatedAt(),
		})
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("failed to encode plan cache: %w", err)
	}
	if err := c.client.Set(ctx, planCacheKey, data, planCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to write plan cache: %w", err)
	}
	return nil
}

func (c *RedisPlanCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, planCacheKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate plan cache: %w", err)
	}
	return nil
}

func (c *RedisPlanCache) toDomain(cp cachedPlan) (*subscription.Plan, error) {
	planType, err := vo.NewPlanType(cp.PlanType)
	if err != nil {
		return nil, err
	}
	features, err := vo.NewPlanFeatures(cp.MaxResolution, cp.AdFree, cp.PremiumContentAccess, cp.EarlyAccess)
	if err != nil {
		return nil, err
	}
	return subscription.ReconstructPlan(
		cp.ID,
		cp.Name,
		planType,
		features,
		cp.PriceMonthlyCents,
		cp.PriceAnnualCents,
		cp.DisplayCurrency,
		cp.IsActive,
		cp.Version,
		cp.CreatedAt,
		cp.UpdatedAt,
	), nil
}
