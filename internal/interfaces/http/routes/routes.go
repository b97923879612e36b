package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/vistream-inc/vistream/internal/interfaces/http/handlers"
	"github.com/vistream-inc/vistream/internal/interfaces/http/middleware"
	"github.com/vistream-inc/vistream/internal/shared/logger"
)

// RouteConfig holds every handler the monetization API exposes.
type RouteConfig struct {
	WebhookHandler      *handlers.WebhookHandler
	SubscriptionHandler *handlers.SubscriptionHandler
	PlanHandler         *handlers.PlanHandler
	PromoHandler        *handlers.PromoHandler
	TelemetryHandler    *handlers.TelemetryHandler
	PayoutHandler       *handlers.PayoutHandler
	PaymentHandler      *handlers.PaymentHandler
	Logger              logger.Interface
}

// Setup wires all routes onto the engine.
func Setup(engine *gin.Engine, cfg *RouteConfig) {
	handlers.RegisterValidations()

	engine.Use(middleware.Recovery(cfg.Logger))
	engine.Use(middleware.Logger(cfg.Logger))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	{
		// Gateway webhooks. Authenticated by signature, not session.
		api.POST("/webhooks/payment/:gateway", cfg.WebhookHandler.HandlePaymentWebhook)

		// Plan catalog
		api.GET("/plans", cfg.PlanHandler.ListPlans)

		// Subscriptions
		api.POST("/subscriptions/checkout", cfg.SubscriptionHandler.StartCheckout)
		api.POST("/subscriptions/:id/cancel", cfg.SubscriptionHandler.CancelSubscription)
		api.GET("/users/:id/premium-eligibility", cfg.SubscriptionHandler.CheckPremiumEligibility)

		// Promo codes
		api.POST("/promo/evaluate", cfg.PromoHandler.EvaluatePromoCode)

		// Daily monetization telemetry
		api.POST("/telemetry/daily", cfg.TelemetryHandler.IngestDailyTelemetry)

		// Payout methods
		api.POST("/payout-methods", cfg.PayoutHandler.RegisterPayoutMethod)
	}

	// Operator endpoints. Deployed behind the internal gateway, which
	// terminates operator auth.
	admin := engine.Group("/admin")
	{
		admin.POST("/plans", cfg.PlanHandler.CreatePlan)
		admin.POST("/promo-codes", cfg.PromoHandler.CreatePromoCode)

		admin.POST("/subscriptions/:id/suspend", cfg.SubscriptionHandler.SuspendSubscription)
		admin.POST("/subscriptions/:id/reinstate", cfg.SubscriptionHandler.ReinstateSubscription)

		admin.POST("/transactions/:id/refund", cfg.PaymentHandler.RefundTransaction)

		admin.POST("/payouts/settle", cfg.PayoutHandler.SettlePayout)
		admin.POST("/payouts/:id/process", cfg.PayoutHandler.ProcessPayout)
		admin.GET("/payouts", cfg.PayoutHandler.ListPayouts)
		admin.POST("/payout-methods/:id/verify", cfg.PayoutHandler.VerifyPayoutMethod)
	}
}
