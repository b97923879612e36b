package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/vistream-inc/vistream/internal/application/payment/paymentgateway"
	paymentUC "github.com/vistream-inc/vistream/internal/application/payment/usecases"
	payoutUC "github.com/vistream-inc/vistream/internal/application/payout/usecases"
	promoUC "github.com/vistream-inc/vistream/internal/application/promo/usecases"
	revenueUC "github.com/vistream-inc/vistream/internal/application/revenue/usecases"
	subscriptionUC "github.com/vistream-inc/vistream/internal/application/subscription/usecases"
	"github.com/vistream-inc/vistream/internal/domain/payout"
	"github.com/vistream-inc/vistream/internal/domain/shared/services"
	"github.com/vistream-inc/vistream/internal/infrastructure/cache"
	"github.com/vistream-inc/vistream/internal/infrastructure/config"
	"github.com/vistream-inc/vistream/internal/infrastructure/database"
	"github.com/vistream-inc/vistream/internal/infrastructure/email"
	"github.com/vistream-inc/vistream/internal/infrastructure/migration"
	gatewayadapters "github.com/vistream-inc/vistream/internal/infrastructure/payment"
	"github.com/vistream-inc/vistream/internal/infrastructure/repository"
	"github.com/vistream-inc/vistream/internal/interfaces/http/handlers"
	"github.com/vistream-inc/vistream/internal/interfaces/http/routes"
	"github.com/vistream-inc/vistream/internal/shared/biztime"
	"github.com/vistream-inc/vistream/internal/shared/db"
	"github.com/vistream-inc/vistream/internal/shared/logger"
)

var (
	env                string
	skipMigrationCheck bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the monetization HTTP server",
		Long:  `Start the ViStream monetization HTTP server with the specified configuration.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&skipMigrationCheck, "skip-migration-check", false, "Skip running database migrations on startup")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Server.Mode = mapEnvToGinMode(env)

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	log := logger.NewLogger()
	log.Infow("starting monetization server", "environment", env)

	if err := biztime.Init(cfg.Server.Timezone); err != nil {
		return fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {
	}

	if err := database.Init(&cfg.Database); err != nil {
		log.Errorw("failed to initialize database", "error", err)
		return err
	}
	defer database.Close()

	if !skipMigrationCheck {
		if err := migration.NewManager(env).Migrate(database.Get(), migration.AllModels()...); err != nil {
			log.Errorw("database migration failed", "error", err)
			return err
		}
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Errorw("failed to connect to redis", "error", err, "address", cfg.Redis.GetAddr())
		return err
	}

	// Repositories
	subscriptionRepo := repository.NewSubscriptionRepository(database.Get())
	planRepo := repository.NewPlanRepository(database.Get())
	transactionRepo := repository.NewTransactionRepository(database.Get())
	promoCodeRepo := repository.NewPromoCodeRepository(database.Get())
	promoUsageRepo := repository.NewPromoUsageRepository(database.Get())
	shareRepo := repository.NewRevenueShareRepository(database.Get())
	videoRepo := repository.NewMonetizedVideoRepository(database.Get())
	payoutRepo := repository.NewPayoutRepository(database.Get())
	methodRepo := repository.NewPayoutMethodRepository(database.Get())

	txManager := db.NewTransactionManager(database.Get())
	refGen := services.NewReferenceGenerator()
	planCache := cache.NewRedisPlanCache(redisClient, log)

	// Gateway adapters serve both webhook verification and disbursements.
	sslcommerz := gatewayadapters.NewSSLCommerzAdapter(cfg.Billing.WebhookSecrets["sslcommerz"], log)
	twocheckout := gatewayadapters.NewTwoCheckoutAdapter(cfg.Billing.WebhookSecrets["2checkout"], log)
	gatewayRegistry := paymentgateway.NewRegistry(sslcommerz, twocheckout)

	revenueRates := revenueUC.RevenueRates{
		CreatorSharePercent: int64(cfg.Payout.CreatorSharePercent),
		PremiumRateCents:    cfg.Payout.PremiumRateCents,
	}
	settlementRates := payoutUC.SettlementRates{
		CreatorSharePercent: int64(cfg.Payout.CreatorSharePercent),
		FeePolicy: payout.FeePolicy{
			PlatformFeePercent:    int64(cfg.Payout.PlatformFeePercent),
			GatewayFeeFlatCents:   cfg.Payout.GatewayFeeFlatCents,
			TaxWithholdingPercent: int64(cfg.Payout.TaxWithholdingPercent),
		},
		MinimumPayoutCents: cfg.Payout.MinimumPayoutCents,
		Currency:           cfg.Payout.Currency,
	}
	graceWindow := time.Duration(cfg.Billing.GracePeriodDays) * 24 * time.Hour

	// Use cases
	handleWebhookUC := paymentUC.NewHandleWebhookUseCase(
		gatewayRegistry, transactionRepo, subscriptionRepo, planRepo, txManager, graceWindow, log)
	refundUC := paymentUC.NewRefundTransactionUseCase(transactionRepo, subscriptionRepo, txManager, log)

	startCheckoutUC := subscriptionUC.NewStartCheckoutUseCase(
		subscriptionRepo, planRepo, transactionRepo, promoCodeRepo, promoUsageRepo, refGen, txManager, log)
	cancelUC := subscriptionUC.NewCancelSubscriptionUseCase(subscriptionRepo, log)
	suspendUC := subscriptionUC.NewSuspendSubscriptionUseCase(subscriptionRepo, log)
	reinstateUC := subscriptionUC.NewReinstateSubscriptionUseCase(subscriptionRepo, log)
	checkEligibilityUC := subscriptionUC.NewCheckPremiumEligibilityUseCase(subscriptionRepo, planRepo, log)
	createPlanUC := subscriptionUC.NewCreatePlanUseCase(planRepo, planCache, log)
	listPlansUC := subscriptionUC.NewListPlansUseCase(planRepo, planCache, log)

	evaluatePromoUC := promoUC.NewEvaluatePromoCodeUseCase(promoCodeRepo, promoUsageRepo, planRepo, log)
	createPromoUC := promoUC.NewCreatePromoCodeUseCase(promoCodeRepo, log)

	ingestUC := revenueUC.NewIngestDailyTelemetryUseCase(shareRepo, videoRepo, payoutRepo, revenueRates, txManager, log)

	settleUC := payoutUC.NewSettlePayoutUseCase(
		payoutRepo, methodRepo, shareRepo, videoRepo, refGen, settlementRates, txManager, log)
	processUC := payoutUC.NewProcessPayoutUseCase(payoutRepo, methodRepo, shareRepo, sslcommerz, txManager, log)
	processUC.SetNotifier(email.NewSMTPPayoutNotifier(email.SMTPConfig{
		Host:        cfg.Email.SMTPHost,
		Port:        cfg.Email.SMTPPort,
		Username:    cfg.Email.SMTPUser,
		Password:    cfg.Email.SMTPPassword,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
	}, email.NewPayoutMethodContactResolver(methodRepo)))
	listPayoutsUC := payoutUC.NewListPayoutsUseCase(payoutRepo, log)
	registerMethodUC := payoutUC.NewRegisterPayoutMethodUseCase(methodRepo, txManager, log)
	verifyMethodUC := payoutUC.NewVerifyPayoutMethodUseCase(methodRepo, log)

	engine := gin.New()
	routes.Setup(engine, &routes.RouteConfig{
		WebhookHandler:      handlers.NewWebhookHandler(handleWebhookUC, log),
		SubscriptionHandler: handlers.NewSubscriptionHandler(startCheckoutUC, cancelUC, suspendUC, reinstateUC, checkEligibilityUC, log),
		PlanHandler:         handlers.NewPlanHandler(createPlanUC, listPlansUC, log),
		PromoHandler:        handlers.NewPromoHandler(evaluatePromoUC, createPromoUC, log),
		TelemetryHandler:    handlers.NewTelemetryHandler(ingestUC, log),
		PayoutHandler:       handlers.NewPayoutHandler(settleUC, processUC, listPayoutsUC, registerMethodUC, verifyMethodUC, log),
		PaymentHandler:      handlers.NewPaymentHandler(refundUC, log),
		Logger:              log,
	})

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server listening", "address", cfg.Server.GetAddr(), "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorw("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Infow("server exited gracefully")
	return nil
}

func mapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}
