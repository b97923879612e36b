package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	payoutUC "github.com/vistream-inc/vistream/internal/application/payout/usecases"
	revenueUC "github.com/vistream-inc/vistream/internal/application/revenue/usecases"
	subscriptionUC "github.com/vistream-inc/vistream/internal/application/subscription/usecases"
	"github.com/vistream-inc/vistream/internal/domain/payout"
	"github.com/vistream-inc/vistream/internal/domain/shared/services"
	"github.com/vistream-inc/vistream/internal/infrastructure/config"
	"github.com/vistream-inc/vistream/internal/infrastructure/database"
	"github.com/vistream-inc/vistream/internal/infrastructure/email"
	gatewayadapters "github.com/vistream-inc/vistream/internal/infrastructure/payment"
	"github.com/vistream-inc/vistream/internal/infrastructure/repository"
	"github.com/vistream-inc/vistream/internal/infrastructure/scheduler"
	"github.com/vistream-inc/vistream/internal/shared/biztime"
	"github.com/vistream-inc/vistream/internal/shared/db"
	"github.com/vistream-inc/vistream/internal/shared/logger"
)

// The worker runs the recurring billing, revenue close, and settlement jobs
// so they never compete with API traffic for the same process.
func main() {
	env := "development"
	if len(os.Args) > 1 {
		env = os.Args[1]
	}
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	log := logger.NewLogger()
	log.Infow("starting monetization worker", "environment", env)

	if err := biztime.Init(cfg.Server.Timezone); err != nil {
		log.Errorw("failed to initialize business timezone", "error", err)
		os.Exit(1)
	}

	if err := database.Init(&cfg.Database); err != nil {
		log.Errorw("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	subscriptionRepo := repository.NewSubscriptionRepository(database.Get())
	shareRepo := repository.NewRevenueShareRepository(database.Get())
	videoRepo := repository.NewMonetizedVideoRepository(database.Get())
	payoutRepo := repository.NewPayoutRepository(database.Get())
	methodRepo := repository.NewPayoutMethodRepository(database.Get())

	txManager := db.NewTransactionManager(database.Get())
	refGen := services.NewReferenceGenerator()

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

	expireUC := subscriptionUC.NewExpireSubscriptionsUseCase(subscriptionRepo, txManager, log)
	finalizeUC := subscriptionUC.NewFinalizeCancellationsUseCase(subscriptionRepo, txManager, log)
	closeDayUC := revenueUC.NewCloseAccountingDayUseCase(shareRepo, videoRepo, revenueRates, txManager, log)

	disbursementGateway := gatewayadapters.NewSSLCommerzAdapter(cfg.Billing.WebhookSecrets["sslcommerz"], log)
	settleUC := payoutUC.NewSettlePayoutUseCase(
		payoutRepo, methodRepo, shareRepo, videoRepo, refGen, settlementRates, txManager, log)
	processUC := payoutUC.NewProcessPayoutUseCase(payoutRepo, methodRepo, shareRepo, disbursementGateway, txManager, log)
	processUC.SetNotifier(email.NewSMTPPayoutNotifier(email.SMTPConfig{
		Host:        cfg.Email.SMTPHost,
		Port:        cfg.Email.SMTPPort,
		Username:    cfg.Email.SMTPUser,
		Password:    cfg.Email.SMTPPassword,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
	}, email.NewPayoutMethodContactResolver(methodRepo)))
	settleMonthlyUC := payoutUC.NewSettleMonthlyPayoutsUseCase(settleUC, processUC, shareRepo, log)

	manager, err := scheduler.NewSchedulerManager(log)
	if err != nil {
		log.Errorw("failed to create scheduler", "error", err)
		os.Exit(1)
	}

	if err := manager.RegisterBillingJobs(expireUC, finalizeUC); err != nil {
		log.Errorw("failed to register billing jobs", "error", err)
		os.Exit(1)
	}
	if err := manager.RegisterRevenueJobs(scheduler.NewCloseYesterdayJob(closeDayUC)); err != nil {
		log.Errorw("failed to register revenue jobs", "error", err)
		os.Exit(1)
	}
	if err := manager.RegisterPayoutJobs(scheduler.NewSettlePreviousMonthJob(settleMonthlyUC)); err != nil {
		log.Errorw("failed to register payout jobs", "error", err)
		os.Exit(1)
	}

	manager.Start()
	log.Infow("monetization worker started", "jobs", len(manager.Jobs()))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	log.Infow("received signal, shutting down", "signal", sig)

	stopDone := make(chan error, 1)
	go func() { stopDone <- manager.Stop() }()
	select {
	case err := <-stopDone:
		if err != nil {
			log.Errorw("scheduler shutdown failed", "error", err)
		}
	case <-time.After(30 * time.Second):
		log.Errorw("scheduler shutdown timed out")
	}

	log.Infow("monetization worker stopped")
}
