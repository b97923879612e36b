// Package scheduler provides unified scheduler management using gocron v2.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/vistream-inc/vistream/internal/shared/biztime"
	"github.com/vistream-inc/vistream/internal/shared/logger"
)

// BatchJob defines the interface for a scheduled batch processing job.
// Each Execute call processes a batch and returns the number of items processed.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

// SchedulerManager manages all scheduled jobs using gocron v2 on a single
// scheduler instance.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.RWMutex
}

// NewSchedulerManager creates a new SchedulerManager instance.
// It initializes gocron with the business timezone for cron expressions.
func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// RegisterBillingJobs registers subscription maintenance jobs, both hourly:
// - Expire grace-period subscriptions whose deadline has passed
// - Finalize period-end cancellations whose paid period has ended
func (m *SchedulerManager) RegisterBillingJobs(
	expireSubscriptionsJob BatchJob,
	finalizeCancellationsJob BatchJob,
) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			m.processBillingTasks(ctx, expireSubscriptionsJob, finalizeCancellationsJob)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("billing", "expire", "finalize-cancellation"),
		gocron.WithName("billing-maintenance"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered billing jobs", "interval", "1h")
	return nil
}

func (m *SchedulerManager) processBillingTasks(
	ctx context.Context,
	expireSubscriptionsJob BatchJob,
	finalizeCancellationsJob BatchJob,
) {
	m.logger.Debugw("billing maintenance started")

	startTime := biztime.NowUTC()

	expiredCount, err := expireSubscriptionsJob.Execute(ctx)
	if err != nil {
		m.logger.Errorw("failed to expire lapsed subscriptions",
			"error", err,
			"duration", time.Since(startTime),
		)
	} else if expiredCount > 0 {
		m.logger.Infow("lapsed subscriptions expired",
			"count", expiredCount,
			"duration", time.Since(startTime),
		)
	}

	finalizedCount, err := finalizeCancellationsJob.Execute(ctx)
	if err != nil {
		m.logger.Errorw("failed to finalize period-end cancellations",
			"error", err,
		)
	} else if finalizedCount > 0 {
		m.logger.Infow("period-end cancellations finalized",
			"count", finalizedCount,
		)
	}
}

// RegisterRevenueJobs registers the attribution close job:
//   - Daily at 03:00 business timezone, zero-fill yesterday's gaps so the
//     accounting calendar stays contiguous for settlement.
func (m *SchedulerManager) RegisterRevenueJobs(closeAccountingDayJob BatchJob) error {
	_, err := m.scheduler.NewJob(
		gocron.CronJob("0 3 * * *", false),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			m.closeAccountingDay(ctx, closeAccountingDayJob)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("revenue", "daily-close"),
		gocron.WithName("revenue-daily-close"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered revenue jobs", "daily_close", "03:00")
	return nil
}

func (m *SchedulerManager) closeAccountingDay(ctx context.Context, job BatchJob) {
	m.logger.Debugw("closing accounting day")

	startTime := biztime.NowUTC()
	filledCount, err := job.Execute(ctx)
	if err != nil {
		m.logger.Errorw("accounting day close failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	m.logger.Infow("accounting day closed",
		"zero_filled", filledCount,
		"duration", time.Since(startTime),
	)
}

// RegisterPayoutJobs registers the monthly settlement job:
//   - At 04:00 on the 1st, after the daily close has sealed the last day of
//     the previous month, settle every channel that earned in that month.
func (m *SchedulerManager) RegisterPayoutJobs(settleMonthlyPayoutsJob BatchJob) error {
	_, err := m.scheduler.NewJob(
		gocron.CronJob("0 4 1 * *", false),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()
			m.settleMonthlyPayouts(ctx, settleMonthlyPayoutsJob)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("payout", "monthly-settlement"),
		gocron.WithName("payout-monthly-settlement"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered payout jobs", "monthly_settlement", "04:00 on 1st")
	return nil
}

func (m *SchedulerManager) settleMonthlyPayouts(ctx context.Context, job BatchJob) {
	m.logger.Infow("monthly payout settlement started")

	startTime := biztime.NowUTC()
	settledCount, err := job.Execute(ctx)
	if err != nil {
		m.logger.Errorw("monthly payout settlement failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	m.logger.Infow("monthly payout settlement completed",
		"count", settledCount,
		"duration", time.Since(startTime),
	)
}

// Start starts the scheduler and all registered jobs.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop gracefully stops the scheduler.
// It waits for all running jobs to complete before returning.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")

	err := m.scheduler.Shutdown()
	m.started = false

	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}

// IsStarted returns whether the scheduler is running.
func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}

// Jobs returns all registered jobs for inspection.
func (m *SchedulerManager) Jobs() []gocron.Job {
	return m.scheduler.Jobs()
}
