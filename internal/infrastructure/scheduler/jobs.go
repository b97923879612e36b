package scheduler

import (
	"context"
	"time"

	payoutUC "github.com/vistream-inc/vistream/internal/application/payout/usecases"
	revenueUC "github.com/vistream-inc/vistream/internal/application/revenue/usecases"
	"github.com/vistream-inc/vistream/internal/shared/biztime"
)

// CloseYesterdayJob runs the attribution close for the previous accounting
// day. The daily close job fires shortly after midnight, so "yesterday" is
// the day that just ended.
type CloseYesterdayJob struct {
	closeDay *revenueUC.CloseAccountingDayUseCase
}

func NewCloseYesterdayJob(closeDay *revenueUC.CloseAccountingDayUseCase) *CloseYesterdayJob {
	return &CloseYesterdayJob{closeDay: closeDay}
}

func (j *CloseYesterdayJob) Execute(ctx context.Context) (int, error) {
	yesterday := biztime.DateOf(biztime.NowUTC().AddDate(0, 0, -1))
	return j.closeDay.Execute(ctx, yesterday)
}

// SettlePreviousMonthJob settles every channel's payout for the month that
// just ended.
type SettlePreviousMonthJob struct {
	settle *payoutUC.SettleMonthlyPayoutsUseCase
}

func NewSettlePreviousMonthJob(settle *payoutUC.SettleMonthlyPayoutsUseCase) *SettlePreviousMonthJob {
	return &SettlePreviousMonthJob{settle: settle}
}

func (j *SettlePreviousMonthJob) Execute(ctx context.Context) (int, error) {
	return j.settle.Execute(ctx, time.Now().UTC())
}
