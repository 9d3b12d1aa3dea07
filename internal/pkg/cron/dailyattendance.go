package cron

import (
	"context"
	"time"

	"github.com/attendly/attendance-backend-go/internal/config"
	"github.com/attendly/attendance-backend-go/internal/domain/dailyattendance"
	"github.com/attendly/attendance-backend-go/internal/pkg/timeutil"
)

// DailyAttendanceJobs wires the periodic finalization of daily attendance
// rollups.
type DailyAttendanceJobs struct {
	dailyService dailyattendance.DailyAttendanceService
	confirmLag   time.Duration
	loc          *time.Location
}

func NewDailyAttendanceJobs(dailyService dailyattendance.DailyAttendanceService, cfg config.AggregationConfig, loc *time.Location) *DailyAttendanceJobs {
	return &DailyAttendanceJobs{
		dailyService: dailyService,
		confirmLag:   cfg.ConfirmLag,
		loc:          loc,
	}
}

// RegisterJobs adds the finalization job to the scheduler.
func (j *DailyAttendanceJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("daily_attendance_finalization", interval, j.finalize)
}

// finalize confirms every rollup older than the confirmation lag. The lag
// must exceed the longest overnight shift plus its overtime allowance so no
// in-flight attendance can still mutate a day being confirmed.
func (j *DailyAttendanceJobs) finalize(ctx context.Context) error {
	cutoff := timeutil.DateInt(time.Now().In(j.loc).Add(-j.confirmLag))
	return j.dailyService.FinalizeOutstanding(ctx, cutoff)
}
