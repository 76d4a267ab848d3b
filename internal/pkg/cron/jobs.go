package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-portal-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-portal-go/internal/domain/leave"
)

const (
	JobDailyAttendanceReset      = "daily_attendance_reset"
	JobLeaveBalanceRecalculation = "leave_balance_recalculation"
)

// PortalJobs wraps the bulk service operations that run on a timer.
type PortalJobs struct {
	attendanceService attendance.AttendanceService
	leaveService      leave.LeaveService
}

func NewPortalJobs(attendanceService attendance.AttendanceService, leaveService leave.LeaveService) *PortalJobs {
	return &PortalJobs{
		attendanceService: attendanceService,
		leaveService:      leaveService,
	}
}

func (j *PortalJobs) RegisterJobs(scheduler *Scheduler, resetInterval, recalcInterval time.Duration) {
	scheduler.AddJob(JobDailyAttendanceReset, resetInterval, j.DailyAttendanceReset)
	scheduler.AddJob(JobLeaveBalanceRecalculation, recalcInterval, j.LeaveBalanceRecalculation)
}

// DailyAttendanceReset commits yesterday's state and clears today for every
// employee still on an earlier day. Safe to run as often as the interval allows.
func (j *PortalJobs) DailyAttendanceReset(ctx context.Context) error {
	summary, err := j.attendanceService.DailyReset(ctx, false)
	if err != nil {
		return fmt.Errorf("daily reset: %w", err)
	}
	if summary.Updated > 0 || summary.Failed > 0 {
		slog.Info("Cron: Daily attendance reset",
			"date", summary.Date,
			"updated", summary.Updated,
			"skipped", summary.Skipped,
			"failed", summary.Failed)
	}
	if summary.Failed > 0 {
		return fmt.Errorf("daily reset: %d of %d employees failed", summary.Failed, summary.Processed)
	}
	return nil
}

func (j *PortalJobs) LeaveBalanceRecalculation(ctx context.Context) error {
	summary, err := j.leaveService.RecalculateAll(ctx)
	if err != nil {
		return fmt.Errorf("leave recalculation: %w", err)
	}
	slog.Info("Cron: Leave balances recalculated",
		"processed", summary.Processed,
		"updated", summary.Updated,
		"failed", summary.Failed)
	if summary.Failed > 0 {
		return fmt.Errorf("leave recalculation: %d buckets failed", summary.Failed)
	}
	return nil
}
