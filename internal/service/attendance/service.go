package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-portal-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-portal-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-portal-go/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-portal-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/validator"
	"golang.org/x/sync/errgroup"
)

const recentAttendanceLimit = 10

type AttendanceServiceImpl struct {
	tx             database.Transactor
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	balanceRepo    leave.BalanceRepository
	requestRepo    leave.LeaveRequestRepository
	holidayRepo    holiday.HolidayRepository
	policy         attendance.Policy
	clock          clock.Clock
	metrics        *metrics.Metrics
}

func NewAttendanceService(
	tx database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	balanceRepo leave.BalanceRepository,
	requestRepo leave.LeaveRequestRepository,
	holidayRepo holiday.HolidayRepository,
	policy attendance.Policy,
	clk clock.Clock,
	m *metrics.Metrics,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		tx:             tx,
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		balanceRepo:    balanceRepo,
		requestRepo:    requestRepo,
		holidayRepo:    holidayRepo,
		policy:         policy,
		clock:          clk,
		metrics:        m,
	}
}

func requireEmployeeID(id string) error {
	if validator.IsEmpty(id) {
		return validator.ValidationErrors{{Field: "employee_id", Message: "employee_id is required"}}
	}
	return nil
}

// now returns the server time in the policy timezone and its calendar day.
func (s *AttendanceServiceImpl) now() (time.Time, time.Time) {
	now := s.clock.Now().In(s.policy.Location)
	return now, s.policy.Day(now)
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, employeeID string) (attendance.CheckInResponse, error) {
	if err := requireEmployeeID(employeeID); err != nil {
		return attendance.CheckInResponse{}, err
	}

	now, day := s.now()
	status, isLate := s.policy.CheckInStatus(now)

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// An unreset previous day goes to history before today is overwritten.
		if err := s.attendanceRepo.CommitElapsedDay(ctx, employeeID, day); err != nil {
			return err
		}

		applied, err := s.attendanceRepo.CheckIn(ctx, employeeID, day, now, status, isLate)
		if err != nil {
			return err
		}
		if !applied {
			if _, err := s.attendanceRepo.GetToday(ctx, employeeID); err != nil {
				return err
			}
			return attendance.ErrAlreadyCheckedIn
		}

		recorded, err := s.attendanceRepo.UpsertRecord(ctx, attendance.Record{
			EmployeeID: employeeID,
			Date:       day,
			CheckIn:    &now,
			Status:     status,
			IsLate:     isLate,
		})
		if err != nil {
			return err
		}
		if !recorded {
			// Today was force reset after check-out; the closed day stands.
			return attendance.ErrAlreadyCheckedIn
		}
		return nil
	})
	if err != nil {
		return attendance.CheckInResponse{}, err
	}

	s.metrics.CheckIns.WithLabelValues(string(status)).Inc()
	slog.Info("employee checked in", "employee_id", employeeID, "status", status, "is_late", isLate)

	return attendance.CheckInResponse{
		EmployeeID:  employeeID,
		CheckInTime: now,
		Status:      status,
		IsLate:      isLate,
	}, nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, employeeID string) (attendance.CheckOutResponse, error) {
	if err := requireEmployeeID(employeeID); err != nil {
		return attendance.CheckOutResponse{}, err
	}

	now, day := s.now()
	var hours float64

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		today, err := s.attendanceRepo.GetToday(ctx, employeeID)
		if err != nil {
			return err
		}
		if attendance.DateKey(today.Date) != attendance.DateKey(day) || today.CheckIn == nil {
			return attendance.ErrNotCheckedIn
		}
		if today.CheckOut != nil {
			return attendance.ErrAlreadyCheckedOut
		}

		hours = attendance.HoursBetween(*today.CheckIn, now)
		applied, err := s.attendanceRepo.CheckOut(ctx, employeeID, day, now, hours)
		if err != nil {
			return err
		}
		if !applied {
			// A concurrent check-out won the guard.
			return attendance.ErrAlreadyCheckedOut
		}

		recorded, err := s.attendanceRepo.UpsertRecord(ctx, attendance.Record{
			EmployeeID: employeeID,
			Date:       day,
			CheckIn:    today.CheckIn,
			CheckOut:   &now,
			Status:     today.Status,
			IsLate:     today.IsLate,
			Hours:      hours,
		})
		if err != nil {
			return err
		}
		if !recorded {
			return attendance.ErrAlreadyCheckedOut
		}
		return nil
	})
	if err != nil {
		return attendance.CheckOutResponse{}, err
	}

	s.metrics.CheckOuts.Inc()
	slog.Info("employee checked out", "employee_id", employeeID, "hours", hours)

	return attendance.CheckOutResponse{
		EmployeeID:   employeeID,
		CheckOutTime: now,
		HoursWorked:  hours,
	}, nil
}

// DailyReset implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) DailyReset(ctx context.Context, force bool) (attendance.ResetSummary, error) {
	_, day := s.now()
	summary := attendance.ResetSummary{
		Date:   attendance.DateKey(day),
		Forced: force,
		Errors: []attendance.ItemError{},
	}

	ids, err := s.employeeRepo.ListIDs(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to list employees for reset: %w", err)
	}

	slog.Info("daily attendance reset started", "date", summary.Date, "force", force, "employees", len(ids))

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Processed++

		var updated bool
		err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
			if err := s.attendanceRepo.CommitElapsedDay(ctx, id, day); err != nil {
				return err
			}
			var err error
			updated, err = s.attendanceRepo.ResetToday(ctx, id, day, force)
			return err
		})

		switch {
		case err != nil:
			summary.Failed++
			summary.Errors = append(summary.Errors, attendance.ItemError{EmployeeID: id, Error: err.Error()})
			s.metrics.DailyReset.WithLabelValues("failed").Inc()
			slog.Error("daily attendance reset failed", "employee_id", id, "error", err)
		case updated:
			summary.Updated++
			s.metrics.DailyReset.WithLabelValues("updated").Inc()
		default:
			summary.Skipped++
			s.metrics.DailyReset.WithLabelValues("skipped").Inc()
		}
	}

	slog.Info("daily attendance reset finished",
		"date", summary.Date,
		"processed", summary.Processed,
		"updated", summary.Updated,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	return summary, nil
}

// GetPortalData implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetPortalData(ctx context.Context, employeeID string) (attendance.PortalData, error) {
	if err := requireEmployeeID(employeeID); err != nil {
		return attendance.PortalData{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return attendance.PortalData{}, err
	}

	now, day := s.now()
	weekStart, weekEnd := s.policy.WeekRange(day)
	monthStart, monthEnd := s.policy.MonthRange(day.Year(), day.Month())
	from, to := earliest(weekStart, monthStart), latest(weekEnd, monthEnd)

	var (
		today    attendance.Today
		records  []attendance.Record
		recent   []attendance.Record
		balances []leave.Balance
		holidays []holiday.Holiday
		leaves   []leave.LeaveRequest
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		today, err = s.attendanceRepo.GetToday(gCtx, employeeID)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = s.attendanceRepo.ListRecords(gCtx, employeeID, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.attendanceRepo.RecentRecords(gCtx, employeeID, recentAttendanceLimit)
		return err
	})
	g.Go(func() error {
		var err error
		balances, err = s.balanceRepo.ListByEmployee(gCtx, employeeID)
		return err
	})
	g.Go(func() error {
		var err error
		holidays, err = s.holidayRepo.ListBetween(gCtx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		leaves, err = s.requestRepo.ListApprovedBetween(gCtx, employeeID, from, to)
		return err
	})

	if err := g.Wait(); err != nil {
		return attendance.PortalData{}, fmt.Errorf("failed to load portal data: %w", err)
	}

	// Until the daily reset runs, a stale today still describes an earlier day.
	if attendance.DateKey(today.Date) != attendance.DateKey(day) {
		today = attendance.Today{Date: day, Status: attendance.StatusAbsent}
	}

	cal := attendance.NewCalendar(holiday.NamesByDate(holidays))
	leaveSet := leaveSetOf(leaves)
	settled := s.policy.SettledThrough(now, today.CheckIn != nil)

	return attendance.PortalData{
		Employee: employee.ToResponse(emp),
		Today:    attendance.ToTodayResponse(today),
		ThisWeek: attendance.PeriodSummary{
			From:    attendance.DateKey(weekStart),
			To:      attendance.DateKey(weekEnd),
			Summary: cal.Summarize(records, leaveSet, weekStart, weekEnd, settled),
		},
		ThisMonth: attendance.PeriodSummary{
			From:    attendance.DateKey(monthStart),
			To:      attendance.DateKey(monthEnd),
			Summary: cal.Summarize(records, leaveSet, monthStart, monthEnd, settled),
		},
		RecentAttendance: attendance.ToRecordResponses(recent),
		LeaveBalance:     leave.ToBalanceMap(balances),
	}, nil
}

// GetAttendanceDetails implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetAttendanceDetails(ctx context.Context, req attendance.AttendanceDetailsRequest) (attendance.AttendanceDetailsResponse, error) {
	now, day := s.now()
	if req.Month == 0 && req.Year == 0 {
		req.Month, req.Year = int(day.Month()), day.Year()
	}

	if err := req.Validate(); err != nil {
		return attendance.AttendanceDetailsResponse{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		return attendance.AttendanceDetailsResponse{}, err
	}

	from, to := s.policy.MonthRange(req.Year, time.Month(req.Month))

	var (
		records  []attendance.Record
		holidays []holiday.Holiday
		leaves   []leave.LeaveRequest
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.attendanceRepo.ListRecords(gCtx, req.EmployeeID, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		holidays, err = s.holidayRepo.ListBetween(gCtx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		leaves, err = s.requestRepo.ListApprovedBetween(gCtx, req.EmployeeID, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return attendance.AttendanceDetailsResponse{}, fmt.Errorf("failed to load attendance details: %w", err)
	}

	cal := attendance.NewCalendar(holiday.NamesByDate(holidays))
	_, checkedIn := attendance.IndexRecords(records)[attendance.DateKey(day)]
	settled := s.policy.SettledThrough(now, checkedIn)
	days, stats := cal.BuildMonth(s.policy, req.Year, time.Month(req.Month), records, leaveSetOf(leaves), day, settled)

	return attendance.AttendanceDetailsResponse{
		Month:        req.Month,
		Year:         req.Year,
		CalendarData: days,
		MonthStats:   stats,
	}, nil
}

func leaveSetOf(requests []leave.LeaveRequest) attendance.LeaveSet {
	set := attendance.LeaveSet{}
	for _, r := range requests {
		if r.Status == leave.StatusApproved {
			set.AddRange(r.StartDate, r.EndDate)
		}
	}
	return set
}

func earliest(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func latest(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
