package payroll

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-portal-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-portal-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-portal-go/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-portal-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-portal-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

type PayrollServiceImpl struct {
	employeeRepo   employee.EmployeeRepository
	attendanceRepo attendance.AttendanceRepository
	requestRepo    leave.LeaveRequestRepository
	holidayRepo    holiday.HolidayRepository
	policy         payroll.Policy
	clock          clock.Clock
	metrics        *metrics.Metrics
}

func NewPayrollService(
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	requestRepo leave.LeaveRequestRepository,
	holidayRepo holiday.HolidayRepository,
	policy payroll.Policy,
	clk clock.Clock,
	m *metrics.Metrics,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		requestRepo:    requestRepo,
		holidayRepo:    holidayRepo,
		policy:         policy,
		clock:          clk,
		metrics:        m,
	}
}

// CalculatePayroll implements payroll.PayrollService.
func (s *PayrollServiceImpl) CalculatePayroll(ctx context.Context, req payroll.PayrollRequest) (payroll.PayrollResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollResponse{}, err
	}

	resp, err := s.calculate(ctx, req)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}

	s.metrics.PayrollRuns.WithLabelValues("json").Inc()
	return resp, nil
}

// ExportPayroll implements payroll.PayrollService.
func (s *PayrollServiceImpl) ExportPayroll(ctx context.Context, req payroll.PayrollRequest) (payroll.ExportFile, error) {
	if err := req.Validate(); err != nil {
		return payroll.ExportFile{}, err
	}

	resp, err := s.calculate(ctx, req)
	if err != nil {
		return payroll.ExportFile{}, err
	}

	var file payroll.ExportFile
	switch payroll.Format(req.Format) {
	case payroll.FormatCSV:
		file, err = renderCSV(resp)
	case payroll.FormatXLSX:
		file, err = renderXLSX(resp)
	default:
		return payroll.ExportFile{}, payroll.ErrUnsupportedFormat
	}
	if err != nil {
		return payroll.ExportFile{}, fmt.Errorf("failed to render payroll export: %w", err)
	}

	s.metrics.PayrollRuns.WithLabelValues(req.Format).Inc()
	slog.Info("payroll exported",
		"format", req.Format,
		"start_date", resp.PayrollPeriod.StartDate,
		"end_date", resp.PayrollPeriod.EndDate,
		"rows", len(resp.PayrollData),
	)
	return file, nil
}

func (s *PayrollServiceImpl) calculate(ctx context.Context, req payroll.PayrollRequest) (payroll.PayrollResponse, error) {
	now := s.clock.Now()
	period, err := req.Resolve(now, s.policy)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}

	var (
		employees []employee.Employee
		records   []attendance.Record
		approved  []leave.LeaveRequest
		holidays  []holiday.Holiday
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		employees, err = s.employeeRepo.ListActive(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = s.attendanceRepo.ListRecordsInRange(gCtx, period.Start, period.End)
		return err
	})
	g.Go(func() error {
		var err error
		approved, err = s.requestRepo.ListApprovedBetween(gCtx, "", period.Start, period.End)
		return err
	})
	g.Go(func() error {
		var err error
		holidays, err = s.holidayRepo.ListBetween(gCtx, period.Start, period.End)
		return err
	})
	if err := g.Wait(); err != nil {
		return payroll.PayrollResponse{}, fmt.Errorf("failed to load payroll inputs: %w", err)
	}

	recordsByEmployee := make(map[string][]attendance.Record)
	for _, r := range records {
		recordsByEmployee[r.EmployeeID] = append(recordsByEmployee[r.EmployeeID], r)
	}
	leaveByEmployee := make(map[string]attendance.LeaveSet)
	for _, r := range approved {
		set, ok := leaveByEmployee[r.EmployeeID]
		if !ok {
			set = attendance.LeaveSet{}
			leaveByEmployee[r.EmployeeID] = set
		}
		set.AddRange(r.StartDate, r.EndDate)
	}

	cal := attendance.NewCalendar(holiday.NamesByDate(holidays))
	totalWorkingDays := cal.WorkingDays(period.Start, period.End)
	today := attendance.DateKey(s.policy.Workday.Day(now))

	rows := make([]payroll.RowResponse, 0, len(employees))
	for _, e := range employees {
		recs := recordsByEmployee[e.ID]
		asOf := s.policy.Workday.SettledThrough(now, hasRecordOn(recs, today))
		counts := payroll.Tally(cal, recs, leaveByEmployee[e.ID], period.JoinedOn(e.CreatedAt), asOf)
		amounts := payroll.Compute(e.MonthlySalary, totalWorkingDays, counts, s.policy.LatePenalty)
		rows = append(rows, payroll.ToRowResponse(payroll.Row{
			EmployeeID:    e.ID,
			EmployeeName:  e.Name,
			Email:         e.Email,
			Department:    string(e.Department),
			MonthlySalary: e.MonthlySalary,
			DayCounts:     counts,
			Amounts:       amounts,
		}))
	}

	return payroll.PayrollResponse{
		PayrollPeriod: payroll.PeriodResponse{
			StartDate: attendance.DateKey(period.Start),
			EndDate:   attendance.DateKey(period.End),
		},
		TotalWorkingDays: totalWorkingDays,
		FixedLatePenalty: s.policy.LatePenalty,
		PayrollData:      rows,
	}, nil
}

func hasRecordOn(records []attendance.Record, day string) bool {
	for _, r := range records {
		if attendance.DateKey(r.Date) == day {
			return true
		}
	}
	return false
}
