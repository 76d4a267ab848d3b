package payroll

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-portal-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-portal-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-portal-go/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-portal-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-portal-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-portal-go/internal/repository/memory"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func newFixture(t *testing.T) (payroll.PayrollService, *metrics.Metrics) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	addEmployee := func(id, name string, salary int64, status employee.Status) {
		_, err := store.Employees().Create(ctx, employee.Employee{
			ID:            id,
			Email:         id + "@example.com",
			Name:          name,
			Department:    employee.DepartmentFinance,
			Status:        status,
			MonthlySalary: decimal.NewFromInt(salary),
			CreatedAt:     day(1),
		}, day(1))
		require.NoError(t, err)
	}
	addEmployee("EMP-A", "Nair, Priya", 20000, employee.StatusActive)
	addEmployee("EMP-B", "Inactive Person", 50000, employee.StatusInactive)
	addEmployee("EMP-C", "Zero Show", 1000, employee.StatusActive)

	addRecord := func(id string, d int, status attendance.Status) {
		store.PutRecord(attendance.Record{
			EmployeeID: id, Date: day(d), Status: status, IsLate: status == attendance.StatusLate,
		})
	}
	addRecord("EMP-A", 1, attendance.StatusPresent)
	addRecord("EMP-A", 3, attendance.StatusLate)

	_, err := store.Holidays().Create(ctx, holiday.Holiday{Date: day(2), Name: "Founders Day", Type: holiday.TypeCompany})
	require.NoError(t, err)

	_, err = store.LeaveRequests().Create(ctx, leave.LeaveRequest{
		ID: "0d9e2f4a-5b6c-4d7e-8f90-a1b2c3d4e5f6", EmployeeID: "EMP-A", LeaveType: "sick",
		StartDate: day(5), EndDate: day(5), TotalDays: 1, Status: leave.StatusApproved,
	})
	require.NoError(t, err)

	policy := payroll.Policy{CycleDay: 23, LatePenalty: decimal.NewFromInt(200), MaxPeriodDays: 62}
	clk := &clock.Fixed{T: time.Date(2024, time.January, 31, 12, 0, 0, 0, time.UTC)}
	m := metrics.New()

	return NewPayrollService(store.Employees(), store.Attendance(), store.LeaveRequests(), store.Holidays(), policy, clk, m), m
}

func TestPayrollService_CalculatePayroll(t *testing.T) {
	ctx := context.Background()
	svc, m := newFixture(t)

	resp, err := svc.CalculatePayroll(ctx, payroll.PayrollRequest{StartDate: "2024-01-01", EndDate: "2024-01-07"})
	require.NoError(t, err)

	assert.Equal(t, payroll.PeriodResponse{StartDate: "2024-01-01", EndDate: "2024-01-07"}, resp.PayrollPeriod)
	assert.Equal(t, 4, resp.TotalWorkingDays)
	assert.Equal(t, "200", resp.FixedLatePenalty.String())
	require.Len(t, resp.PayrollData, 2, "inactive employees are excluded")

	a := resp.PayrollData[0]
	assert.Equal(t, "EMP-A", a.EmployeeID)
	assert.Equal(t, 1, a.FullDays)
	assert.Equal(t, 1, a.LateDays)
	assert.Equal(t, 1, a.Absents)
	assert.Equal(t, 1, a.LeaveDays)
	assert.Equal(t, "5000", a.DailyRate.String())
	assert.Equal(t, "5200", a.LOPAmount.String())
	assert.Equal(t, "14800", a.FinalPay.String())

	c := resp.PayrollData[1]
	assert.Equal(t, 4, c.Absents)
	assert.True(t, c.FinalPay.IsZero())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PayrollRuns.WithLabelValues("json")))

	_, err = svc.CalculatePayroll(ctx, payroll.PayrollRequest{StartDate: "2024-01-07", EndDate: "2024-01-01"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestPayrollService_DefaultPeriod(t *testing.T) {
	svc, _ := newFixture(t)

	resp, err := svc.CalculatePayroll(context.Background(), payroll.PayrollRequest{})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-23", resp.PayrollPeriod.StartDate)
	assert.Equal(t, "2024-02-22", resp.PayrollPeriod.EndDate)
}

func TestPayrollService_ExportCSV(t *testing.T) {
	svc, m := newFixture(t)

	file, err := svc.ExportPayroll(context.Background(), payroll.PayrollRequest{StartDate: "2024-01-01", EndDate: "2024-01-07"})
	require.NoError(t, err)
	assert.Equal(t, "payroll_2024-01-01_to_2024-01-07.csv", file.Filename)
	assert.Contains(t, file.ContentType, "text/csv")
	assert.Contains(t, string(file.Content), `"Nair, Priya"`)

	rows, err := csv.NewReader(bytes.NewReader(file.Content)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{
		"Employee Name", "Email", "Department", "Monthly Salary",
		"Full Days", "Late Days", "Absents", "Leave Days",
		"LOP Amount", "Final Pay",
	}, rows[0])
	assert.Equal(t, []string{
		"Nair, Priya", "EMP-A@example.com", "Finance", "20000.00",
		"1", "1", "1", "1", "5200.00", "14800.00",
	}, rows[1])

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PayrollRuns.WithLabelValues("csv")))
}

func TestPayrollService_ExportXLSX(t *testing.T) {
	svc, _ := newFixture(t)

	file, err := svc.ExportPayroll(context.Background(), payroll.PayrollRequest{
		StartDate: "2024-01-01", EndDate: "2024-01-07", Format: "XLSX",
	})
	require.NoError(t, err)
	assert.Equal(t, "payroll_2024-01-01_to_2024-01-07.xlsx", file.Filename)

	f, err := excelize.OpenReader(bytes.NewReader(file.Content))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Payroll"}, f.GetSheetList())
	rows, err := f.GetRows("Payroll")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Employee Name", rows[0][0])
	assert.Equal(t, "Nair, Priya", rows[1][0])

	width, err := f.GetColWidth("Payroll", "B")
	require.NoError(t, err)
	assert.Equal(t, 24.0, width)
	width, err = f.GetColWidth("Payroll", "J")
	require.NoError(t, err)
	assert.Equal(t, 14.0, width)
}

func TestPayrollService_ExportUnsupportedFormat(t *testing.T) {
	svc, _ := newFixture(t)

	_, err := svc.ExportPayroll(context.Background(), payroll.PayrollRequest{Format: "pdf"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestPayrollService_CountsOnlyEmployedAndSettledDays(t *testing.T) {
	ctx := context.Background()
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	store := memory.NewStore()
	hire := func(id string, joined time.Time) {
		_, err := store.Employees().Create(ctx, employee.Employee{
			ID: id, Email: id + "@example.com", Name: id, Department: employee.DepartmentSales,
			Position: "Rep", Status: employee.StatusActive, MonthlySalary: decimal.NewFromInt(22000),
			CreatedAt: joined,
		}, joined)
		require.NoError(t, err)
	}
	hire("EMP-OLD", time.Date(2023, time.June, 1, 0, 0, 0, 0, loc))
	hire("EMP-NEW", time.Date(2024, time.January, 18, 14, 0, 0, 0, loc))

	policy := payroll.Policy{
		CycleDay:      23,
		LatePenalty:   decimal.NewFromInt(200),
		MaxPeriodDays: 62,
		Workday: attendance.Policy{
			Location:      loc,
			WorkStart:     9 * time.Hour,
			WorkEnd:       18 * time.Hour,
			LateThreshold: 15 * time.Minute,
			WeekStart:     time.Monday,
		},
	}
	// Monday 2024-01-22, before the working day starts.
	clk := &clock.Fixed{T: time.Date(2024, time.January, 22, 7, 0, 0, 0, loc)}
	svc := NewPayrollService(store.Employees(), store.Attendance(), store.LeaveRequests(), store.Holidays(), policy, clk, metrics.New())
	req := payroll.PayrollRequest{StartDate: "2024-01-15", EndDate: "2024-01-22"}

	absents := func() map[string]int {
		resp, err := svc.CalculatePayroll(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, 6, resp.TotalWorkingDays)
		out := map[string]int{}
		for _, row := range resp.PayrollData {
			out[row.EmployeeID] = row.Absents
		}
		return out
	}

	// Monday is still open; the new hire is not charged for the days before the 18th.
	assert.Equal(t, map[string]int{"EMP-OLD": 5, "EMP-NEW": 2}, absents())

	clk.T = time.Date(2024, time.January, 22, 9, 30, 0, 0, loc)
	assert.Equal(t, map[string]int{"EMP-OLD": 6, "EMP-NEW": 3}, absents())

	in := time.Date(2024, time.January, 22, 8, 40, 0, 0, loc)
	store.PutRecord(attendance.Record{
		EmployeeID: "EMP-NEW", Date: time.Date(2024, time.January, 22, 0, 0, 0, 0, time.UTC),
		CheckIn: &in, Status: attendance.StatusPresent,
	})
	clk.T = time.Date(2024, time.January, 22, 8, 45, 0, 0, loc)
	resp, err := svc.CalculatePayroll(ctx, req)
	require.NoError(t, err)
	for _, row := range resp.PayrollData {
		if row.EmployeeID == "EMP-NEW" {
			assert.Equal(t, 1, row.FullDays, "an early check-in counts before the cutoff")
			assert.Equal(t, 2, row.Absents)
		}
	}
}
