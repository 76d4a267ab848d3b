package leave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-portal-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-portal-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-portal-go/internal/repository/memory"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store   *memory.Store
	metrics *metrics.Metrics
	service leave.LeaveService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	for _, lt := range leave.DefaultLeaveTypes() {
		_, err := store.LeaveTypes().Create(ctx, lt)
		require.NoError(t, err)
	}
	_, err := store.LeaveTypes().Create(ctx, leave.LeaveType{Code: "sabbatical", Name: "Sabbatical", DefaultTotal: 30, IsActive: false})
	require.NoError(t, err)

	m := metrics.New()
	clk := &clock.Fixed{T: time.Date(2024, time.January, 8, 10, 0, 0, 0, time.UTC)}

	return &fixture{
		store:   store,
		metrics: m,
		service: NewLeaveService(store, store.LeaveTypes(), store.Balances(), store.LeaveRequests(), store.Employees(), clk, m),
	}
}

func (f *fixture) addEmployee(t *testing.T, id string, annualRemaining int) {
	t.Helper()
	ctx := context.Background()

	_, err := f.store.Employees().Create(ctx, employee.Employee{
		ID:            id,
		Email:         id + "@example.com",
		Name:          "Employee " + id,
		Department:    employee.DepartmentHR,
		Status:        employee.StatusActive,
		MonthlySalary: decimal.NewFromInt(20000),
	}, time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.NoError(t, f.store.Balances().Upsert(ctx, leave.Balance{
		EmployeeID: id, LeaveType: "annual",
		Total: 20, Used: 20 - annualRemaining, Remaining: annualRemaining,
	}))
}

func (f *fixture) submit(t *testing.T, employeeID, leaveType, start, end string) leave.LeaveRequestResponse {
	t.Helper()
	resp, err := f.service.CreateLeaveRequest(context.Background(), leave.CreateLeaveRequestRequest{
		EmployeeID: employeeID,
		LeaveType:  leaveType,
		StartDate:  start,
		EndDate:    end,
		Reason:     "family trip",
	})
	require.NoError(t, err)
	return resp
}

func decide(status string) leave.DecideLeaveRequestRequest {
	admin := "Asha"
	return leave.DecideLeaveRequestRequest{Status: status, AdminName: &admin}
}

func TestLeaveService_CreateLeaveRequest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addEmployee(t, "EMP-1", 20)

	resp := f.submit(t, "EMP-1", "Annual", "2024-01-10", "2024-01-12")
	assert.Equal(t, 3, resp.TotalDays)
	assert.Equal(t, leave.StatusPending, resp.Status)
	assert.Equal(t, "annual", resp.LeaveType)
	assert.Equal(t, "Employee EMP-1", resp.EmployeeName)
	assert.NotEmpty(t, resp.ID)

	cases := []struct {
		name string
		req  leave.CreateLeaveRequestRequest
		want error
	}{
		{
			name: "overlapping pending request",
			req:  leave.CreateLeaveRequestRequest{EmployeeID: "EMP-1", LeaveType: "sick", StartDate: "2024-01-12", EndDate: "2024-01-15", Reason: "flu"},
			want: leave.ErrOverlappingLeave,
		},
		{
			name: "unknown employee",
			req:  leave.CreateLeaveRequestRequest{EmployeeID: "EMP-404", LeaveType: "sick", StartDate: "2024-02-01", EndDate: "2024-02-01", Reason: "flu"},
			want: employee.ErrEmployeeNotFound,
		},
		{
			name: "unknown leave type",
			req:  leave.CreateLeaveRequestRequest{EmployeeID: "EMP-1", LeaveType: "vacation", StartDate: "2024-02-01", EndDate: "2024-02-01", Reason: "rest"},
			want: leave.ErrLeaveTypeNotFound,
		},
		{
			name: "inactive leave type",
			req:  leave.CreateLeaveRequestRequest{EmployeeID: "EMP-1", LeaveType: "sabbatical", StartDate: "2024-02-01", EndDate: "2024-02-01", Reason: "study"},
			want: leave.ErrLeaveTypeInactive,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.CreateLeaveRequest(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	t.Run("end before start", func(t *testing.T) {
		_, err := f.service.CreateLeaveRequest(ctx, leave.CreateLeaveRequestRequest{
			EmployeeID: "EMP-1", LeaveType: "sick", StartDate: "2024-02-05", EndDate: "2024-02-01", Reason: "flu",
		})
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs.ToMap(), "end_date")
	})
}

func TestLeaveService_DecideLeaveRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("approve deducts the balance", func(t *testing.T) {
		f := newFixture(t)
		f.addEmployee(t, "EMP-1", 20)
		req := f.submit(t, "EMP-1", "annual", "2024-01-10", "2024-01-12")

		d := decide("Approved")
		d.ID = req.ID
		resp, err := f.service.DecideLeaveRequest(ctx, d)
		require.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, resp.Status)
		require.NotNil(t, resp.DecidedAt)

		b, ok := f.store.Balance("EMP-1", "annual")
		require.True(t, ok)
		assert.Equal(t, 3, b.Used)
		assert.Equal(t, 17, b.Remaining)
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.LeaveDecisions.WithLabelValues("Approved")))
	})

	t.Run("reject leaves the balance alone", func(t *testing.T) {
		f := newFixture(t)
		f.addEmployee(t, "EMP-1", 20)
		req := f.submit(t, "EMP-1", "annual", "2024-01-10", "2024-01-12")

		d := decide("Rejected")
		d.ID = req.ID
		resp, err := f.service.DecideLeaveRequest(ctx, d)
		require.NoError(t, err)
		assert.Equal(t, leave.StatusRejected, resp.Status)

		b, _ := f.store.Balance("EMP-1", "annual")
		assert.Equal(t, 20, b.Remaining)
	})

	t.Run("cannot be decided twice", func(t *testing.T) {
		f := newFixture(t)
		f.addEmployee(t, "EMP-1", 20)
		req := f.submit(t, "EMP-1", "annual", "2024-01-10", "2024-01-12")

		d := decide("Approved")
		d.ID = req.ID
		_, err := f.service.DecideLeaveRequest(ctx, d)
		require.NoError(t, err)

		d.Status = "Rejected"
		_, err = f.service.DecideLeaveRequest(ctx, d)
		assert.ErrorIs(t, err, leave.ErrLeaveRequestAlreadyDecided)

		b, _ := f.store.Balance("EMP-1", "annual")
		assert.Equal(t, 17, b.Remaining)
	})

	t.Run("insufficient balance rolls the decision back", func(t *testing.T) {
		f := newFixture(t)
		f.addEmployee(t, "EMP-1", 2)
		req := f.submit(t, "EMP-1", "annual", "2024-01-10", "2024-01-12")

		d := decide("Approved")
		d.ID = req.ID
		_, err := f.service.DecideLeaveRequest(ctx, d)
		assert.ErrorIs(t, err, leave.ErrInsufficientBalance)

		got, err := f.service.GetLeaveRequest(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, leave.StatusPending, got.Status)

		b, _ := f.store.Balance("EMP-1", "annual")
		assert.Equal(t, 2, b.Remaining)
	})

	t.Run("missing bucket is created from the type default", func(t *testing.T) {
		f := newFixture(t)
		f.addEmployee(t, "EMP-1", 20)
		req := f.submit(t, "EMP-1", "personal", "2024-01-10", "2024-01-11")

		d := decide("Approved")
		d.ID = req.ID
		_, err := f.service.DecideLeaveRequest(ctx, d)
		require.NoError(t, err)

		b, ok := f.store.Balance("EMP-1", "personal")
		require.True(t, ok)
		assert.Equal(t, leave.Balance{EmployeeID: "EMP-1", LeaveType: "personal", Total: 5, Used: 2, Remaining: 3}, b)
	})

	t.Run("unknown or malformed id", func(t *testing.T) {
		f := newFixture(t)

		d := decide("Approved")
		d.ID = "not-a-uuid"
		_, err := f.service.DecideLeaveRequest(ctx, d)
		assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)

		d.ID = "8b0f3c52-1111-4c4c-9a9a-0123456789ab"
		_, err = f.service.DecideLeaveRequest(ctx, d)
		assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
	})

	t.Run("invalid status", func(t *testing.T) {
		f := newFixture(t)
		d := decide("Pending")
		d.ID = "8b0f3c52-1111-4c4c-9a9a-0123456789ab"
		_, err := f.service.DecideLeaveRequest(ctx, d)
		var verrs validator.ValidationErrors
		assert.ErrorAs(t, err, &verrs)
	})

	t.Run("concurrent approvals never overdraw", func(t *testing.T) {
		f := newFixture(t)
		f.addEmployee(t, "EMP-1", 5)
		first := f.submit(t, "EMP-1", "annual", "2024-01-10", "2024-01-12")
		second := f.submit(t, "EMP-1", "annual", "2024-02-10", "2024-02-12")

		var (
			wg   sync.WaitGroup
			errs = make([]error, 2)
		)
		for i, id := range []string{first.ID, second.ID} {
			wg.Add(1)
			go func(i int, id string) {
				defer wg.Done()
				d := decide("Approved")
				d.ID = id
				_, errs[i] = f.service.DecideLeaveRequest(ctx, d)
			}(i, id)
		}
		wg.Wait()

		failures := 0
		for _, err := range errs {
			if err != nil {
				assert.ErrorIs(t, err, leave.ErrInsufficientBalance)
				failures++
			}
		}
		assert.Equal(t, 1, failures)

		b, _ := f.store.Balance("EMP-1", "annual")
		assert.Equal(t, 2, b.Remaining)
	})
}

func TestLeaveService_Recalculate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addEmployee(t, "EMP-1", 20)

	req := f.submit(t, "EMP-1", "annual", "2024-01-10", "2024-01-12")
	d := decide("Approved")
	d.ID = req.ID
	_, err := f.service.DecideLeaveRequest(ctx, d)
	require.NoError(t, err)

	// Drift the stored bucket away from the approved history.
	require.NoError(t, f.store.Balances().Upsert(ctx, leave.Balance{
		EmployeeID: "EMP-1", LeaveType: "annual", Total: 20, Used: 0, Remaining: 20,
	}))

	summary, err := f.service.Recalculate(ctx, "EMP-1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Updated)

	b, _ := f.store.Balance("EMP-1", "annual")
	assert.Equal(t, 3, b.Used)
	assert.Equal(t, 17, b.Remaining)

	again, err := f.service.Recalculate(ctx, "EMP-1")
	require.NoError(t, err)
	assert.Equal(t, 0, again.Updated)
	assert.Equal(t, 1, again.Skipped)
	b2, _ := f.store.Balance("EMP-1", "annual")
	assert.Equal(t, b, b2)

	_, err = f.service.Recalculate(ctx, "EMP-404")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestLeaveService_RecalculateAll(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addEmployee(t, "EMP-1", 20)
	f.addEmployee(t, "EMP-2", 20)

	req := f.submit(t, "EMP-2", "annual", "2024-01-10", "2024-01-12")
	d := decide("Approved")
	d.ID = req.ID
	_, err := f.service.DecideLeaveRequest(ctx, d)
	require.NoError(t, err)

	// A bucket whose total was cut below approved usage is reported, not clamped.
	require.NoError(t, f.store.Balances().Upsert(ctx, leave.Balance{
		EmployeeID: "EMP-2", LeaveType: "annual", Total: 2, Used: 0, Remaining: 2,
	}))

	summary, err := f.service.RecalculateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "EMP-2", summary.Errors[0].EmployeeID)
	assert.Equal(t, "annual", summary.Errors[0].LeaveType)

	b, _ := f.store.Balance("EMP-2", "annual")
	assert.Equal(t, 2, b.Remaining)
}

func TestLeaveService_RecalculateAll_EmployeeFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addEmployee(t, "EMP-1", 20)
	f.addEmployee(t, "EMP-2", 20)

	f.store.FailOn("balance.ListByEmployee", errors.New("connection reset"))
	defer f.store.FailOn("balance.ListByEmployee", nil)

	summary, err := f.service.RecalculateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 2, summary.Failed)
	assert.LessOrEqual(t, summary.Failed, summary.Processed)
	require.Len(t, summary.Errors, 2)
	assert.Empty(t, summary.Errors[0].LeaveType)
	assert.Equal(t, "connection reset", summary.Errors[0].Error)
}

func TestLeaveService_LeaveTypes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.service.CreateLeaveType(ctx, leave.CreateLeaveTypeRequest{Code: "wfh", Name: "Work From Home", DefaultTotal: 12})
	require.NoError(t, err)
	assert.True(t, created.IsActive)

	_, err = f.service.CreateLeaveType(ctx, leave.CreateLeaveTypeRequest{Code: "wfh", Name: "Again", DefaultTotal: 1})
	assert.ErrorIs(t, err, leave.ErrLeaveTypeExists)

	_, err = f.service.CreateLeaveType(ctx, leave.CreateLeaveTypeRequest{Code: "Bad Code", Name: "x"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	types, err := f.service.ListLeaveTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, types, 5)
}

func TestLeaveService_ListLeaveRequests(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addEmployee(t, "EMP-1", 20)
	f.addEmployee(t, "EMP-2", 20)
	f.submit(t, "EMP-1", "annual", "2024-01-10", "2024-01-12")
	f.submit(t, "EMP-2", "sick", "2024-01-10", "2024-01-10")

	all, err := f.service.ListLeaveRequests(ctx, leave.LeaveRequestFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := f.service.ListLeaveRequests(ctx, leave.LeaveRequestFilter{EmployeeID: "EMP-2", Status: "Pending"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "sick", mine[0].LeaveType)

	_, err = f.service.ListLeaveRequests(ctx, leave.LeaveRequestFilter{Status: "Done"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}
