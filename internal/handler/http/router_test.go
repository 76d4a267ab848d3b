package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-portal-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-portal-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-portal-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-portal-go/internal/repository/memory"
	attendanceService "github.com/cmlabs-hris/hris-portal-go/internal/service/attendance"
	dashboardService "github.com/cmlabs-hris/hris-portal-go/internal/service/dashboard"
	employeeService "github.com/cmlabs-hris/hris-portal-go/internal/service/employee"
	holidayService "github.com/cmlabs-hris/hris-portal-go/internal/service/holiday"
	leaveService "github.com/cmlabs-hris/hris-portal-go/internal/service/leave"
	payrollService "github.com/cmlabs-hris/hris-portal-go/internal/service/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
	Meta *struct {
		TotalItems int `json:"total_items"`
	} `json:"meta"`
}

type testServer struct {
	router  http.Handler
	store   *memory.Store
	clock   *clock.Fixed
	metrics *metrics.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	// Wednesday
	clk := &clock.Fixed{T: time.Date(2024, time.January, 10, 9, 5, 0, 0, loc)}
	store := memory.NewStore()
	m := metrics.New()

	for _, lt := range leave.DefaultLeaveTypes() {
		_, err := store.LeaveTypes().Create(ctx, lt)
		require.NoError(t, err)
	}

	policy := attendance.Policy{
		Location:      loc,
		WorkStart:     9 * time.Hour,
		WorkEnd:       18 * time.Hour,
		LateThreshold: 15 * time.Minute,
		WeekStart:     time.Monday,
	}

	attSvc := attendanceService.NewAttendanceService(store, store.Attendance(), store.Employees(), store.Balances(), store.LeaveRequests(), store.Holidays(), policy, clk, m)
	leaveSvc := leaveService.NewLeaveService(store, store.LeaveTypes(), store.Balances(), store.LeaveRequests(), store.Employees(), clk, m)
	empSvc := employeeService.NewEmployeeService(store, store.Employees(), store.LeaveTypes(), store.Balances(), clk)
	paySvc := payrollService.NewPayrollService(store.Employees(), store.Attendance(), store.LeaveRequests(), store.Holidays(),
		payroll.Policy{CycleDay: 23, LatePenalty: decimal.NewFromInt(200), MaxPeriodDays: 62}, clk, m)

	router := NewRouter(RouterOptions{
		AppName:        "hris-portal-test",
		Version:        "test",
		Env:            "test",
		LogLevel:       slog.LevelError,
		AllowedOrigins: []string{"http://localhost:3000"},
		Metrics:        m.Handler(),
	}, Handlers{
		Attendance: NewAttendanceHandler(attSvc),
		Employee:   NewEmployeeHandler(empSvc),
		Leave:      NewLeaveHandler(leaveSvc),
		Holiday:    NewHolidayHandler(holidayService.NewHolidayService(store.Holidays())),
		Payroll:    NewPayrollHandler(paySvc),
		Admin:      NewAdminHandler(dashboardService.NewDashboardService(store.Dashboard(), clk), attSvc, leaveSvc),
	})

	return &testServer{router: router, store: store, clock: clk, metrics: m}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func (s *testServer) createEmployee(t *testing.T, email string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/employees", map[string]interface{}{
		"email":          email,
		"name":           "Asha Rao",
		"department":     "Engineering",
		"position":       "Engineer",
		"monthly_salary": "60000",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &created))
	require.NotEmpty(t, created.ID)
	return created.ID
}

func TestRouter_EmployeeEndpoints(t *testing.T) {
	s := newTestServer(t)
	id := s.createEmployee(t, "asha@example.com")

	rec := s.do(t, http.MethodPost, "/api/v1/employees", map[string]interface{}{
		"email": "asha@example.com", "name": "Dup", "department": "HR", "position": "Lead",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/employees", map[string]interface{}{"email": "not-an-email"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decode(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "email")

	rec = s.do(t, http.MethodGet, "/api/v1/employees", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	env = decode(t, rec)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 1, env.Meta.TotalItems)

	rec = s.do(t, http.MethodGet, "/api/v1/employees/"+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/employees/EMP-MISSING", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPatch, "/api/v1/employees/"+id+"/status", map[string]string{"status": "Inactive"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPatch, "/api/v1/employees/"+id+"/status", map[string]string{"status": "Inactive"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRouter_MalformedBody(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/employees", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)
}

func TestRouter_RejectsNonJSONBody(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/employees", strings.NewReader("name=Asha"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	// Bodiless POSTs carry no content type and still pass.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/admin/attendance/daily-reset", nil)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/employees", map[string]interface{}{})
	assert.NotEqual(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRouter_CheckInCheckOut(t *testing.T) {
	s := newTestServer(t)
	id := s.createEmployee(t, "asha@example.com")

	rec := s.do(t, http.MethodPost, "/api/v1/attendance/"+id+"/check-out", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/attendance/"+id+"/check-in", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var in attendance.CheckInResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &in))
	assert.Equal(t, attendance.StatusPresent, in.Status)
	assert.False(t, in.IsLate)

	rec = s.do(t, http.MethodPost, "/api/v1/attendance/"+id+"/check-in", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	s.clock.T = s.clock.T.Add(8 * time.Hour)
	rec = s.do(t, http.MethodPost, "/api/v1/attendance/"+id+"/check-out", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out attendance.CheckOutResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &out))
	assert.Equal(t, 8.0, out.HoursWorked)

	rec = s.do(t, http.MethodPost, "/api/v1/attendance/"+id+"/check-out", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/attendance/EMP-MISSING/check-in", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_PortalAndDetails(t *testing.T) {
	s := newTestServer(t)
	id := s.createEmployee(t, "asha@example.com")

	rec := s.do(t, http.MethodGet, "/api/v1/employees/"+id+"/portal", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var portal map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &portal))
	assert.Contains(t, portal, "leave_balance")
	assert.Contains(t, portal, "recent_attendance")

	rec = s.do(t, http.MethodGet, "/api/v1/employees/"+id+"/attendance-details?month=1&year=2024", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var details attendance.AttendanceDetailsResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &details))
	assert.Equal(t, 1, details.Month)
	assert.Equal(t, 2024, details.Year)

	rec = s.do(t, http.MethodGet, "/api/v1/employees/"+id+"/attendance-details", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/employees/"+id+"/attendance-details?month=jan&year=2024", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode(t, rec).Error.Details, "month")

	rec = s.do(t, http.MethodGet, "/api/v1/employees/"+id+"/attendance-details?month=13&year=2024", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRouter_LeaveFlow(t *testing.T) {
	s := newTestServer(t)
	id := s.createEmployee(t, "asha@example.com")

	rec := s.do(t, http.MethodGet, "/api/v1/leave-types", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/leave-requests", map[string]string{
		"employee_id": id, "leave_type": "annual",
		"start_date": "2024-01-15", "end_date": "2024-01-17", "reason": "Family trip",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created leave.LeaveRequestResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &created))
	assert.Equal(t, leave.StatusPending, created.Status)
	assert.Equal(t, 3, created.TotalDays)

	rec = s.do(t, http.MethodPost, "/api/v1/leave-requests", map[string]string{
		"employee_id": id, "leave_type": "annual",
		"start_date": "2024-01-16", "end_date": "2024-01-16", "reason": "Overlap",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/leave-requests/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/v1/leave-requests/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/v1/leave-requests/"+created.ID+"/decision", map[string]string{
		"status": "Approved", "admin_name": "Meera",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Leave request Approved", decode(t, rec).Message)

	rec = s.do(t, http.MethodPut, "/api/v1/leave-requests/"+created.ID+"/decision", map[string]string{"status": "Rejected"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/employees/"+id+"/leave-balances", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var balances map[string]leave.BalanceEntry
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &balances))
	assert.Equal(t, leave.BalanceEntry{Total: 20, Used: 3, Remaining: 17}, balances["annual"])

	rec = s.do(t, http.MethodGet, "/api/v1/leave-requests?status=Approved", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode(t, rec).Meta.TotalItems)

	rec = s.do(t, http.MethodGet, "/api/v1/leave-requests?status=Maybe", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/employees/"+id+"/leave-balances/recalculate", nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRouter_Holidays(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/holidays", map[string]string{"date": "2024-01-26", "name": "Republic Day", "type": "public"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/holidays", map[string]string{"date": "2024-01-26", "name": "Again", "type": "public"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/holidays?year=2024", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode(t, rec).Meta.TotalItems)

	rec = s.do(t, http.MethodGet, "/api/v1/holidays?year=twenty", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRouter_PayrollExport(t *testing.T) {
	s := newTestServer(t)
	s.createEmployee(t, "asha@example.com")

	rec := s.do(t, http.MethodGet, "/api/v1/payroll?start_date=2024-01-01&end_date=2024-01-07", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result payroll.PayrollResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &result))
	assert.Equal(t, "2024-01-01", result.PayrollPeriod.StartDate)
	assert.Len(t, result.PayrollData, 1)

	rec = s.do(t, http.MethodGet, "/api/v1/payroll/export?start_date=2024-01-01&end_date=2024-01-07&format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, `attachment; filename="payroll_2024-01-01_to_2024-01-07.csv"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Employee Name,"))

	rec = s.do(t, http.MethodGet, "/api/v1/payroll/export?start_date=2024-01-01&end_date=2024-01-07&format=pdf", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/payroll?start_date=2024-01-07&end_date=2024-01-01", nil)
	assert.GreaterOrEqual(t, rec.Code, http.StatusBadRequest)
	assert.Less(t, rec.Code, http.StatusInternalServerError)
}

func TestRouter_AdminEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.createEmployee(t, "asha@example.com")
	s.createEmployee(t, "ravi@example.com")

	rec := s.do(t, http.MethodPost, "/api/v1/admin/attendance/daily-reset", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var summary attendance.ResetSummary
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &summary))
	assert.Equal(t, 2, summary.Processed)
	assert.False(t, summary.Forced)

	rec = s.do(t, http.MethodPost, "/api/v1/admin/attendance/force-reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &summary))
	assert.True(t, summary.Forced)
	assert.Equal(t, 2, summary.Updated)

	rec = s.do(t, http.MethodPost, "/api/v1/admin/leave-balances/recalculate", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var recalc leave.RecalculationSummary
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &recalc))
	assert.Zero(t, recalc.Failed)

	rec = s.do(t, http.MethodGet, "/api/v1/admin/dashboard", nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRouter_MetricsAndHeartbeat(t *testing.T) {
	s := newTestServer(t)
	id := s.createEmployee(t, "asha@example.com")
	s.do(t, http.MethodPost, "/api/v1/attendance/"+id+"/check-in", nil)

	rec := s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `hris_portal_attendance_check_ins_total{status="Present"} 1`)

	rec = s.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
