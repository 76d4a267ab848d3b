package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-portal-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-portal-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/hris-portal-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-portal-go/internal/handler/http/response"
)

// AdminHandler serves the admin dashboard and the manually triggered bulk jobs.
type AdminHandler interface {
	// GetDashboard returns combined dashboard data
	GetDashboard(w http.ResponseWriter, r *http.Request)
	// DailyReset resets every employee whose today belongs to an earlier day
	DailyReset(w http.ResponseWriter, r *http.Request)
	// ForceReset resets every employee regardless of date
	ForceReset(w http.ResponseWriter, r *http.Request)
	// RecalculateBalances resyncs all leave balances from approved requests
	RecalculateBalances(w http.ResponseWriter, r *http.Request)
}

type adminHandlerImpl struct {
	dashboardService  dashboard.DashboardService
	attendanceService attendance.AttendanceService
	leaveService      leave.LeaveService
}

func NewAdminHandler(dashboardService dashboard.DashboardService, attendanceService attendance.AttendanceService, leaveService leave.LeaveService) AdminHandler {
	return &adminHandlerImpl{
		dashboardService:  dashboardService,
		attendanceService: attendanceService,
		leaveService:      leaveService,
	}
}

// GetDashboard handles GET /admin/dashboard
func (h *adminHandlerImpl) GetDashboard(w http.ResponseWriter, r *http.Request) {
	result, err := h.dashboardService.GetDashboard(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// DailyReset handles POST /admin/attendance/daily-reset
func (h *adminHandlerImpl) DailyReset(w http.ResponseWriter, r *http.Request) {
	h.reset(w, r, false)
}

// ForceReset handles POST /admin/attendance/force-reset
func (h *adminHandlerImpl) ForceReset(w http.ResponseWriter, r *http.Request) {
	h.reset(w, r, true)
}

func (h *adminHandlerImpl) reset(w http.ResponseWriter, r *http.Request, force bool) {
	result, err := h.attendanceService.DailyReset(r.Context(), force)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Daily attendance reset completed", result)
}

// RecalculateBalances handles POST /admin/leave-balances/recalculate
func (h *adminHandlerImpl) RecalculateBalances(w http.ResponseWriter, r *http.Request) {
	result, err := h.leaveService.RecalculateAll(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave balances recalculated", result)
}
