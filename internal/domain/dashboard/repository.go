package dashboard

import (
	"context"
	"time"
)

// EmployeeSummaryStats combines all employee counts in single query
type EmployeeSummaryStats struct {
	Total    int64
	Active   int64
	Inactive int64
	OnLeave  int64
}

// AttendanceStats counts today's status of active employees. Employees whose
// today state belongs to an earlier day count as absent.
type AttendanceStats struct {
	Present    int64
	Late       int64
	Absent     int64
	OnLeave    int64
	CheckedOut int64
}

type DepartmentStats struct {
	Department string
	Employees  int64
	CheckedIn  int64
}

// DashboardRepository defines the interface for dashboard data access
type DashboardRepository interface {
	GetEmployeeSummary(ctx context.Context) (*EmployeeSummaryStats, error)
	GetAttendanceStatsByDay(ctx context.Context, day time.Time) (*AttendanceStats, error)
	GetDepartmentStats(ctx context.Context, day time.Time) ([]DepartmentStats, error)
	CountPendingLeaveRequests(ctx context.Context) (int64, error)
}
