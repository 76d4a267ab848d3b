package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-portal-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/database"
)

type dashboardRepositoryImpl struct {
	db *database.DB
}

func NewDashboardRepository(db *database.DB) dashboard.DashboardRepository {
	return &dashboardRepositoryImpl{db: db}
}

// GetEmployeeSummary returns total, active, inactive, on leave in single query
func (r *dashboardRepositoryImpl) GetEmployeeSummary(ctx context.Context) (*dashboard.EmployeeSummaryStats, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COUNT(*) as total,
			COALESCE(SUM(CASE WHEN status = 'Active' THEN 1 ELSE 0 END), 0) as active_count,
			COALESCE(SUM(CASE WHEN status = 'Inactive' THEN 1 ELSE 0 END), 0) as inactive_count,
			COALESCE(SUM(CASE WHEN status = 'On Leave' THEN 1 ELSE 0 END), 0) as on_leave_count
		FROM employees
	`

	var stats dashboard.EmployeeSummaryStats
	err := q.QueryRow(ctx, query).Scan(&stats.Total, &stats.Active, &stats.Inactive, &stats.OnLeave)
	if err != nil {
		return nil, fmt.Errorf("failed to get employee summary: %w", err)
	}
	return &stats, nil
}

// GetAttendanceStatsByDay counts today's state of active employees in single query.
// Approved leave covering day turns an employee who has not checked in into On Leave.
func (r *dashboardRepositoryImpl) GetAttendanceStatsByDay(ctx context.Context, day time.Time) (*dashboard.AttendanceStats, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH on_leave AS (
			SELECT DISTINCT employee_id
			FROM leave_requests
			WHERE status = 'Approved' AND start_date <= $1::date AND end_date >= $1::date
		), day_state AS (
			SELECT
				COALESCE(e.today_date = $1::date AND e.today_status IN ('Present', 'Late'), FALSE) AS attended,
				COALESCE(e.today_date = $1::date AND e.today_status = 'Present', FALSE) AS present,
				COALESCE(e.today_date = $1::date AND e.today_status = 'Late', FALSE) AS late,
				l.employee_id IS NOT NULL
					OR COALESCE(e.today_date = $1::date AND e.today_status = 'On Leave', FALSE) AS away,
				COALESCE(e.today_date = $1::date AND e.today_check_out IS NOT NULL, FALSE) AS checked_out
			FROM employees e
			LEFT JOIN on_leave l ON l.employee_id = e.id
			WHERE e.status = 'Active'
		)
		SELECT
			COALESCE(SUM(CASE WHEN present THEN 1 ELSE 0 END), 0) as present_count,
			COALESCE(SUM(CASE WHEN late THEN 1 ELSE 0 END), 0) as late_count,
			COALESCE(SUM(CASE WHEN NOT attended AND NOT away THEN 1 ELSE 0 END), 0) as absent_count,
			COALESCE(SUM(CASE WHEN NOT attended AND away THEN 1 ELSE 0 END), 0) as on_leave_count,
			COALESCE(SUM(CASE WHEN checked_out THEN 1 ELSE 0 END), 0) as checked_out_count
		FROM day_state
	`

	var stats dashboard.AttendanceStats
	err := q.QueryRow(ctx, query, day).Scan(
		&stats.Present, &stats.Late, &stats.Absent, &stats.OnLeave, &stats.CheckedOut,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance stats: %w", err)
	}
	return &stats, nil
}

// GetDepartmentStats returns headcount and check-ins per department
func (r *dashboardRepositoryImpl) GetDepartmentStats(ctx context.Context, day time.Time) ([]dashboard.DepartmentStats, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			department,
			COUNT(*) as employees,
			COALESCE(SUM(CASE WHEN today_date = $1 AND today_check_in IS NOT NULL THEN 1 ELSE 0 END), 0) as checked_in
		FROM employees
		WHERE status = 'Active'
		GROUP BY department
		ORDER BY department ASC
	`

	rows, err := q.Query(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("failed to get department stats: %w", err)
	}
	defer rows.Close()

	stats := make([]dashboard.DepartmentStats, 0)
	for rows.Next() {
		var s dashboard.DepartmentStats
		if err := rows.Scan(&s.Department, &s.Employees, &s.CheckedIn); err != nil {
			return nil, fmt.Errorf("failed to scan department stats: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// CountPendingLeaveRequests returns the number of undecided leave requests
func (r *dashboardRepositoryImpl) CountPendingLeaveRequests(ctx context.Context) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var n int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM leave_requests WHERE status = 'Pending'`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count pending leave requests: %w", err)
	}
	return n, nil
}
