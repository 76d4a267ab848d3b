package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-portal-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-portal-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/hris-portal-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-portal-go/internal/domain/leave"
)

type dashboardRepo struct{ s *Store }

func (s *Store) Dashboard() dashboard.DashboardRepository { return dashboardRepo{s} }

// GetEmployeeSummary implements dashboard.DashboardRepository.
func (r dashboardRepo) GetEmployeeSummary(ctx context.Context) (*dashboard.EmployeeSummaryStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var stats dashboard.EmployeeSummaryStats
	for _, row := range r.s.data.employees {
		stats.Total++
		switch row.employee.Status {
		case employee.StatusActive:
			stats.Active++
		case employee.StatusInactive:
			stats.Inactive++
		case employee.StatusOnLeave:
			stats.OnLeave++
		}
	}
	return &stats, nil
}

// GetAttendanceStatsByDay implements dashboard.DashboardRepository.
func (r dashboardRepo) GetAttendanceStatsByDay(ctx context.Context, day time.Time) (*dashboard.AttendanceStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	onLeave := make(map[string]bool)
	for _, lr := range r.s.data.requests {
		if lr.Status == leave.StatusApproved && inRange(day, lr.StartDate, lr.EndDate) {
			onLeave[lr.EmployeeID] = true
		}
	}

	var stats dashboard.AttendanceStats
	for _, row := range r.s.data.employees {
		if row.employee.Status != employee.StatusActive {
			continue
		}
		t := row.today
		status := attendance.StatusAbsent
		if attendance.DateKey(t.Date) == attendance.DateKey(day) {
			status = t.Status
			if t.CheckOut != nil {
				stats.CheckedOut++
			}
		}
		if status == attendance.StatusAbsent && onLeave[row.employee.ID] {
			status = attendance.StatusOnLeave
		}
		switch status {
		case attendance.StatusPresent:
			stats.Present++
		case attendance.StatusLate:
			stats.Late++
		case attendance.StatusOnLeave:
			stats.OnLeave++
		default:
			stats.Absent++
		}
	}
	return &stats, nil
}

// GetDepartmentStats implements dashboard.DashboardRepository.
func (r dashboardRepo) GetDepartmentStats(ctx context.Context, day time.Time) ([]dashboard.DepartmentStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	byDept := make(map[string]*dashboard.DepartmentStats)
	for _, row := range r.s.data.employees {
		if row.employee.Status != employee.StatusActive {
			continue
		}
		name := string(row.employee.Department)
		d, ok := byDept[name]
		if !ok {
			d = &dashboard.DepartmentStats{Department: name}
			byDept[name] = d
		}
		d.Employees++
		if attendance.DateKey(row.today.Date) == attendance.DateKey(day) && row.today.CheckIn != nil {
			d.CheckedIn++
		}
	}

	out := make([]dashboard.DepartmentStats, 0, len(byDept))
	for _, d := range byDept {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Department < out[j].Department })
	return out, nil
}

// CountPendingLeaveRequests implements dashboard.DashboardRepository.
func (r dashboardRepo) CountPendingLeaveRequests(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, lr := range r.s.data.requests {
		if lr.Status == leave.StatusPending {
			n++
		}
	}
	return n, nil
}
