package dashboard

import (
	"context"
	"math"

	"github.com/cmlabs-hris/hris-portal-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-portal-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/clock"
	"golang.org/x/sync/errgroup"
)

type DashboardServiceImpl struct {
	repo  dashboard.DashboardRepository
	clock clock.Clock
}

func NewDashboardService(repo dashboard.DashboardRepository, clk clock.Clock) dashboard.DashboardService {
	return &DashboardServiceImpl{
		repo:  repo,
		clock: clk,
	}
}

func percent(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*10000) / 100
}

// GetDashboard returns combined dashboard data using parallel goroutines
func (s *DashboardServiceImpl) GetDashboard(ctx context.Context) (*dashboard.DashboardResponse, error) {
	today := clock.Today(s.clock.Now())

	var (
		employeeSummary dashboard.EmployeeSummaryResponse
		attendanceStats dashboard.AttendanceStatsResponse
		departments     []dashboard.DepartmentStatsResponse
		pending         int64
	)

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Employee Summary (total, active, inactive, on leave)
	g.Go(func() error {
		stats, err := s.repo.GetEmployeeSummary(gCtx)
		if err != nil {
			return err
		}
		employeeSummary = dashboard.EmployeeSummaryResponse{
			TotalEmployee:    stats.Total,
			ActiveEmployee:   stats.Active,
			InactiveEmployee: stats.Inactive,
			OnLeaveEmployee:  stats.OnLeave,
		}
		return nil
	})

	// 2. Today's attendance of active employees
	g.Go(func() error {
		stats, err := s.repo.GetAttendanceStatsByDay(gCtx, today)
		if err != nil {
			return err
		}
		total := stats.Present + stats.Late + stats.Absent + stats.OnLeave
		attendanceStats = dashboard.AttendanceStatsResponse{
			Present:        stats.Present,
			Late:           stats.Late,
			Absent:         stats.Absent,
			OnLeave:        stats.OnLeave,
			CheckedOut:     stats.CheckedOut,
			Total:          total,
			PresentPercent: percent(stats.Present, total),
			LatePercent:    percent(stats.Late, total),
			AbsentPercent:  percent(stats.Absent, total),
		}
		return nil
	})

	// 3. Per-department headcount and check-ins
	g.Go(func() error {
		stats, err := s.repo.GetDepartmentStats(gCtx, today)
		if err != nil {
			return err
		}
		departments = make([]dashboard.DepartmentStatsResponse, 0, len(stats))
		for _, d := range stats {
			departments = append(departments, dashboard.DepartmentStatsResponse{
				Department: d.Department,
				Employees:  d.Employees,
				CheckedIn:  d.CheckedIn,
			})
		}
		return nil
	})

	// 4. Leave requests awaiting a decision
	g.Go(func() error {
		var err error
		pending, err = s.repo.CountPendingLeaveRequests(gCtx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &dashboard.DashboardResponse{
		Date:                 attendance.DateKey(today),
		EmployeeSummary:      employeeSummary,
		AttendanceStats:      attendanceStats,
		Departments:          departments,
		PendingLeaveRequests: pending,
	}, nil
}
