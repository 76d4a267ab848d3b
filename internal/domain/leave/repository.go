package leave

import (
	"context"
	"time"
)

// LeaveTypeRepository - interface for leave_types table
type LeaveTypeRepository interface {
	Create(ctx context.Context, leaveType LeaveType) (LeaveType, error)
	GetByCode(ctx context.Context, code string) (LeaveType, error)
	List(ctx context.Context, activeOnly bool) ([]LeaveType, error)
}

// BalanceRepository - interface for leave_balances table
type BalanceRepository interface {
	ListByEmployee(ctx context.Context, employeeID string) ([]Balance, error)
	// GetForUpdate locks the bucket until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, employeeID, leaveType string) (Balance, error)
	// EnsureExists inserts the bucket unless one is already stored.
	EnsureExists(ctx context.Context, balance Balance) error
	// Upsert inserts the bucket or overwrites total, used and remaining.
	Upsert(ctx context.Context, balance Balance) error
}

// LeaveRequestRepository - interface for leave_requests table
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	List(ctx context.Context, filter LeaveRequestFilter) ([]LeaveRequest, error)
	// Decide applies d only while the request is still Pending. The bool is
	// false when no pending request matched.
	Decide(ctx context.Context, id string, d Decision) (LeaveRequest, bool, error)
	HasOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error)
	ApprovedDaysByType(ctx context.Context, employeeID string) (map[string]int, error)
	// ListApprovedBetween returns approved requests overlapping [from, to].
	// An empty employeeID means every employee.
	ListApprovedBetween(ctx context.Context, employeeID string, from, to time.Time) ([]LeaveRequest, error)
}
