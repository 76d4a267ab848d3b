package leave

import (
	"time"
)

// LeaveType is an admin-configured leave category keyed by a lowercase code.
type LeaveType struct {
	Code         string
	Name         string
	DefaultTotal int
	IsActive     bool
	CreatedAt    time.Time
}

// DefaultLeaveTypes are seeded by the initial migration.
func DefaultLeaveTypes() []LeaveType {
	return []LeaveType{
		{Code: "annual", Name: "Annual Leave", DefaultTotal: 20, IsActive: true},
		{Code: "sick", Name: "Sick Leave", DefaultTotal: 10, IsActive: true},
		{Code: "personal", Name: "Personal Leave", DefaultTotal: 5, IsActive: true},
	}
}

// Balance is one leave-type bucket of an employee.
// Remaining always equals Total minus Used and neither goes below zero.
type Balance struct {
	EmployeeID string
	LeaveType  string
	Total      int
	Used       int
	Remaining  int
}

func NewBalance(employeeID string, lt LeaveType) Balance {
	return Balance{
		EmployeeID: employeeID,
		LeaveType:  lt.Code,
		Total:      lt.DefaultTotal,
		Remaining:  lt.DefaultTotal,
	}
}

// Deduct moves days from remaining to used.
func (b Balance) Deduct(days int) (Balance, error) {
	if days > b.Remaining {
		return b, ErrInsufficientBalance
	}
	b.Used += days
	b.Remaining = b.Total - b.Used
	return b, nil
}

// WithUsed resets the bucket to the given usage.
func (b Balance) WithUsed(used int) (Balance, error) {
	if used < 0 || used > b.Total {
		return b, ErrUsageExceedsTotal
	}
	b.Used = used
	b.Remaining = b.Total - used
	return b, nil
}

type RequestStatus string

const (
	StatusPending  RequestStatus = "Pending"
	StatusApproved RequestStatus = "Approved"
	StatusRejected RequestStatus = "Rejected"
)

type LeaveRequest struct {
	ID            string
	EmployeeID    string
	EmployeeName  string
	EmployeeEmail string
	LeaveType     string
	StartDate     time.Time
	EndDate       time.Time
	TotalDays     int
	Reason        string
	Status        RequestStatus
	AdminResponse *string
	AdminName     *string
	RequestedAt   time.Time
	DecidedAt     *time.Time
}

// InclusiveDays counts calendar days from start to end, both included.
func InclusiveDays(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours()/24) + 1
}

// Decision is the admin action applied to a pending request.
type Decision struct {
	Status        RequestStatus
	AdminResponse *string
	AdminName     *string
	DecidedAt     time.Time
}
