package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-portal-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-portal-go/internal/domain/leave"
)

type leaveTypeRepo struct{ s *Store }

// Create implements leave.LeaveTypeRepository.
func (r leaveTypeRepo) Create(ctx context.Context, lt leave.LeaveType) (leave.LeaveType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.leaveTypes[lt.Code]; ok {
		return leave.LeaveType{}, leave.ErrLeaveTypeExists
	}
	r.s.data.leaveTypes[lt.Code] = lt
	return lt, nil
}

// GetByCode implements leave.LeaveTypeRepository.
func (r leaveTypeRepo) GetByCode(ctx context.Context, code string) (leave.LeaveType, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	lt, ok := r.s.data.leaveTypes[code]
	if !ok {
		return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
	}
	return lt, nil
}

// List implements leave.LeaveTypeRepository.
func (r leaveTypeRepo) List(ctx context.Context, activeOnly bool) ([]leave.LeaveType, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]leave.LeaveType, 0, len(r.s.data.leaveTypes))
	for _, lt := range r.s.data.leaveTypes {
		if !activeOnly || lt.IsActive {
			out = append(out, lt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

type balanceRepo struct{ s *Store }

// Balance returns the stored bucket.
func (s *Store) Balance(employeeID, leaveType string) (leave.Balance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.data.balances[key(employeeID, leaveType)]
	return b, ok
}

// ListByEmployee implements leave.BalanceRepository.
func (r balanceRepo) ListByEmployee(ctx context.Context, employeeID string) ([]leave.Balance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.fail("balance.ListByEmployee"); err != nil {
		return nil, err
	}

	out := make([]leave.Balance, 0)
	for _, b := range r.s.data.balances {
		if b.EmployeeID == employeeID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LeaveType < out[j].LeaveType })
	return out, nil
}

// GetForUpdate implements leave.BalanceRepository. The store lock is held by
// the surrounding WithinTx.
func (r balanceRepo) GetForUpdate(ctx context.Context, employeeID, leaveType string) (leave.Balance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.data.balances[key(employeeID, leaveType)]
	if !ok {
		return leave.Balance{}, leave.ErrBalanceNotFound
	}
	return b, nil
}

// EnsureExists implements leave.BalanceRepository.
func (r balanceRepo) EnsureExists(ctx context.Context, b leave.Balance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := key(b.EmployeeID, b.LeaveType)
	if _, ok := r.s.data.balances[k]; !ok {
		r.s.data.balances[k] = b
	}
	return nil
}

// Upsert implements leave.BalanceRepository.
func (r balanceRepo) Upsert(ctx context.Context, b leave.Balance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("balance.Upsert"); err != nil {
		return err
	}
	r.s.data.balances[key(b.EmployeeID, b.LeaveType)] = b
	return nil
}

type requestRepo struct{ s *Store }

// Create implements leave.LeaveRequestRepository.
func (r requestRepo) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.requests[request.ID] = request
	return request, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r requestRepo) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	lr, ok := r.s.data.requests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return lr, nil
}

// List implements leave.LeaveRequestRepository.
func (r requestRepo) List(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, error) {
	out := r.filter(func(lr leave.LeaveRequest) bool {
		return (filter.EmployeeID == "" || lr.EmployeeID == filter.EmployeeID) &&
			(filter.Status == "" || string(lr.Status) == filter.Status)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.After(out[j].RequestedAt) })
	return out, nil
}

// Decide implements leave.LeaveRequestRepository.
func (r requestRepo) Decide(ctx context.Context, id string, d leave.Decision) (leave.LeaveRequest, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	lr, ok := r.s.data.requests[id]
	if !ok || lr.Status != leave.StatusPending {
		return leave.LeaveRequest{}, false, nil
	}
	decidedAt := d.DecidedAt
	lr.Status = d.Status
	lr.AdminResponse = d.AdminResponse
	lr.AdminName = d.AdminName
	lr.DecidedAt = &decidedAt
	r.s.data.requests[id] = lr
	return lr, true, nil
}

// HasOverlap implements leave.LeaveRequestRepository.
func (r requestRepo) HasOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error) {
	found := r.filter(func(lr leave.LeaveRequest) bool {
		return lr.EmployeeID == employeeID &&
			lr.Status != leave.StatusRejected &&
			overlaps(lr, start, end)
	})
	return len(found) > 0, nil
}

// ApprovedDaysByType implements leave.LeaveRequestRepository.
func (r requestRepo) ApprovedDaysByType(ctx context.Context, employeeID string) (map[string]int, error) {
	used := make(map[string]int)
	for _, lr := range r.filter(func(lr leave.LeaveRequest) bool {
		return lr.EmployeeID == employeeID && lr.Status == leave.StatusApproved
	}) {
		used[lr.LeaveType] += lr.TotalDays
	}
	return used, nil
}

// ListApprovedBetween implements leave.LeaveRequestRepository.
func (r requestRepo) ListApprovedBetween(ctx context.Context, employeeID string, from, to time.Time) ([]leave.LeaveRequest, error) {
	out := r.filter(func(lr leave.LeaveRequest) bool {
		return lr.Status == leave.StatusApproved &&
			(employeeID == "" || lr.EmployeeID == employeeID) &&
			overlaps(lr, from, to)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func overlaps(lr leave.LeaveRequest, from, to time.Time) bool {
	return attendance.DateKey(lr.StartDate) <= attendance.DateKey(to) &&
		attendance.DateKey(lr.EndDate) >= attendance.DateKey(from)
}

func (r requestRepo) filter(keep func(leave.LeaveRequest) bool) []leave.LeaveRequest {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]leave.LeaveRequest, 0)
	for _, lr := range r.s.data.requests {
		if keep(lr) {
			out = append(out, lr)
		}
	}
	return out
}
