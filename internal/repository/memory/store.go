// Package memory is an in-process implementation of the repository
// interfaces. It mirrors the guarded updates of the PostgreSQL repositories
// and backs the service tests.
package memory

import (
	"context"
	"sync"

	"github.com/cmlabs-hris/hris-portal-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-portal-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-portal-go/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-portal-go/internal/domain/leave"
)

type employeeRow struct {
	employee employee.Employee
	today    attendance.Today
}

type state struct {
	employees  map[string]employeeRow
	records    map[string]attendance.Record
	leaveTypes map[string]leave.LeaveType
	balances   map[string]leave.Balance
	requests   map[string]leave.LeaveRequest
	holidays   map[string]holiday.Holiday
}

func newState() state {
	return state{
		employees:  map[string]employeeRow{},
		records:    map[string]attendance.Record{},
		leaveTypes: map[string]leave.LeaveType{},
		balances:   map[string]leave.Balance{},
		requests:   map[string]leave.LeaveRequest{},
		holidays:   map[string]holiday.Holiday{},
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.employees {
		c.employees[k] = v
	}
	for k, v := range s.records {
		c.records[k] = v
	}
	for k, v := range s.leaveTypes {
		c.leaveTypes[k] = v
	}
	for k, v := range s.balances {
		c.balances[k] = v
	}
	for k, v := range s.requests {
		c.requests[k] = v
	}
	for k, v := range s.holidays {
		c.holidays[k] = v
	}
	return c
}

// Store holds all tables. Transactions are serialised and roll back by
// restoring a snapshot.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data state

	failures map[string]error
}

func NewStore() *Store {
	return &Store{data: newState(), failures: map[string]error{}}
}

// FailOn makes the named operation (for example "attendance.ResetToday")
// return err until cleared with a nil err.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// fail must be called with mu held.
func (s *Store) fail(op string) error {
	return s.failures[op]
}

type txKey struct{}

// WithinTx implements database.Transactor.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func key(parts ...string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += "|" + p
	}
	return out
}

func (s *Store) Employees() employee.EmployeeRepository      { return employeeRepo{s} }
func (s *Store) Attendance() attendance.AttendanceRepository { return attendanceRepo{s} }
func (s *Store) LeaveTypes() leave.LeaveTypeRepository       { return leaveTypeRepo{s} }
func (s *Store) Balances() leave.BalanceRepository           { return balanceRepo{s} }
func (s *Store) LeaveRequests() leave.LeaveRequestRepository { return requestRepo{s} }
func (s *Store) Holidays() holiday.HolidayRepository         { return holidayRepo{s} }
