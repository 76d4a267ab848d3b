package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-portal-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-portal-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/metrics"
	"github.com/google/uuid"
)

type LeaveServiceImpl struct {
	tx            database.Transactor
	leaveTypeRepo leave.LeaveTypeRepository
	balanceRepo   leave.BalanceRepository
	requestRepo   leave.LeaveRequestRepository
	employeeRepo  employee.EmployeeRepository
	clock         clock.Clock
	metrics       *metrics.Metrics
}

func NewLeaveService(
	tx database.Transactor,
	leaveTypeRepo leave.LeaveTypeRepository,
	balanceRepo leave.BalanceRepository,
	requestRepo leave.LeaveRequestRepository,
	employeeRepo employee.EmployeeRepository,
	clk clock.Clock,
	m *metrics.Metrics,
) leave.LeaveService {
	return &LeaveServiceImpl{
		tx:            tx,
		leaveTypeRepo: leaveTypeRepo,
		balanceRepo:   balanceRepo,
		requestRepo:   requestRepo,
		employeeRepo:  employeeRepo,
		clock:         clk,
		metrics:       m,
	}
}

// CreateLeaveType implements leave.LeaveService.
func (s *LeaveServiceImpl) CreateLeaveType(ctx context.Context, req leave.CreateLeaveTypeRequest) (leave.LeaveTypeResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveTypeResponse{}, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	created, err := s.leaveTypeRepo.Create(ctx, leave.LeaveType{
		Code:         req.Code,
		Name:         req.Name,
		DefaultTotal: req.DefaultTotal,
		IsActive:     isActive,
		CreatedAt:    s.clock.Now(),
	})
	if err != nil {
		return leave.LeaveTypeResponse{}, err
	}

	slog.Info("leave type created", "code", created.Code, "default_total", created.DefaultTotal)
	return leave.ToLeaveTypeResponse(created), nil
}

// ListLeaveTypes implements leave.LeaveService.
func (s *LeaveServiceImpl) ListLeaveTypes(ctx context.Context) ([]leave.LeaveTypeResponse, error) {
	types, err := s.leaveTypeRepo.List(ctx, false)
	if err != nil {
		return nil, err
	}

	responses := make([]leave.LeaveTypeResponse, 0, len(types))
	for _, lt := range types {
		responses = append(responses, leave.ToLeaveTypeResponse(lt))
	}
	return responses, nil
}

// CreateLeaveRequest implements leave.LeaveService.
func (s *LeaveServiceImpl) CreateLeaveRequest(ctx context.Context, req leave.CreateLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	leaveType, err := s.leaveTypeRepo.GetByCode(ctx, req.LeaveType)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if !leaveType.IsActive {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveTypeInactive
	}

	start, end := req.Dates()

	overlap, err := s.requestRepo.HasOverlap(ctx, emp.ID, start, end)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if overlap {
		return leave.LeaveRequestResponse{}, leave.ErrOverlappingLeave
	}

	created, err := s.requestRepo.Create(ctx, leave.LeaveRequest{
		ID:            uuid.NewString(),
		EmployeeID:    emp.ID,
		EmployeeName:  emp.Name,
		EmployeeEmail: emp.Email,
		LeaveType:     leaveType.Code,
		StartDate:     start,
		EndDate:       end,
		TotalDays:     leave.InclusiveDays(start, end),
		Reason:        req.Reason,
		Status:        leave.StatusPending,
		RequestedAt:   s.clock.Now(),
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	slog.Info("leave request submitted",
		"request_id", created.ID,
		"employee_id", created.EmployeeID,
		"leave_type", created.LeaveType,
		"total_days", created.TotalDays,
	)
	return leave.ToLeaveRequestResponse(created), nil
}

// DecideLeaveRequest implements leave.LeaveService.
func (s *LeaveServiceImpl) DecideLeaveRequest(ctx context.Context, req leave.DecideLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if _, err := uuid.Parse(req.ID); err != nil {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotFound
	}

	decision := leave.Decision{
		Status:        leave.RequestStatus(req.Status),
		AdminResponse: req.AdminResponse,
		AdminName:     req.AdminName,
		DecidedAt:     s.clock.Now(),
	}

	var decided leave.LeaveRequest
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var (
			applied bool
			err     error
		)
		decided, applied, err = s.requestRepo.Decide(ctx, req.ID, decision)
		if err != nil {
			return err
		}
		if !applied {
			if _, err := s.requestRepo.GetByID(ctx, req.ID); err != nil {
				return err
			}
			return leave.ErrLeaveRequestAlreadyDecided
		}

		if decided.Status != leave.StatusApproved {
			return nil
		}

		balance, err := s.lockBalance(ctx, decided.EmployeeID, decided.LeaveType)
		if err != nil {
			return err
		}
		balance, err = balance.Deduct(decided.TotalDays)
		if err != nil {
			return err
		}
		return s.balanceRepo.Upsert(ctx, balance)
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	s.metrics.LeaveDecisions.WithLabelValues(string(decided.Status)).Inc()
	slog.Info("leave request decided",
		"request_id", decided.ID,
		"employee_id", decided.EmployeeID,
		"status", decided.Status,
		"total_days", decided.TotalDays,
	)
	return leave.ToLeaveRequestResponse(decided), nil
}

// lockBalance returns the bucket locked for the surrounding transaction,
// creating it from the leave type default when the employee has none.
func (s *LeaveServiceImpl) lockBalance(ctx context.Context, employeeID, leaveType string) (leave.Balance, error) {
	balance, err := s.balanceRepo.GetForUpdate(ctx, employeeID, leaveType)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, leave.ErrBalanceNotFound) {
		return leave.Balance{}, err
	}

	lt, err := s.leaveTypeRepo.GetByCode(ctx, leaveType)
	if err != nil {
		return leave.Balance{}, err
	}
	if err := s.balanceRepo.EnsureExists(ctx, leave.NewBalance(employeeID, lt)); err != nil {
		return leave.Balance{}, err
	}
	return s.balanceRepo.GetForUpdate(ctx, employeeID, leaveType)
}

// GetLeaveRequest implements leave.LeaveService.
func (s *LeaveServiceImpl) GetLeaveRequest(ctx context.Context, id string) (leave.LeaveRequestResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotFound
	}

	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	return leave.ToLeaveRequestResponse(request), nil
}

// ListLeaveRequests implements leave.LeaveService.
func (s *LeaveServiceImpl) ListLeaveRequests(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	requests, err := s.requestRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}

	responses := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, leave.ToLeaveRequestResponse(r))
	}
	return responses, nil
}
