package employee

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/hris-portal-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-portal-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/validator"
	"github.com/google/uuid"
)

type EmployeeServiceImpl struct {
	tx            database.Transactor
	employeeRepo  employee.EmployeeRepository
	leaveTypeRepo leave.LeaveTypeRepository
	balanceRepo   leave.BalanceRepository
	clock         clock.Clock
}

func NewEmployeeService(
	tx database.Transactor,
	employeeRepo employee.EmployeeRepository,
	leaveTypeRepo leave.LeaveTypeRepository,
	balanceRepo leave.BalanceRepository,
	clk clock.Clock,
) employee.EmployeeService {
	return &EmployeeServiceImpl{
		tx:            tx,
		employeeRepo:  employeeRepo,
		leaveTypeRepo: leaveTypeRepo,
		balanceRepo:   balanceRepo,
		clock:         clk,
	}
}

// generateEmployeeID returns an ID such as EMP-1A2B3C4D.
func generateEmployeeID() string {
	return "EMP-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// CreateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	id := req.ID
	if id == "" {
		id = generateEmployeeID()
	}

	idTaken, emailTaken, err := s.employeeRepo.ExistsByIDOrEmail(ctx, id, req.Email)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if idTaken {
		return employee.EmployeeResponse{}, employee.ErrEmployeeIDExists
	}
	if emailTaken {
		return employee.EmployeeResponse{}, employee.ErrEmailExists
	}

	now := s.clock.Now()
	today := clock.Today(now)

	var created employee.Employee
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.employeeRepo.Create(ctx, employee.Employee{
			ID:            id,
			Email:         req.Email,
			Name:          req.Name,
			Department:    employee.Department(req.Department),
			Position:      req.Position,
			Status:        employee.StatusActive,
			MonthlySalary: req.MonthlySalary.Round(2),
			CreatedAt:     now,
		}, today)
		if err != nil {
			return err
		}

		types, err := s.leaveTypeRepo.List(ctx, true)
		if err != nil {
			return fmt.Errorf("failed to load leave types: %w", err)
		}
		for _, lt := range types {
			if err := s.balanceRepo.EnsureExists(ctx, leave.NewBalance(created.ID, lt)); err != nil {
				return fmt.Errorf("failed to seed %s balance: %w", lt.Code, err)
			}
		}
		return nil
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	slog.Info("employee created", "employee_id", created.ID, "department", created.Department)
	return employee.ToResponse(created), nil
}

// GetEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	if validator.IsEmpty(id) {
		return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
	}

	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.ToResponse(emp), nil
}

// ListEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, filter employee.EmployeeFilter) ([]employee.EmployeeResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	employees, err := s.employeeRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		responses = append(responses, employee.ToResponse(e))
	}
	return responses, nil
}

// UpdateStatus implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateStatus(ctx context.Context, req employee.UpdateStatusRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	current, err := s.employeeRepo.GetByID(ctx, req.ID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if string(current.Status) == req.Status {
		return employee.EmployeeResponse{}, employee.ErrStatusUnchanged
	}

	if err := s.employeeRepo.UpdateStatus(ctx, req.ID, employee.Status(req.Status)); err != nil {
		return employee.EmployeeResponse{}, err
	}

	updated, err := s.employeeRepo.GetByID(ctx, req.ID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	slog.Info("employee status updated", "employee_id", req.ID, "from", current.Status, "to", updated.Status)
	return employee.ToResponse(updated), nil
}
