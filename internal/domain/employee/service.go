package employee

import (
	"context"
)

// EmployeeService defines business logic for employee records
type EmployeeService interface {
	// CreateEmployee registers an employee and seeds one leave balance per active leave type
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)

	GetEmployee(ctx context.Context, id string) (EmployeeResponse, error)

	ListEmployees(ctx context.Context, filter EmployeeFilter) ([]EmployeeResponse, error)

	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (EmployeeResponse, error)
}
