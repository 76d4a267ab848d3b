package employee

import (
	"context"
	"time"
)

type EmployeeRepository interface {
	// Create inserts the employee with today's attendance initialised to
	// Absent for the given day.
	Create(ctx context.Context, newEmployee Employee, today time.Time) (Employee, error)
	GetByID(ctx context.Context, id string) (Employee, error)
	ExistsByIDOrEmail(ctx context.Context, id, email string) (idTaken bool, emailTaken bool, err error)
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, error)
	ListActive(ctx context.Context) ([]Employee, error)
	ListIDs(ctx context.Context) ([]string, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}
