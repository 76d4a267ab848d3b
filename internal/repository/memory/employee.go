package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-portal-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-portal-go/internal/domain/employee"
)

type employeeRepo struct{ s *Store }

// Create implements employee.EmployeeRepository.
func (r employeeRepo) Create(ctx context.Context, e employee.Employee, today time.Time) (employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("employee.Create"); err != nil {
		return employee.Employee{}, err
	}

	if _, ok := r.s.data.employees[e.ID]; ok {
		return employee.Employee{}, employee.ErrEmployeeIDExists
	}
	for _, row := range r.s.data.employees {
		if strings.EqualFold(row.employee.Email, e.Email) {
			return employee.Employee{}, employee.ErrEmailExists
		}
	}

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.UpdatedAt = e.CreatedAt
	r.s.data.employees[e.ID] = employeeRow{
		employee: e,
		today:    attendance.Today{Date: today, Status: attendance.StatusAbsent},
	}
	return e, nil
}

// GetByID implements employee.EmployeeRepository.
func (r employeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.data.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return row.employee, nil
}

// ExistsByIDOrEmail implements employee.EmployeeRepository.
func (r employeeRepo) ExistsByIDOrEmail(ctx context.Context, id, email string) (bool, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, idTaken := r.s.data.employees[id]
	emailTaken := false
	for _, row := range r.s.data.employees {
		if strings.EqualFold(row.employee.Email, email) {
			emailTaken = true
		}
	}
	return idTaken, emailTaken, nil
}

// List implements employee.EmployeeRepository.
func (r employeeRepo) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, error) {
	return r.list(func(e employee.Employee) bool {
		return (filter.Department == "" || string(e.Department) == filter.Department) &&
			(filter.Status == "" || string(e.Status) == filter.Status)
	}), nil
}

// ListActive implements employee.EmployeeRepository.
func (r employeeRepo) ListActive(ctx context.Context) ([]employee.Employee, error) {
	r.s.mu.RLock()
	err := r.s.fail("employee.ListActive")
	r.s.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	return r.list(func(e employee.Employee) bool { return e.Status == employee.StatusActive }), nil
}

func (r employeeRepo) list(keep func(employee.Employee) bool) []employee.Employee {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]employee.Employee, 0)
	for _, row := range r.s.data.employees {
		if keep(row.employee) {
			out = append(out, row.employee)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ListIDs implements employee.EmployeeRepository.
func (r employeeRepo) ListIDs(ctx context.Context) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := make([]string, 0, len(r.s.data.employees))
	for id := range r.s.data.employees {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// UpdateStatus implements employee.EmployeeRepository.
func (r employeeRepo) UpdateStatus(ctx context.Context, id string, status employee.Status) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.data.employees[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	row.employee.Status = status
	row.employee.UpdatedAt = time.Now()
	r.s.data.employees[id] = row
	return nil
}
