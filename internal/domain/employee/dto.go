package employee

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateEmployeeRequest struct {
	ID            string          `json:"id,omitempty"`
	Email         string          `json:"email" validate:"required,email"`
	Name          string          `json:"name" validate:"required,max=120"`
	Department    string          `json:"department" validate:"required,oneof=Engineering HR Finance Marketing Sales Operations Design"`
	Position      string          `json:"position" validate:"required,max=120"`
	MonthlySalary decimal.Decimal `json:"monthly_salary"`
}

func (r *CreateEmployeeRequest) Validate() error {
	r.ID = strings.TrimSpace(r.ID)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)
	r.Position = strings.TrimSpace(r.Position)

	errs := validator.Struct(r)

	if r.MonthlySalary.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "monthly_salary",
			Message: "monthly_salary must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EmployeeFilter struct {
	Department string `json:"department"`
	Status     string `json:"status"`
}

func (f EmployeeFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Department != "" && !validator.IsInSlice(f.Department, Departments()) {
		errs = append(errs, validator.ValidationError{
			Field:   "department",
			Message: "department must be one of: " + strings.Join(Departments(), ", "),
		})
	}
	if f.Status != "" && !validator.IsInSlice(f.Status, Statuses()) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: " + strings.Join(Statuses(), ", "),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateStatusRequest struct {
	ID     string `json:"-"`
	Status string `json:"status"`
}

func (r UpdateStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id is required"})
	}
	if !validator.IsInSlice(r.Status, Statuses()) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: " + strings.Join(Statuses(), ", "),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EmployeeResponse struct {
	ID            string          `json:"id"`
	Email         string          `json:"email"`
	Name          string          `json:"name"`
	Department    Department      `json:"department"`
	Position      string          `json:"position"`
	Status        Status          `json:"status"`
	MonthlySalary decimal.Decimal `json:"monthly_salary"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func ToResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:            e.ID,
		Email:         e.Email,
		Name:          e.Name,
		Department:    e.Department,
		Position:      e.Position,
		Status:        e.Status,
		MonthlySalary: e.MonthlySalary,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}
