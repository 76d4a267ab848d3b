package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID            string
	Email         string
	Name          string
	Department    Department
	Position      string
	Status        Status
	MonthlySalary decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Department string

const (
	DepartmentEngineering Department = "Engineering"
	DepartmentHR          Department = "HR"
	DepartmentFinance     Department = "Finance"
	DepartmentMarketing   Department = "Marketing"
	DepartmentSales       Department = "Sales"
	DepartmentOperations  Department = "Operations"
	DepartmentDesign      Department = "Design"
)

// Departments lists the accepted department values in display order.
func Departments() []string {
	return []string{
		string(DepartmentEngineering),
		string(DepartmentHR),
		string(DepartmentFinance),
		string(DepartmentMarketing),
		string(DepartmentSales),
		string(DepartmentOperations),
		string(DepartmentDesign),
	}
}

type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
	StatusOnLeave  Status = "On Leave"
)

func Statuses() []string {
	return []string{string(StatusActive), string(StatusInactive), string(StatusOnLeave)}
}
