package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-portal-go/internal/domain/attendance"
	"github.com/shopspring/decimal"
)

// Period is an inclusive payroll date range.
type Period struct {
	Start time.Time
	End   time.Time
}

// Row is the computed pay of one employee for a period.
type Row struct {
	EmployeeID    string
	EmployeeName  string
	Email         string
	Department    string
	MonthlySalary decimal.Decimal
	DayCounts
	Amounts
}

// Policy carries the payroll settings loaded from configuration.
type Policy struct {
	CycleDay      int
	LatePenalty   decimal.Decimal
	MaxPeriodDays int
	// Workday decides when today starts counting towards the tally.
	Workday attendance.Policy
}

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ExportFile is a rendered payroll download.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
