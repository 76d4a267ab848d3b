package payroll

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type PayrollRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Format    string `json:"format"`
}

func (r *PayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Format = strings.ToLower(strings.TrimSpace(r.Format))
	if r.Format == "" {
		r.Format = string(FormatCSV)
	}
	if r.Format != string(FormatCSV) && r.Format != string(FormatXLSX) {
		errs = append(errs, validator.ValidationError{Field: "format", Message: "format must be csv or xlsx"})
	}

	if (r.StartDate == "") != (r.EndDate == "") {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date and end_date must be given together",
		})
	}
	if r.StartDate != "" {
		if _, ok := validator.IsValidDate(r.StartDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"})
		}
	}
	if r.EndDate != "" {
		if _, ok := validator.IsValidDate(r.EndDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be in YYYY-MM-DD format"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Resolve returns the requested period, or the cycle containing now when no
// dates were given. Call after Validate.
func (r PayrollRequest) Resolve(now time.Time, policy Policy) (Period, error) {
	if r.StartDate == "" {
		return DefaultPeriod(now, policy.CycleDay), nil
	}

	loc := now.Location()
	start, err := validator.ParseDateIn(r.StartDate, loc)
	if err != nil {
		return Period{}, err
	}
	end, err := validator.ParseDateIn(r.EndDate, loc)
	if err != nil {
		return Period{}, err
	}
	if start.After(end) {
		return Period{}, validator.ValidationErrors{{Field: "end_date", Message: "end_date must not be before start_date"}}
	}

	p := Period{Start: start, End: end}
	if policy.MaxPeriodDays > 0 && p.Days() > policy.MaxPeriodDays {
		return Period{}, validator.ValidationErrors{{
			Field:   "end_date",
			Message: fmt.Sprintf("payroll period must not exceed %d days", policy.MaxPeriodDays),
		}}
	}
	return p, nil
}

type PeriodResponse struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type RowResponse struct {
	EmployeeID    string          `json:"employee_id"`
	EmployeeName  string          `json:"employee_name"`
	Email         string          `json:"email"`
	Department    string          `json:"department"`
	MonthlySalary decimal.Decimal `json:"monthly_salary"`
	FullDays      int             `json:"full_days"`
	LateDays      int             `json:"late_days"`
	Absents       int             `json:"absents"`
	LeaveDays     int             `json:"leave_days"`
	DailyRate     decimal.Decimal `json:"daily_rate"`
	LOPAmount     decimal.Decimal `json:"lop_amount"`
	FinalPay      decimal.Decimal `json:"final_pay"`
}

func ToRowResponse(r Row) RowResponse {
	return RowResponse{
		EmployeeID:    r.EmployeeID,
		EmployeeName:  r.EmployeeName,
		Email:         r.Email,
		Department:    r.Department,
		MonthlySalary: r.MonthlySalary,
		FullDays:      r.FullDays,
		LateDays:      r.LateDays,
		Absents:       r.Absents,
		LeaveDays:     r.LeaveDays,
		DailyRate:     r.DailyRate,
		LOPAmount:     r.LOPAmount,
		FinalPay:      r.FinalPay,
	}
}

type PayrollResponse struct {
	PayrollPeriod    PeriodResponse  `json:"payroll_period"`
	TotalWorkingDays int             `json:"total_working_days"`
	FixedLatePenalty decimal.Decimal `json:"fixed_late_penalty"`
	PayrollData      []RowResponse   `json:"payroll_data"`
}
