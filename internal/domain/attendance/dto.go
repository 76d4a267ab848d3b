package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-portal-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-portal-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/validator"
)

type CheckInResponse struct {
	EmployeeID  string    `json:"employee_id"`
	CheckInTime time.Time `json:"check_in_time"`
	Status      Status    `json:"status"`
	IsLate      bool      `json:"is_late"`
}

type CheckOutResponse struct {
	EmployeeID   string    `json:"employee_id"`
	CheckOutTime time.Time `json:"check_out_time"`
	HoursWorked  float64   `json:"hours_worked"`
}

type TodayResponse struct {
	Date     string     `json:"date"`
	CheckIn  *time.Time `json:"check_in"`
	CheckOut *time.Time `json:"check_out"`
	Status   Status     `json:"status"`
	IsLate   bool       `json:"is_late"`
	Hours    float64    `json:"hours"`
}

func ToTodayResponse(t Today) TodayResponse {
	return TodayResponse{
		Date:     DateKey(t.Date),
		CheckIn:  t.CheckIn,
		CheckOut: t.CheckOut,
		Status:   t.Status,
		IsLate:   t.IsLate,
		Hours:    t.Hours,
	}
}

type RecordResponse struct {
	Date     string     `json:"date"`
	CheckIn  *time.Time `json:"check_in"`
	CheckOut *time.Time `json:"check_out"`
	Status   Status     `json:"status"`
	IsLate   bool       `json:"is_late"`
	Hours    float64    `json:"hours"`
}

func ToRecordResponses(records []Record) []RecordResponse {
	out := make([]RecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, RecordResponse{
			Date:     DateKey(r.Date),
			CheckIn:  r.CheckIn,
			CheckOut: r.CheckOut,
			Status:   r.Status,
			IsLate:   r.IsLate,
			Hours:    r.Hours,
		})
	}
	return out
}

// PeriodSummary is a Summary labelled with the range it covers.
type PeriodSummary struct {
	From string `json:"from"`
	To   string `json:"to"`
	Summary
}

type PortalData struct {
	Employee         employee.EmployeeResponse     `json:"employee"`
	Today            TodayResponse                 `json:"today"`
	ThisWeek         PeriodSummary                 `json:"this_week"`
	ThisMonth        PeriodSummary                 `json:"this_month"`
	RecentAttendance []RecordResponse              `json:"recent_attendance"`
	LeaveBalance     map[string]leave.BalanceEntry `json:"leave_balance"`
}

type AttendanceDetailsRequest struct {
	EmployeeID string `json:"-"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`
}

func (r AttendanceDetailsRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be between 1 and 12"})
	}
	if r.Year < 2000 || r.Year > 2100 {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "year must be between 2000 and 2100"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AttendanceDetailsResponse struct {
	Month        int           `json:"month"`
	Year         int           `json:"year"`
	CalendarData []CalendarDay `json:"calendar_data"`
	MonthStats   Summary       `json:"month_stats"`
}

type ItemError struct {
	EmployeeID string `json:"employee_id"`
	Error      string `json:"error"`
}

// ResetSummary reports a bulk reset. Failures do not stop the run.
type ResetSummary struct {
	Date      string      `json:"date"`
	Forced    bool        `json:"forced"`
	Processed int         `json:"processed"`
	Updated   int         `json:"updated"`
	Skipped   int         `json:"skipped"`
	Failed    int         `json:"failed"`
	Errors    []ItemError `json:"errors"`
}
