package leave

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/validator"
)

type CreateLeaveTypeRequest struct {
	Code         string `json:"code"`
	Name         string `json:"name" validate:"required,max=100"`
	DefaultTotal int    `json:"default_total" validate:"gte=0,lte=366"`
	IsActive     *bool  `json:"is_active,omitempty"`
}

func (r *CreateLeaveTypeRequest) Validate() error {
	r.Code = strings.TrimSpace(r.Code)
	r.Name = strings.TrimSpace(r.Name)

	errs := validator.Struct(r)

	if !validator.IsValidLeaveTypeCode(r.Code) {
		errs = append(errs, validator.ValidationError{
			Field:   "code",
			Message: "code must be a lowercase key such as annual or work_from_home",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type LeaveTypeResponse struct {
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	DefaultTotal int       `json:"default_total"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

func ToLeaveTypeResponse(lt LeaveType) LeaveTypeResponse {
	return LeaveTypeResponse{
		Code:         lt.Code,
		Name:         lt.Name,
		DefaultTotal: lt.DefaultTotal,
		IsActive:     lt.IsActive,
		CreatedAt:    lt.CreatedAt,
	}
}

type BalanceEntry struct {
	Total     int `json:"total"`
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
}

// ToBalanceMap keys an employee's buckets by leave type code.
func ToBalanceMap(balances []Balance) map[string]BalanceEntry {
	out := make(map[string]BalanceEntry, len(balances))
	for _, b := range balances {
		out[b.LeaveType] = BalanceEntry{Total: b.Total, Used: b.Used, Remaining: b.Remaining}
	}
	return out
}

type CreateLeaveRequestRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	LeaveType  string `json:"leave_type" validate:"required"`
	StartDate  string `json:"start_date" validate:"required,date"`
	EndDate    string `json:"end_date" validate:"required,date"`
	Reason     string `json:"reason" validate:"required,max=1000"`
}

func (r *CreateLeaveRequestRequest) Validate() error {
	r.Reason = strings.TrimSpace(r.Reason)
	r.LeaveType = strings.ToLower(strings.TrimSpace(r.LeaveType))

	errs := validator.Struct(r)

	start, okStart := validator.IsValidDate(r.StartDate)
	end, okEnd := validator.IsValidDate(r.EndDate)
	if okStart && okEnd && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Dates returns the parsed range. Call after Validate.
func (r CreateLeaveRequestRequest) Dates() (time.Time, time.Time) {
	start, _ := validator.IsValidDate(r.StartDate)
	end, _ := validator.IsValidDate(r.EndDate)
	return start, end
}

type DecideLeaveRequestRequest struct {
	ID            string  `json:"-"`
	Status        string  `json:"status"`
	AdminResponse *string `json:"admin_response,omitempty"`
	AdminName     *string `json:"admin_name,omitempty"`
}

func (r DecideLeaveRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id is required"})
	}
	if r.Status != string(StatusApproved) && r.Status != string(StatusRejected) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be Approved or Rejected",
		})
	}
	if r.AdminResponse != nil && len(*r.AdminResponse) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "admin_response",
			Message: "admin_response must not exceed 1000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type LeaveRequestFilter struct {
	EmployeeID string `json:"employee_id"`
	Status     string `json:"status"`
}

func (f LeaveRequestFilter) Validate() error {
	statuses := []string{string(StatusPending), string(StatusApproved), string(StatusRejected)}
	if f.Status != "" && !validator.IsInSlice(f.Status, statuses) {
		return validator.ValidationErrors{{
			Field:   "status",
			Message: "status must be one of: " + strings.Join(statuses, ", "),
		}}
	}
	return nil
}

type LeaveRequestResponse struct {
	ID            string        `json:"id"`
	EmployeeID    string        `json:"employee_id"`
	EmployeeName  string        `json:"employee_name"`
	EmployeeEmail string        `json:"employee_email"`
	LeaveType     string        `json:"leave_type"`
	StartDate     string        `json:"start_date"`
	EndDate       string        `json:"end_date"`
	TotalDays     int           `json:"total_days"`
	Reason        string        `json:"reason"`
	Status        RequestStatus `json:"status"`
	AdminResponse *string       `json:"admin_response,omitempty"`
	AdminName     *string       `json:"admin_name,omitempty"`
	RequestedAt   time.Time     `json:"requested_at"`
	DecidedAt     *time.Time    `json:"decided_at,omitempty"`
}

func ToLeaveRequestResponse(r LeaveRequest) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:            r.ID,
		EmployeeID:    r.EmployeeID,
		EmployeeName:  r.EmployeeName,
		EmployeeEmail: r.EmployeeEmail,
		LeaveType:     r.LeaveType,
		StartDate:     r.StartDate.Format(validator.DateLayout),
		EndDate:       r.EndDate.Format(validator.DateLayout),
		TotalDays:     r.TotalDays,
		Reason:        r.Reason,
		Status:        r.Status,
		AdminResponse: r.AdminResponse,
		AdminName:     r.AdminName,
		RequestedAt:   r.RequestedAt,
		DecidedAt:     r.DecidedAt,
	}
}

type BucketError struct {
	EmployeeID string `json:"employee_id"`
	LeaveType  string `json:"leave_type,omitempty"`
	Error      string `json:"error"`
}

// RecalculationSummary reports a balance resync. Failures do not stop the run.
type RecalculationSummary struct {
	Processed int           `json:"processed"`
	Updated   int           `json:"updated"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Errors    []BucketError `json:"errors"`
}
