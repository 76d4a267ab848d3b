package attendance

import (
	"time"
)

type Status string

const (
	StatusPresent Status = "Present"
	StatusLate    Status = "Late"
	StatusAbsent  Status = "Absent"
	StatusOnLeave Status = "On Leave"
)

// Today is the mutable attendance state kept on the employee row for the
// current business day.
type Today struct {
	Date     time.Time
	CheckIn  *time.Time
	CheckOut *time.Time
	Status   Status
	IsLate   bool
	Hours    float64
}

// Record is one day of attendance history. The record for the current day
// is updated in place until checkout; older records are never rewritten.
type Record struct {
	EmployeeID string
	Date       time.Time
	CheckIn    *time.Time
	CheckOut   *time.Time
	Status     Status
	IsLate     bool
	Hours      float64
}

func (r Record) Attended() bool {
	return r.Status == StatusPresent || r.Status == StatusLate
}
