package attendance

import (
	"context"
	"time"
)

// AttendanceRepository covers both the per-employee today state and the
// attendance_records history. Day arguments are calendar dates.
type AttendanceRepository interface {
	GetToday(ctx context.Context, employeeID string) (Today, error)

	// CommitElapsedDay copies today's state into records when it belongs to a
	// day before day. An existing record for that date is left alone.
	CommitElapsedDay(ctx context.Context, employeeID string, day time.Time) error

	// CheckIn sets today's check-in unless one already exists for day.
	// It returns false when the guard rejected the write.
	CheckIn(ctx context.Context, employeeID string, day time.Time, at time.Time, status Status, isLate bool) (bool, error)

	// CheckOut records the check-out for day when a check-in exists and no
	// check-out does. It returns false when the guard rejected the write.
	CheckOut(ctx context.Context, employeeID string, day time.Time, at time.Time, hours float64) (bool, error)

	// ResetToday puts today back to Absent for day. Without force an employee
	// already on day is untouched and false is returned.
	ResetToday(ctx context.Context, employeeID string, day time.Time, force bool) (bool, error)

	// UpsertRecord writes the history row for record.Date. A row that is
	// already checked out is closed and false is returned.
	UpsertRecord(ctx context.Context, record Record) (bool, error)
	ListRecords(ctx context.Context, employeeID string, from, to time.Time) ([]Record, error)
	ListRecordsInRange(ctx context.Context, from, to time.Time) ([]Record, error)
	RecentRecords(ctx context.Context, employeeID string, limit int) ([]Record, error)
}
