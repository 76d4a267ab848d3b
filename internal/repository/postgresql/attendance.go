package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-portal-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-portal-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

// GetToday implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetToday(ctx context.Context, employeeID string) (attendance.Today, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT today_date, today_check_in, today_check_out, today_status, today_is_late, today_hours
		FROM employees
		WHERE id = $1
	`

	var (
		t    attendance.Today
		date *time.Time
	)
	err := q.QueryRow(ctx, query, employeeID).Scan(&date, &t.CheckIn, &t.CheckOut, &t.Status, &t.IsLate, &t.Hours)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Today{}, employee.ErrEmployeeNotFound
		}
		return attendance.Today{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if date != nil {
		t.Date = *date
	}
	return t, nil
}

// CommitElapsedDay implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) CommitElapsedDay(ctx context.Context, employeeID string, day time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_records (employee_id, date, check_in, check_out, status, is_late, hours)
		SELECT id, today_date, today_check_in, today_check_out, today_status, today_is_late, today_hours
		FROM employees
		WHERE id = $1 AND today_date IS NOT NULL AND today_date < $2
		ON CONFLICT (employee_id, date) DO NOTHING
	`

	if _, err := q.Exec(ctx, query, employeeID, day); err != nil {
		return fmt.Errorf("failed to commit elapsed day: %w", err)
	}
	return nil
}

// CheckIn implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) CheckIn(ctx context.Context, employeeID string, day time.Time, at time.Time, status attendance.Status, isLate bool) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employees
		SET today_date = $2,
			today_check_in = $3,
			today_check_out = NULL,
			today_status = $4,
			today_is_late = $5,
			today_hours = 0,
			updated_at = NOW()
		WHERE id = $1
			AND NOT (today_date IS NOT DISTINCT FROM $2::date AND today_check_in IS NOT NULL)
	`

	tag, err := q.Exec(ctx, query, employeeID, day, at, status, isLate)
	if err != nil {
		return false, fmt.Errorf("failed to check in: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// CheckOut implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) CheckOut(ctx context.Context, employeeID string, day time.Time, at time.Time, hours float64) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employees
		SET today_check_out = $3,
			today_hours = $4,
			updated_at = NOW()
		WHERE id = $1
			AND today_date = $2
			AND today_check_in IS NOT NULL
			AND today_check_out IS NULL
	`

	tag, err := q.Exec(ctx, query, employeeID, day, at, hours)
	if err != nil {
		return false, fmt.Errorf("failed to check out: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ResetToday implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ResetToday(ctx context.Context, employeeID string, day time.Time, force bool) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employees
		SET today_date = $2,
			today_check_in = NULL,
			today_check_out = NULL,
			today_status = 'Absent',
			today_is_late = FALSE,
			today_hours = 0,
			updated_at = NOW()
		WHERE id = $1
			AND ($3 OR today_date IS DISTINCT FROM $2::date)
	`

	tag, err := q.Exec(ctx, query, employeeID, day, force)
	if err != nil {
		return false, fmt.Errorf("failed to reset today's attendance: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// UpsertRecord implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) UpsertRecord(ctx context.Context, record attendance.Record) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_records (employee_id, date, check_in, check_out, status, is_late, hours)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (employee_id, date) DO UPDATE
		SET check_in = EXCLUDED.check_in,
			check_out = EXCLUDED.check_out,
			status = EXCLUDED.status,
			is_late = EXCLUDED.is_late,
			hours = EXCLUDED.hours,
			updated_at = NOW()
		WHERE attendance_records.check_out IS NULL
	`

	tag, err := q.Exec(ctx, query,
		record.EmployeeID, record.Date, record.CheckIn, record.CheckOut,
		record.Status, record.IsLate, record.Hours,
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert attendance record: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

const recordColumns = `employee_id, date, check_in, check_out, status, is_late, hours`

// ListRecords implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ListRecords(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE employee_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date ASC
	`
	return r.queryRecords(ctx, query, employeeID, from, to)
}

// ListRecordsInRange implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ListRecordsInRange(ctx context.Context, from, to time.Time) ([]attendance.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE date BETWEEN $1 AND $2
		ORDER BY employee_id ASC, date ASC
	`
	return r.queryRecords(ctx, query, from, to)
}

// RecentRecords implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) RecentRecords(ctx context.Context, employeeID string, limit int) ([]attendance.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE employee_id = $1
		ORDER BY date DESC
		LIMIT $2
	`
	return r.queryRecords(ctx, query, employeeID, limit)
}

func (r *attendanceRepositoryImpl) queryRecords(ctx context.Context, query string, args ...interface{}) ([]attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance records: %w", err)
	}
	defer rows.Close()

	records := make([]attendance.Record, 0)
	for rows.Next() {
		var rec attendance.Record
		if err := rows.Scan(
			&rec.EmployeeID, &rec.Date, &rec.CheckIn, &rec.CheckOut,
			&rec.Status, &rec.IsLate, &rec.Hours,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
