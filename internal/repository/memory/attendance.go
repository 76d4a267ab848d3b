package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-portal-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-portal-go/internal/domain/employee"
)

type attendanceRepo struct{ s *Store }

func recordKey(employeeID string, day time.Time) string {
	return key(employeeID, attendance.DateKey(day))
}

// SetToday overwrites an employee's current-day state.
func (s *Store) SetToday(employeeID string, today attendance.Today) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.data.employees[employeeID]
	row.today = today
	s.data.employees[employeeID] = row
}

// Record returns the stored history row for the day.
func (s *Store) Record(employeeID string, day time.Time) (attendance.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.data.records[recordKey(employeeID, day)]
	return rec, ok
}

// PutRecord stores a history row unconditionally.
func (s *Store) PutRecord(record attendance.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.records[recordKey(record.EmployeeID, record.Date)] = record
}

// GetToday implements attendance.AttendanceRepository.
func (r attendanceRepo) GetToday(ctx context.Context, employeeID string) (attendance.Today, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.data.employees[employeeID]
	if !ok {
		return attendance.Today{}, employee.ErrEmployeeNotFound
	}
	return row.today, nil
}

// CommitElapsedDay implements attendance.AttendanceRepository.
func (r attendanceRepo) CommitElapsedDay(ctx context.Context, employeeID string, day time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("attendance.CommitElapsedDay"); err != nil {
		return err
	}

	row, ok := r.s.data.employees[employeeID]
	if !ok || row.today.Date.IsZero() || attendance.DateKey(row.today.Date) >= attendance.DateKey(day) {
		return nil
	}
	k := recordKey(employeeID, row.today.Date)
	if _, exists := r.s.data.records[k]; exists {
		return nil
	}
	t := row.today
	r.s.data.records[k] = attendance.Record{
		EmployeeID: employeeID,
		Date:       t.Date,
		CheckIn:    t.CheckIn,
		CheckOut:   t.CheckOut,
		Status:     t.Status,
		IsLate:     t.IsLate,
		Hours:      t.Hours,
	}
	return nil
}

// CheckIn implements attendance.AttendanceRepository.
func (r attendanceRepo) CheckIn(ctx context.Context, employeeID string, day time.Time, at time.Time, status attendance.Status, isLate bool) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.data.employees[employeeID]
	if !ok {
		return false, nil
	}
	if attendance.DateKey(row.today.Date) == attendance.DateKey(day) && row.today.CheckIn != nil {
		return false, nil
	}
	row.today = attendance.Today{Date: day, CheckIn: &at, Status: status, IsLate: isLate}
	r.s.data.employees[employeeID] = row
	return true, nil
}

// CheckOut implements attendance.AttendanceRepository.
func (r attendanceRepo) CheckOut(ctx context.Context, employeeID string, day time.Time, at time.Time, hours float64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.data.employees[employeeID]
	if !ok || attendance.DateKey(row.today.Date) != attendance.DateKey(day) ||
		row.today.CheckIn == nil || row.today.CheckOut != nil {
		return false, nil
	}
	row.today.CheckOut = &at
	row.today.Hours = hours
	r.s.data.employees[employeeID] = row
	return true, nil
}

// ResetToday implements attendance.AttendanceRepository.
func (r attendanceRepo) ResetToday(ctx context.Context, employeeID string, day time.Time, force bool) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("attendance.ResetToday"); err != nil {
		return false, err
	}

	row, ok := r.s.data.employees[employeeID]
	if !ok {
		return false, nil
	}
	if !force && attendance.DateKey(row.today.Date) == attendance.DateKey(day) {
		return false, nil
	}
	row.today = attendance.Today{Date: day, Status: attendance.StatusAbsent}
	r.s.data.employees[employeeID] = row
	return true, nil
}

// UpsertRecord implements attendance.AttendanceRepository.
func (r attendanceRepo) UpsertRecord(ctx context.Context, record attendance.Record) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("attendance.UpsertRecord"); err != nil {
		return false, err
	}
	k := recordKey(record.EmployeeID, record.Date)
	if existing, ok := r.s.data.records[k]; ok && existing.CheckOut != nil {
		return false, nil
	}
	r.s.data.records[k] = record
	return true, nil
}

// ListRecords implements attendance.AttendanceRepository.
func (r attendanceRepo) ListRecords(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Record, error) {
	return r.filter(func(rec attendance.Record) bool {
		return rec.EmployeeID == employeeID && inRange(rec.Date, from, to)
	}, false), nil
}

// ListRecordsInRange implements attendance.AttendanceRepository.
func (r attendanceRepo) ListRecordsInRange(ctx context.Context, from, to time.Time) ([]attendance.Record, error) {
	return r.filter(func(rec attendance.Record) bool {
		return inRange(rec.Date, from, to)
	}, false), nil
}

// RecentRecords implements attendance.AttendanceRepository.
func (r attendanceRepo) RecentRecords(ctx context.Context, employeeID string, limit int) ([]attendance.Record, error) {
	out := r.filter(func(rec attendance.Record) bool { return rec.EmployeeID == employeeID }, true)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func inRange(d, from, to time.Time) bool {
	k := attendance.DateKey(d)
	return k >= attendance.DateKey(from) && k <= attendance.DateKey(to)
}

func (r attendanceRepo) filter(keep func(attendance.Record) bool, newestFirst bool) []attendance.Record {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]attendance.Record, 0)
	for _, rec := range r.s.data.records {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EmployeeID != out[j].EmployeeID {
			return out[i].EmployeeID < out[j].EmployeeID
		}
		if newestFirst {
			return attendance.DateKey(out[i].Date) > attendance.DateKey(out[j].Date)
		}
		return attendance.DateKey(out[i].Date) < attendance.DateKey(out[j].Date)
	})
	return out
}
