package attendance

import (
	"math"
	"time"
)

const DateLayout = "2006-01-02"

// Policy is the working-hours configuration every time-of-day decision is
// made against. Clock values are offsets from local midnight in Location.
type Policy struct {
	Location      *time.Location
	WorkStart     time.Duration
	WorkEnd       time.Duration
	LateThreshold time.Duration
	WeekStart     time.Weekday
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// Day returns local midnight of the calendar date t falls on.
func (p Policy) Day(t time.Time) time.Time {
	y, m, d := t.In(p.location()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, p.location())
}

func (p Policy) at(day time.Time, offset time.Duration) time.Time {
	y, m, d := day.In(p.location()).Date()
	return time.Date(y, m, d, 0, 0, int(offset/time.Second), 0, p.location())
}

// LateCutoff is the last on-time instant of day: WorkStart plus the grace threshold.
func (p Policy) LateCutoff(day time.Time) time.Time {
	return p.at(day, p.WorkStart+p.LateThreshold)
}

// SettledThrough returns the last day whose outcome is known at now. Today
// stays open until the employee checks in or the late cutoff passes.
func (p Policy) SettledThrough(now time.Time, checkedIn bool) time.Time {
	day := p.Day(now)
	if checkedIn || now.After(p.LateCutoff(day)) {
		return day
	}
	return day.AddDate(0, 0, -1)
}

// IsLate reports whether checkIn falls strictly after the cutoff of its own day.
func (p Policy) IsLate(checkIn time.Time) bool {
	return checkIn.After(p.LateCutoff(checkIn))
}

func (p Policy) CheckInStatus(checkIn time.Time) (Status, bool) {
	if p.IsLate(checkIn) {
		return StatusLate, true
	}
	return StatusPresent, false
}

// WeekRange returns the first and last day of the week containing day.
func (p Policy) WeekRange(day time.Time) (time.Time, time.Time) {
	d := p.Day(day)
	offset := (int(d.Weekday()) - int(p.WeekStart) + 7) % 7
	start := d.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 6)
}

// MonthRange returns the first and last day of the month in the policy timezone.
func (p Policy) MonthRange(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, p.location())
	return first, first.AddDate(0, 1, -1)
}

// HoursBetween is the worked time in hours rounded to two decimals, never negative.
func HoursBetween(checkIn, checkOut time.Time) float64 {
	h := checkOut.Sub(checkIn).Hours()
	if h < 0 {
		return 0
	}
	return round2(h)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// Calendar knows which days are non-working: Saturdays, Sundays and holidays.
type Calendar struct {
	holidays map[string]string
}

// NewCalendar takes holiday names keyed by YYYY-MM-DD.
func NewCalendar(holidays map[string]string) Calendar {
	if holidays == nil {
		holidays = map[string]string{}
	}
	return Calendar{holidays: holidays}
}

func (c Calendar) IsWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (c Calendar) Holiday(d time.Time) (string, bool) {
	name, ok := c.holidays[DateKey(d)]
	return name, ok
}

func (c Calendar) IsWorkingDay(d time.Time) bool {
	if c.IsWeekend(d) {
		return false
	}
	_, holiday := c.Holiday(d)
	return !holiday
}

// WorkingDays counts working days in [from, to].
func (c Calendar) WorkingDays(from, to time.Time) int {
	n := 0
	for d := from; DateKey(d) <= DateKey(to); d = d.AddDate(0, 0, 1) {
		if c.IsWorkingDay(d) {
			n++
		}
	}
	return n
}

// LeaveSet holds the dates covered by approved leave.
type LeaveSet map[string]bool

// AddRange marks every day of the inclusive range.
func (s LeaveSet) AddRange(start, end time.Time) {
	for d := start; DateKey(d) <= DateKey(end); d = d.AddDate(0, 0, 1) {
		s[DateKey(d)] = true
	}
}

func (s LeaveSet) Has(d time.Time) bool {
	return s[DateKey(d)]
}

// IndexRecords keys records by date. Later duplicates win.
func IndexRecords(records []Record) map[string]Record {
	out := make(map[string]Record, len(records))
	for _, r := range records {
		out[DateKey(r.Date)] = r
	}
	return out
}

// ClassifyDay resolves the status of a working day that has already started.
// Attendance wins over leave; approved leave only replaces Absent.
func ClassifyDay(rec Record, hasRecord bool, onLeave bool) Status {
	if hasRecord {
		switch rec.Status {
		case StatusPresent, StatusLate, StatusOnLeave:
			return rec.Status
		}
	}
	if onLeave {
		return StatusOnLeave
	}
	return StatusAbsent
}

type Summary struct {
	Present        int     `json:"present"`
	Late           int     `json:"late"`
	Absent         int     `json:"absent"`
	Leave          int     `json:"leave"`
	Holidays       int     `json:"holidays"`
	Weekends       int     `json:"weekends"`
	WorkingDays    int     `json:"working_days"`
	TotalDays      int     `json:"total_days"`
	TotalHours     float64 `json:"total_hours"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// Summarize aggregates [from, to] up to and including asOf. Days after asOf
// are not counted anywhere. The attendance rate is taken over working days
// only and is zero when there are none.
func (c Calendar) Summarize(records []Record, leave LeaveSet, from, to, asOf time.Time) Summary {
	var s Summary
	byDate := IndexRecords(records)
	last := DateKey(to)
	if k := DateKey(asOf); k < last {
		last = k
	}

	for d := from; DateKey(d) <= last; d = d.AddDate(0, 0, 1) {
		key := DateKey(d)
		rec, hasRec := byDate[key]
		s.TotalDays++
		if hasRec {
			s.TotalHours += rec.Hours
		}

		if c.IsWeekend(d) {
			s.Weekends++
			continue
		}
		if _, ok := c.Holiday(d); ok {
			s.Holidays++
			continue
		}

		s.WorkingDays++
		switch ClassifyDay(rec, hasRec, leave.Has(d)) {
		case StatusPresent:
			s.Present++
		case StatusLate:
			s.Late++
		case StatusOnLeave:
			s.Leave++
		default:
			s.Absent++
		}
	}

	s.TotalHours = round2(s.TotalHours)
	if denom := s.TotalDays - s.Weekends - s.Holidays; denom > 0 {
		s.AttendanceRate = round2(float64(s.Present+s.Late) / float64(denom) * 100)
	}
	return s
}

const (
	dayStatusWeekend = "Weekend"
	dayStatusHoliday = "Holiday"
)

type CalendarDay struct {
	Blank       bool       `json:"blank,omitempty"`
	Date        string     `json:"date,omitempty"`
	Day         int        `json:"day,omitempty"`
	Status      string     `json:"status,omitempty"`
	CheckIn     *time.Time `json:"check_in,omitempty"`
	CheckOut    *time.Time `json:"check_out,omitempty"`
	Hours       float64    `json:"hours"`
	IsLeave     bool       `json:"is_leave"`
	IsHoliday   bool       `json:"is_holiday"`
	HolidayName string     `json:"holiday_name,omitempty"`
	IsWeekend   bool       `json:"is_weekend"`
	IsFuture    bool       `json:"is_future"`
}

// BuildMonth lays out a Sunday-first month grid. Leading blank cells align
// day 1 with its weekday. Days after settled carry no outcome yet and stats
// cover the month up to settled.
func (c Calendar) BuildMonth(p Policy, year int, month time.Month, records []Record, leave LeaveSet, today, settled time.Time) ([]CalendarDay, Summary) {
	first, last := p.MonthRange(year, month)
	byDate := IndexRecords(records)
	todayKey, settledKey := DateKey(today), DateKey(settled)

	days := make([]CalendarDay, 0, 42)
	for i := 0; i < int(first.Weekday()); i++ {
		days = append(days, CalendarDay{Blank: true})
	}

	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		key := DateKey(d)
		rec, hasRec := byDate[key]
		cell := CalendarDay{
			Date:      key,
			Day:       d.Day(),
			IsWeekend: c.IsWeekend(d),
			IsFuture:  key > todayKey,
		}
		cell.HolidayName, cell.IsHoliday = c.Holiday(d)
		if hasRec {
			cell.CheckIn, cell.CheckOut, cell.Hours = rec.CheckIn, rec.CheckOut, rec.Hours
		}

		switch {
		case hasRec && rec.Attended():
			cell.Status = string(rec.Status)
		case cell.IsWeekend:
			cell.Status = dayStatusWeekend
		case cell.IsHoliday:
			cell.Status = dayStatusHoliday
		case key > settledKey:
			if leave.Has(d) {
				cell.Status, cell.IsLeave = string(StatusOnLeave), true
			}
		default:
			status := ClassifyDay(rec, hasRec, leave.Has(d))
			cell.Status = string(status)
			cell.IsLeave = status == StatusOnLeave
		}

		days = append(days, cell)
	}

	return days, c.Summarize(records, leave, first, last, settled)
}
