package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kolkata(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	return loc
}

func testPolicy(t *testing.T) Policy {
	return Policy{
		Location:      kolkata(t),
		WorkStart:     9 * time.Hour,
		WorkEnd:       18 * time.Hour,
		LateThreshold: 15 * time.Minute,
		WeekStart:     time.Monday,
	}
}

func TestIsLate(t *testing.T) {
	p := testPolicy(t)
	loc := p.Location

	cases := []struct {
		name    string
		checkIn time.Time
		late    bool
	}{
		{"early", time.Date(2024, 1, 10, 8, 0, 0, 0, loc), false},
		{"exactly at cutoff", time.Date(2024, 1, 10, 9, 15, 0, 0, loc), false},
		{"one second after cutoff", time.Date(2024, 1, 10, 9, 15, 1, 0, loc), true},
		{"10:31", time.Date(2024, 1, 10, 10, 31, 0, 0, loc), true},
		// 04:01 UTC is 09:31 in Kolkata
		{"utc input", time.Date(2024, 1, 10, 4, 1, 0, 0, time.UTC), true},
		// 03:40 UTC is 09:10 in Kolkata
		{"utc input on time", time.Date(2024, 1, 10, 3, 40, 0, 0, time.UTC), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.late, p.IsLate(tc.checkIn))
		})
	}

	status, late := p.CheckInStatus(time.Date(2024, 1, 10, 10, 31, 0, 0, loc))
	assert.Equal(t, StatusLate, status)
	assert.True(t, late)
}

func TestHoursBetween(t *testing.T) {
	in := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, 8.5, HoursBetween(in, in.Add(8*time.Hour+30*time.Minute)))
	assert.Equal(t, 0.33, HoursBetween(in, in.Add(20*time.Minute)))
	assert.Equal(t, 0.0, HoursBetween(in, in.Add(-time.Hour)))
}

func TestWeekRange(t *testing.T) {
	p := testPolicy(t)
	wed := time.Date(2024, 1, 10, 15, 0, 0, 0, p.Location)

	start, end := p.WeekRange(wed)
	assert.Equal(t, "2024-01-08", DateKey(start))
	assert.Equal(t, "2024-01-14", DateKey(end))

	p.WeekStart = time.Sunday
	start, end = p.WeekRange(wed)
	assert.Equal(t, "2024-01-07", DateKey(start))
	assert.Equal(t, "2024-01-13", DateKey(end))
}

func TestMonthRange(t *testing.T) {
	p := testPolicy(t)
	first, last := p.MonthRange(2024, time.February)
	assert.Equal(t, "2024-02-01", DateKey(first))
	assert.Equal(t, "2024-02-29", DateKey(last))
}

func day(loc *time.Location, d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, loc)
}

func TestSummarize(t *testing.T) {
	p := testPolicy(t)
	loc := p.Location
	cal := NewCalendar(map[string]string{"2024-01-26": "Republic Day"})

	records := []Record{
		{Date: day(time.UTC, 1), Status: StatusPresent, Hours: 8},
		{Date: day(time.UTC, 2), Status: StatusLate, IsLate: true, Hours: 7.5},
	}
	leave := LeaveSet{}
	leave.AddRange(day(time.UTC, 3), day(time.UTC, 3))

	from, to := p.MonthRange(2024, time.January)

	t.Run("counts only up to asOf", func(t *testing.T) {
		s := cal.Summarize(records, leave, from, to, day(loc, 5))
		assert.Equal(t, Summary{
			Present:        1,
			Late:           1,
			Absent:         2,
			Leave:          1,
			WorkingDays:    5,
			TotalDays:      5,
			TotalHours:     15.5,
			AttendanceRate: 40,
		}, s)
	})

	t.Run("weekends and holidays leave the denominator", func(t *testing.T) {
		s := cal.Summarize(records, leave, from, to, day(loc, 31))
		assert.Equal(t, 31, s.TotalDays)
		assert.Equal(t, 8, s.Weekends)
		assert.Equal(t, 1, s.Holidays)
		assert.Equal(t, 22, s.WorkingDays)
		assert.Equal(t, s.WorkingDays, s.Present+s.Late+s.Absent+s.Leave)
		assert.Equal(t, 9.09, s.AttendanceRate)
	})

	t.Run("zero denominator gives zero rate", func(t *testing.T) {
		s := cal.Summarize(nil, nil, day(loc, 6), day(loc, 7), day(loc, 31))
		assert.Equal(t, 2, s.Weekends)
		assert.Equal(t, 0, s.WorkingDays)
		assert.Equal(t, 0.0, s.AttendanceRate)

		s = cal.Summarize(nil, nil, day(loc, 26), day(loc, 26), day(loc, 31))
		assert.Equal(t, 1, s.Holidays)
		assert.Equal(t, 0, s.Absent)
		assert.Equal(t, 0.0, s.AttendanceRate)
	})

	t.Run("entirely in the future", func(t *testing.T) {
		s := cal.Summarize(records, leave, from, to, time.Date(2023, 12, 31, 0, 0, 0, 0, loc))
		assert.Equal(t, Summary{}, s)
	})
}

func TestClassifyDay(t *testing.T) {
	assert.Equal(t, StatusLate, ClassifyDay(Record{Status: StatusLate}, true, true))
	assert.Equal(t, StatusOnLeave, ClassifyDay(Record{Status: StatusAbsent}, true, true))
	assert.Equal(t, StatusOnLeave, ClassifyDay(Record{}, false, true))
	assert.Equal(t, StatusAbsent, ClassifyDay(Record{}, false, false))
}

func TestBuildMonth(t *testing.T) {
	p := testPolicy(t)
	loc := p.Location
	cal := NewCalendar(map[string]string{"2024-01-26": "Republic Day"})

	checkIn := time.Date(2024, 1, 2, 9, 5, 0, 0, loc)
	records := []Record{
		{Date: day(time.UTC, 2), CheckIn: &checkIn, Status: StatusPresent, Hours: 8},
	}
	leave := LeaveSet{}
	leave.AddRange(day(time.UTC, 10), day(time.UTC, 12))

	days, stats := cal.BuildMonth(p, 2024, time.January, records, leave, day(loc, 20), day(loc, 20))

	// January 1st 2024 is a Monday: one leading blank for Sunday.
	require.Len(t, days, 1+31)
	assert.True(t, days[0].Blank)
	assert.Equal(t, 1, days[1].Day)

	cell := func(d int) CalendarDay { return days[d] }

	assert.Equal(t, "Present", cell(2).Status)
	assert.Equal(t, &checkIn, cell(2).CheckIn)

	for _, d := range []int{10, 11, 12} {
		assert.True(t, cell(d).IsLeave, "day %d", d)
		assert.Equal(t, "On Leave", cell(d).Status, "day %d", d)
	}
	assert.Equal(t, 3, stats.Leave)

	assert.True(t, cell(13).IsWeekend)
	assert.Equal(t, "Weekend", cell(13).Status)
	assert.False(t, cell(13).IsLeave)

	assert.True(t, cell(26).IsHoliday)
	assert.Equal(t, "Republic Day", cell(26).HolidayName)

	assert.Equal(t, "Absent", cell(3).Status)
	assert.True(t, cell(22).IsFuture)
	assert.Empty(t, cell(22).Status)
	assert.False(t, cell(19).IsFuture)

	t.Run("open today has no outcome yet", func(t *testing.T) {
		days, open := cal.BuildMonth(p, 2024, time.January, records, leave, day(loc, 19), day(loc, 18))
		assert.False(t, days[19].IsFuture)
		assert.Empty(t, days[19].Status)
		assert.Equal(t, "Absent", days[18].Status)

		_, settled := cal.BuildMonth(p, 2024, time.January, records, leave, day(loc, 19), day(loc, 19))
		assert.Equal(t, settled.Absent-1, open.Absent)
		assert.Equal(t, settled.TotalDays-1, open.TotalDays)
	})
}

func TestSettledThrough(t *testing.T) {
	p := testPolicy(t)
	loc := p.Location
	today := time.Date(2024, 1, 22, 0, 0, 0, 0, loc)
	yesterday := today.AddDate(0, 0, -1)

	cases := []struct {
		name      string
		now       time.Time
		checkedIn bool
		want      time.Time
	}{
		{"before the working day", time.Date(2024, 1, 22, 7, 0, 0, 0, loc), false, yesterday},
		{"within the grace period", time.Date(2024, 1, 22, 9, 15, 0, 0, loc), false, yesterday},
		{"after the late cutoff", time.Date(2024, 1, 22, 9, 15, 1, 0, loc), false, today},
		{"checked in early", time.Date(2024, 1, 22, 8, 30, 0, 0, loc), true, today},
		// 01:30 UTC is 07:00 in Kolkata
		{"utc input", time.Date(2024, 1, 22, 1, 30, 0, 0, time.UTC), false, yesterday},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, tc.want.Equal(p.SettledThrough(tc.now, tc.checkedIn)))
		})
	}
}
