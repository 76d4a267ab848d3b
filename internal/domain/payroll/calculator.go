package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-portal-go/internal/domain/attendance"
	"github.com/shopspring/decimal"
)

// DefaultPeriod returns the cycle containing now. A cycle runs from cycleDay
// of one month through the day before cycleDay of the next month.
func DefaultPeriod(now time.Time, cycleDay int) Period {
	y, m, d := now.Date()
	start := time.Date(y, m, cycleDay, 0, 0, 0, 0, now.Location())
	if d < cycleDay {
		start = start.AddDate(0, -1, 0)
	}
	return Period{Start: start, End: start.AddDate(0, 1, -1)}
}

// JoinedOn narrows p to start no earlier than the day of joined.
func (p Period) JoinedOn(joined time.Time) Period {
	y, m, d := joined.In(p.Start.Location()).Date()
	if day := time.Date(y, m, d, 0, 0, 0, 0, p.Start.Location()); day.After(p.Start) {
		p.Start = day
	}
	return p
}

// Days is the inclusive length of the period.
func (p Period) Days() int {
	s := time.Date(p.Start.Year(), p.Start.Month(), p.Start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(p.End.Year(), p.End.Month(), p.End.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours()/24) + 1
}

type DayCounts struct {
	FullDays  int
	LateDays  int
	Absents   int
	LeaveDays int
}

// Tally classifies each working day of p that has started by asOf.
func Tally(cal attendance.Calendar, records []attendance.Record, leave attendance.LeaveSet, p Period, asOf time.Time) DayCounts {
	var c DayCounts
	byDate := attendance.IndexRecords(records)
	last := attendance.DateKey(p.End)
	if k := attendance.DateKey(asOf); k < last {
		last = k
	}

	for d := p.Start; attendance.DateKey(d) <= last; d = d.AddDate(0, 0, 1) {
		if !cal.IsWorkingDay(d) {
			continue
		}
		rec, ok := byDate[attendance.DateKey(d)]
		switch attendance.ClassifyDay(rec, ok, leave.Has(d)) {
		case attendance.StatusPresent:
			c.FullDays++
		case attendance.StatusLate:
			c.LateDays++
		case attendance.StatusOnLeave:
			c.LeaveDays++
		default:
			c.Absents++
		}
	}
	return c
}

type Amounts struct {
	DailyRate decimal.Decimal
	LOPAmount decimal.Decimal
	FinalPay  decimal.Decimal
}

// Compute applies loss of pay: absences at the daily rate plus a fixed
// penalty per late day. Final pay never drops below zero.
func Compute(salary decimal.Decimal, totalWorkingDays int, c DayCounts, latePenalty decimal.Decimal) Amounts {
	dailyRate := decimal.Zero
	if totalWorkingDays > 0 {
		dailyRate = salary.Div(decimal.NewFromInt(int64(totalWorkingDays)))
	}

	lop := dailyRate.Mul(decimal.NewFromInt(int64(c.Absents))).
		Add(latePenalty.Mul(decimal.NewFromInt(int64(c.LateDays))))

	final := salary.Sub(lop)
	if final.IsNegative() {
		final = decimal.Zero
	}

	return Amounts{
		DailyRate: dailyRate.Round(2),
		LOPAmount: lop.Round(2),
		FinalPay:  final.Round(2),
	}
}
