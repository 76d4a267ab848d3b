package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-portal-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-portal-go/internal/domain/holiday"
)

type holidayRepo struct{ s *Store }

// Create implements holiday.HolidayRepository.
func (r holidayRepo) Create(ctx context.Context, h holiday.Holiday) (holiday.Holiday, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := attendance.DateKey(h.Date)
	if _, ok := r.s.data.holidays[k]; ok {
		return holiday.Holiday{}, holiday.ErrHolidayExists
	}
	r.s.data.holidays[k] = h
	return h, nil
}

// ListByYear implements holiday.HolidayRepository.
func (r holidayRepo) ListByYear(ctx context.Context, year int) ([]holiday.Holiday, error) {
	return r.filter(func(h holiday.Holiday) bool { return year == 0 || h.Date.Year() == year }), nil
}

// ListBetween implements holiday.HolidayRepository.
func (r holidayRepo) ListBetween(ctx context.Context, from, to time.Time) ([]holiday.Holiday, error) {
	return r.filter(func(h holiday.Holiday) bool { return inRange(h.Date, from, to) }), nil
}

func (r holidayRepo) filter(keep func(holiday.Holiday) bool) []holiday.Holiday {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]holiday.Holiday, 0)
	for _, h := range r.s.data.holidays {
		if keep(h) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return attendance.DateKey(out[i].Date) < attendance.DateKey(out[j].Date) })
	return out
}
