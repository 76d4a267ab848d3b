package holiday

import (
	"context"
	"time"
)

type HolidayRepository interface {
	Create(ctx context.Context, h Holiday) (Holiday, error)
	// ListByYear returns every holiday when year is 0.
	ListByYear(ctx context.Context, year int) ([]Holiday, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]Holiday, error)
}
