package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// CheckIn stamps the server time as today's check-in
	CheckIn(ctx context.Context, employeeID string) (CheckInResponse, error)

	// CheckOut stamps the server time as today's check-out and computes worked hours
	CheckOut(ctx context.Context, employeeID string) (CheckOutResponse, error)

	// DailyReset rolls every employee onto the current day. force resets employees already on it.
	DailyReset(ctx context.Context, force bool) (ResetSummary, error)

	GetPortalData(ctx context.Context, employeeID string) (PortalData, error)

	GetAttendanceDetails(ctx context.Context, req AttendanceDetailsRequest) (AttendanceDetailsResponse, error)
}
