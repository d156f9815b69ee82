package legs

import (
	"context"
	"time"

	"fleetbook/internal/domain/shared/daterange"
)

// DueLeg is a denormalised row joining a leg with the booking context the
// batch jobs and notification payloads need. The core never issues its own
// queries; read-model implementations supply these rows pre-joined.
type DueLeg struct {
	LegID       string
	BookingID   string
	Reference   string
	CustomerID  string
	ChauffeurID string
	CarID       string
	StartTime   time.Time
	EndTime     time.Time
}

// DueBooking is the booking-level row used by the reminder scans.
type DueBooking struct {
	BookingID   string
	Reference   string
	CustomerID  string
	ChauffeurID string
	Start       time.Time
	End         time.Time
}

// ReadModel answers the minute-window queries driving the scheduled jobs.
type ReadModel interface {
	LegsStartingIn(ctx context.Context, w daterange.Window) ([]DueLeg, error)
	LegsEndingIn(ctx context.Context, w daterange.Window) ([]DueLeg, error)
	BookingsStartingIn(ctx context.Context, w daterange.Window) ([]DueBooking, error)
	BookingsEndingIn(ctx context.Context, w daterange.Window) ([]DueBooking, error)
}
