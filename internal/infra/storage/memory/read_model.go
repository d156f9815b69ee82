package memory

import (
	"context"
	"time"

	"fleetbook/internal/app/handlers/legs"
	domainbooking "fleetbook/internal/domain/booking"
	"fleetbook/internal/domain/shared/daterange"
)

// BookingReadModel scans the in-memory repository for due legs and bookings.
// Linear scans are fine at the scale memory storage is used for.
type BookingReadModel struct {
	repo *BookingRepository
}

func NewBookingReadModel(repo *BookingRepository) *BookingReadModel {
	return &BookingReadModel{repo: repo}
}

// Due-leg queries match both CONFIRMED and ACTIVE bookings: a multi-day
// booking goes ACTIVE with its first leg while later legs still await their
// own transitions.
func (m *BookingReadModel) LegsStartingIn(ctx context.Context, w daterange.Window) ([]legs.DueLeg, error) {
	return m.dueLegs(func(leg *domainbooking.Leg) time.Time { return leg.StartTime }, w)
}

func (m *BookingReadModel) LegsEndingIn(ctx context.Context, w daterange.Window) ([]legs.DueLeg, error) {
	return m.dueLegs(func(leg *domainbooking.Leg) time.Time { return leg.EndTime }, w)
}

func (m *BookingReadModel) dueLegs(at func(*domainbooking.Leg) time.Time, w daterange.Window) ([]legs.DueLeg, error) {
	var out []legs.DueLeg
	for _, b := range m.repo.All() {
		if b.Status != domainbooking.StatusConfirmed && b.Status != domainbooking.StatusActive {
			continue
		}
		for _, leg := range b.Legs {
			if !w.Contains(at(leg)) {
				continue
			}
			out = append(out, legs.DueLeg{
				LegID:       leg.ID,
				BookingID:   b.ID,
				Reference:   b.Reference,
				CustomerID:  b.CustomerID,
				ChauffeurID: b.ChauffeurID,
				CarID:       b.CarID,
				StartTime:   leg.StartTime,
				EndTime:     leg.EndTime,
			})
		}
	}
	return out, nil
}

func (m *BookingReadModel) BookingsStartingIn(ctx context.Context, w daterange.Window) ([]legs.DueBooking, error) {
	return m.dueBookings(domainbooking.StatusConfirmed, func(b *domainbooking.Booking) time.Time { return b.Period.Start }, w)
}

func (m *BookingReadModel) BookingsEndingIn(ctx context.Context, w daterange.Window) ([]legs.DueBooking, error) {
	return m.dueBookings(domainbooking.StatusActive, func(b *domainbooking.Booking) time.Time { return b.Period.End }, w)
}

func (m *BookingReadModel) dueBookings(status domainbooking.Status, at func(*domainbooking.Booking) time.Time, w daterange.Window) ([]legs.DueBooking, error) {
	var out []legs.DueBooking
	for _, b := range m.repo.All() {
		if b.Status != status || !w.Contains(at(b)) {
			continue
		}
		out = append(out, legs.DueBooking{
			BookingID:   b.ID,
			Reference:   b.Reference,
			CustomerID:  b.CustomerID,
			ChauffeurID: b.ChauffeurID,
			Start:       b.Period.Start,
			End:         b.Period.End,
		})
	}
	return out, nil
}

var _ legs.ReadModel = (*BookingReadModel)(nil)
