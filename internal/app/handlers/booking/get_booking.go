package booking

import (
	"context"

	"fleetbook/internal/app/dto"
	"fleetbook/internal/app/queries"
	"fleetbook/internal/app/uow"
)

const getBookingKey = "booking.get"

type GetBookingQuery struct {
	BookingID string
}

func (q GetBookingQuery) Key() string { return getBookingKey }

type GetBookingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (*dto.BookingView, error) {
	ctx, unit, managed, err := beginUnit(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	if managed {
		defer func() { _ = unit.Rollback(ctx) }()
	}
	agg, err := unit.Bookings().ByID(ctx, q.BookingID)
	if err != nil {
		return nil, err
	}
	view := dto.MapBooking(agg)
	return &view, nil
}

var _ queries.Handler[GetBookingQuery, *dto.BookingView] = (*GetBookingHandler)(nil)

const getBookingByReferenceKey = "booking.get_by_reference"

// GetBookingByReferenceQuery resolves a booking by its human-facing
// reference, the identifier customers see on confirmations.
type GetBookingByReferenceQuery struct {
	Reference string
}

func (q GetBookingByReferenceQuery) Key() string { return getBookingByReferenceKey }

type GetBookingByReferenceHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetBookingByReferenceHandler) Handle(ctx context.Context, q GetBookingByReferenceQuery) (*dto.BookingView, error) {
	ctx, unit, managed, err := beginUnit(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	if managed {
		defer func() { _ = unit.Rollback(ctx) }()
	}
	agg, err := unit.Bookings().ByReference(ctx, q.Reference)
	if err != nil {
		return nil, err
	}
	view := dto.MapBooking(agg)
	return &view, nil
}

var _ queries.Handler[GetBookingByReferenceQuery, *dto.BookingView] = (*GetBookingByReferenceHandler)(nil)
