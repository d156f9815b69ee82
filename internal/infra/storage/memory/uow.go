package memory

import (
	"context"
	"errors"

	"fleetbook/internal/app/uow"
	domainbooking "fleetbook/internal/domain/booking"
	domainrates "fleetbook/internal/domain/rates"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	BookingRepo domainbooking.Repository
	RatesRepo   domainrates.Source
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a lightweight transaction boundary. No isolation is provided
// but the abstraction matches the application ports.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.BookingRepo == nil || f.RatesRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{bookings: f.BookingRepo, rates: f.RatesRepo}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	bookings domainbooking.Repository
	rates    domainrates.Source
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.bookings
}

func (u *Unit) Rates() domainrates.Source {
	return u.rates
}

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}

var _ uow.UoWFactory = Factory{}
