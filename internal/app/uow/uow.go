package uow

import (
	"context"

	domainbooking "fleetbook/internal/domain/booking"
	domainrates "fleetbook/internal/domain/rates"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Bookings() domainbooking.Repository
	Rates() domainrates.Source

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}

// SessionInjector is implemented by units whose backend ties writes to a
// session. Repositories only join the transaction when they see that session
// in their context.
type SessionInjector interface {
	InjectContext(ctx context.Context) context.Context
}

// WithUnitSession returns ctx carrying the unit's backend session, or ctx
// unchanged for backends without one.
func WithUnitSession(ctx context.Context, unit UnitOfWork) context.Context {
	if injector, ok := unit.(SessionInjector); ok {
		return injector.InjectContext(ctx)
	}
	return ctx
}
