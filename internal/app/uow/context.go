package uow

import "context"

type unitKey struct{}

// ContextWithUnitOfWork lets handlers share one transaction when a caller has
// already opened it, as the payment consumer does when confirming bookings.
func ContextWithUnitOfWork(ctx context.Context, unit UnitOfWork) context.Context {
	return context.WithValue(ctx, unitKey{}, unit)
}

// FromContext returns the ambient unit of work, if any.
func FromContext(ctx context.Context) (UnitOfWork, bool) {
	unit, ok := ctx.Value(unitKey{}).(UnitOfWork)
	return unit, ok
}
