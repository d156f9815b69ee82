package booking_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingapp "fleetbook/internal/app/handlers/booking"
	"fleetbook/internal/app/uow"
	domainbooking "fleetbook/internal/domain/booking"
	"fleetbook/internal/infra/storage/memory"
)

type sessionMark struct{}

type sessionCalls struct {
	total  int
	joined int
}

// trackingFactory wraps another factory with a unit that marks its session in
// context, the way the Mongo unit does, and counts repository calls that
// carry the mark.
type trackingFactory struct {
	inner    uow.UoWFactory
	calls    *sessionCalls
	lastOpts *uow.TxOptions
}

func (f trackingFactory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.lastOpts != nil {
		*f.lastOpts = opts
	}
	unit, err := f.inner.Begin(ctx, opts)
	if err != nil {
		return nil, err
	}
	return trackingUnit{UnitOfWork: unit, calls: f.calls}, nil
}

type trackingUnit struct {
	uow.UnitOfWork
	calls *sessionCalls
}

func (u trackingUnit) InjectContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, sessionMark{}, true)
}

func (u trackingUnit) Bookings() domainbooking.Repository {
	return trackingRepo{inner: u.UnitOfWork.Bookings(), calls: u.calls}
}

type trackingRepo struct {
	inner domainbooking.Repository
	calls *sessionCalls
}

func (r trackingRepo) observe(ctx context.Context) {
	r.calls.total++
	if ctx.Value(sessionMark{}) != nil {
		r.calls.joined++
	}
}

func (r trackingRepo) ByID(ctx context.Context, id string) (*domainbooking.Booking, error) {
	r.observe(ctx)
	return r.inner.ByID(ctx, id)
}

func (r trackingRepo) ByReference(ctx context.Context, reference string) (*domainbooking.Booking, error) {
	r.observe(ctx)
	return r.inner.ByReference(ctx, reference)
}

func (r trackingRepo) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.observe(ctx)
	return r.inner.Save(ctx, b)
}

func TestCreateBooking_RepositoryCallsJoinTheUnitSession(t *testing.T) {
	fx := newFixture(date(2025, 1, 10, 12, 0))
	calls := &sessionCalls{}
	fx.handler.UoWFactory = trackingFactory{
		inner: memory.Factory{BookingRepo: fx.bookings, RatesRepo: fx.rates},
		calls: calls,
	}

	_, err := fx.handler.Handle(context.Background(), dayCommand())
	require.NoError(t, err)

	require.Positive(t, calls.total)
	assert.Equal(t, calls.total, calls.joined, "every repository call must see the unit's session")
}

func TestGetBooking_BeginsReadOnly(t *testing.T) {
	fx := newFixture(date(2025, 1, 10, 12, 0))
	res, err := fx.handler.Handle(context.Background(), dayCommand())
	require.NoError(t, err)

	var opts uow.TxOptions
	get := &bookingapp.GetBookingHandler{UoWFactory: trackingFactory{
		inner:    memory.Factory{BookingRepo: fx.bookings, RatesRepo: fx.rates},
		calls:    &sessionCalls{},
		lastOpts: &opts,
	}}
	view, err := get.Handle(context.Background(), bookingapp.GetBookingQuery{BookingID: res.BookingID})
	require.NoError(t, err)
	assert.Equal(t, res.BookingID, view.ID)
	assert.True(t, opts.ReadOnly)
}
