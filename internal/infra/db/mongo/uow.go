package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fleetbook/internal/app/uow"
	domainbooking "fleetbook/internal/domain/booking"
	domainrates "fleetbook/internal/domain/rates"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	BookingRepo domainbooking.Repository
	RatesRepo   domainrates.Source
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Begin starts a MongoDB session. Read-only units skip the transaction and
// just ride the session for causal consistency.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	if !opts.ReadOnly {
		txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
		if err := session.StartTransaction(txnOpts); err != nil {
			session.EndSession(ctx)
			return nil, err
		}
	}
	return &Unit{
		db:       f.DB,
		session:  session,
		readOnly: opts.ReadOnly,
		bookings: f.BookingRepo,
		rates:    f.RatesRepo,
	}, nil
}

type Unit struct {
	db       *mongo.Database
	session  mongo.Session
	readOnly bool

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
	defer u.session.EndSession(ctx)
	if u.readOnly {
		return nil
	}
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	if u.readOnly {
		return nil
	}
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures the Mongo session is available in context for
// downstream repositories.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var (
	_ uow.UoWFactory      = Factory{}
	_ uow.SessionInjector = (*Unit)(nil)
)
