package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"fleetbook/internal/app/commands"
	"fleetbook/internal/app/outbox"
	"fleetbook/internal/app/uow"
	domainbooking "fleetbook/internal/domain/booking"
	domainrates "fleetbook/internal/domain/rates"
	"fleetbook/internal/domain/shared/events"
)

const createBookingKey = "booking.create"

// Client-submitted totals may disagree with the server calculation by at most
// one cent before the request is rejected.
var amountTolerance = decimal.RequireFromString("0.01")

var ErrUnitOfWorkRequired = errors.New("booking: unit of work required")

type CreateBookingCommand struct {
	CommandID             string
	CustomerID            string
	CarID                 string
	Type                  domainbooking.BookingType
	Start                 time.Time
	End                   time.Time
	PickupAddress         string
	DropOffAddress        string
	IncludeSecurityDetail bool
	// SubmittedTotal is the total the client saw when quoting; zero means the
	// client did not pre-quote and no cross-check happens.
	SubmittedTotal decimal.Decimal
}

func (c CreateBookingCommand) Key() string { return createBookingKey }

type CreateBookingResult struct {
	BookingID string `json:"booking_id"`
	Reference string `json:"reference"`
	Total     string `json:"total"`
}

type CreateBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*CreateBookingResult, error) {
	ctx, unit, managed, err := beginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	committed := false
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	now := h.now()
	period, err := domainbooking.NewPeriod(cmd.Start, cmd.End, cmd.Type, now)
	if err != nil {
		return nil, err
	}
	if err := domainbooking.ValidatePeriodNotPast(period, now); err != nil {
		return nil, err
	}

	schedule, err := unit.Rates().CarRates(ctx, cmd.CarID)
	if err != nil {
		return nil, err
	}
	fees, err := unit.Rates().PlatformFees(ctx)
	if err != nil {
		return nil, err
	}

	legDates := domainbooking.SegmentLegs(period)

	in := domainbooking.CostInput{
		Schedule:              schedule,
		Fees:                  fees,
		LegDates:              legDates,
		Period:                period,
		IncludeSecurityDetail: cmd.IncludeSecurityDetail,
	}
	if cmd.IncludeSecurityDetail {
		rate, ok, err := unit.Rates().CurrentAddonRate(ctx, domainrates.AddonSecurityDetail, now)
		if err != nil {
			return nil, err
		}
		if ok {
			in.SecurityDetailRate = rate
			in.HasSecurityDetailRate = true
		} else {
			h.logger().Warn("security detail requested but no rate configured, billing zero", "car_id", cmd.CarID)
		}
	}

	breakdown, err := domainbooking.CalculateCost(in)
	if err != nil {
		return nil, err
	}
	if !cmd.SubmittedTotal.IsZero() {
		if breakdown.TotalAmount.Sub(cmd.SubmittedTotal).Abs().GreaterThan(amountTolerance) {
			return nil, &domainbooking.AmountMismatchError{Submitted: cmd.SubmittedTotal, Calculated: breakdown.TotalAmount}
		}
	}

	agg, err := domainbooking.Create(domainbooking.CreateParams{
		Reference:             cmd.CommandID,
		CustomerID:            cmd.CustomerID,
		CarID:                 cmd.CarID,
		Period:                period,
		PickupAddress:         cmd.PickupAddress,
		DropOffAddress:        cmd.DropOffAddress,
		IncludeSecurityDetail: cmd.IncludeSecurityDetail,
		LegDates:              legDates,
		Breakdown:             breakdown,
		CreatedAt:             now,
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Bookings().Save(ctx, agg); err != nil {
		return nil, err
	}

	// The id exists only now, so creation is announced from here rather than
	// recorded on the aggregate.
	created := domainbooking.Created{
		BookingID:  agg.ID,
		Reference:  agg.Reference,
		CustomerID: agg.CustomerID,
		CarID:      agg.CarID,
		Type:       period.Type,
		Start:      period.Start,
		End:        period.End,
		Total:      agg.Financials.TotalAmount,
		At:         now,
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, []events.DomainEvent{created}); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &CreateBookingResult{
		BookingID: agg.ID,
		Reference: agg.Reference,
		Total:     agg.Financials.TotalAmount.String(),
	}, nil
}

func (h *CreateBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

func (h *CreateBookingHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// beginUnit reuses a unit of work from context or starts a managed one. For
// a managed unit the returned context carries the unit and its backend
// session, so every repository and outbox write joins the transaction.
func beginUnit(ctx context.Context, factory uow.UoWFactory, opts uow.TxOptions) (context.Context, uow.UnitOfWork, bool, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return ctx, unit, false, nil
	}
	if factory == nil {
		return ctx, nil, false, ErrUnitOfWorkRequired
	}
	unit, err := factory.Begin(ctx, opts)
	if err != nil {
		return ctx, nil, false, err
	}
	ctx = uow.WithUnitSession(ctx, unit)
	return uow.ContextWithUnitOfWork(ctx, unit), unit, true, nil
}

var _ commands.Handler[CreateBookingCommand, *CreateBookingResult] = (*CreateBookingHandler)(nil)
