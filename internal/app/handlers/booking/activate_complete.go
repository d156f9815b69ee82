package booking

import (
	"context"
	"time"

	"fleetbook/internal/app/commands"
	"fleetbook/internal/app/outbox"
	"fleetbook/internal/app/uow"
	domainbooking "fleetbook/internal/domain/booking"
	"fleetbook/internal/domain/shared/events"
)

const (
	activateBookingKey = "booking.activate"
	completeBookingKey = "booking.complete"
)

type ActivateBookingCommand struct {
	BookingID string
}

func (c ActivateBookingCommand) Key() string { return activateBookingKey }

type CompleteBookingCommand struct {
	BookingID string
}

func (c CompleteBookingCommand) Key() string { return completeBookingKey }

type TransitionResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

// ActivateBookingHandler is the direct activation path, eligibility-gated:
// the booking must be confirmed, started and chauffeured. The batch path has
// its own leg-driven route.
type ActivateBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *ActivateBookingHandler) Handle(ctx context.Context, cmd ActivateBookingCommand) (*TransitionResult, error) {
	return mutateWithEligibility(ctx, h.UoWFactory, h.Outbox, h.Encoder, cmd.BookingID, h.Now,
		func(agg *domainbooking.Booking, now time.Time) (events.DomainEvent, error) {
			if err := agg.EnsureCanActivate(now); err != nil {
				return nil, err
			}
			if err := agg.Activate(now); err != nil {
				return nil, err
			}
			return domainbooking.Activated{
				BookingID:   agg.ID,
				Reference:   agg.Reference,
				CustomerID:  agg.CustomerID,
				ChauffeurID: agg.ChauffeurID,
				At:          now,
			}, nil
		})
}

// CompleteBookingHandler is the direct completion path: the booking must be
// active and its period over.
type CompleteBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *CompleteBookingHandler) Handle(ctx context.Context, cmd CompleteBookingCommand) (*TransitionResult, error) {
	return mutateWithEligibility(ctx, h.UoWFactory, h.Outbox, h.Encoder, cmd.BookingID, h.Now,
		func(agg *domainbooking.Booking, now time.Time) (events.DomainEvent, error) {
			if err := agg.EnsureCanComplete(now); err != nil {
				return nil, err
			}
			if err := agg.Complete(now); err != nil {
				return nil, err
			}
			return domainbooking.BookingCompleted{
				BookingID:  agg.ID,
				Reference:  agg.Reference,
				CustomerID: agg.CustomerID,
				At:         now,
			}, nil
		})
}

func mutateWithEligibility(
	ctx context.Context,
	factory uow.UoWFactory,
	box outbox.Outbox,
	encoder outbox.EventEncoder,
	bookingID string,
	clock func() time.Time,
	mutate func(agg *domainbooking.Booking, now time.Time) (events.DomainEvent, error),
) (*TransitionResult, error) {
	ctx, unit, managed, err := beginUnit(ctx, factory, uow.TxOptions{})
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

	agg, err := unit.Bookings().ByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if clock != nil {
		now = clock().UTC()
	}
	ev, err := mutate(agg, now)
	if err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, agg); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(ctx, box, encoder, []events.DomainEvent{ev}); err != nil {
		return nil, err
	}
	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	return &TransitionResult{BookingID: agg.ID, Status: string(agg.Status)}, nil
}

var _ commands.Handler[ActivateBookingCommand, *TransitionResult] = (*ActivateBookingHandler)(nil)
var _ commands.Handler[CompleteBookingCommand, *TransitionResult] = (*CompleteBookingHandler)(nil)
