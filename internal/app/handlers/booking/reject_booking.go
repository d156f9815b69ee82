package booking

import (
	"context"
	"time"

	"fleetbook/internal/app/commands"
	"fleetbook/internal/app/outbox"
	"fleetbook/internal/app/uow"
)

const rejectBookingKey = "booking.reject"

type RejectBookingCommand struct {
	BookingID string
	Reason    string
}

func (c RejectBookingCommand) Key() string { return rejectBookingKey }

type RejectBookingResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

// RejectBookingHandler declines a pending booking, typically when payment
// never arrives or the car turns out unavailable. Only PENDING bookings can
// be rejected; confirmed ones go through cancellation instead.
type RejectBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *RejectBookingHandler) Handle(ctx context.Context, cmd RejectBookingCommand) (*RejectBookingResult, error) {
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

	agg, err := unit.Bookings().ByID(ctx, cmd.BookingID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if h.Now != nil {
		now = h.Now().UTC()
	}
	if err := agg.Reject(cmd.Reason, now); err != nil {
		return nil, err
	}

	if err := unit.Bookings().Save(ctx, agg); err != nil {
		return nil, err
	}
	if err := outbox.DrainAggregate(ctx, h.Outbox, h.Encoder, agg); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	return &RejectBookingResult{BookingID: agg.ID, Status: string(agg.Status)}, nil
}

var _ commands.Handler[RejectBookingCommand, *RejectBookingResult] = (*RejectBookingHandler)(nil)
