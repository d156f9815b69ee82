package booking

import (
	"context"
	"time"

	"fleetbook/internal/app/commands"
	"fleetbook/internal/app/outbox"
	"fleetbook/internal/app/uow"
)

const cancelBookingKey = "booking.cancel"

type CancelBookingCommand struct {
	BookingID string
	Reason    string
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

type CancelBookingResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

// CancelBookingHandler enforces the cancellation window before touching the
// aggregate, so callers get the eligibility rejection rather than a bare
// transition error.
type CancelBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*CancelBookingResult, error) {
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
	if err := agg.EnsureCanCancel(now); err != nil {
		return nil, err
	}
	if err := agg.Cancel(cmd.Reason, now); err != nil {
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
	return &CancelBookingResult{BookingID: agg.ID, Status: string(agg.Status)}, nil
}

var _ commands.Handler[CancelBookingCommand, *CancelBookingResult] = (*CancelBookingHandler)(nil)
