package booking

import (
	"context"
	"time"

	"fleetbook/internal/app/commands"
	"fleetbook/internal/app/outbox"
	"fleetbook/internal/app/policies"
	"fleetbook/internal/app/uow"
)

const confirmBookingKey = "booking.confirm"

type ConfirmBookingCommand struct {
	BookingID string
	IntentID  string
}

func (c ConfirmBookingCommand) Key() string { return confirmBookingKey }

type ConfirmBookingResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

// ConfirmBookingHandler verifies the payment with the gateway and confirms the
// aggregate. Payment verification is the gateway's word; the handler does not
// second-guess amounts here.
type ConfirmBookingHandler struct {
	UoWFactory uow.UoWFactory
	Payments   policies.PaymentsPort
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *ConfirmBookingHandler) Handle(ctx context.Context, cmd ConfirmBookingCommand) (*ConfirmBookingResult, error) {
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

	verification, err := h.Payments.Verify(ctx, cmd.IntentID)
	if err != nil {
		return nil, err
	}
	if !verification.Paid {
		return nil, policies.ErrPaymentNotSettled
	}

	agg, err := unit.Bookings().ByID(ctx, cmd.BookingID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if h.Now != nil {
		now = h.Now().UTC()
	}
	if err := agg.ConfirmWithPayment(verification.PaymentID, now); err != nil {
		return nil, err
	}
	agg.PaymentIntent = verification.IntentID

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
	return &ConfirmBookingResult{BookingID: agg.ID, Status: string(agg.Status)}, nil
}

var _ commands.Handler[ConfirmBookingCommand, *ConfirmBookingResult] = (*ConfirmBookingHandler)(nil)
