package booking

import (
	"context"

	"fleetbook/internal/app/commands"
	"fleetbook/internal/app/policies"
	"fleetbook/internal/app/uow"
	domainbooking "fleetbook/internal/domain/booking"
)

const paymentIntentKey = "booking.payment_intent"

type RequestPaymentIntentCommand struct {
	BookingID string
}

func (c RequestPaymentIntentCommand) Key() string { return paymentIntentKey }

type PaymentIntentResult struct {
	BookingID    string `json:"booking_id"`
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
	Amount       string `json:"amount"`
}

// RequestPaymentIntentHandler opens a payment intent for the aggregate's
// calculated total. Only pending bookings can be quoted for payment.
type RequestPaymentIntentHandler struct {
	UoWFactory uow.UoWFactory
	Payments   policies.PaymentsPort
}

func (h *RequestPaymentIntentHandler) Handle(ctx context.Context, cmd RequestPaymentIntentCommand) (*PaymentIntentResult, error) {
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
	if agg.Status != domainbooking.StatusPending {
		return nil, &domainbooking.IneligibleOperationError{
			BookingID: agg.ID,
			Operation: "payment_intent",
			Reason:    "booking is not awaiting payment",
		}
	}

	intent, err := h.Payments.CreateIntent(ctx, agg.Financials.TotalAmount, agg.Reference)
	if err != nil {
		return nil, err
	}
	agg.PaymentIntent = intent.ID
	if err := unit.Bookings().Save(ctx, agg); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	return &PaymentIntentResult{
		BookingID:    agg.ID,
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       agg.Financials.TotalAmount.String(),
	}, nil
}

var _ commands.Handler[RequestPaymentIntentCommand, *PaymentIntentResult] = (*RequestPaymentIntentHandler)(nil)
