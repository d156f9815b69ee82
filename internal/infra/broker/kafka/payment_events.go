package kafka

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/IBM/sarama"

	"fleetbook/internal/app/commands"
	bookingapp "fleetbook/internal/app/handlers/booking"
	domainbooking "fleetbook/internal/domain/booking"
)

// PaymentEventsHandler consumes payment-confirmed events from the payment
// provider's webhook relay and drives booking confirmation. Messages for
// already-confirmed bookings are acknowledged, not retried.
type PaymentEventsHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

type paymentConfirmedEvent struct {
	Data struct {
		BookingID string `json:"booking_id"`
		IntentID  string `json:"intent_id"`
	} `json:"data"`
}

func (h PaymentEventsHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	log := h.Logger
	if log == nil {
		log = slog.Default()
	}
	var evt paymentConfirmedEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		// Malformed payloads never become valid; log and acknowledge.
		log.Error("payment event unparseable, dropping", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		return nil
	}
	if evt.Data.BookingID == "" || evt.Data.IntentID == "" {
		log.Error("payment event missing ids, dropping", "topic", msg.Topic, "offset", msg.Offset)
		return nil
	}
	cmd := bookingapp.ConfirmBookingCommand{BookingID: evt.Data.BookingID, IntentID: evt.Data.IntentID}
	_, err := commands.Dispatch[bookingapp.ConfirmBookingCommand, *bookingapp.ConfirmBookingResult](ctx, h.Commands, cmd)
	if err != nil {
		if domainbooking.IsTransitionRejected(err) {
			log.Debug("booking already confirmed", "booking_id", evt.Data.BookingID)
			return nil
		}
		log.Error("booking confirmation failed, will retry", "booking_id", evt.Data.BookingID, "error", err)
		return err
	}
	log.Info("booking confirmed from payment event", "booking_id", evt.Data.BookingID)
	return nil
}

var _ MessageHandler = PaymentEventsHandler{}
