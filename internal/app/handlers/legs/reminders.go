package legs

import (
	"context"
	"log/slog"
	"time"

	"fleetbook/internal/app/outbox"
	"fleetbook/internal/app/policies"
	domainbooking "fleetbook/internal/domain/booking"
	"fleetbook/internal/domain/shared/daterange"
	"fleetbook/internal/domain/shared/events"
)

const reminderLead = time.Hour

// ScanReminders emits start and end reminder events for bookings whose period
// boundary lands exactly one hour from the current minute. Runs on the same
// tick as the leg jobs, so each booking is picked up once.
type ScanReminders struct {
	ReadModel ReadModel
	Outbox    outbox.Outbox
	Encoder   outbox.EventEncoder
	Notifier  policies.NotifierPort
	Logger    *slog.Logger
	Now       func() time.Time
}

func (j *ScanReminders) Name() string { return "bookings.reminders" }

func (j *ScanReminders) Run(ctx context.Context) error {
	now := clockNow(j.Now)
	window := daterange.Minute(now).Shift(reminderLead)
	log := loggerOrDefault(j.Logger)

	starting, err := j.ReadModel.BookingsStartingIn(ctx, window)
	if err != nil {
		return err
	}
	for _, b := range starting {
		due := domainbooking.StartReminderDue{
			BookingID:   b.BookingID,
			Reference:   b.Reference,
			CustomerID:  b.CustomerID,
			ChauffeurID: b.ChauffeurID,
			StartsAt:    b.Start,
			At:          now,
		}
		if err := outbox.RecordDomainEvents(ctx, j.Outbox, j.Encoder, []events.DomainEvent{due}); err != nil {
			log.Error("start reminder publish failed", "booking_id", b.BookingID, "error", err)
			continue
		}
		j.notify(ctx, log, policies.Reminder{
			BookingID:   b.BookingID,
			Reference:   b.Reference,
			CustomerID:  b.CustomerID,
			ChauffeurID: b.ChauffeurID,
			Kind:        policies.ReminderKindStart,
			DueAt:       b.Start,
		})
	}

	ending, err := j.ReadModel.BookingsEndingIn(ctx, window)
	if err != nil {
		return err
	}
	for _, b := range ending {
		due := domainbooking.EndReminderDue{
			BookingID:  b.BookingID,
			Reference:  b.Reference,
			CustomerID: b.CustomerID,
			EndsAt:     b.End,
			At:         now,
		}
		if err := outbox.RecordDomainEvents(ctx, j.Outbox, j.Encoder, []events.DomainEvent{due}); err != nil {
			log.Error("end reminder publish failed", "booking_id", b.BookingID, "error", err)
			continue
		}
		j.notify(ctx, log, policies.Reminder{
			BookingID:  b.BookingID,
			Reference:  b.Reference,
			CustomerID: b.CustomerID,
			Kind:       policies.ReminderKindEnd,
			DueAt:      b.End,
		})
	}
	return nil
}

func (j *ScanReminders) notify(ctx context.Context, log *slog.Logger, reminder policies.Reminder) {
	if j.Notifier == nil {
		return
	}
	if err := j.Notifier.Notify(ctx, reminder); err != nil {
		log.Error("reminder delivery failed", "booking_id", reminder.BookingID, "kind", reminder.Kind, "error", err)
	}
}
