package legs

import (
	"context"
	"log/slog"
	"time"

	"fleetbook/internal/app/outbox"
	"fleetbook/internal/app/uow"
	domainbooking "fleetbook/internal/domain/booking"
	"fleetbook/internal/domain/shared/daterange"
	"fleetbook/internal/domain/shared/events"
)

// ActivateDueLegs drives leg activation for every leg starting in the current
// minute window. One bad item never aborts the batch: eligibility and
// already-transitioned rejections are logged and skipped, everything else is
// logged and the run continues.
type ActivateDueLegs struct {
	UoWFactory uow.UoWFactory
	ReadModel  ReadModel
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (j *ActivateDueLegs) Name() string { return "legs.activate" }

func (j *ActivateDueLegs) Run(ctx context.Context) error {
	now := clockNow(j.Now)
	due, err := j.ReadModel.LegsStartingIn(ctx, daterange.Minute(now))
	if err != nil {
		return err
	}
	log := loggerOrDefault(j.Logger)
	for _, item := range due {
		if err := j.processOne(ctx, item, now); err != nil {
			switch {
			case domainbooking.IsTransitionRejected(err):
				log.Debug("leg already transitioned, skipping", "leg_id", item.LegID, "booking_id", item.BookingID)
			case domainbooking.IsIneligible(err):
				log.Info("booking not eligible yet, will retry next tick", "booking_id", item.BookingID, "error", err)
			default:
				log.Error("leg activation failed", "leg_id", item.LegID, "booking_id", item.BookingID, "error", err)
			}
		}
	}
	return nil
}

func (j *ActivateDueLegs) processOne(ctx context.Context, item DueLeg, now time.Time) error {
	unit, err := j.UoWFactory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	ctx = uow.WithUnitSession(ctx, unit)
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()

	agg, err := unit.Bookings().ByID(ctx, item.BookingID)
	if err != nil {
		return err
	}
	wasActive := agg.Status == domainbooking.StatusActive
	if err := agg.ActivateLeg(item.LegID, now); err != nil {
		return err
	}
	if err := unit.Bookings().Save(ctx, agg); err != nil {
		return err
	}
	// The aggregate stays silent on activation; the job owns fan-out because
	// it has the denormalised context.
	if !wasActive && agg.Status == domainbooking.StatusActive {
		activated := domainbooking.Activated{
			BookingID:   agg.ID,
			Reference:   agg.Reference,
			CustomerID:  agg.CustomerID,
			ChauffeurID: agg.ChauffeurID,
			At:          now,
		}
		if err := outbox.RecordDomainEvents(ctx, j.Outbox, j.Encoder, []events.DomainEvent{activated}); err != nil {
			return err
		}
	}
	if err := unit.Commit(ctx); err != nil {
		return err
	}
	committed = true
	return nil
}

// CompleteDueLegs is the completion counterpart scanning legs ending in the
// current minute window.
type CompleteDueLegs struct {
	UoWFactory uow.UoWFactory
	ReadModel  ReadModel
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (j *CompleteDueLegs) Name() string { return "legs.complete" }

func (j *CompleteDueLegs) Run(ctx context.Context) error {
	now := clockNow(j.Now)
	due, err := j.ReadModel.LegsEndingIn(ctx, daterange.Minute(now))
	if err != nil {
		return err
	}
	log := loggerOrDefault(j.Logger)
	for _, item := range due {
		if err := j.processOne(ctx, item, now); err != nil {
			switch {
			case domainbooking.IsTransitionRejected(err):
				log.Debug("leg already transitioned, skipping", "leg_id", item.LegID, "booking_id", item.BookingID)
			case domainbooking.IsIneligible(err):
				log.Info("booking not eligible yet, will retry next tick", "booking_id", item.BookingID, "error", err)
			default:
				log.Error("leg completion failed", "leg_id", item.LegID, "booking_id", item.BookingID, "error", err)
			}
		}
	}
	return nil
}

func (j *CompleteDueLegs) processOne(ctx context.Context, item DueLeg, now time.Time) error {
	unit, err := j.UoWFactory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	ctx = uow.WithUnitSession(ctx, unit)
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()

	agg, err := unit.Bookings().ByID(ctx, item.BookingID)
	if err != nil {
		return err
	}
	wasCompleted := agg.Status == domainbooking.StatusCompleted
	if err := agg.CompleteLeg(item.LegID, now); err != nil {
		return err
	}
	if err := unit.Bookings().Save(ctx, agg); err != nil {
		return err
	}
	if !wasCompleted && agg.Status == domainbooking.StatusCompleted {
		completed := domainbooking.BookingCompleted{
			BookingID:  agg.ID,
			Reference:  agg.Reference,
			CustomerID: agg.CustomerID,
			At:         now,
		}
		if err := outbox.RecordDomainEvents(ctx, j.Outbox, j.Encoder, []events.DomainEvent{completed}); err != nil {
			return err
		}
	}
	if err := unit.Commit(ctx); err != nil {
		return err
	}
	committed = true
	return nil
}

func clockNow(clock func() time.Time) time.Time {
	if clock != nil {
		return clock().UTC()
	}
	return time.Now().UTC()
}

func loggerOrDefault(log *slog.Logger) *slog.Logger {
	if log != nil {
		return log
	}
	return slog.Default()
}
