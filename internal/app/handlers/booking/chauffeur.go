package booking

import (
	"context"
	"time"

	"fleetbook/internal/app/commands"
	"fleetbook/internal/app/outbox"
	"fleetbook/internal/app/uow"
)

const (
	assignChauffeurKey   = "booking.chauffeur.assign"
	unassignChauffeurKey = "booking.chauffeur.unassign"
)

type AssignChauffeurCommand struct {
	BookingID   string
	ChauffeurID string
}

func (c AssignChauffeurCommand) Key() string { return assignChauffeurKey }

type UnassignChauffeurCommand struct {
	BookingID string
}

func (c UnassignChauffeurCommand) Key() string { return unassignChauffeurKey }

type ChauffeurResult struct {
	BookingID   string `json:"booking_id"`
	ChauffeurID string `json:"chauffeur_id,omitempty"`
}

type AssignChauffeurHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *AssignChauffeurHandler) Handle(ctx context.Context, cmd AssignChauffeurCommand) (*ChauffeurResult, error) {
	res, err := mutateChauffeur(ctx, h.UoWFactory, h.Outbox, h.Encoder, cmd.BookingID, func(agg chauffeurAggregate, now time.Time) error {
		return agg.AssignChauffeur(cmd.ChauffeurID, now)
	}, h.Now)
	if err != nil {
		return nil, err
	}
	res.ChauffeurID = cmd.ChauffeurID
	return res, nil
}

type UnassignChauffeurHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *UnassignChauffeurHandler) Handle(ctx context.Context, cmd UnassignChauffeurCommand) (*ChauffeurResult, error) {
	return mutateChauffeur(ctx, h.UoWFactory, h.Outbox, h.Encoder, cmd.BookingID, func(agg chauffeurAggregate, now time.Time) error {
		return agg.UnassignChauffeur(now)
	}, h.Now)
}

type chauffeurAggregate interface {
	AssignChauffeur(chauffeurID string, now time.Time) error
	UnassignChauffeur(now time.Time) error
}

func mutateChauffeur(
	ctx context.Context,
	factory uow.UoWFactory,
	box outbox.Outbox,
	encoder outbox.EventEncoder,
	bookingID string,
	mutate func(agg chauffeurAggregate, now time.Time) error,
	clock func() time.Time,
) (*ChauffeurResult, error) {
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
	if err := mutate(agg, now); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, agg); err != nil {
		return nil, err
	}
	if err := outbox.DrainAggregate(ctx, box, encoder, agg); err != nil {
		return nil, err
	}
	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	return &ChauffeurResult{BookingID: agg.ID}, nil
}

var _ commands.Handler[AssignChauffeurCommand, *ChauffeurResult] = (*AssignChauffeurHandler)(nil)
var _ commands.Handler[UnassignChauffeurCommand, *ChauffeurResult] = (*UnassignChauffeurHandler)(nil)
