package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"fleetbook/internal/domain/shared/events"
)

var (
	ErrBookingNotFound   = errors.New("booking: not found")
	ErrCustomerRequired  = errors.New("booking: customer id required")
	ErrCarRequired       = errors.New("booking: car id required")
	ErrChauffeurRequired = errors.New("booking: chauffeur id required")
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
	StatusRejected  Status = "REJECTED"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

var statusTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusRejected},
	StatusConfirmed: {StatusActive, StatusCancelled},
	StatusActive:    {StatusCompleted},
	StatusCompleted: {},
	StatusCancelled: {},
	StatusRejected:  {},
}

// CanTransitionTo consults the static booking transition table.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Booking is the aggregate root. It exclusively owns its legs: no leg exists
// outside a booking and leg mutation goes through the booking's methods. ID
// stays empty until the persistence layer assigns one on first save.
type Booking struct {
	ID        string
	Reference string
	Status    Status
	Period    Period

	PickupAddress  string
	DropOffAddress string
	CustomerID     string
	CarID          string
	ChauffeurID    string

	Legs []*Leg

	PaymentStatus PaymentStatus
	PaymentIntent string
	PaymentID     string

	Financials            Financials
	IncludeSecurityDetail bool

	CancelledAt        time.Time
	CancellationReason string

	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64

	events.EventRecorder
}

// Repository is the persistence port for booking aggregates. Save assigns an
// id on first persistence and enforces optimistic concurrency on updates.
type Repository interface {
	ByID(ctx context.Context, id string) (*Booking, error)
	ByReference(ctx context.Context, reference string) (*Booking, error)
	Save(ctx context.Context, b *Booking) error
}

// CreateParams bundles the already-priced inputs for a new booking. LegDates
// and Breakdown come from SegmentLegs and CalculateCost over the same period.
type CreateParams struct {
	Reference             string
	CustomerID            string
	CarID                 string
	Period                Period
	PickupAddress         string
	DropOffAddress        string
	IncludeSecurityDetail bool
	LegDates              []time.Time
	Breakdown             CostBreakdown
	CreatedAt             time.Time
}

// Create assembles a new unpersisted aggregate in PENDING state with one leg
// per segmented date. No events are recorded here; the creation event is the
// orchestrator's to publish once an id exists.
func Create(params CreateParams) (*Booking, error) {
	if params.CustomerID == "" {
		return nil, ErrCustomerRequired
	}
	if params.CarID == "" {
		return nil, ErrCarRequired
	}
	if err := params.Period.Validate(); err != nil {
		return nil, err
	}
	if len(params.LegDates) == 0 || len(params.LegDates) != len(params.Breakdown.LegPrices) {
		return nil, ErrLegCountMismatch
	}
	fin, err := FinancialsFromBreakdown(params.Breakdown)
	if err != nil {
		return nil, err
	}

	now := params.CreatedAt.UTC()
	reference := params.Reference
	if reference == "" {
		reference = uuid.NewString()
	}

	legs := make([]*Leg, 0, len(params.LegDates))
	for i, date := range params.LegDates {
		start, end := LegWindow(params.Period, date)
		legs = append(legs, &Leg{
			ID:           uuid.NewString(),
			Date:         dayOf(date),
			StartTime:    start,
			EndTime:      end,
			Price:        params.Breakdown.LegPrices[i],
			NetValue:     params.Breakdown.NetValuePerLeg,
			OwnerEarning: params.Breakdown.OwnerEarningPerLeg,
			Status:       LegPending,
		})
	}

	return &Booking{
		Reference:             reference,
		Status:                StatusPending,
		Period:                params.Period,
		PickupAddress:         params.PickupAddress,
		DropOffAddress:        params.DropOffAddress,
		CustomerID:            params.CustomerID,
		CarID:                 params.CarID,
		Legs:                  legs,
		PaymentStatus:         PaymentPending,
		Financials:            fin,
		IncludeSecurityDetail: params.IncludeSecurityDetail,
		CreatedAt:             now,
		UpdatedAt:             now,
	}, nil
}

// Reconstitute rehydrates a persisted aggregate as-is, bypassing creation
// invariants. The storage layer is trusted to hand back what Save stored.
func Reconstitute(b Booking) *Booking {
	clone := b
	clone.Legs = make([]*Leg, len(b.Legs))
	for i, leg := range b.Legs {
		legCopy := *leg
		legCopy.BookingID = b.ID
		clone.Legs[i] = &legCopy
	}
	clone.EventRecorder = events.EventRecorder{}
	return &clone
}

func (b *Booking) transition(target Status) error {
	if !b.Status.CanTransitionTo(target) {
		return &InvalidStatusTransitionError{BookingID: b.ID, From: b.Status, To: target}
	}
	b.Status = target
	return nil
}

// recordEvent buffers an event after verifying the aggregate has a persisted
// id to key it with.
func (b *Booking) recordEvent(ev events.DomainEvent) error {
	if b.ID == "" {
		return ErrNotPersisted
	}
	b.Record(ev)
	return nil
}

// ConfirmWithPayment moves the booking to CONFIRMED, marks it paid and
// confirms every leg.
func (b *Booking) ConfirmWithPayment(paymentID string, now time.Time) error {
	if b.ID == "" {
		return ErrNotPersisted
	}
	if err := b.transition(StatusConfirmed); err != nil {
		return err
	}
	b.PaymentStatus = PaymentPaid
	b.PaymentID = paymentID
	b.UpdatedAt = now.UTC()
	for _, leg := range b.Legs {
		if leg.Status == LegPending {
			if err := leg.Confirm(); err != nil {
				return err
			}
		}
	}
	return b.recordEvent(Confirmed{BookingID: b.ID, Reference: b.Reference, PaymentID: paymentID, Total: b.Financials.TotalAmount, At: b.UpdatedAt})
}

// Reject declines a pending booking.
func (b *Booking) Reject(reason string, now time.Time) error {
	if b.ID == "" {
		return ErrNotPersisted
	}
	if err := b.transition(StatusRejected); err != nil {
		return err
	}
	b.UpdatedAt = now.UTC()
	return b.recordEvent(Rejected{BookingID: b.ID, Reference: b.Reference, Reason: reason, At: b.UpdatedAt})
}

// Activate moves a confirmed booking into service. It records no event; the
// calling orchestrator owns notification fan-out with its enriched context.
func (b *Booking) Activate(now time.Time) error {
	if err := b.transition(StatusActive); err != nil {
		return err
	}
	b.UpdatedAt = now.UTC()
	return nil
}

// Complete finishes an active booking. Like Activate it records no event.
func (b *Booking) Complete(now time.Time) error {
	if err := b.transition(StatusCompleted); err != nil {
		return err
	}
	b.UpdatedAt = now.UTC()
	return nil
}

// Cancel is legal only from CONFIRMED. Payment flips to REFUNDED and every
// non-terminal leg is cancelled. Cancellation is a status, not a deletion.
func (b *Booking) Cancel(reason string, now time.Time) error {
	if b.ID == "" {
		return ErrNotPersisted
	}
	if err := b.transition(StatusCancelled); err != nil {
		return err
	}
	b.PaymentStatus = PaymentRefunded
	b.CancelledAt = now.UTC()
	b.CancellationReason = reason
	b.UpdatedAt = b.CancelledAt
	for _, leg := range b.Legs {
		if !leg.IsTerminal() {
			if err := leg.Cancel(); err != nil {
				return err
			}
		}
	}
	return b.recordEvent(Cancelled{BookingID: b.ID, Reference: b.Reference, Reason: reason, At: b.CancelledAt})
}

// LegByID finds an owned leg.
func (b *Booking) LegByID(legID string) (*Leg, error) {
	for _, leg := range b.Legs {
		if leg.ID == legID {
			return leg, nil
		}
	}
	return nil, &LegNotFoundError{BookingID: b.ID, LegID: legID}
}

// ActivateLeg activates the named leg and conditionally cascades to the
// booking: only when the booking is CONFIRMED and its period starts today
// does the whole booking go ACTIVE. Intermediate legs change only
// themselves. A replayed call fails on the leg's own transition guard
// without touching anything else.
func (b *Booking) ActivateLeg(legID string, now time.Time) error {
	leg, err := b.LegByID(legID)
	if err != nil {
		return err
	}
	if err := leg.Activate(); err != nil {
		return err
	}
	b.UpdatedAt = now.UTC()
	if b.Status == StatusConfirmed && b.Period.StartsOn(now) {
		return b.Activate(now)
	}
	return nil
}

// CompleteLeg completes the named leg and cascades to the booking only when
// the booking is ACTIVE and its period ends today.
func (b *Booking) CompleteLeg(legID string, now time.Time) error {
	leg, err := b.LegByID(legID)
	if err != nil {
		return err
	}
	if err := leg.Complete(); err != nil {
		return err
	}
	b.UpdatedAt = now.UTC()
	if b.Status == StatusActive && b.Period.EndsOn(now) {
		return b.Complete(now)
	}
	return nil
}

// AssignChauffeur attaches a chauffeur. Pending bookings have no confirmed
// service yet and finished ones no service left, so both refuse assignment.
// Re-assigning records an unassignment of the previous chauffeur first.
func (b *Booking) AssignChauffeur(chauffeurID string, now time.Time) error {
	if chauffeurID == "" {
		return ErrChauffeurRequired
	}
	if b.ID == "" {
		return ErrNotPersisted
	}
	switch b.Status {
	case StatusPending, StatusCompleted, StatusCancelled, StatusRejected:
		return &IneligibleOperationError{BookingID: b.ID, Operation: "assign chauffeur", Reason: "booking status is " + string(b.Status)}
	}
	if b.ChauffeurID == chauffeurID {
		return nil
	}
	at := now.UTC()
	if b.ChauffeurID != "" {
		if err := b.recordEvent(ChauffeurUnassigned{BookingID: b.ID, Reference: b.Reference, ChauffeurID: b.ChauffeurID, At: at}); err != nil {
			return err
		}
	}
	b.ChauffeurID = chauffeurID
	b.UpdatedAt = at
	return b.recordEvent(ChauffeurAssigned{BookingID: b.ID, Reference: b.Reference, ChauffeurID: chauffeurID, At: at})
}

// UnassignChauffeur detaches the chauffeur. Active and completed bookings
// keep their assignment for the service record.
func (b *Booking) UnassignChauffeur(now time.Time) error {
	if b.ID == "" {
		return ErrNotPersisted
	}
	switch b.Status {
	case StatusActive, StatusCompleted:
		return &IneligibleOperationError{BookingID: b.ID, Operation: "unassign chauffeur", Reason: "booking status is " + string(b.Status)}
	}
	if b.ChauffeurID == "" {
		return nil
	}
	previous := b.ChauffeurID
	b.ChauffeurID = ""
	b.UpdatedAt = now.UTC()
	return b.recordEvent(ChauffeurUnassigned{BookingID: b.ID, Reference: b.Reference, ChauffeurID: previous, At: b.UpdatedAt})
}
