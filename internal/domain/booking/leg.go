package booking

import (
	"time"

	"github.com/shopspring/decimal"
)

type LegStatus string

const (
	LegPending   LegStatus = "PENDING"
	LegConfirmed LegStatus = "CONFIRMED"
	LegActive    LegStatus = "ACTIVE"
	LegCompleted LegStatus = "COMPLETED"
	LegCancelled LegStatus = "CANCELLED"
)

var legTransitions = map[LegStatus][]LegStatus{
	LegPending:   {LegConfirmed, LegActive, LegCancelled},
	LegConfirmed: {LegActive, LegCancelled},
	LegActive:    {LegCompleted},
	LegCompleted: {},
	LegCancelled: {},
}

// CanTransitionTo consults the static leg transition table.
func (s LegStatus) CanTransitionTo(target LegStatus) bool {
	for _, allowed := range legTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Leg is one billable segment of a booking. Legs exist only inside their
// parent aggregate and are mutated through its methods; each transition is
// validated here as well, since batch jobs and direct domain calls both reach
// the same mutators.
type Leg struct {
	ID        string
	BookingID string
	Date      time.Time
	StartTime time.Time
	EndTime   time.Time

	Price        decimal.Decimal
	NetValue     decimal.Decimal
	OwnerEarning decimal.Decimal

	Status LegStatus
	Notes  string
}

func (l *Leg) transition(target LegStatus) error {
	if !l.Status.CanTransitionTo(target) {
		return &InvalidLegStatusTransitionError{LegID: l.ID, From: l.Status, To: target}
	}
	l.Status = target
	return nil
}

func (l *Leg) Confirm() error {
	return l.transition(LegConfirmed)
}

func (l *Leg) Activate() error {
	return l.transition(LegActive)
}

func (l *Leg) Complete() error {
	return l.transition(LegCompleted)
}

func (l *Leg) Cancel() error {
	return l.transition(LegCancelled)
}

// IsTerminal reports whether the leg can change no further.
func (l *Leg) IsTerminal() bool {
	return len(legTransitions[l.Status]) == 0
}
