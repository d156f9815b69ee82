package booking

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotPersisted is returned when an operation needs the persisted booking id
// before the aggregate has been saved.
var ErrNotPersisted = errors.New("booking: aggregate not persisted yet")

// ErrVersionConflict is returned when a concurrent writer bumped the
// aggregate's version between load and save.
var ErrVersionConflict = errors.New("booking: version conflict")

// InvalidStatusTransitionError reports an attempted booking status change that
// the transition table forbids.
type InvalidStatusTransitionError struct {
	BookingID string
	From      Status
	To        Status
}

func (e *InvalidStatusTransitionError) Error() string {
	return fmt.Sprintf("booking %s: illegal status transition %s -> %s", e.BookingID, e.From, e.To)
}

// InvalidLegStatusTransitionError reports an illegal transition on a single
// leg, independent of the booking-level check.
type InvalidLegStatusTransitionError struct {
	LegID string
	From  LegStatus
	To    LegStatus
}

func (e *InvalidLegStatusTransitionError) Error() string {
	return fmt.Sprintf("leg %s: illegal status transition %s -> %s", e.LegID, e.From, e.To)
}

// LegNotFoundError reports a leg id that does not belong to the booking.
type LegNotFoundError struct {
	BookingID string
	LegID     string
}

func (e *LegNotFoundError) Error() string {
	return fmt.Sprintf("booking %s: leg %s not found", e.BookingID, e.LegID)
}

// IneligibleOperationError reports an operation whose eligibility window has
// not opened or has already closed. Batch jobs retry later; direct callers
// surface it to the user.
type IneligibleOperationError struct {
	BookingID string
	Operation string
	Reason    string
}

func (e *IneligibleOperationError) Error() string {
	return fmt.Sprintf("booking %s: %s not eligible: %s", e.BookingID, e.Operation, e.Reason)
}

// InvalidAmountError reports a financial value violating the construction
// invariants of Financials.
type InvalidAmountError struct {
	Field string
	Value decimal.Decimal
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("booking: invalid financial amount %s=%s", e.Field, e.Value)
}

// AmountMismatchError reports a client-submitted total that disagrees with the
// server-side calculation beyond tolerance. User-correctable: refresh and
// retry.
type AmountMismatchError struct {
	Submitted  decimal.Decimal
	Calculated decimal.Decimal
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("booking: submitted total %s does not match calculated total %s", e.Submitted, e.Calculated)
}

// IsTransitionRejected reports whether err is a booking- or leg-level
// transition rejection. Batch processors treat these as already-done markers
// rather than failures.
func IsTransitionRejected(err error) bool {
	var bt *InvalidStatusTransitionError
	var lt *InvalidLegStatusTransitionError
	return errors.As(err, &bt) || errors.As(err, &lt)
}

// IsIneligible reports whether err is an eligibility-window rejection.
func IsIneligible(err error) bool {
	var ie *IneligibleOperationError
	return errors.As(err, &ie)
}
