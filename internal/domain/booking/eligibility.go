package booking

import (
	"time"

	"fleetbook/internal/domain/shared/daterange"
)

// Reminders fire inside [t-1h, t); cancellation closes 12 hours before the
// period starts.
const (
	reminderWindow     = time.Hour
	cancellationCutoff = 12 * time.Hour
)

// IsEligibleForActivation: confirmed, period has started, chauffeur on board.
func (b *Booking) IsEligibleForActivation(now time.Time) bool {
	now = now.UTC()
	return b.Status == StatusConfirmed && !b.Period.Start.After(now) && b.ChauffeurID != ""
}

// IsEligibleForCompletion: active and the period is over.
func (b *Booking) IsEligibleForCompletion(now time.Time) bool {
	now = now.UTC()
	return b.Status == StatusActive && !b.Period.End.After(now)
}

// IsEligibleForStartReminder reports whether now falls in the hour before the
// period starts on a confirmed booking.
func (b *Booking) IsEligibleForStartReminder(now time.Time) bool {
	return b.Status == StatusConfirmed && daterange.Before(b.Period.Start, reminderWindow).Contains(now)
}

// IsEligibleForEndReminder reports whether now falls in the hour before the
// period ends on an active booking.
func (b *Booking) IsEligibleForEndReminder(now time.Time) bool {
	return b.Status == StatusActive && daterange.Before(b.Period.End, reminderWindow).Contains(now)
}

// IsEligibleForCancellation: confirmed and still more than the cutoff away
// from the start.
func (b *Booking) IsEligibleForCancellation(now time.Time) bool {
	now = now.UTC()
	return b.Status == StatusConfirmed && !now.After(b.Period.Start.Add(-cancellationCutoff))
}

// EnsureCanActivate returns a typed rejection when activation is not yet
// eligible, with the first failing condition as the reason.
func (b *Booking) EnsureCanActivate(now time.Time) error {
	if b.IsEligibleForActivation(now) {
		return nil
	}
	reason := "period has not started"
	switch {
	case b.Status != StatusConfirmed:
		reason = "booking status is " + string(b.Status)
	case b.ChauffeurID == "":
		reason = "no chauffeur assigned"
	}
	return &IneligibleOperationError{BookingID: b.ID, Operation: "activate", Reason: reason}
}

// EnsureCanComplete returns a typed rejection when completion is not yet
// eligible.
func (b *Booking) EnsureCanComplete(now time.Time) error {
	if b.IsEligibleForCompletion(now) {
		return nil
	}
	reason := "period has not ended"
	if b.Status != StatusActive {
		reason = "booking status is " + string(b.Status)
	}
	return &IneligibleOperationError{BookingID: b.ID, Operation: "complete", Reason: reason}
}

// EnsureCanCancel enforces the hard cancellation cutoff.
func (b *Booking) EnsureCanCancel(now time.Time) error {
	if b.IsEligibleForCancellation(now) {
		return nil
	}
	reason := "cancellation window closed"
	if b.Status != StatusConfirmed {
		reason = "booking status is " + string(b.Status)
	}
	return &IneligibleOperationError{BookingID: b.ID, Operation: "cancel", Reason: reason}
}
