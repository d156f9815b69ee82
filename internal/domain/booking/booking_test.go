package booking_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetbook/internal/domain/booking"
	"fleetbook/internal/domain/rates"
)

// newTestBooking builds a priced two-day DAY booking (Jan 15 09:00 -> Jan 16
// 21:00) and stamps the id the persistence layer would assign.
func newTestBooking(t *testing.T) *booking.Booking {
	t.Helper()
	p := mustPeriod(t, date(2025, 1, 15, 9, 0), date(2025, 1, 16, 21, 0), booking.TypeDay)
	legs := booking.SegmentLegs(p)
	cb, err := booking.CalculateCost(booking.CostInput{
		Schedule: rates.RateSchedule{DayRate: dec(5000)},
		Fees:     fees(10, 10, 10),
		LegDates: legs,
		Period:   p,
	})
	require.NoError(t, err)
	b, err := booking.Create(booking.CreateParams{
		CustomerID: "cust-1",
		CarID:      "car-1",
		Period:     p,
		LegDates:   legs,
		Breakdown:  cb,
		CreatedAt:  date(2025, 1, 10, 12, 0),
	})
	require.NoError(t, err)
	b.ID = "bkg-1"
	return b
}

func confirmedBooking(t *testing.T) *booking.Booking {
	t.Helper()
	b := newTestBooking(t)
	require.NoError(t, b.ConfirmWithPayment("pay-1", date(2025, 1, 10, 13, 0)))
	b.ClearEvents()
	return b
}

func TestCreate_AssemblesPendingAggregate(t *testing.T) {
	b := newTestBooking(t)

	assert.Equal(t, booking.StatusPending, b.Status)
	assert.Equal(t, booking.PaymentPending, b.PaymentStatus)
	assert.NotEmpty(t, b.Reference)
	require.Len(t, b.Legs, 2)
	for _, leg := range b.Legs {
		assert.Equal(t, booking.LegPending, leg.Status)
		assertDecEqual(t, dec(5000), leg.Price, "leg price")
		assertDecEqual(t, dec(5000), leg.NetValue, "leg net share")
		assertDecEqual(t, dec(4500), leg.OwnerEarning, "leg earning share")
	}
	assertDecEqual(t, dec(12100), b.Financials.TotalAmount, "total")
	assert.Empty(t, b.PendingEvents(), "creation itself records nothing")
}

func TestCreate_Validation(t *testing.T) {
	p := mustPeriod(t, date(2025, 1, 15, 9, 0), date(2025, 1, 16, 21, 0), booking.TypeDay)
	_, err := booking.Create(booking.CreateParams{CarID: "car-1", Period: p})
	assert.ErrorIs(t, err, booking.ErrCustomerRequired)

	_, err = booking.Create(booking.CreateParams{CustomerID: "c", CarID: "car-1", Period: p})
	assert.ErrorIs(t, err, booking.ErrLegCountMismatch)
}

func TestStatus_TransitionTableExhaustive(t *testing.T) {
	all := []booking.Status{
		booking.StatusPending, booking.StatusConfirmed, booking.StatusActive,
		booking.StatusCompleted, booking.StatusCancelled, booking.StatusRejected,
	}
	legal := map[booking.Status][]booking.Status{
		booking.StatusPending:   {booking.StatusConfirmed, booking.StatusRejected},
		booking.StatusConfirmed: {booking.StatusActive, booking.StatusCancelled},
		booking.StatusActive:    {booking.StatusCompleted},
	}
	for _, from := range all {
		for _, to := range all {
			want := false
			for _, allowed := range legal[from] {
				if allowed == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestBooking_IllegalTransitionsCarryContext(t *testing.T) {
	b := newTestBooking(t)
	err := b.Activate(date(2025, 1, 15, 9, 0))
	var invalid *booking.InvalidStatusTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "bkg-1", invalid.BookingID)
	assert.Equal(t, booking.StatusPending, invalid.From)
	assert.Equal(t, booking.StatusActive, invalid.To)
}

func TestConfirmWithPayment(t *testing.T) {
	b := newTestBooking(t)
	require.NoError(t, b.ConfirmWithPayment("pay-9", date(2025, 1, 10, 13, 0)))

	assert.Equal(t, booking.StatusConfirmed, b.Status)
	assert.Equal(t, booking.PaymentPaid, b.PaymentStatus)
	assert.Equal(t, "pay-9", b.PaymentID)
	for _, leg := range b.Legs {
		assert.Equal(t, booking.LegConfirmed, leg.Status)
	}
	events := b.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "booking.confirmed", events[0].EventName())
}

func TestConfirmWithPayment_FailsFastBeforePersistence(t *testing.T) {
	b := newTestBooking(t)
	b.ID = ""
	err := b.ConfirmWithPayment("pay-9", date(2025, 1, 10, 13, 0))
	assert.ErrorIs(t, err, booking.ErrNotPersisted)
	assert.Equal(t, booking.StatusPending, b.Status, "no partial mutation")
}

func TestCancel_OnlyFromConfirmed(t *testing.T) {
	b := newTestBooking(t)
	err := b.Cancel("changed plans", date(2025, 1, 11, 9, 0))
	assert.True(t, booking.IsTransitionRejected(err))

	b = confirmedBooking(t)
	require.NoError(t, b.Cancel("changed plans", date(2025, 1, 11, 9, 0)))
	assert.Equal(t, booking.StatusCancelled, b.Status)
	assert.Equal(t, booking.PaymentRefunded, b.PaymentStatus)
	assert.Equal(t, "changed plans", b.CancellationReason)
	assert.False(t, b.CancelledAt.IsZero())
	for _, leg := range b.Legs {
		assert.Equal(t, booking.LegCancelled, leg.Status)
	}
}

func TestReject_OnlyFromPending(t *testing.T) {
	b := newTestBooking(t)
	require.NoError(t, b.Reject("payment never arrived", date(2025, 1, 11, 9, 0)))
	assert.Equal(t, booking.StatusRejected, b.Status)

	events := b.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "booking.rejected", events[0].EventName())
	rejected, ok := events[0].(booking.Rejected)
	require.True(t, ok)
	assert.Equal(t, "bkg-1", rejected.BookingID)
	assert.Equal(t, "payment never arrived", rejected.Reason)

	b = confirmedBooking(t)
	err := b.Reject("too late", date(2025, 1, 11, 9, 0))
	assert.True(t, booking.IsTransitionRejected(err))
	assert.Equal(t, booking.StatusConfirmed, b.Status)
}

func TestReject_FailsFastBeforePersistence(t *testing.T) {
	b := newTestBooking(t)
	b.ID = ""
	err := b.Reject("payment never arrived", date(2025, 1, 11, 9, 0))
	assert.ErrorIs(t, err, booking.ErrNotPersisted)
	assert.Equal(t, booking.StatusPending, b.Status)
}

func TestActivateLeg_CascadesOnlyOnStartDay(t *testing.T) {
	b := confirmedBooking(t)
	firstLeg := b.Legs[0]

	// Processing on the period's start day activates leg and booking.
	require.NoError(t, b.ActivateLeg(firstLeg.ID, date(2025, 1, 15, 9, 0)))
	assert.Equal(t, booking.LegActive, firstLeg.Status)
	assert.Equal(t, booking.StatusActive, b.Status)

	// The second leg's day is not the booking start day: leg-only change.
	secondLeg := b.Legs[1]
	require.NoError(t, b.ActivateLeg(secondLeg.ID, date(2025, 1, 16, 9, 0)))
	assert.Equal(t, booking.LegActive, secondLeg.Status)
	assert.Equal(t, booking.StatusActive, b.Status)
}

func TestActivateLeg_NoCascadeOffStartDay(t *testing.T) {
	// A multi-day booking whose first leg is replayed on a non-start day only
	// touches the leg.
	p := mustPeriod(t, date(2025, 1, 15, 9, 0), date(2025, 1, 17, 21, 0), booking.TypeDay)
	legs := booking.SegmentLegs(p)
	cb, err := booking.CalculateCost(booking.CostInput{
		Schedule: rates.RateSchedule{DayRate: dec(5000)},
		Fees:     fees(10, 10, 10),
		LegDates: legs,
		Period:   p,
	})
	require.NoError(t, err)
	b, err := booking.Create(booking.CreateParams{
		CustomerID: "cust-1", CarID: "car-1", Period: p,
		LegDates: legs, Breakdown: cb, CreatedAt: date(2025, 1, 10, 12, 0),
	})
	require.NoError(t, err)
	b.ID = "bkg-2"
	require.NoError(t, b.ConfirmWithPayment("pay-1", date(2025, 1, 10, 13, 0)))

	require.NoError(t, b.ActivateLeg(b.Legs[1].ID, date(2025, 1, 16, 9, 0)))
	assert.Equal(t, booking.StatusConfirmed, b.Status, "middle leg must not activate the booking")
}

func TestActivateLeg_IdempotentUnderReplay(t *testing.T) {
	b := confirmedBooking(t)
	leg := b.Legs[0]
	now := date(2025, 1, 15, 9, 0)
	require.NoError(t, b.ActivateLeg(leg.ID, now))

	err := b.ActivateLeg(leg.ID, now)
	assert.True(t, booking.IsTransitionRejected(err), "second call rejected, not fatal")
	assert.Equal(t, booking.StatusActive, b.Status)
	assert.Equal(t, booking.LegConfirmed, b.Legs[1].Status, "other legs untouched")
}

func TestActivateLeg_UnknownLeg(t *testing.T) {
	b := confirmedBooking(t)
	err := b.ActivateLeg("nope", date(2025, 1, 15, 9, 0))
	var notFound *booking.LegNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nope", notFound.LegID)
}

func TestCompleteLeg_CascadesOnlyOnEndDay(t *testing.T) {
	b := confirmedBooking(t)
	require.NoError(t, b.ActivateLeg(b.Legs[0].ID, date(2025, 1, 15, 9, 0)))
	require.NoError(t, b.ActivateLeg(b.Legs[1].ID, date(2025, 1, 16, 9, 0)))

	// First leg ends on the 15th; the booking runs through the 16th.
	require.NoError(t, b.CompleteLeg(b.Legs[0].ID, date(2025, 1, 15, 21, 0)))
	assert.Equal(t, booking.StatusActive, b.Status)

	require.NoError(t, b.CompleteLeg(b.Legs[1].ID, date(2025, 1, 16, 21, 0)))
	assert.Equal(t, booking.StatusCompleted, b.Status)
}

func TestAssignChauffeur_Rules(t *testing.T) {
	b := newTestBooking(t)
	err := b.AssignChauffeur("ch-1", date(2025, 1, 11, 9, 0))
	assert.True(t, booking.IsIneligible(err), "pending bookings refuse assignment")

	b = confirmedBooking(t)
	require.NoError(t, b.AssignChauffeur("ch-1", date(2025, 1, 11, 9, 0)))
	assert.Equal(t, "ch-1", b.ChauffeurID)
	events := b.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "booking.chauffeur_assigned", events[0].EventName())

	// Re-assignment signals both the unassignment and the new assignment.
	b.ClearEvents()
	require.NoError(t, b.AssignChauffeur("ch-2", date(2025, 1, 11, 10, 0)))
	events = b.PendingEvents()
	require.Len(t, events, 2)
	assert.Equal(t, "booking.chauffeur_unassigned", events[0].EventName())
	assert.Equal(t, "booking.chauffeur_assigned", events[1].EventName())

	// Same chauffeur again is a no-op.
	b.ClearEvents()
	require.NoError(t, b.AssignChauffeur("ch-2", date(2025, 1, 11, 11, 0)))
	assert.Empty(t, b.PendingEvents())
}

func TestUnassignChauffeur_Rules(t *testing.T) {
	b := confirmedBooking(t)
	require.NoError(t, b.AssignChauffeur("ch-1", date(2025, 1, 11, 9, 0)))
	b.ClearEvents()

	require.NoError(t, b.UnassignChauffeur(date(2025, 1, 11, 12, 0)))
	assert.Empty(t, b.ChauffeurID)
	events := b.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "booking.chauffeur_unassigned", events[0].EventName())

	// Active bookings keep their chauffeur.
	b = confirmedBooking(t)
	require.NoError(t, b.AssignChauffeur("ch-1", date(2025, 1, 11, 9, 0)))
	require.NoError(t, b.ActivateLeg(b.Legs[0].ID, date(2025, 1, 15, 9, 0)))
	err := b.UnassignChauffeur(date(2025, 1, 15, 10, 0))
	assert.True(t, booking.IsIneligible(err))
	assert.Equal(t, "ch-1", b.ChauffeurID)
}

func TestReconstitute_RoundTrip(t *testing.T) {
	original := confirmedBooking(t)
	require.NoError(t, original.AssignChauffeur("ch-1", date(2025, 1, 11, 9, 0)))
	original.ClearEvents()
	original.Version = 3

	copyOf := booking.Reconstitute(*original)

	assert.Equal(t, original.ID, copyOf.ID)
	assert.Equal(t, original.Status, copyOf.Status)
	assert.Equal(t, original.PaymentStatus, copyOf.PaymentStatus)
	assert.Equal(t, original.ChauffeurID, copyOf.ChauffeurID)
	assert.Equal(t, original.Version, copyOf.Version)
	assert.True(t, original.Financials.TotalAmount.Equal(copyOf.Financials.TotalAmount))
	require.Len(t, copyOf.Legs, len(original.Legs))
	for i := range original.Legs {
		assert.Equal(t, original.Legs[i].ID, copyOf.Legs[i].ID)
		assert.Equal(t, original.Legs[i].Status, copyOf.Legs[i].Status)
		assert.Equal(t, original.ID, copyOf.Legs[i].BookingID)
	}
	assert.Empty(t, copyOf.PendingEvents())

	// The rehydrated aggregate owns copies, not the original's legs.
	copyOf.Legs[0].Status = booking.LegCancelled
	assert.NotEqual(t, original.Legs[0].Status, copyOf.Legs[0].Status)
}

func TestTerminalStatusesStayTerminal(t *testing.T) {
	b := confirmedBooking(t)
	require.NoError(t, b.Cancel("done", date(2025, 1, 11, 9, 0)))
	now := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	assert.Error(t, b.Activate(now))
	assert.Error(t, b.Complete(now))
	assert.Error(t, b.ConfirmWithPayment("p", now))
	assert.Error(t, b.Cancel("again", now))
}
