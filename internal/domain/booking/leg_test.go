package booking_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetbook/internal/domain/booking"
)

func TestLegStatus_TransitionTable(t *testing.T) {
	all := []booking.LegStatus{booking.LegPending, booking.LegConfirmed, booking.LegActive, booking.LegCompleted, booking.LegCancelled}
	legal := map[booking.LegStatus][]booking.LegStatus{
		booking.LegPending:   {booking.LegConfirmed, booking.LegActive, booking.LegCancelled},
		booking.LegConfirmed: {booking.LegActive, booking.LegCancelled},
		booking.LegActive:    {booking.LegCompleted},
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

func TestLeg_LifecycleAndGuards(t *testing.T) {
	leg := &booking.Leg{ID: "leg-1", Status: booking.LegPending}

	require.NoError(t, leg.Confirm())
	require.NoError(t, leg.Activate())

	err := leg.Activate()
	var invalid *booking.InvalidLegStatusTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "leg-1", invalid.LegID)
	assert.Equal(t, booking.LegActive, invalid.From)

	require.NoError(t, leg.Complete())
	assert.True(t, leg.IsTerminal())
	assert.Error(t, leg.Cancel())
}
