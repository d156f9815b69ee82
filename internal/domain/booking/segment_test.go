package booking_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetbook/internal/domain/booking"
)

func mustPeriod(t *testing.T, start, end time.Time, typ booking.BookingType) booking.Period {
	t.Helper()
	p, err := booking.NewPeriod(start, end, typ, start.Add(-24*time.Hour))
	require.NoError(t, err)
	return p
}

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestSegmentLegs_FullDayCeilsTo24HourBlocks(t *testing.T) {
	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"exactly 24h", date(2025, 2, 15, 10, 0), date(2025, 2, 16, 10, 0), 1},
		{"23.5h rounds up", date(2025, 2, 15, 10, 0), date(2025, 2, 16, 9, 30), 1},
		{"48h", date(2025, 2, 15, 10, 0), date(2025, 2, 17, 10, 0), 2},
		{"49h rounds up", date(2025, 2, 15, 10, 0), date(2025, 2, 17, 11, 0), 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := mustPeriod(t, tc.start, tc.end, booking.TypeFullDay)
			legs := booking.SegmentLegs(p)
			require.Len(t, legs, tc.want)
			for i, entry := range legs {
				assert.Equal(t, tc.start.Add(time.Duration(i)*24*time.Hour), entry)
			}
		})
	}
}

func TestSegmentLegs_DayCountsCalendarDays(t *testing.T) {
	// The same 48 wall-clock hours yield 3 calendar-day legs but only 2
	// full-day blocks.
	start := date(2025, 2, 15, 10, 0)
	end := date(2025, 2, 17, 10, 0)

	dayLegs := booking.SegmentLegs(mustPeriod(t, start, end, booking.TypeDay))
	require.Len(t, dayLegs, 3)
	assert.Equal(t, date(2025, 2, 15, 0, 0), dayLegs[0])
	assert.Equal(t, date(2025, 2, 16, 0, 0), dayLegs[1])
	assert.Equal(t, date(2025, 2, 17, 0, 0), dayLegs[2])

	fullDayLegs := booking.SegmentLegs(mustPeriod(t, start, end, booking.TypeFullDay))
	assert.Len(t, fullDayLegs, 2)
}

func TestSegmentLegs_DayTwoCalendarDays(t *testing.T) {
	p := mustPeriod(t, date(2025, 1, 15, 9, 0), date(2025, 1, 16, 21, 0), booking.TypeDay)
	legs := booking.SegmentLegs(p)
	require.Len(t, legs, 2)
	assert.Equal(t, date(2025, 1, 15, 0, 0), legs[0])
	assert.Equal(t, date(2025, 1, 16, 0, 0), legs[1])
}

func TestSegmentLegs_DayMidnightEndExcludesTrailingDay(t *testing.T) {
	p := mustPeriod(t, date(2025, 1, 15, 9, 0), date(2025, 1, 17, 0, 0), booking.TypeDay)
	legs := booking.SegmentLegs(p)
	require.Len(t, legs, 2)
	assert.Equal(t, date(2025, 1, 16, 0, 0), legs[1])
}

func TestSegmentLegs_NightOnePerCalendarNight(t *testing.T) {
	// Canonicalised to Jan 15 23:00 -> Jan 17 05:00: two nights.
	p := mustPeriod(t, date(2025, 1, 15, 10, 0), date(2025, 1, 17, 8, 0), booking.TypeNight)
	legs := booking.SegmentLegs(p)
	require.Len(t, legs, 2)
	assert.Equal(t, date(2025, 1, 15, 0, 0), legs[0])
	assert.Equal(t, date(2025, 1, 16, 0, 0), legs[1])
}

func TestSegmentLegs_OrderedAndNeverEmpty(t *testing.T) {
	for _, typ := range []booking.BookingType{booking.TypeDay, booking.TypeNight, booking.TypeFullDay} {
		p := mustPeriod(t, date(2025, 3, 1, 8, 0), date(2025, 3, 4, 20, 0), typ)
		legs := booking.SegmentLegs(p)
		require.NotEmpty(t, legs, "type %s", typ)
		for i := 1; i < len(legs); i++ {
			assert.True(t, legs[i].After(legs[i-1]), "type %s entries out of order", typ)
		}
	}
}

func TestLegWindow(t *testing.T) {
	day := mustPeriod(t, date(2025, 1, 15, 9, 0), date(2025, 1, 16, 21, 0), booking.TypeDay)
	start, end := booking.LegWindow(day, date(2025, 1, 16, 0, 0))
	assert.Equal(t, date(2025, 1, 16, 9, 0), start, "day legs anchor at the pickup clock time")
	assert.Equal(t, 12*time.Hour, end.Sub(start))

	night := mustPeriod(t, date(2025, 1, 15, 10, 0), date(2025, 1, 17, 8, 0), booking.TypeNight)
	start, end = booking.LegWindow(night, date(2025, 1, 15, 0, 0))
	assert.Equal(t, date(2025, 1, 15, 23, 0), start)
	assert.Equal(t, date(2025, 1, 16, 5, 0), end)

	full := mustPeriod(t, date(2025, 2, 15, 10, 0), date(2025, 2, 17, 10, 0), booking.TypeFullDay)
	start, end = booking.LegWindow(full, date(2025, 2, 16, 10, 0))
	assert.Equal(t, date(2025, 2, 16, 10, 0), start)
	assert.Equal(t, date(2025, 2, 17, 10, 0), end)
}
