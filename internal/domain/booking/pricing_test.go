package booking_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetbook/internal/domain/booking"
	"fleetbook/internal/domain/rates"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func assertDecEqual(t *testing.T, want, got decimal.Decimal, label string) {
	t.Helper()
	assert.True(t, want.Equal(got), "%s: want %s got %s", label, want, got)
}

func TestPriceLeg_FlatPerTypeRates(t *testing.T) {
	schedule := rates.RateSchedule{DayRate: dec(5000), NightRate: dec(3000), FullDayRate: dec(9000), HourlyRate: dec(700)}

	assertDecEqual(t, dec(5000), booking.PriceLeg(schedule, booking.TypeDay, booking.LegFirst), "day")
	assertDecEqual(t, dec(3000), booking.PriceLeg(schedule, booking.TypeNight, booking.LegMiddle), "night")
	assertDecEqual(t, dec(9000), booking.PriceLeg(schedule, booking.TypeFullDay, booking.LegLast), "full day")
}

func TestPriceLeg_PositionNeutral(t *testing.T) {
	schedule := rates.RateSchedule{DayRate: dec(5000)}
	first := booking.PriceLeg(schedule, booking.TypeDay, booking.LegFirst)
	last := booking.PriceLeg(schedule, booking.TypeDay, booking.LegLast)
	assert.True(t, first.Equal(last))
}

func TestPriceLeg_ClampsNegativeRates(t *testing.T) {
	schedule := rates.RateSchedule{DayRate: dec(-100)}
	assertDecEqual(t, decimal.Zero, booking.PriceLeg(schedule, booking.TypeDay, booking.LegFirst), "negative rate")
}

func fees(service, commission, vat int64) rates.PlatformFeeRates {
	return rates.PlatformFeeRates{ServiceFeeRate: dec(service), CommissionRate: dec(commission), VATRate: dec(vat)}
}

func TestCalculateCost_DayScenario(t *testing.T) {
	// dayRate=5000, Jan 15 09:00 -> Jan 16 21:00 spans two calendar days.
	p := mustPeriod(t, date(2025, 1, 15, 9, 0), date(2025, 1, 16, 21, 0), booking.TypeDay)
	legs := booking.SegmentLegs(p)
	require.Len(t, legs, 2)

	cb, err := booking.CalculateCost(booking.CostInput{
		Schedule: rates.RateSchedule{DayRate: dec(5000)},
		Fees:     fees(10, 10, 10),
		LegDates: legs,
		Period:   p,
	})
	require.NoError(t, err)

	assertDecEqual(t, dec(10000), cb.NetTotal, "net total")
	assertDecEqual(t, dec(1000), cb.ServiceFeeAmount, "service fee")
	assertDecEqual(t, dec(11000), cb.SubtotalBeforeVAT, "subtotal")
	assertDecEqual(t, dec(1100), cb.VATAmount, "vat")
	assertDecEqual(t, dec(12100), cb.TotalAmount, "total")
	assertDecEqual(t, dec(1000), cb.CommissionAmount, "commission")
	assertDecEqual(t, dec(9000), cb.OwnerPayoutNet, "payout")
	assertDecEqual(t, dec(5000), cb.NetValuePerLeg, "net per leg")
	assertDecEqual(t, dec(4500), cb.OwnerEarningPerLeg, "earning per leg")
}

func TestCalculateCost_FullDayScenario(t *testing.T) {
	p := mustPeriod(t, date(2025, 2, 15, 10, 0), date(2025, 2, 17, 10, 0), booking.TypeFullDay)
	legs := booking.SegmentLegs(p)
	require.Len(t, legs, 2)

	cb, err := booking.CalculateCost(booking.CostInput{
		Schedule: rates.RateSchedule{FullDayRate: dec(9000)},
		Fees:     fees(10, 10, 10),
		LegDates: legs,
		Period:   p,
	})
	require.NoError(t, err)
	assertDecEqual(t, dec(18000), cb.NetTotal, "net total")
	require.Len(t, cb.LegPrices, 2)
	assertDecEqual(t, dec(9000), cb.LegPrices[0], "leg price")
}

func TestCalculateCost_SecurityDetail(t *testing.T) {
	p := mustPeriod(t, date(2025, 2, 15, 10, 0), date(2025, 2, 17, 10, 0), booking.TypeFullDay)
	legs := booking.SegmentLegs(p)

	cb, err := booking.CalculateCost(booking.CostInput{
		Schedule:              rates.RateSchedule{FullDayRate: dec(9000)},
		Fees:                  fees(10, 10, 10),
		LegDates:              legs,
		Period:                p,
		IncludeSecurityDetail: true,
		SecurityDetailRate:    dec(500),
		HasSecurityDetailRate: true,
	})
	require.NoError(t, err)

	// 2 legs x 2 (full-day multiplier) x 500.
	assertDecEqual(t, dec(2000), cb.SecurityDetailCost, "security cost")
	assertDecEqual(t, dec(20000), cb.NetTotal.Add(cb.SecurityDetailCost), "net with security")
	assertDecEqual(t, dec(2000), cb.ServiceFeeAmount, "fee on net+security")
	// Commission stays on the bare net: the owner keeps the add-on in full.
	assertDecEqual(t, dec(1800), cb.CommissionAmount, "commission base excludes security")
	assertDecEqual(t, dec(16200), cb.OwnerPayoutNet, "payout")
}

func TestCalculateCost_SecurityDetailUnconfiguredRateIsFree(t *testing.T) {
	p := mustPeriod(t, date(2025, 1, 15, 9, 0), date(2025, 1, 16, 21, 0), booking.TypeDay)
	cb, err := booking.CalculateCost(booking.CostInput{
		Schedule:              rates.RateSchedule{DayRate: dec(5000)},
		Fees:                  fees(10, 10, 10),
		LegDates:              booking.SegmentLegs(p),
		Period:                p,
		IncludeSecurityDetail: true,
	})
	require.NoError(t, err)
	assertDecEqual(t, decimal.Zero, cb.SecurityDetailCost, "no configured rate")
}

func TestCalculateCost_IdentitiesHoldExactly(t *testing.T) {
	p := mustPeriod(t, date(2025, 3, 1, 8, 0), date(2025, 3, 4, 20, 0), booking.TypeDay)
	legs := booking.SegmentLegs(p)
	in := booking.CostInput{
		Schedule:              rates.RateSchedule{DayRate: decimal.RequireFromString("4999.99")},
		Fees:                  fees(13, 7, 16),
		LegDates:              legs,
		Period:                p,
		IncludeSecurityDetail: true,
		SecurityDetailRate:    decimal.RequireFromString("333.33"),
		HasSecurityDetailRate: true,
	}
	cb, err := booking.CalculateCost(in)
	require.NoError(t, err)

	netWithSecurity := cb.NetTotal.Add(cb.SecurityDetailCost)
	assertDecEqual(t, netWithSecurity.Add(cb.ServiceFeeAmount), cb.SubtotalBeforeVAT, "subtotal identity")
	assertDecEqual(t, cb.SubtotalBeforeVAT.Add(cb.VATAmount), cb.TotalAmount, "total identity")
	assertDecEqual(t, cb.NetTotal.Sub(cb.CommissionAmount), cb.OwnerPayoutNet, "payout identity")

	// Determinism: a second run over the same input is bit-identical.
	again, err := booking.CalculateCost(in)
	require.NoError(t, err)
	assert.Equal(t, cb, again)
}

func TestCalculateCost_RequiresLegs(t *testing.T) {
	p := mustPeriod(t, date(2025, 1, 15, 9, 0), date(2025, 1, 16, 21, 0), booking.TypeDay)
	_, err := booking.CalculateCost(booking.CostInput{Period: p, LegDates: []time.Time{}})
	assert.ErrorIs(t, err, booking.ErrNoLegs)
}
