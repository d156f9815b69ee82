package booking

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"fleetbook/internal/domain/rates"
)

var (
	ErrNoLegs           = errors.New("booking: cost calculation requires at least one leg")
	ErrLegCountMismatch = errors.New("booking: leg dates do not match the segmented period")
)

// LegPosition marks where a leg sits inside its booking. Flat per-leg pricing
// ignores it; it stays in the contract because callers already know it and an
// earlier hourly-proration policy priced boundary legs differently.
type LegPosition int

const (
	LegFirst LegPosition = iota
	LegMiddle
	LegLast
)

var oneHundred = decimal.NewFromInt(100)

// PriceLeg returns the price of a single leg. Every type bills a flat per-leg
// rate; negative configured rates are clamped to zero rather than rejected.
func PriceLeg(schedule rates.RateSchedule, typ BookingType, _ LegPosition) decimal.Decimal {
	switch typ {
	case TypeNight:
		return clampRate(schedule.NightRate)
	case TypeFullDay:
		return clampRate(schedule.FullDayRate)
	default:
		return clampRate(schedule.DayRate)
	}
}

func clampRate(r decimal.Decimal) decimal.Decimal {
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// CostInput carries everything CalculateCost needs; the add-on rate is looked
// up by the caller so the calculation itself stays pure.
type CostInput struct {
	Schedule rates.RateSchedule
	Fees     rates.PlatformFeeRates
	LegDates []time.Time
	Period   Period

	IncludeSecurityDetail bool
	// SecurityDetailRate is the per-unit add-on rate; HasSecurityDetailRate is
	// false when none is configured, in which case the add-on costs nothing.
	SecurityDetailRate    decimal.Decimal
	HasSecurityDetailRate bool
}

// CostBreakdown is the full financial result of pricing one booking.
type CostBreakdown struct {
	LegPrices []decimal.Decimal

	NetTotal           decimal.Decimal
	SecurityDetailCost decimal.Decimal
	ServiceFeeAmount   decimal.Decimal
	SubtotalBeforeVAT  decimal.Decimal
	VATAmount          decimal.Decimal
	TotalAmount        decimal.Decimal

	CommissionAmount decimal.Decimal
	OwnerPayoutNet   decimal.Decimal

	// Even split of the net total and owner payout across legs, used to stamp
	// each Leg with its share at creation time.
	NetValuePerLeg     decimal.Decimal
	OwnerEarningPerLeg decimal.Decimal
}

// CalculateCost prices every leg and layers on the security-detail add-on,
// platform service fee, VAT and the fleet-owner commission split. All
// arithmetic is decimal; the commission base is the bare net total, so the
// owner keeps the full security-detail amount.
func CalculateCost(in CostInput) (CostBreakdown, error) {
	if len(in.LegDates) == 0 {
		return CostBreakdown{}, ErrNoLegs
	}

	legPrices := make([]decimal.Decimal, 0, len(in.LegDates))
	netTotal := decimal.Zero
	for i := range in.LegDates {
		price := PriceLeg(in.Schedule, in.Period.Type, positionOf(i, len(in.LegDates)))
		legPrices = append(legPrices, price)
		netTotal = netTotal.Add(price)
	}

	securityCost := decimal.Zero
	if in.IncludeSecurityDetail && in.HasSecurityDetailRate {
		units := decimal.NewFromInt(int64(len(in.LegDates)))
		if in.Period.Type == TypeFullDay {
			// 24h coverage costs double the half-day unit.
			units = units.Mul(decimal.NewFromInt(2))
		}
		securityCost = clampRate(in.SecurityDetailRate).Mul(units)
	}

	netWithSecurity := netTotal.Add(securityCost)
	serviceFee := percentOf(netWithSecurity, in.Fees.ServiceFeeRate)
	subtotal := netWithSecurity.Add(serviceFee)
	vat := percentOf(subtotal, in.Fees.VATRate)
	total := subtotal.Add(vat)

	commission := percentOf(netTotal, in.Fees.CommissionRate)
	payout := netTotal.Sub(commission)

	legCount := decimal.NewFromInt(int64(len(in.LegDates)))
	return CostBreakdown{
		LegPrices:          legPrices,
		NetTotal:           netTotal,
		SecurityDetailCost: securityCost,
		ServiceFeeAmount:   serviceFee,
		SubtotalBeforeVAT:  subtotal,
		VATAmount:          vat,
		TotalAmount:        total,
		CommissionAmount:   commission,
		OwnerPayoutNet:     payout,
		NetValuePerLeg:     netTotal.Div(legCount),
		OwnerEarningPerLeg: payout.Div(legCount),
	}, nil
}

func positionOf(i, total int) LegPosition {
	switch {
	case i == 0:
		return LegFirst
	case i == total-1:
		return LegLast
	default:
		return LegMiddle
	}
}

func percentOf(amount, rate decimal.Decimal) decimal.Decimal {
	if rate.IsNegative() {
		rate = decimal.Zero
	}
	return amount.Mul(rate).Div(oneHundred)
}
